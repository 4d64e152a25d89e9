package agent

import (
	"time"

	"github.com/kasuganosora/enemyai/game/dna"
	"github.com/kasuganosora/enemyai/game/opponent"
	"github.com/kasuganosora/enemyai/game/perception"
)

// Event is emitted by a Machine for presentation and persistence layers.
type Event interface {
	EventType() string
	Agent() string
}

// Header carries the fields common to every event.
type Header struct {
	AgentID string        `json:"agent_id"`
	At      time.Duration `json:"at"`
}

func (h Header) Agent() string { return h.AgentID }

// --- Concrete event types ---

type EventStateChanged struct {
	Header
	From State `json:"from"`
	To   State `json:"to"`
}

func (EventStateChanged) EventType() string { return "state_changed" }

type EventAwarenessChanged struct {
	Header
	Level perception.Level `json:"level"`
	Color string           `json:"color"`
}

func (EventAwarenessChanged) EventType() string { return "awareness_changed" }

type EventAttack struct {
	Header
	Request AttackRequest `json:"request"`
}

func (EventAttack) EventType() string { return "attack" }

type EventDamaged struct {
	Header
	Amount float64 `json:"amount"`
	Health float64 `json:"health"`
}

func (EventDamaged) EventType() string { return "damaged" }

type EventDodged struct {
	Header
	Amount float64 `json:"amount"`
}

func (EventDodged) EventType() string { return "dodged" }

type EventAdapted struct {
	Header
	Before   dna.Profile       `json:"before"`
	After    dna.Profile       `json:"after"`
	Opponent opponent.Snapshot `json:"opponent"`
}

func (EventAdapted) EventType() string { return "adapted" }
