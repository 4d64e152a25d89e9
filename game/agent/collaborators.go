package agent

import (
	"time"

	"github.com/kasuganosora/enemyai/game/ai"
)

// Mover is the navigation collaborator. It owns path finding; the agent only
// hands it destinations.
type Mover interface {
	SetDestination(p ai.Vec3, speed float64)
	Stop()
	HasPendingPath() bool
	RemainingDistance() float64
}

// Facer is implemented by movers that can also turn the agent in place.
type Facer interface {
	FaceTowards(p ai.Vec3)
}

// AttackRequest asks the combat collaborator to resolve one attack.
type AttackRequest struct {
	AgentID string        `json:"agent_id"`
	Target  ai.Vec3       `json:"target"`
	Damage  float64       `json:"damage"`
	At      time.Duration `json:"at"`
}

// Combat resolves attacks against other entities. The agent never touches
// another entity's health itself.
type Combat interface {
	RequestAttack(req AttackRequest)
}

// CombatFunc adapts a function to Combat.
type CombatFunc func(req AttackRequest)

func (f CombatFunc) RequestAttack(req AttackRequest) { f(req) }

// Health is the agent's own hit-point store.
type Health interface {
	CurrentHealth() float64
	MaxHealth() float64
	Heal(amount float64)
	ApplyDamage(amount float64)
}

// Presenter receives observable notifications (UI, voice, colour).
type Presenter interface {
	Notify(ev Event)
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(ev Event)

func (f PresenterFunc) Notify(ev Event) { f(ev) }

// Fanout delivers each event to every non-nil presenter in order.
type Fanout []Presenter

func (f Fanout) Notify(ev Event) {
	for _, p := range f {
		if p != nil {
			p.Notify(ev)
		}
	}
}

// ---- no-op stand-ins for absent collaborators ----

type frozenMover struct{}

func (frozenMover) SetDestination(ai.Vec3, float64) {}
func (frozenMover) Stop()                           {}
func (frozenMover) HasPendingPath() bool            { return false }
func (frozenMover) RemainingDistance() float64      { return 0 }

type nopPresenter struct{}

func (nopPresenter) Notify(Event) {}
