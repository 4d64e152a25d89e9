// Package notify forwards agent events to a pub/sub channel for UI, voice
// and other presentation consumers.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kasuganosora/enemyai/cache"
	"github.com/kasuganosora/enemyai/game/agent"
	"go.uber.org/zap"
)

// Channel is the default pub/sub channel for agent events.
const Channel = "agent_events"

// Envelope is the wire form of one event.
type Envelope struct {
	Type    string          `json:"type"`
	AgentID string          `json:"agent_id"`
	Data    json.RawMessage `json:"data"`
}

// Publisher is an agent.Presenter. Publish failures are logged and dropped so
// a broken bus never stalls a tick.
type Publisher struct {
	ps      cache.PubSub
	channel string
	timeout time.Duration
	filter  map[string]bool
	logger  *zap.Logger
}

// Option tunes a Publisher.
type Option func(*Publisher)

// WithChannel overrides the channel name.
func WithChannel(name string) Option { return func(p *Publisher) { p.channel = name } }

// WithTypes restricts publishing to the named event types.
func WithTypes(types ...string) Option {
	return func(p *Publisher) {
		p.filter = make(map[string]bool, len(types))
		for _, t := range types {
			p.filter[t] = true
		}
	}
}

func NewPublisher(ps cache.PubSub, logger *zap.Logger, opts ...Option) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Publisher{ps: ps, channel: Channel, timeout: time.Second, logger: logger}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Publisher) Notify(ev agent.Event) {
	if p.ps == nil || ev == nil {
		return
	}
	if p.filter != nil && !p.filter[ev.EventType()] {
		return
	}
	payload, err := Encode(ev)
	if err != nil {
		p.logger.Warn("encode agent event", zap.String("type", ev.EventType()), zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if err := p.ps.Publish(ctx, p.channel, string(payload)); err != nil {
		p.logger.Warn("publish agent event",
			zap.String("type", ev.EventType()),
			zap.String("agent", ev.Agent()),
			zap.Error(err))
	}
}

// Encode wraps ev in an Envelope and marshals it.
func Encode(ev agent.Event) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: ev.EventType(), AgentID: ev.Agent(), Data: data})
}

// Decode parses an Envelope produced by Encode.
func Decode(payload string) (Envelope, error) {
	var env Envelope
	err := json.Unmarshal([]byte(payload), &env)
	return env, err
}
