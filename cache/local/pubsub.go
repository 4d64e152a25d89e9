package local

import (
	"context"
	"sync"
)

// Message is an in-process pub/sub message.
type Message struct {
	Channel string
	Payload string
}

type subscription struct {
	ch       chan Message
	channels []string
}

// PubSub is an in-process fan-out bus. Slow subscribers drop messages rather
// than block the publisher.
type PubSub struct {
	mu      sync.RWMutex
	subs    map[string]map[*subscription]struct{}
	bufSize int
}

func NewPubSub(bufSize int) *PubSub {
	if bufSize <= 0 {
		bufSize = 256
	}
	return &PubSub{subs: make(map[string]map[*subscription]struct{}), bufSize: bufSize}
}

func (ps *PubSub) Publish(_ context.Context, channel, payload string) error {
	msg := Message{Channel: channel, Payload: payload}
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	for s := range ps.subs[channel] {
		select {
		case s.ch <- msg:
		default:
		}
	}
	return nil
}

// Subscribe registers one receiver for all channels. The returned cancel
// unregisters it and closes the receiver; it is idempotent.
func (ps *PubSub) Subscribe(_ context.Context, channels ...string) (<-chan Message, func(), error) {
	s := &subscription{ch: make(chan Message, ps.bufSize), channels: channels}

	ps.mu.Lock()
	for _, c := range channels {
		if ps.subs[c] == nil {
			ps.subs[c] = make(map[*subscription]struct{})
		}
		ps.subs[c][s] = struct{}{}
	}
	ps.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			ps.mu.Lock()
			defer ps.mu.Unlock()
			for _, c := range s.channels {
				delete(ps.subs[c], s)
				if len(ps.subs[c]) == 0 {
					delete(ps.subs, c)
				}
			}
			close(s.ch)
		})
	}
	return s.ch, cancel, nil
}

// Subscribers counts receivers on channel.
func (ps *PubSub) Subscribers(channel string) int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.subs[channel])
}
