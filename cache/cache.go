// Package cache provides the key/value store and pub/sub bus used for gene
// templates and agent event fan-out. Redis backs both when configured,
// in-process implementations otherwise.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/kasuganosora/enemyai/cache/local"
	cacheredis "github.com/kasuganosora/enemyai/cache/redis"
)

// Cache is the KV subset the simulation needs.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Message is a received pub/sub message.
type Message struct {
	Channel string
	Payload string
}

// PubSub defines channel publish/subscribe operations.
type PubSub interface {
	Publish(ctx context.Context, channel, message string) error
	Subscribe(ctx context.Context, channels ...string) (<-chan *Message, func(), error)
}

// Config selects and tunes the backend.
type Config struct {
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	LocalGCInterval time.Duration `mapstructure:"local_gc_interval"`
	LocalPubSubBuf  int           `mapstructure:"local_pubsub_buf"`
	KeyPrefix       string        `mapstructure:"key_prefix"`
}

// IsMiss reports whether err means the key was absent, for either backend.
func IsMiss(err error) bool {
	return errors.Is(err, local.ErrNotFound) || errors.Is(err, cacheredis.ErrNotFound)
}

// NewCache returns a Redis cache if RedisAddr is set, else a local one.
func NewCache(cfg Config) (Cache, error) {
	if cfg.RedisAddr != "" {
		return cacheredis.NewCache(cfg.redis())
	}
	return local.NewCache(local.Config{GCInterval: cfg.LocalGCInterval}), nil
}

// NewPubSub returns a Redis bus if RedisAddr is set, else a local one.
func NewPubSub(cfg Config) (PubSub, error) {
	if cfg.RedisAddr != "" {
		ps, err := cacheredis.NewPubSub(cfg.redis())
		if err != nil {
			return nil, err
		}
		return redisBus{ps}, nil
	}
	return localBus{local.NewPubSub(cfg.LocalPubSubBuf)}, nil
}

func (c Config) redis() cacheredis.Config {
	return cacheredis.Config{Addr: c.RedisAddr, Password: c.RedisPassword, DB: c.RedisDB, KeyPrefix: c.KeyPrefix}
}

type localBus struct{ ps *local.PubSub }

func (b localBus) Publish(ctx context.Context, channel, message string) error {
	return b.ps.Publish(ctx, channel, message)
}

func (b localBus) Subscribe(ctx context.Context, channels ...string) (<-chan *Message, func(), error) {
	in, cancel, err := b.ps.Subscribe(ctx, channels...)
	if err != nil {
		return nil, nil, err
	}
	return relay(in, func(m local.Message) *Message { return &Message{Channel: m.Channel, Payload: m.Payload} }), cancel, nil
}

type redisBus struct{ ps *cacheredis.PubSub }

func (b redisBus) Publish(ctx context.Context, channel, message string) error {
	return b.ps.Publish(ctx, channel, message)
}

func (b redisBus) Subscribe(ctx context.Context, channels ...string) (<-chan *Message, func(), error) {
	in, cancel, err := b.ps.Subscribe(ctx, channels...)
	if err != nil {
		return nil, nil, err
	}
	return relay(in, func(m cacheredis.Message) *Message { return &Message{Channel: m.Channel, Payload: m.Payload} }), cancel, nil
}

// relay converts backend messages until in is closed.
func relay[T any](in <-chan T, conv func(T) *Message) <-chan *Message {
	out := make(chan *Message, cap(in))
	go func() {
		defer close(out)
		for m := range in {
			out <- conv(m)
		}
	}()
	return out
}
