// Package redis is the Redis cache backend.
package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("cache: key not found")

type Config struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string // prepended to every KV key, not to channels
}

func dial(cfg Config) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// Cache is the Redis KV backend. Several simulation hosts may share one
// Redis database by using different key prefixes.
type Cache struct {
	client *goredis.Client
	prefix string
}

func NewCache(cfg Config) (*Cache, error) {
	client, err := dial(cfg)
	if err != nil {
		return nil, err
	}
	return &Cache{client: client, prefix: cfg.KeyPrefix}, nil
}

func (r *Cache) key(k string) string { return r.prefix + k }

func (r *Cache) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", ErrNotFound
	}
	return v, err
}

func (r *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, r.key(key), value, ttl).Err()
}

func (r *Cache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}
	return r.client.Del(ctx, full...).Err()
}

func (r *Cache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(key)).Result()
	return n > 0, err
}

func (r *Cache) Close() error { return r.client.Close() }

// Message is one message received from Redis.
type Message struct {
	Channel string
	Payload string
}

// PubSub is the Redis pub/sub backend.
type PubSub struct {
	client *goredis.Client
}

func NewPubSub(cfg Config) (*PubSub, error) {
	client, err := dial(cfg)
	if err != nil {
		return nil, err
	}
	return &PubSub{client: client}, nil
}

func (r *PubSub) Publish(ctx context.Context, channel, message string) error {
	return r.client.Publish(ctx, channel, message).Err()
}

func (r *PubSub) Subscribe(ctx context.Context, channels ...string) (<-chan Message, func(), error) {
	sub := r.client.Subscribe(ctx, channels...)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, err
	}
	out := make(chan Message, 256)
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			out <- Message{Channel: msg.Channel, Payload: msg.Payload}
		}
	}()
	return out, func() { _ = sub.Close() }, nil
}

func (r *PubSub) Close() error { return r.client.Close() }
