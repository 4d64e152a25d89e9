// Package local is the in-process cache backend.
package local

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned when a key does not exist or has expired.
var ErrNotFound = errors.New("cache: key not found")

type Config struct {
	GCInterval time.Duration
}

type entry struct {
	value    string
	expireAt time.Time // zero means no expiry
}

func (e entry) expired(now time.Time) bool {
	return !e.expireAt.IsZero() && now.After(e.expireAt)
}

// KV is a mutex-guarded string map with per-key TTL and a background sweeper.
type KV struct {
	mu    sync.RWMutex
	items map[string]entry
	now   func() time.Time
	stop  chan struct{}
	once  sync.Once
}

// NewCache starts a KV whose sweeper runs every cfg.GCInterval (30s default).
func NewCache(cfg Config) *KV {
	interval := cfg.GCInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	c := &KV{items: make(map[string]entry), now: time.Now, stop: make(chan struct{})}
	go c.sweep(interval)
	return c
}

// Close stops the sweeper. Safe to call more than once.
func (c *KV) Close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *KV) sweep(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			c.purge()
		case <-c.stop:
			return
		}
	}
}

func (c *KV) purge() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k, e := range c.items {
		if e.expired(now) {
			delete(c.items, k)
			n++
		}
	}
	return n
}

func (c *KV) lookup(key string) (entry, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if !ok || e.expired(c.now()) {
		return entry{}, false
	}
	return e, true
}

func (c *KV) Get(_ context.Context, key string) (string, error) {
	e, ok := c.lookup(key)
	if !ok {
		return "", ErrNotFound
	}
	return e.value, nil
}

func (c *KV) Set(_ context.Context, key, value string, ttl time.Duration) error {
	e := entry{value: value}
	if ttl > 0 {
		e.expireAt = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.items[key] = e
	c.mu.Unlock()
	return nil
}

func (c *KV) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	for _, k := range keys {
		delete(c.items, k)
	}
	c.mu.Unlock()
	return nil
}

func (c *KV) Exists(_ context.Context, key string) (bool, error) {
	_, ok := c.lookup(key)
	return ok, nil
}

// Len counts live keys.
func (c *KV) Len() int {
	now := c.now()
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, e := range c.items {
		if !e.expired(now) {
			n++
		}
	}
	return n
}
