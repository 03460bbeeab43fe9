// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"fmt"
	"sync"
	"time"
)

// DefaultTTL is the age at which every entry becomes stale.
const DefaultTTL = 5 * time.Minute

// LeaderboardKey is the fixed key used for the unfiltered leaderboard.
const LeaderboardKey = "leaderboard"

// Clock is the time source consulted for fetch timestamps and staleness.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Entry is a cached payload and the moment it was stored.
type Entry[T any] struct {
	Key       string
	Payload   T
	FetchedAt time.Time
}

// Cache maps a request-parameter key to the most recent payload fetched for
// it. A Cache belongs to exactly one view and is never shared.
type Cache[T any] struct {
	mu      sync.Mutex
	clock   Clock
	ttl     time.Duration
	entries map[string]Entry[T]
}

// Option customizes a Cache.
type Option func(*options)

type options struct {
	clock Clock
}

// WithClock injects the time source. Defaults to SystemClock.
func WithClock(c Clock) Option {
	return func(o *options) { o.clock = c }
}

// New returns an empty cache using DefaultTTL.
func New[T any](opts ...Option) *Cache[T] {
	o := options{clock: SystemClock{}}
	for _, opt := range opts {
		opt(&o)
	}
	return &Cache[T]{
		clock:   o.clock,
		ttl:     DefaultTTL,
		entries: make(map[string]Entry[T]),
	}
}

// Get returns the payload stored for key if it is younger than the TTL. It
// never touches the stored entry.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if c.clock.Now().Sub(e.FetchedAt) >= c.ttl {
		return zero, false
	}
	return e.Payload, true
}

// Put stores payload under key stamped with the current time, replacing any
// previous entry.
func (c *Cache[T]) Put(key string, payload T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = Entry[T]{
		Key:       key,
		Payload:   payload,
		FetchedAt: c.clock.Now(),
	}
}

// Peek returns the raw entry for key regardless of age.
func (c *Cache[T]) Peek(key string) (Entry[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	return e, ok
}

// Clear discards every entry.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]Entry[T])
}

// Len counts stored entries, stale ones included. Stale entries are only
// dropped by Clear or overwritten by Put.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// TTL reports the staleness threshold.
func (c *Cache[T]) TTL() time.Duration {
	return c.ttl
}

// ClassKey builds the composite key for queries parameterized by class level
// and letter. A nil level yields an empty level segment.
func ClassKey(level *int, letter string) string {
	l := ""
	if level != nil {
		l = fmt.Sprintf("%d", *level)
	}
	return l + "-" + letter
}
