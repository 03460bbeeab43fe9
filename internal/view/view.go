// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package view binds a fetch to a per-view cache and lifetime. A View is
// opened when a screen or command starts and closed when it goes away; after
// Close nothing it started can write back.
package view

import (
	"context"
	"errors"
	"sync"

	"github.com/apex/log"

	"github.com/staranto/lessonctl/internal/cache"
)

// ErrClosed is returned by a View that has been torn down, including to
// fetches that were in flight when Close ran.
var ErrClosed = errors.New("view closed")

// Fetch loads one payload. It must honour ctx.
type Fetch[T any] func(ctx context.Context) (T, error)

// View owns one cache instance. Views never share caches, so two views over
// the same resource each fetch it.
type View[T any] struct {
	Name string

	cache  *cache.Cache[T]
	life   context.Context
	cancel context.CancelFunc

	// mu orders cache writes against Close.
	mu     sync.Mutex
	closed bool
}

// New opens a view. opts configure its cache, e.g. a fake clock in tests.
func New[T any](name string, opts ...cache.Option) *View[T] {
	life, cancel := context.WithCancel(context.Background())
	return &View[T]{
		Name:   name,
		cache:  cache.New[T](opts...),
		life:   life,
		cancel: cancel,
	}
}

// Load returns the cached payload for key while it is fresh, else runs fetch
// and caches its result. Errors are not cached.
func (v *View[T]) Load(ctx context.Context, key string, fetch Fetch[T]) (T, error) {
	var zero T
	if v.isClosed() {
		return zero, ErrClosed
	}
	if payload, ok := v.cache.Get(key); ok {
		log.Debugf("%s: cache hit %s", v.Name, key)
		return payload, nil
	}
	return v.fetch(ctx, key, fetch)
}

// Reload skips the cache lookup but still stores the result.
func (v *View[T]) Reload(ctx context.Context, key string, fetch Fetch[T]) (T, error) {
	if v.isClosed() {
		var zero T
		return zero, ErrClosed
	}
	return v.fetch(ctx, key, fetch)
}

func (v *View[T]) fetch(ctx context.Context, key string, fetch Fetch[T]) (T, error) {
	var zero T
	log.Debugf("%s: fetching %s", v.Name, key)

	fctx, cancel := context.WithCancel(v.life)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	payload, err := fetch(fctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		log.Debugf("%s: discarding %s, view closed", v.Name, key)
		return zero, ErrClosed
	}
	if err != nil {
		return zero, err
	}
	v.cache.Put(key, payload)
	return payload, nil
}

// Cached reports a fresh entry without fetching.
func (v *View[T]) Cached(key string) (T, bool) {
	if v.isClosed() {
		var zero T
		return zero, false
	}
	return v.cache.Get(key)
}

// Len is the number of entries held, fresh or not.
func (v *View[T]) Len() int {
	return v.cache.Len()
}

// Close cancels in-flight fetches and drops every entry. It is idempotent.
func (v *View[T]) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.closed = true
	v.cancel()
	v.cache.Clear()
}

func (v *View[T]) isClosed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}
