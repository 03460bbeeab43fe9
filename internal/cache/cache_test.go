// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var epoch = time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)

func TestPutGet_RoundTrip(t *testing.T) {
	c := New[[]string](WithClock(NewFakeClock(epoch)))

	c.Put("7-A", []string{"ann", "bob"})

	got, ok := c.Get("7-A")
	assert.True(t, ok)
	assert.Equal(t, []string{"ann", "bob"}, got)
}

func TestGet_Miss(t *testing.T) {
	c := New[int](WithClock(NewFakeClock(epoch)))

	got, ok := c.Get("nope")
	assert.False(t, ok)
	assert.Zero(t, got)
}

func TestGet_ExpiresAtTTL(t *testing.T) {
	clock := NewFakeClock(epoch)
	c := New[string](WithClock(clock))
	c.Put(LeaderboardKey, "payload")

	clock.Advance(DefaultTTL - time.Nanosecond)
	_, ok := c.Get(LeaderboardKey)
	assert.True(t, ok, "one tick before TTL is still fresh")

	// now - fetchedAt >= TTL is stale, so exactly TTL is a miss.
	clock.Advance(time.Nanosecond)
	_, ok = c.Get(LeaderboardKey)
	assert.False(t, ok)

	clock.Advance(time.Hour)
	_, ok = c.Get(LeaderboardKey)
	assert.False(t, ok)
}

func TestGet_DoesNotMutate(t *testing.T) {
	clock := NewFakeClock(epoch)
	c := New[string](WithClock(clock))
	c.Put("k", "v")
	before, _ := c.Peek("k")

	for i := 0; i < 5; i++ {
		clock.Advance(time.Minute)
		c.Get("k")
	}

	after, _ := c.Peek("k")
	assert.Equal(t, before, after)
	assert.Equal(t, epoch, after.FetchedAt)
}

func TestPut_OverwriteRefreshesTimestamp(t *testing.T) {
	clock := NewFakeClock(epoch)
	c := New[string](WithClock(clock))
	c.Put("k", "old")

	clock.Advance(4 * time.Minute)
	c.Put("k", "new")

	clock.Advance(4 * time.Minute)
	got, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "new", got)
	assert.Equal(t, 1, c.Len())
}

func TestStaleEntriesAccumulateUntilClear(t *testing.T) {
	clock := NewFakeClock(epoch)
	c := New[int](WithClock(clock))
	c.Put("a", 1)
	c.Put("b", 2)

	clock.Advance(time.Hour)
	assert.Equal(t, 2, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
	_, ok := c.Peek("a")
	assert.False(t, ok)
}

func TestInstancesAreIndependent(t *testing.T) {
	clock := NewFakeClock(epoch)
	a := New[int](WithClock(clock))
	b := New[int](WithClock(clock))

	a.Put(LeaderboardKey, 1)

	_, ok := b.Get(LeaderboardKey)
	assert.False(t, ok)
}

func TestClassKey(t *testing.T) {
	seven := 7
	zero := 0

	tests := []struct {
		name   string
		level  *int
		letter string
		want   string
	}{
		{name: "level and letter", level: &seven, letter: "A", want: "7-A"},
		{name: "level only", level: &seven, want: "7-"},
		{name: "zero level is not absent", level: &zero, want: "0-"},
		{name: "nothing", want: "-"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassKey(tt.level, tt.letter))
		})
	}
}

func TestDefaultsToSystemClock(t *testing.T) {
	c := New[int]()
	assert.Equal(t, DefaultTTL, c.TTL())
	c.Put("k", 1)
	_, ok := c.Get("k")
	assert.True(t, ok)
}
