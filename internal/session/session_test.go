// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_MemoryLifecycle(t *testing.T) {
	s := New(NewMemoryStore())

	assert.False(t, s.LoggedIn())
	assert.Equal(t, Pair{}, s.Tokens())

	require.NoError(t, s.Set(Pair{Access: "a1", Refresh: "r1"}))
	assert.True(t, s.LoggedIn())
	assert.Equal(t, "a1", s.AccessToken())
	assert.Equal(t, "r1", s.RefreshToken())

	require.NoError(t, s.Set(Pair{Access: "a2", Refresh: "r2"}))
	assert.Equal(t, Pair{Access: "a2", Refresh: "r2"}, s.Tokens())

	require.NoError(t, s.Clear())
	assert.False(t, s.LoggedIn())
	assert.Empty(t, s.RefreshToken())
}

func TestSession_ReadsLatestValue(t *testing.T) {
	store := NewMemoryStore(Pair{Access: "old", Refresh: "r"})
	s := New(store)
	assert.Equal(t, "old", s.AccessToken())

	// A write that bypasses this Session is still observed on the next read.
	require.NoError(t, store.Save(Pair{Access: "new", Refresh: "r"}))
	assert.Equal(t, "new", s.AccessToken())
}

func TestSession_ConcurrentSetIsLastWriteWins(t *testing.T) {
	s := New(NewMemoryStore())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Set(Pair{Access: "a", Refresh: "r"})
		}(i)
	}
	wg.Wait()

	// Whatever won, both halves belong to the same write.
	assert.Equal(t, Pair{Access: "a", Refresh: "r"}, s.Tokens())
}

func TestOrigin(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "http://localhost:8080/api", want: "http://localhost:8080"},
		{in: "HTTPS://Lessons.Example.com/api/v2", want: "https://lessons.example.com"},
		{in: "lessons.example.com", wantErr: true},
		{in: "://bad", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Origin(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	t.Setenv("LESSONCTL_STATE_DIR", t.TempDir())

	fs, err := NewFileStore("http://localhost:8080/api")
	require.NoError(t, err)

	_, err = fs.Load()
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, fs.Save(Pair{Access: "acc", Refresh: "ref"}))

	info, err := os.Stat(fs.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := fs.Load()
	require.NoError(t, err)
	assert.Equal(t, Pair{Access: "acc", Refresh: "ref"}, got)

	require.NoError(t, fs.Clear())
	_, err = fs.Load()
	assert.ErrorIs(t, err, ErrNotFound)

	// Clearing twice is fine.
	assert.NoError(t, fs.Clear())
}

func TestFileStore_OriginScoped(t *testing.T) {
	t.Setenv("LESSONCTL_STATE_DIR", t.TempDir())

	a, err := NewFileStore("http://localhost:8080/api")
	require.NoError(t, err)
	b, err := NewFileStore("http://localhost:8080/other")
	require.NoError(t, err)
	c, err := NewFileStore("https://lessons.example.com/api")
	require.NoError(t, err)

	assert.Equal(t, a.Path, b.Path, "same origin shares credentials")
	assert.NotEqual(t, a.Path, c.Path)

	require.NoError(t, a.Save(Pair{Access: "x", Refresh: "y"}))
	_, err = c.Load()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStore_Corrupt(t *testing.T) {
	t.Setenv("LESSONCTL_STATE_DIR", t.TempDir())

	fs, err := NewFileStore("http://localhost:8080/api")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(fs.Path), 0o700))
	require.NoError(t, os.WriteFile(fs.Path, []byte("accessToken: [unterminated"), 0o600))

	_, err = fs.Load()
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	// The session treats an unreadable store as logged out.
	assert.False(t, New(fs).LoggedIn())
}

func TestInspect(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 42,
		"role":    "teacher",
		"type":    "access",
		"exp":     exp.Unix(),
	})
	signed, err := tok.SignedString([]byte("not-our-secret"))
	require.NoError(t, err)

	ti := Inspect(signed)
	assert.False(t, ti.Opaque)
	assert.Equal(t, int64(42), ti.UserID)
	assert.Equal(t, "teacher", ti.Role)
	assert.Equal(t, "access", ti.Type)
	assert.True(t, exp.Equal(ti.ExpiresAt))
	assert.False(t, ti.Expired(time.Now()))
	assert.True(t, ti.Expired(exp.Add(time.Second)))
}

func TestInspect_Opaque(t *testing.T) {
	ti := Inspect("not-a-jwt")
	assert.True(t, ti.Opaque)
	assert.False(t, ti.Expired(time.Now()))
}
