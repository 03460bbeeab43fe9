// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/apex/log"
)

// Pair is the access/refresh credential pair issued by the token endpoints.
type Pair struct {
	Access  string `yaml:"accessToken" json:"access"`
	Refresh string `yaml:"refreshToken" json:"refresh"`
}

// Empty is true when neither token is present.
func (p Pair) Empty() bool {
	return p.Access == "" && p.Refresh == ""
}

// Store persists a single credential pair.
type Store interface {
	Load() (Pair, error)
	Save(Pair) error
	Clear() error
}

// ErrNotFound is returned by Store.Load when nothing has been saved.
var ErrNotFound = errors.New("no stored credentials")

// Session is the only reader and writer of the credential pair. Every read
// goes to the Store so concurrent writers are observed immediately; writes
// are last-write-wins.
type Session struct {
	mu    sync.Mutex
	store Store
}

// New returns a Session backed by store.
func New(store Store) *Session {
	return &Session{store: store}
}

// Tokens returns the currently stored pair. A missing pair is not an error.
func (s *Session) Tokens() Pair {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.store.Load()
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.WithError(err).Warn("failed to load credentials")
		}
		return Pair{}
	}
	return p
}

// AccessToken returns the stored access token or "".
func (s *Session) AccessToken() string {
	return s.Tokens().Access
}

// RefreshToken returns the stored refresh token or "".
func (s *Session) RefreshToken() string {
	return s.Tokens().Refresh
}

// LoggedIn reports whether an access token is stored.
func (s *Session) LoggedIn() bool {
	return s.AccessToken() != ""
}

// Set replaces both tokens at once.
func (s *Session) Set(p Pair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Save(p); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	log.Debug("credentials saved")
	return nil
}

// Clear erases both tokens.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	log.Debug("credentials cleared")
	return nil
}

// MemoryStore keeps the pair in process memory only.
type MemoryStore struct {
	mu   sync.Mutex
	pair *Pair
}

// NewMemoryStore returns a MemoryStore, optionally seeded with a pair.
func NewMemoryStore(seed ...Pair) *MemoryStore {
	m := &MemoryStore{}
	if len(seed) > 0 {
		p := seed[0]
		m.pair = &p
	}
	return m
}

func (m *MemoryStore) Load() (Pair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pair == nil {
		return Pair{}, ErrNotFound
	}
	return *m.pair, nil
}

func (m *MemoryStore) Save(p Pair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pair = &p
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pair = nil
	return nil
}
