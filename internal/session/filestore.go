// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Dir resolves the base state directory.
// Precedence:
//  1. LESSONCTL_STATE_DIR, if set and non-empty
//  2. os.UserConfigDir()/lessonctl
//
// Returns ("", false) if a base cannot be resolved.
func Dir() (string, bool) {
	if c, ok := os.LookupEnv("LESSONCTL_STATE_DIR"); ok && c != "" {
		return c, true
	}
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, "lessonctl"), true
	}
	return "", false
}

// Origin reduces a base URL to scheme://host[:port], the scope credentials
// are stored under. Paths are ignored so /api and /api/v2 share tokens.
func Origin(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid base URL %q: scheme and host are required", baseURL)
	}
	return strings.ToLower(u.Scheme + "://" + u.Host), nil
}

// FileStore keeps one YAML credentials document per API origin beneath the
// state directory.
type FileStore struct {
	Origin string
	Path   string
}

// NewFileStore returns the FileStore for the origin of baseURL.
func NewFileStore(baseURL string) (*FileStore, error) {
	origin, err := Origin(baseURL)
	if err != nil {
		return nil, err
	}
	base, ok := Dir()
	if !ok {
		return nil, errors.New("failed to resolve state directory")
	}
	return &FileStore{
		Origin: origin,
		Path:   filepath.Join(base, "credentials", encodeKey(origin)+".yaml"),
	}, nil
}

type credentialsDoc struct {
	Origin       string `yaml:"origin"`
	AccessToken  string `yaml:"accessToken"`
	RefreshToken string `yaml:"refreshToken"`
}

func (f *FileStore) Load() (Pair, error) {
	b, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Pair{}, ErrNotFound
		}
		return Pair{}, fmt.Errorf("failed to read credentials: %w", err)
	}

	var doc credentialsDoc
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return Pair{}, fmt.Errorf("failed to parse credentials %s: %w", f.Path, err)
	}
	if doc.AccessToken == "" && doc.RefreshToken == "" {
		return Pair{}, ErrNotFound
	}
	return Pair{Access: doc.AccessToken, Refresh: doc.RefreshToken}, nil
}

// Save writes the document to a temp file and renames it into place so a
// reader never sees one token without the other.
func (f *FileStore) Save(p Pair) error {
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o700); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	b, err := yaml.Marshal(credentialsDoc{
		Origin:       f.Origin,
		AccessToken:  p.Access,
		RefreshToken: p.Refresh,
	})
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil { //nolint:mnd
		tmp.Close()
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	return nil
}

func (f *FileStore) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}
	return nil
}

// encodeKey hashes k with MD5 and returns the hex string.
func encodeKey(k string) string {
	h := md5.New()
	_, _ = h.Write([]byte(k))
	return hex.EncodeToString(h.Sum(nil))
}
