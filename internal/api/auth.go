// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/apex/log"

	"github.com/staranto/lessonctl/internal/session"
)

// Login exchanges credentials for a token pair and stores it in the session.
// A 401 here means bad credentials, so it never triggers a refresh.
func (c *Client) Login(ctx context.Context, username, password string) (session.Pair, error) {
	var out tokenPair
	in := map[string]string{"username": username, "password": password}
	if err := c.post(Anonymous(ctx), "/token", in, &out); err != nil {
		return session.Pair{}, fmt.Errorf("login: %w", err)
	}
	if out.Access == "" || out.Refresh == "" {
		return session.Pair{}, errors.New("login: server returned an incomplete token pair")
	}

	pair := session.Pair{Access: out.Access, Refresh: out.Refresh}
	if err := c.Session.Set(pair); err != nil {
		return session.Pair{}, fmt.Errorf("login: failed to store credentials: %w", err)
	}
	log.Debugf("logged in as %s", username)
	return pair, nil
}

// Register creates a student account. It does not log in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (RegisterResponse, error) {
	var out RegisterResponse
	if err := c.post(Anonymous(ctx), "/users/register", req, &out); err != nil {
		return RegisterResponse{}, fmt.Errorf("register: %w", err)
	}
	return out, nil
}

// Logout forgets the stored credentials. The server keeps no session state,
// so nothing goes over the wire.
func (c *Client) Logout() error {
	return c.Session.Clear()
}

// Me returns the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (User, error) {
	var out User
	err := c.get(ctx, "/users/me", nil, &out)
	return out, err
}
