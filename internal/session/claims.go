// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo is what can be learned from an access token without the
// server's signing key.
type TokenInfo struct {
	Subject   string
	UserID    int64
	Role      string
	Type      string
	ExpiresAt time.Time
	// Opaque is true when the token is not a JWT.
	Opaque bool
}

// Expired reports whether the token expiry is known and before now.
func (ti TokenInfo) Expired(now time.Time) bool {
	return !ti.ExpiresAt.IsZero() && !now.Before(ti.ExpiresAt)
}

// Inspect decodes token claims without verifying the signature. It is for
// display only; the server remains the authority on validity.
func Inspect(token string) TokenInfo {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenInfo{Opaque: true}
	}

	var ti TokenInfo
	if sub, err := claims.GetSubject(); err == nil {
		ti.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		ti.ExpiresAt = exp.Time
	}
	if id, ok := claims["user_id"].(float64); ok {
		ti.UserID = int64(id)
	}
	ti.Role, _ = claims["role"].(string)
	ti.Type, _ = claims["type"].(string)
	return ti
}
