// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"

	"github.com/staranto/lessonctl/internal/session"
)

// Doer executes one HTTP request.
type Doer func(*http.Request) (*http.Response, error)

// Middleware decorates a Doer.
type Middleware func(Doer) Doer

// Chain wraps base with mws. The first middleware is the outermost, so it
// sees the request first and the response last.
func Chain(base Doer, mws ...Middleware) Doer {
	d := base
	for i := len(mws) - 1; i >= 0; i-- {
		d = mws[i](d)
	}
	return d
}

// FromClient adapts an *http.Client to a Doer.
func FromClient(hc *http.Client) Doer {
	return hc.Do
}

type ctxKey int

const (
	retryKey ctxKey = iota
	anonymousKey
)

// retries returns how many times the request in ctx has already been
// replayed after a refresh.
func retries(ctx context.Context) int {
	n, _ := ctx.Value(retryKey).(int)
	return n
}

func withRetry(ctx context.Context) context.Context {
	return context.WithValue(ctx, retryKey, retries(ctx)+1)
}

// Anonymous marks requests that must go out without credentials and must not
// trigger a refresh, such as login and registration.
func Anonymous(ctx context.Context) context.Context {
	return context.WithValue(ctx, anonymousKey, true)
}

func isAnonymous(ctx context.Context) bool {
	b, _ := ctx.Value(anonymousKey).(bool)
	return b
}

// Bearer attaches the session's current access token. It is a no-op when no
// token is stored.
func Bearer(s *session.Session) Middleware {
	return func(next Doer) Doer {
		return func(req *http.Request) (*http.Response, error) {
			if !isAnonymous(req.Context()) {
				if token := s.AccessToken(); token != "" {
					req.Header.Set("Authorization", "Bearer "+token)
				}
			}
			return next(req)
		}
	}
}

// Refresher exchanges a refresh token for a new credential pair.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (session.Pair, error)
}

// RefresherFunc adapts a function to Refresher.
type RefresherFunc func(ctx context.Context, refreshToken string) (session.Pair, error)

func (f RefresherFunc) Refresh(ctx context.Context, refreshToken string) (session.Pair, error) {
	return f(ctx, refreshToken)
}

// Refresh recovers from a 401 by refreshing the credential pair and
// replaying the request once. A replayed request is never refreshed again,
// whatever its status. When the pair cannot be refreshed the session is
// cleared, loginRequired is called and the caller gets a
// *LoginRequiredError.
func Refresh(s *session.Session, r Refresher, loginRequired func(error)) Middleware {
	if loginRequired == nil {
		loginRequired = func(error) {}
	}

	giveUp := func(cause error) error {
		if err := s.Clear(); err != nil {
			log.WithError(err).Warn("failed to clear credentials")
		}
		err := &LoginRequiredError{Err: cause}
		loginRequired(err)
		return err
	}

	return func(next Doer) Doer {
		return func(req *http.Request) (*http.Response, error) {
			resp, err := next(req)
			if err != nil || resp.StatusCode != http.StatusUnauthorized {
				return resp, err
			}

			ctx := req.Context()
			if isAnonymous(ctx) || retries(ctx) > 0 {
				return resp, nil
			}

			refreshToken := s.RefreshToken()
			if refreshToken == "" {
				log.Debugf("401 on %s with no refresh token", req.URL.Path)
				return nil, giveUp(newAPIError(req, resp))
			}

			// The original response is no longer needed past this point.
			drain(resp)

			pair, err := r.Refresh(ctx, refreshToken)
			if err != nil {
				log.WithError(err).Warn("token refresh failed")
				return nil, giveUp(err)
			}
			if err := s.Set(pair); err != nil {
				return nil, giveUp(err)
			}
			log.Debugf("token refreshed, replaying %s %s", req.Method, req.URL.Path)

			retry, err := replay(req)
			if err != nil {
				return nil, err
			}
			retry.Header.Set("Authorization", "Bearer "+pair.Access)
			return next(retry)
		}
	}
}

// replay clones req for a second attempt, restoring the body and bumping the
// retry counter.
func replay(req *http.Request) (*http.Request, error) {
	retry := req.Clone(withRetry(req.Context()))
	if req.Body != nil && req.Body != http.NoBody {
		if req.GetBody == nil {
			return nil, fmt.Errorf("cannot replay %s %s: body is not rewindable", req.Method, req.URL.Path)
		}
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("cannot replay %s %s: %w", req.Method, req.URL.Path, err)
		}
		retry.Body = body
	}
	return retry, nil
}

// RequestID stamps each outbound request with a fresh X-Request-ID unless the
// caller already set one. A replay keeps the original ID.
func RequestID() Middleware {
	return func(next Doer) Doer {
		return func(req *http.Request) (*http.Response, error) {
			if req.Header.Get("X-Request-ID") == "" {
				req.Header.Set("X-Request-ID", uuid.NewString())
			}
			return next(req)
		}
	}
}

// Logging records each exchange at debug level.
func Logging() Middleware {
	return func(next Doer) Doer {
		return func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next(req)
			entry := log.WithFields(log.Fields{
				"method":   req.Method,
				"path":     req.URL.Path,
				"duration": time.Since(start).Round(time.Millisecond),
			})
			switch {
			case err != nil:
				entry.WithError(err).Debug("request failed")
			default:
				entry.WithField("status", resp.StatusCode).Debug("request done")
			}
			return resp, err
		}
	}
}

func drain(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	_ = resp.Body.Close()
}
