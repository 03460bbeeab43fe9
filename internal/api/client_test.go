// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/lessonctl/internal/session"
)

// fakeServer is a minimal lessons API. It accepts one access token at a time
// and rotates the pair on every successful refresh.
type fakeServer struct {
	mu      sync.Mutex
	access  string
	refresh string
	rotate  int
	calls   map[string]int
	auth    map[string][]string

	// alwaysUnauthorized makes /users/me reject every token.
	alwaysUnauthorized bool
}

func newFakeServer(t *testing.T) (*fakeServer, *httptest.Server) {
	t.Helper()
	fs := &fakeServer{
		access:  "a1",
		refresh: "r1",
		calls:   map[string]int{},
		auth:    map[string][]string{},
	}
	srv := httptest.NewServer(http.HandlerFunc(fs.serve))
	t.Cleanup(srv.Close)
	return fs, srv
}

func (fs *fakeServer) count(path string) int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.calls[path]
}

func (fs *fakeServer) authHeaders(path string) []string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return append([]string(nil), fs.auth[path]...)
}

// expire invalidates the current access token without touching the refresh
// token, as the passage of time would.
func (fs *fakeServer) expire() {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.access = "expired-" + fs.access
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (fs *fakeServer) serve(w http.ResponseWriter, r *http.Request) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	path := r.URL.Path
	fs.calls[path]++
	fs.auth[path] = append(fs.auth[path], r.Header.Get("Authorization"))

	switch path {
	case "/api/token":
		var in struct{ Username, Password string }
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Username != "ann" || in.Password != "Abc12345!" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"access": fs.access, "refresh": fs.refresh})

	case "/api/token/refresh":
		var in struct{ Refresh string }
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Refresh == "" || in.Refresh != fs.refresh {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid refresh token"})
			return
		}
		fs.rotate++
		fs.access = "a" + string(rune('1'+fs.rotate))
		fs.refresh = "r" + string(rune('1'+fs.rotate))
		writeJSON(w, http.StatusOK, map[string]string{"access": fs.access, "refresh": fs.refresh})

	case "/api/users/me":
		if fs.alwaysUnauthorized || r.Header.Get("Authorization") != "Bearer "+fs.access {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "token expired"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"id": 7, "username": "ann", "first_name": "Ann", "last_name": "Lee",
			"role": "student", "level": 7, "level_letter": "А", "class_display": "7-А класс",
		})

	case "/api/analytics/class":
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "teachers only"})

	case "/api/export/stats":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", "attachment; filename=students_stats_20250301.csv")
		_, _ = w.Write([]byte("ID,Name\n1,Ann\n"))

	case "/api/games/best":
		writeJSON(w, http.StatusOK, nil)

	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "no route"})
	}
}

func newTestClient(t *testing.T, srv *httptest.Server, s *session.Session, opts ...Option) *Client {
	t.Helper()
	c, err := New(srv.URL+"/api", s, opts...)
	require.NoError(t, err)
	return c
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := New("localhost:8080", session.New(session.NewMemoryStore()))
	assert.Error(t, err)
}

func TestLoginThenMe(t *testing.T) {
	fs, srv := newFakeServer(t)
	s := session.New(session.NewMemoryStore())
	c := newTestClient(t, srv, s)

	pair, err := c.Login(context.Background(), "ann", "Abc12345!")
	require.NoError(t, err)
	assert.Equal(t, session.Pair{Access: "a1", Refresh: "r1"}, pair)
	assert.Equal(t, pair, s.Tokens())
	assert.Empty(t, fs.authHeaders("/api/token")[0], "login carries no credentials")

	me, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ann", me.Username)
	assert.Equal(t, "Ann Lee", me.FullName())
	require.NotNil(t, me.Level)
	assert.Equal(t, 7, *me.Level)
	assert.Equal(t, []string{"Bearer a1"}, fs.authHeaders("/api/users/me"))
}

func TestLogin_BadCredentialsDoNotRefresh(t *testing.T) {
	fs, srv := newFakeServer(t)
	s := session.New(session.NewMemoryStore(session.Pair{Access: "old", Refresh: "r1"}))
	c := newTestClient(t, srv, s)

	_, err := c.Login(context.Background(), "ann", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.NotErrorIs(t, err, ErrLoginRequired)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "invalid credentials", apiErr.Message)
	assert.Zero(t, fs.count("/api/token/refresh"))
	assert.Equal(t, "old", s.AccessToken(), "a failed login leaves the stored pair alone")
}

func TestExpiredAccessIsRefreshedOnce(t *testing.T) {
	fs, srv := newFakeServer(t)
	s := session.New(session.NewMemoryStore())
	var signalled int
	c := newTestClient(t, srv, s, WithLoginRequired(func(error) { signalled++ }))

	_, err := c.Login(context.Background(), "ann", "Abc12345!")
	require.NoError(t, err)
	fs.expire()

	me, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ann", me.Username)

	assert.Equal(t, 1, fs.count("/api/token/refresh"))
	assert.Equal(t, 2, fs.count("/api/users/me"))
	assert.Equal(t, []string{"Bearer a1", "Bearer a2"}, fs.authHeaders("/api/users/me"))
	assert.Equal(t, []string{""}, fs.authHeaders("/api/token/refresh"), "refresh bypasses Bearer")
	assert.Equal(t, session.Pair{Access: "a2", Refresh: "r2"}, s.Tokens())
	assert.Zero(t, signalled)
}

func TestRejectedRefreshClearsAndSignals(t *testing.T) {
	fs, srv := newFakeServer(t)
	s := session.New(session.NewMemoryStore(session.Pair{Access: "stale", Refresh: "revoked"}))
	var signalled []error
	c := newTestClient(t, srv, s, WithLoginRequired(func(err error) { signalled = append(signalled, err) }))

	_, err := c.Me(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLoginRequired)

	// The caller sees the refresh failure, not the original 401 on /users/me.
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "/api/token/refresh", apiErr.Path)
	assert.Equal(t, "invalid refresh token", apiErr.Message)

	assert.False(t, s.LoggedIn())
	assert.Len(t, signalled, 1)
	assert.Equal(t, 1, fs.count("/api/token/refresh"))
	assert.Equal(t, 1, fs.count("/api/users/me"), "no retry after a failed refresh")
}

func TestUnauthorizedWithoutRefreshToken(t *testing.T) {
	fs, srv := newFakeServer(t)
	s := session.New(session.NewMemoryStore(session.Pair{Access: "stale"}))
	var signalled int
	c := newTestClient(t, srv, s, WithLoginRequired(func(error) { signalled++ }))

	_, err := c.Me(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLoginRequired)
	assert.ErrorIs(t, err, ErrUnauthorized, "the original failure is propagated")

	assert.Zero(t, fs.count("/api/token/refresh"))
	assert.Equal(t, 1, fs.count("/api/users/me"))
	assert.Equal(t, session.Pair{}, s.Tokens())
	assert.Equal(t, 1, signalled)
}

func TestRetryUnauthorizedIsFinal(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.alwaysUnauthorized = true
	s := session.New(session.NewMemoryStore(session.Pair{Access: "a1", Refresh: "r1"}))
	c := newTestClient(t, srv, s)

	_, err := c.Me(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.NotErrorIs(t, err, ErrLoginRequired)

	assert.Equal(t, 1, fs.count("/api/token/refresh"))
	assert.Equal(t, 2, fs.count("/api/users/me"))
	assert.Equal(t, "a2", s.AccessToken(), "the refreshed pair is kept")
}

func TestNonAuthErrorsPassThrough(t *testing.T) {
	fs, srv := newFakeServer(t)
	s := session.New(session.NewMemoryStore(session.Pair{Access: "a1", Refresh: "r1"}))
	c := newTestClient(t, srv, s)

	_, err := c.ClassAnalytics(context.Background(), Class(7, "А"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, "teachers only", Friendly(err))

	_, err = c.Lessons(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "no route", Friendly(err))

	assert.Zero(t, fs.count("/api/token/refresh"))
	assert.True(t, s.LoggedIn())
}

func TestClassAnalytics_RequiresLevel(t *testing.T) {
	fs, srv := newFakeServer(t)
	c := newTestClient(t, srv, session.New(session.NewMemoryStore()))

	_, err := c.ClassAnalytics(context.Background(), ClassFilter{Letter: "А"})
	assert.Error(t, err)
	assert.Zero(t, fs.count("/api/analytics/class"))
}

func TestExportStats(t *testing.T) {
	_, srv := newFakeServer(t)
	s := session.New(session.NewMemoryStore(session.Pair{Access: "a1", Refresh: "r1"}))
	day := time.Date(2025, 3, 1, 23, 30, 0, 0, time.UTC)
	c := newTestClient(t, srv, s, WithNow(func() time.Time { return day }))

	exp, err := c.ExportStats(context.Background(), FormatCSV, Class(7, ""))
	require.NoError(t, err)
	assert.Equal(t, "students_stats_2025-03-01.csv", exp.Filename)
	assert.Equal(t, "students_stats_20250301.csv", exp.Suggested)
	assert.Equal(t, "text/csv; charset=utf-8", exp.ContentType)
	assert.Equal(t, "ID,Name\n1,Ann\n", string(exp.Data))

	_, err = c.ExportStats(context.Background(), "pdf", ClassFilter{})
	assert.Error(t, err)
}

func TestExportFilename(t *testing.T) {
	day := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "students_stats_2025-12-31.csv", ExportFilename(day, FormatCSV))
	assert.Equal(t, "students_stats_2025-12-31.xlsx", ExportFilename(day, FormatExcel))
}

func TestBestGameResult_None(t *testing.T) {
	_, srv := newFakeServer(t)
	c := newTestClient(t, srv, session.New(session.NewMemoryStore(session.Pair{Access: "a1", Refresh: "r1"})))

	best, err := c.BestGameResult(context.Background(), GameQuizShow, 3)
	require.NoError(t, err)
	assert.Nil(t, best)
}

func TestClassFilter_Values(t *testing.T) {
	zero := 0
	tests := []struct {
		name string
		f    ClassFilter
		want string
	}{
		{name: "empty", f: ClassFilter{}, want: ""},
		{name: "level only", f: Class(7, ""), want: "level=7"},
		{name: "level and letter", f: Class(7, "Б"), want: "level=7&level_letter=%D0%91"},
		{name: "letter only", f: ClassFilter{Letter: "А"}, want: "level_letter=%D0%90"},
		{name: "zero level is kept", f: ClassFilter{Level: &zero}, want: "level=0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.f.Values().Encode())
		})
	}
}

func TestAPIError_Message(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "error field", body: `{"error":"bad level"}`, want: "bad level"},
		{name: "message field", body: `{"message":"gone"}`, want: "gone"},
		{name: "error wins", body: `{"message":"m","error":"e"}`, want: "e"},
		{name: "plain text", body: "upstream down", want: "upstream down"},
		{name: "empty", body: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := newTestClient(t, srv, session.New(session.NewMemoryStore()))
			_, err := c.Me(context.Background())

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, http.StatusBadRequest, apiErr.Status)
			assert.Equal(t, tt.want, apiErr.Message)
			assert.Contains(t, apiErr.Error(), "GET /api/users/me: 400")
		})
	}
}
