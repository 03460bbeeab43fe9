// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// maxErrorBody bounds how much of a failed response is kept.
const maxErrorBody = 64 << 10

var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrNotFound      = errors.New("not found")
	ErrLoginRequired = errors.New("login required")
)

// APIError is a non-2xx response.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
	Body    []byte
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, msg)
}

// Is maps well-known statuses onto the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// newAPIError consumes and closes resp.Body.
func newAPIError(req *http.Request, resp *http.Response) *APIError {
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	e := &APIError{
		Method: req.Method,
		Path:   req.URL.Path,
		Status: resp.StatusCode,
		Body:   body,
	}
	if gjson.ValidBytes(body) {
		for _, field := range []string{"error", "message", "detail"} {
			if r := gjson.GetBytes(body, field); r.Exists() && r.String() != "" {
				e.Message = r.String()
				break
			}
		}
	} else if s := strings.TrimSpace(string(body)); s != "" && len(s) < 200 {
		e.Message = s
	}
	return e
}

// LoginRequiredError is returned when the pipeline gave up on
// authentication. Err is the failure that caused it: the original 401 when
// there was no refresh token, else the refresh failure.
type LoginRequiredError struct {
	Err error
}

func (e *LoginRequiredError) Error() string {
	return "login required: " + e.Err.Error()
}

func (e *LoginRequiredError) Is(target error) bool {
	return target == ErrLoginRequired
}

func (e *LoginRequiredError) Unwrap() error {
	return e.Err
}

// Friendly turns err into a one-line message for the terminal.
func Friendly(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrLoginRequired):
		return "session expired or missing; run 'lessonctl login'"
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	}
	return err.Error()
}
