// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid input")

// Reasons reported by the validators.
const (
	ReasonMinLength = "minimum length"
	ReasonMaxLength = "maximum length"
	ReasonCharset   = "allowed characters"
	ReasonUpper     = "uppercase letter"
	ReasonLower     = "lowercase letter"
	ReasonDigit     = "digit"
	ReasonSpecial   = "special character"
	ReasonFormat    = "format"
	ReasonUnknown   = "unknown value"
)

const (
	UsernameMin = 3
	UsernameMax = 30
	PasswordMin = 8
	PasswordMax = 128

	// SpecialChars is the fixed set a password must draw at least one
	// character from.
	SpecialChars = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	upperRegex    = regexp.MustCompile(`[A-ZА-Я]`)
	lowerRegex    = regexp.MustCompile(`[a-zа-я]`)
	digitRegex    = regexp.MustCompile(`\d`)
)

// Result is the outcome of validating one field. Reason is empty when Valid.
type Result struct {
	Field   string
	Valid   bool
	Reason  string
	Message string
}

// Err returns nil for a valid result, otherwise an error wrapping ErrInvalid.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return fmt.Errorf("%s: %s: %w", r.Field, r.Message, ErrInvalid)
}

func ok(field string) Result {
	return Result{Field: field, Valid: true}
}

func fail(field, reason, message string) Result {
	return Result{Field: field, Reason: reason, Message: message}
}

// ValidateUsername checks the trimmed username is 3-30 characters of letters,
// digits, underscores and hyphens.
func ValidateUsername(username string) Result {
	const field = "username"
	trimmed := strings.TrimSpace(username)
	n := utf8.RuneCountInString(trimmed)

	if n < UsernameMin {
		return fail(field, ReasonMinLength, fmt.Sprintf("must be at least %d characters", UsernameMin))
	}
	if n > UsernameMax {
		return fail(field, ReasonMaxLength, fmt.Sprintf("must be at most %d characters", UsernameMax))
	}
	if !usernameRegex.MatchString(trimmed) {
		return fail(field, ReasonCharset, "may only contain letters, digits, underscores and hyphens")
	}
	return ok(field)
}

// ValidatePassword checks length first, then character classes in the order
// upper, lower, digit, special. The first failing rule is reported.
func ValidatePassword(password string) Result {
	const field = "password"
	n := utf8.RuneCountInString(password)

	switch {
	case n < PasswordMin:
		return fail(field, ReasonMinLength, fmt.Sprintf("must be at least %d characters", PasswordMin))
	case n > PasswordMax:
		return fail(field, ReasonMaxLength, fmt.Sprintf("must be at most %d characters", PasswordMax))
	case !upperRegex.MatchString(password):
		return fail(field, ReasonUpper, "must contain at least one uppercase letter")
	case !lowerRegex.MatchString(password):
		return fail(field, ReasonLower, "must contain at least one lowercase letter")
	case !digitRegex.MatchString(password):
		return fail(field, ReasonDigit, "must contain at least one digit")
	case !strings.ContainsAny(password, SpecialChars):
		return fail(field, ReasonSpecial, "must contain at least one special character ("+SpecialChars+")")
	}
	return ok(field)
}

// ValidateEmail accepts the empty string since email is optional.
func ValidateEmail(email string) Result {
	const field = "email"
	if email == "" {
		return ok(field)
	}
	if !emailRegex.MatchString(email) {
		return fail(field, ReasonFormat, "is not a valid email address")
	}
	return ok(field)
}

// ValidateLevelLetter accepts one of LevelLetters.
func ValidateLevelLetter(letter string) Result {
	const field = "level_letter"
	for _, l := range LevelLetters {
		if letter == l {
			return ok(field)
		}
	}
	return fail(field, ReasonUnknown, "must be one of "+strings.Join(LevelLetters, ", "))
}
