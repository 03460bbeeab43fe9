// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		valid    bool
		reason   string
	}{
		{name: "short", password: "short", reason: ReasonMinLength},
		{name: "valid", password: "Abc12345!", valid: true},
		{name: "too long", password: "Aa1!" + strings.Repeat("x", 125), reason: ReasonMaxLength},
		{name: "exactly max", password: "Aa1!" + strings.Repeat("x", 124), valid: true},
		{name: "missing upper", password: "abc12345!", reason: ReasonUpper},
		{name: "missing lower", password: "ABC12345!", reason: ReasonLower},
		{name: "missing digit", password: "Abcdefgh!", reason: ReasonDigit},
		{name: "missing special", password: "Abc123456", reason: ReasonSpecial},
		{name: "special outside set", password: "Abc12345~", reason: ReasonSpecial},
		{name: "cyrillic letters count", password: "Пароль12!", valid: true},
		{name: "length before classes", password: "abc", reason: ReasonMinLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ValidatePassword(tt.password)
			assert.Equal(t, tt.valid, r.Valid)
			assert.Equal(t, tt.reason, r.Reason)
			if tt.valid {
				assert.NoError(t, r.Err())
			} else {
				assert.ErrorIs(t, r.Err(), ErrInvalid)
				assert.NotEmpty(t, r.Message)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		valid    bool
		reason   string
	}{
		{name: "valid", username: "ann", valid: true},
		{name: "underscore and hyphen", username: "ann_b-2", valid: true},
		{name: "trimmed before length", username: "  ab  ", reason: ReasonMinLength},
		{name: "trimmed valid", username: "  ann  ", valid: true},
		{name: "too long", username: strings.Repeat("a", 31), reason: ReasonMaxLength},
		{name: "exactly max", username: strings.Repeat("a", 30), valid: true},
		{name: "space inside", username: "ann b", reason: ReasonCharset},
		{name: "dot", username: "ann.b", reason: ReasonCharset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ValidateUsername(tt.username)
			assert.Equal(t, tt.valid, r.Valid)
			assert.Equal(t, tt.reason, r.Reason)
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{email: "", valid: true},
		{email: "ann@example.com", valid: true},
		{email: "ann.b+tag@school.example.ru", valid: true},
		{email: "ann@example", valid: false},
		{email: "ann@example.c", valid: false},
		{email: "@example.com", valid: false},
		{email: "ann example@x.com", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			r := ValidateEmail(tt.email)
			assert.Equal(t, tt.valid, r.Valid)
			if !tt.valid {
				assert.Equal(t, ReasonFormat, r.Reason)
			}
		})
	}
}

func validRegistration() Registration {
	return Registration{
		Username:        "ann",
		Password:        "Abc12345!",
		PasswordConfirm: "Abc12345!",
		FirstName:       "Ann",
		LastName:        "Lee",
		Level:           7,
		LevelLetter:     "А",
	}
}

func TestValidator_Registration(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Struct(validRegistration()))

	r := validRegistration()
	r.Email = "ann@example.com"
	assert.NoError(t, v.Struct(r))
}

func TestValidator_RegistrationFailures(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		mutate  func(*Registration)
		field   string
		tag     string
		message string
	}{
		{
			name:    "weak password",
			mutate:  func(r *Registration) { r.Password, r.PasswordConfirm = "short", "short" },
			field:   "password",
			tag:     "password",
			message: "password must be at least 8 characters",
		},
		{
			name:    "mismatched confirmation",
			mutate:  func(r *Registration) { r.PasswordConfirm = "Abc12345?" },
			field:   "password_confirm",
			tag:     "eqfield",
			message: "password_confirm must match password",
		},
		{
			name:   "bad username",
			mutate: func(r *Registration) { r.Username = "a b c" },
			field:  "username",
			tag:    "username",
		},
		{
			name:   "bad email",
			mutate: func(r *Registration) { r.Email = "nope" },
			field:  "email",
			tag:    "email_opt",
		},
		{
			name:    "missing letter",
			mutate:  func(r *Registration) { r.LevelLetter = "" },
			field:   "level_letter",
			tag:     "required",
			message: "level_letter is required",
		},
		{
			name:   "latin letter",
			mutate: func(r *Registration) { r.LevelLetter = "A" },
			field:  "level_letter",
			tag:    "level_letter",
		},
		{
			name:   "level zero",
			mutate: func(r *Registration) { r.Level = 0 },
			field:  "level",
			tag:    "gte",
		},
		{
			name:   "level out of range",
			mutate: func(r *Registration) { r.Level = MaxLevel + 1 },
			field:  "level",
			tag:    "lte",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRegistration()
			tt.mutate(&r)

			err := v.Struct(r)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))

			var errs Errors
			require.True(t, errors.As(err, &errs))
			require.Len(t, errs, 1)
			assert.Equal(t, tt.field, errs[0].Field)
			assert.Equal(t, tt.tag, errs[0].Tag)
			if tt.message != "" {
				assert.Equal(t, tt.message, errs[0].Message)
			}
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}
