// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// Class levels accepted at registration.
const (
	MinLevel = 1
	MaxLevel = 11
)

// LevelLetters are the class letters the school uses.
var LevelLetters = []string{"А", "Б", "В", "Г", "Д", "Е", "Ж", "З"}

// Registration is the client-side copy of the registration form. The tags
// mirror the server rules; the server stays authoritative.
type Registration struct {
	Username        string `json:"username" validate:"required,username"`
	Password        string `json:"password" validate:"required,password"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	FirstName       string `json:"first_name" validate:"max=100"`
	LastName        string `json:"last_name" validate:"max=100"`
	Email           string `json:"email" validate:"email_opt"`
	Level           int    `json:"level" validate:"gte=1,lte=11"`
	LevelLetter     string `json:"level_letter" validate:"required,level_letter"`
}

// FieldError is one translated failure.
type FieldError struct {
	Field   string
	Tag     string
	Message string
}

// Errors is returned by Validator.Struct when any field fails.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Field+": "+fe.Message)
	}
	return strings.Join(msgs, "; ")
}

// Unwrap lets errors.Is match ErrInvalid.
func (e Errors) Unwrap() error { return ErrInvalid }

// Validator wraps a go-playground validator with the project rules and
// English messages registered.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// NewValidator returns a Validator ready for Registration and similar forms.
func NewValidator() *Validator {
	english := en.New()
	uni := ut.New(english, english)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Report JSON names, which match the server's error vocabulary.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v := &Validator{validate: validate, translator: translator}
	v.register("username", func(s string) Result { return ValidateUsername(s) })
	v.register("password", func(s string) Result { return ValidatePassword(s) })
	v.register("email_opt", func(s string) Result { return ValidateEmail(s) })
	v.register("level_letter", func(s string) Result { return ValidateLevelLetter(s) })
	v.translate("eqfield", "{0} must match password")
	v.translate("required", "{0} is required")
	return v
}

// register binds a Result-returning rule to a validation tag and uses the
// rule's own message as the translation.
func (v *Validator) register(tag string, rule func(string) Result) {
	_ = v.validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return rule(fl.Field().String()).Valid
	})
	_ = v.validate.RegisterTranslation(tag, v.translator,
		func(t ut.Translator) error { return nil },
		func(t ut.Translator, fe validator.FieldError) string {
			return fe.Field() + " " + rule(fmt.Sprint(fe.Value())).Message
		},
	)
}

func (v *Validator) translate(tag, text string) {
	_ = v.validate.RegisterTranslation(tag, v.translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Struct validates s and returns Errors, or nil.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%v: %w", err, ErrInvalid)
	}

	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: fe.Translate(v.translator),
		})
	}
	return out
}
