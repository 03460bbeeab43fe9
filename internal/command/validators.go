// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/lessonctl/internal/api"
	"github.com/staranto/lessonctl/internal/attrs"
	"github.com/staranto/lessonctl/internal/output"
	"github.com/staranto/lessonctl/internal/validation"
)

// GlobalFlagsValidator rejects a malformed --attrs before any request is made.
func GlobalFlagsValidator(ctx context.Context, c *cli.Command) error {
	var al attrs.AttrList
	if err := al.Set(c.String("attrs")); err != nil {
		return fmt.Errorf("--attrs: %w", err)
	}
	return nil
}

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// JammedFlagValidator verifies that the arg following a flag does not begin
// with '--'.  urfave/cli allows this and I don't see how to turn it off.
func JammedFlagValidator(value any) error {
	if strings.HasPrefix(value.(string), "--") {
		return errors.New("must not begin with '--'")
	}
	return nil
}

func OutputValidator(value any) error {
	if !slices.Contains(output.Formats, value.(string)) {
		return fmt.Errorf("must be one of %v", output.Formats)
	}
	return nil
}

func ExportFormatValidator(value any) error {
	valid := []string{api.FormatCSV, api.FormatExcel}
	if !slices.Contains(valid, value.(string)) {
		return fmt.Errorf("must be one of %v", valid)
	}
	return nil
}

// LevelValidator accepts 0, meaning unset, or a school level.
func LevelValidator(value any) error {
	level := value.(int)
	if level == 0 {
		return nil
	}
	if level < validation.MinLevel || level > validation.MaxLevel {
		return fmt.Errorf("must be between %d and %d", validation.MinLevel, validation.MaxLevel)
	}
	return nil
}

// LetterValidator accepts an empty value or one of the school's class letters.
func LetterValidator(value any) error {
	letter := value.(string)
	if letter == "" {
		return nil
	}
	if r := validation.ValidateLevelLetter(letter); !r.Valid {
		return errors.New(r.Message)
	}
	return nil
}

func PositiveValidator(value any) error {
	if value.(int) < 1 {
		return errors.New("must be at least 1")
	}
	return nil
}

func URLValidator(value any) error {
	u, err := url.Parse(value.(string))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("must be an http or https URL")
	}
	return nil
}

func GameTypeValidator(value any) error {
	game := value.(string)
	if game == "" {
		return nil
	}
	if _, ok := api.GameNames[game]; !ok {
		return fmt.Errorf("unknown game %q", game)
	}
	return nil
}
