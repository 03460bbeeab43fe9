// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlagValidators(t *testing.T) {
	tests := []struct {
		name    string
		fn      FlagValidatorType
		value   any
		wantErr bool
	}{
		{"jammed ok", JammedFlagValidator, "json", false},
		{"jammed", JammedFlagValidator, "--output", true},
		{"output json", OutputValidator, "json", false},
		{"output csv", OutputValidator, "csv", true},
		{"export csv", ExportFormatValidator, "csv", false},
		{"export excel", ExportFormatValidator, "excel", false},
		{"export pdf", ExportFormatValidator, "pdf", true},
		{"level unset", LevelValidator, 0, false},
		{"level 11", LevelValidator, 11, false},
		{"level 12", LevelValidator, 12, true},
		{"level negative", LevelValidator, -1, true},
		{"letter empty", LetterValidator, "", false},
		{"letter cyrillic", LetterValidator, "Б", false},
		{"letter latin", LetterValidator, "B", true},
		{"positive", PositiveValidator, 1, false},
		{"zero", PositiveValidator, 0, true},
		{"https", URLValidator, "https://lessons.example.com/api", false},
		{"no scheme", URLValidator, "lessons.example.com", true},
		{"ftp", URLValidator, "ftp://lessons.example.com", true},
		{"game empty", GameTypeValidator, "", false},
		{"game known", GameTypeValidator, "quiz-show", false},
		{"game unknown", GameTypeValidator, "chess", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fn(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFlagValidators_FirstFailureWins(t *testing.T) {
	err := FlagValidators("--http://x", JammedFlagValidator, URLValidator)
	assert.EqualError(t, err, "must not begin with '--'")
	assert.NoError(t, FlagValidators("https://x", JammedFlagValidator, URLValidator))
}
