// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/staranto/lessonctl/internal/api"
	"github.com/staranto/lessonctl/internal/meta"
	"github.com/staranto/lessonctl/internal/validation"
)

// Profile summarises the logged in user.
type Profile struct {
	Username          string  `json:"username"`
	FullName          string  `json:"full_name"`
	Role              string  `json:"role"`
	ClassDisplay      string  `json:"class_display"`
	Email             string  `json:"email"`
	TotalPoints       int     `json:"total_points"`
	CompletedLessons  int     `json:"completed_lessons"`
	AveragePercentage float64 `json:"average_percentage"`
	TotalAttempts     int     `json:"total_attempts"`
	Achievements      int     `json:"achievements"`
	LatestAchievement string  `json:"latest_achievement,omitempty"`
}

// ProfileSource is the part of the API client FetchProfile needs.
type ProfileSource interface {
	Me(ctx context.Context) (api.User, error)
	MyStats(ctx context.Context) (api.UserStats, error)
	MyAchievements(ctx context.Context) ([]api.Achievement, error)
}

// FetchProfile issues the three requests concurrently. The first failure
// cancels the others.
func FetchProfile(ctx context.Context, src ProfileSource) (Profile, error) {
	var (
		me    api.User
		stats api.UserStats
		ach   []api.Achievement
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		me, err = src.Me(gctx)
		return
	})
	g.Go(func() (err error) {
		stats, err = src.MyStats(gctx)
		return
	})
	g.Go(func() (err error) {
		ach, err = src.MyAchievements(gctx)
		return
	})
	if err := g.Wait(); err != nil {
		return Profile{}, err
	}

	p := Profile{
		Username:          me.Username,
		FullName:          me.FullName(),
		Role:              me.Role,
		ClassDisplay:      me.ClassDisplay,
		Email:             me.Email,
		TotalPoints:       stats.TotalPoints,
		CompletedLessons:  stats.CompletedLessons,
		AveragePercentage: stats.AveragePercentage,
		TotalAttempts:     stats.TotalAttempts,
		Achievements:      len(ach),
	}
	latest := -1
	for i := range ach {
		if latest < 0 || ach[i].EarnedAt.After(ach[latest].EarnedAt) {
			latest = i
		}
	}
	if latest >= 0 {
		p.LatestAchievement = ach[latest].Title
	}
	return p, nil
}

func ProfileCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[Profile]{
		CommandName: "profile",
		DefaultAttrs: []string{
			"username", "full_name:name", "class_display:class",
			"total_points:points", "completed_lessons:lessons",
			"average_percentage:avg", "achievements",
		},
		FetchFn: func(ctx context.Context, cmd *cli.Command, client *api.Client) (Profile, error) {
			return FetchProfile(ctx, client)
		},
	}
	return runner.Run(ctx, cmd)
}

// SettingsCommandAction updates the profile fields that were given. The
// empty string clears the email.
func SettingsCommandAction(ctx context.Context, cmd *cli.Command) error {
	upd, err := ProfileUpdateFromFlags(cmd)
	if err != nil {
		return err
	}

	client, err := NewClient(cmd)
	if err != nil {
		return err
	}
	msg, err := client.UpdateProfile(ctx, upd)
	if err != nil {
		return err
	}
	if msg == "" {
		msg = "Profile updated"
	}
	fmt.Fprintln(stdout(cmd), msg)
	return nil
}

// ProfileUpdateFromFlags validates and collects the flags that were set.
func ProfileUpdateFromFlags(cmd *cli.Command) (api.ProfileUpdate, error) {
	var upd api.ProfileUpdate

	if cmd.IsSet("email") {
		email := strings.TrimSpace(cmd.String("email"))
		if err := validation.ValidateEmail(email).Err(); err != nil {
			return upd, err
		}
		upd.Email = &email
	}
	if cmd.IsSet("level") {
		level := cmd.Int("level")
		if level == 0 {
			return upd, fmt.Errorf("level: must be between %d and %d: %w",
				validation.MinLevel, validation.MaxLevel, validation.ErrInvalid)
		}
		upd.Level = &level
	}
	if cmd.IsSet("letter") {
		letter := cmd.String("letter")
		if err := validation.ValidateLevelLetter(letter).Err(); err != nil {
			return upd, err
		}
		upd.LevelLetter = &letter
	}

	if upd.Email == nil && upd.Level == nil && upd.LevelLetter == nil {
		return upd, errors.New("nothing to update: give --email, --level or --letter")
	}
	log.Debugf("profile update: %+v", upd)
	return upd, nil
}

func ProfileCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "profile",
		Usage:     "summarise your account, results and achievements",
		UsageText: "lessonctl profile [options]",
		Action:    ProfileCommandAction,
		Meta:      meta,
	}).Build()
}

func SettingsCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "settings",
		Usage:     "update your email or class",
		UsageText: "lessonctl settings [--email ADDRESS] [--level N] [--letter L]",
		Metadata:  map[string]any{"meta": meta},
		Flags: []cli.Flag{
			NewAPIFlag("settings"),
			&cli.StringFlag{
				Name:  "email",
				Usage: "new email address, empty to clear",
			},
			&cli.IntFlag{
				Name:  "level",
				Usage: "new class level (1-11)",
				Validator: func(value int) error {
					return FlagValidators(value, LevelValidator)
				},
			},
			&cli.StringFlag{
				Name:  "letter",
				Usage: "new class letter (А, Б, В...)",
			},
		},
		Action: SettingsCommandAction,
	}
}
