// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT
package command

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/lessonctl/internal/config"
	"github.com/staranto/lessonctl/internal/meta"
)

// InitApp builds the command tree. A missing config file is fine; a broken
// one is not.
func InitApp(ctx context.Context, args []string) (*cli.Command, error) {
	// The arg[1] immediately following the binary (arg[0]) is the lessonctl
	// subcommand and also represents the namespace key to be used when
	// retrieving config values. arg[1] could be -h/--help, so ignore it if it
	// appears to be a flag.
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}

	cfg, err := config.Load(ns)
	if err != nil && !errors.Is(err, config.ErrNoConfigFile) {
		return nil, err
	}

	return NewApp(meta.Meta{
		Args:    args,
		Config:  cfg,
		Context: ctx,
	}), nil
}

// NewApp returns the root command with every subcommand wired to m.
func NewApp(m meta.Meta) *cli.Command {
	app := &cli.Command{
		Name:  "lessonctl",
		Usage: "English lessons from the terminal",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "lessonctl version info",
				HideDefault: true,
			},
		},
		Metadata: map[string]any{"meta": m},
	}

	app.Commands = append(app.Commands,
		LoginCommandBuilder(m),
		LogoutCommandBuilder(m),
		RegisterCommandBuilder(m),
		PasswdCommandBuilder(m),
		StatusCommandBuilder(m),
		MeCommandBuilder(m),
		AchievementsCommandBuilder(m),
		LeaderboardCommandBuilder(m),
		AnalyticsCommandBuilder(m),
		ProgressCommandBuilder(m),
		StatsCommandBuilder(m),
		LessonsCommandBuilder(m),
		StudentsCommandBuilder(m),
		GamesCommandBuilder(m),
		ExportCommandBuilder(m),
		ProfileCommandBuilder(m),
		SettingsCommandBuilder(m),
		DashCommandBuilder(m),
		CompletionCommandBuilder(m),
	)

	// Make sure flags are sorted for the --help text.
	var sortFlags func([]*cli.Command)
	sortFlags = func(cmds []*cli.Command) {
		for _, cmd := range cmds {
			sort.Slice(cmd.Flags, func(i, j int) bool {
				return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
			})
			sortFlags(cmd.Commands)
		}
	}
	sortFlags(app.Commands)

	return app
}
