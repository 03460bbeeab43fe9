// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/lessonctl/internal/api"
	"github.com/staranto/lessonctl/internal/meta"
	"github.com/staranto/lessonctl/internal/validation"
)

func StudentsListCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[[]api.Student]{
		CommandName: "students-list",
		DefaultAttrs: []string{
			"id", "username", "full_name:name", "class_display:class", "email",
		},
		FetchFn: func(ctx context.Context, cmd *cli.Command, client *api.Client) ([]api.Student, error) {
			return client.Students(ctx, ClassFilter(cmd))
		},
	}
	return runner.Run(ctx, cmd)
}

func StudentsStatsCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[api.UserStats]{
		CommandName:  "students-stats",
		Parent:       "lessons_detail",
		SchemaType:   reflect.TypeFor[api.LessonDetail](),
		DefaultAttrs: lessonDetailAttrs,
		FetchFn: func(ctx context.Context, cmd *cli.Command, client *api.Client) (api.UserStats, error) {
			id, err := ArgID(cmd, "student")
			if err != nil {
				return api.UserStats{}, err
			}
			return client.StudentStats(ctx, id)
		},
	}
	return runner.Run(ctx, cmd)
}

func StudentsGamesCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[api.StudentGameStats]{
		CommandName:  "students-games",
		Parent:       "stats",
		SchemaType:   reflect.TypeFor[api.GameStats](),
		DefaultAttrs: gameStatsAttrs,
		FetchFn: func(ctx context.Context, cmd *cli.Command, client *api.Client) (api.StudentGameStats, error) {
			id, err := ArgID(cmd, "student")
			if err != nil {
				return api.StudentGameStats{}, err
			}
			return client.StudentGameStats(ctx, id)
		},
	}
	return runner.Run(ctx, cmd)
}

// StudentsResetCommandAction has the server generate a new password for a
// student and shows it. It is not stored anywhere.
func StudentsResetCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[api.PasswordReset]{
		CommandName:  "students-reset",
		DefaultAttrs: []string{"username", "new_password:password"},
		FetchFn: func(ctx context.Context, cmd *cli.Command, client *api.Client) (api.PasswordReset, error) {
			username := strings.TrimSpace(cmd.Args().First())
			if username == "" {
				return api.PasswordReset{}, errors.New("student username is required")
			}
			if err := validation.ValidateUsername(username).Err(); err != nil {
				return api.PasswordReset{}, err
			}
			return client.ResetStudentPassword(ctx, username)
		},
	}
	return runner.Run(ctx, cmd)
}

func StudentsCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "students",
		Usage:     "inspect students (teachers)",
		UsageText: "lessonctl students list|stats|games|reset [options]",
		Metadata:  map[string]any{"meta": meta},
		Commands: []*cli.Command{
			(&QueryCommandBuilder{
				Name:      "list",
				Namespace: "students",
				Usage:     "list students",
				UsageText: "lessonctl students list [--level N] [--letter L] [options]",
				Flags:     NewClassFlags("students"),
				Action:    StudentsListCommandAction,
				Meta:      meta,
			}).Build(),
			(&QueryCommandBuilder{
				Name:      "stats",
				Namespace: "students",
				Usage:     "show a student's per-lesson statistics",
				UsageText: "lessonctl students stats ID [options]",
				Action:    StudentsStatsCommandAction,
				Meta:      meta,
			}).Build(),
			(&QueryCommandBuilder{
				Name:      "games",
				Namespace: "students",
				Usage:     "show a student's game statistics",
				UsageText: "lessonctl students games ID [options]",
				Action:    StudentsGamesCommandAction,
				Meta:      meta,
			}).Build(),
			(&QueryCommandBuilder{
				Name:      "reset",
				Namespace: "students",
				Usage:     "reset a student's password",
				UsageText: "lessonctl students reset USERNAME [options]",
				Action:    StudentsResetCommandAction,
				Meta:      meta,
			}).Build(),
		},
	}
}
