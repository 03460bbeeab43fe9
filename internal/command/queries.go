// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"reflect"

	"github.com/urfave/cli/v3"

	"github.com/staranto/lessonctl/internal/api"
	"github.com/staranto/lessonctl/internal/meta"
)

// MeCommandAction shows the logged in user.
func MeCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[api.User]{
		CommandName: "me",
		DefaultAttrs: []string{
			"username", "first_name", "last_name", "role",
			"class_display:class", "email",
		},
		FetchFn: func(ctx context.Context, cmd *cli.Command, client *api.Client) (api.User, error) {
			return client.Me(ctx)
		},
	}
	return runner.Run(ctx, cmd)
}

// AchievementsCommandAction lists the achievements earned by the logged in
// user.
func AchievementsCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[[]api.Achievement]{
		CommandName:  "achievements",
		DefaultAttrs: []string{"title", "description", "earned_at:earned:h"},
		FetchFn: func(ctx context.Context, cmd *cli.Command, client *api.Client) ([]api.Achievement, error) {
			return client.MyAchievements(ctx)
		},
	}
	return runner.Run(ctx, cmd)
}

// LeaderboardCommandAction lists the ranking, optionally for one class.
func LeaderboardCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[[]api.LeaderboardEntry]{
		CommandName: "leaderboard",
		DefaultAttrs: []string{
			"rank", "full_name:name", "class_display:class",
			"total_points:points", "completed_lessons:lessons",
			"average_percentage:avg",
		},
		FetchFn: func(ctx context.Context, cmd *cli.Command, client *api.Client) ([]api.LeaderboardEntry, error) {
			return client.Leaderboard(ctx, ClassFilter(cmd))
		},
	}
	return runner.Run(ctx, cmd)
}

// AnalyticsCommandAction shows per-lesson analytics for a class. With --days
// it shows the test activity of every class instead.
func AnalyticsCommandAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.IsSet("days") {
		runner := &QueryActionRunner[api.ClassActivity]{
			CommandName:  "analytics",
			Parent:       "stats",
			SchemaType:   reflect.TypeFor[api.ActivityStat](),
			DefaultAttrs: []string{"date", "class_display:class", "count"},
			FetchFn: func(ctx context.Context, cmd *cli.Command, client *api.Client) (api.ClassActivity, error) {
				return client.ClassActivity(ctx, cmd.Int("days"))
			},
		}
		return runner.Run(ctx, cmd)
	}

	runner := &QueryActionRunner[api.ClassAnalytics]{
		CommandName: "analytics",
		Parent:      "lessons_stats",
		SchemaType:  reflect.TypeFor[api.LessonStats](),
		DefaultAttrs: []string{
			"lesson_order:order", "lesson_title:lesson",
			"completed_count:completed", "completion_rate:rate",
			"average_percentage:avg", "total_attempts:attempts",
		},
		FetchFn: func(ctx context.Context, cmd *cli.Command, client *api.Client) (api.ClassAnalytics, error) {
			f := ClassFilter(cmd)
			if f.Level == nil {
				return api.ClassAnalytics{}, errors.New("--level is required")
			}
			return client.ClassAnalytics(ctx, f)
		},
	}
	return runner.Run(ctx, cmd)
}

// ProgressCommandAction lists the logged in user's lesson progress.
func ProgressCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[[]api.LessonProgress]{
		CommandName: "progress",
		DefaultAttrs: []string{
			"lesson_id:lesson", "best_score:score", "best_percentage:best",
			"attempts_count:attempts", "is_completed:done",
			"last_attempt_at:last:h",
		},
		FetchFn: func(ctx context.Context, cmd *cli.Command, client *api.Client) ([]api.LessonProgress, error) {
			return client.MyProgress(ctx)
		},
	}
	return runner.Run(ctx, cmd)
}

var lessonDetailAttrs = []string{
	"lesson_order:order", "lesson_title:lesson", "best_percentage:best",
	"attempts", "is_completed:done", "last_attempt:last:h",
}

// StatsCommandAction lists the logged in user's per-lesson statistics.
func StatsCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[api.UserStats]{
		CommandName:  "stats",
		Parent:       "lessons_detail",
		SchemaType:   reflect.TypeFor[api.LessonDetail](),
		DefaultAttrs: lessonDetailAttrs,
		FetchFn: func(ctx context.Context, cmd *cli.Command, client *api.Client) (api.UserStats, error) {
			return client.MyStats(ctx)
		},
	}
	return runner.Run(ctx, cmd)
}

func MeCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "me",
		Usage:     "show the logged in user",
		UsageText: "lessonctl me [options]",
		Action:    MeCommandAction,
		Meta:      meta,
	}).Build()
}

func AchievementsCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "achievements",
		Usage:     "list earned achievements",
		UsageText: "lessonctl achievements [options]",
		Action:    AchievementsCommandAction,
		Meta:      meta,
	}).Build()
}

func LeaderboardCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "leaderboard",
		Usage:     "show the ranking",
		UsageText: "lessonctl leaderboard [--level N] [--letter L] [options]",
		Flags:     NewClassFlags("leaderboard"),
		Action:    LeaderboardCommandAction,
		Meta:      meta,
	}).Build()
}

func AnalyticsCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "analytics",
		Usage:     "class analytics (teachers)",
		UsageText: "lessonctl analytics --level N [--letter L] [options]\nlessonctl analytics --days N [options]",
		Flags: append(NewClassFlags("analytics"),
			&cli.IntFlag{
				Name:  "days",
				Usage: "show test activity per class over the last N days",
				Validator: func(value int) error {
					return FlagValidators(value, PositiveValidator)
				},
			},
		),
		Action: AnalyticsCommandAction,
		Meta:   meta,
	}).Build()
}

func ProgressCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "progress",
		Usage:     "show lesson progress",
		UsageText: "lessonctl progress [options]",
		Action:    ProgressCommandAction,
		Meta:      meta,
	}).Build()
}

func StatsCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "stats",
		Usage:     "show per-lesson statistics",
		UsageText: "lessonctl stats [options]",
		Action:    StatsCommandAction,
		Meta:      meta,
	}).Build()
}
