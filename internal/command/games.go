// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/urfave/cli/v3"

	"github.com/staranto/lessonctl/internal/api"
	"github.com/staranto/lessonctl/internal/meta"
)

var (
	gameResultAttrs = []string{
		"game_type:game", "level", "score", "max_score:max",
		"percentage:pct", "time_spent:time", "created_at:played:h",
	}

	gameStatsAttrs = []string{
		"game_type:game", "level", "total_attempts:attempts",
		"best_score:best", "avg_percentage:avg", "last_played:last:h",
	}
)

// gameFlags returns --game and the game --level. A game level is not a
// class level.
func gameFlags(required bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "game",
			Aliases:  []string{"g"},
			Usage:    "game type (grammar-detective, sentence-builder, memory-cards, fill-gap-race, quiz-show)",
			Required: required,
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator, GameTypeValidator)
			},
		},
		&cli.IntFlag{
			Name:     "level",
			Usage:    "game level",
			Required: required,
			Validator: func(value int) error {
				return FlagValidators(value, PositiveValidator)
			},
		},
	}
}

// gameLevel returns nil when --level was not given.
func gameLevel(cmd *cli.Command) *int {
	if !cmd.IsSet("level") {
		return nil
	}
	level := cmd.Int("level")
	return &level
}

func GamesResultsCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[[]api.GameResult]{
		CommandName:  "games-results",
		DefaultAttrs: gameResultAttrs,
		FetchFn: func(ctx context.Context, cmd *cli.Command, client *api.Client) ([]api.GameResult, error) {
			return client.MyGameResults(ctx, api.GameQuery{
				GameType: cmd.String("game"),
				Level:    gameLevel(cmd),
				Limit:    cmd.Int("limit"),
			})
		},
	}
	return runner.Run(ctx, cmd)
}

func GamesStatsCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[[]api.GameStats]{
		CommandName:  "games-stats",
		DefaultAttrs: gameStatsAttrs,
		FetchFn: func(ctx context.Context, cmd *cli.Command, client *api.Client) ([]api.GameStats, error) {
			return client.MyGameStats(ctx)
		},
	}
	return runner.Run(ctx, cmd)
}

func GamesSummaryCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[api.GameSummary]{
		CommandName: "games-summary",
		DefaultAttrs: []string{
			"total_games:games", "total_time:time", "avg_percentage:avg",
			"levels_completed:levels", "games_played:played",
		},
		FetchFn: func(ctx context.Context, cmd *cli.Command, client *api.Client) (api.GameSummary, error) {
			return client.MyGameSummary(ctx)
		},
	}
	return runner.Run(ctx, cmd)
}

// GamesBestCommandAction shows the best result for a game and level. Nothing
// is printed when the game was never played at that level.
func GamesBestCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[[]api.GameResult]{
		CommandName:  "games-best",
		SchemaType:   reflect.TypeFor[api.GameResult](),
		DefaultAttrs: gameResultAttrs,
		FetchFn: func(ctx context.Context, cmd *cli.Command, client *api.Client) ([]api.GameResult, error) {
			best, err := client.BestGameResult(ctx, cmd.String("game"), cmd.Int("level"))
			if err != nil || best == nil {
				return []api.GameResult{}, err
			}
			return []api.GameResult{*best}, nil
		},
	}
	return runner.Run(ctx, cmd)
}

func GamesLeaderboardCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[[]api.GameResult]{
		CommandName: "games-leaderboard",
		DefaultAttrs: []string{
			"user.username:user", "score", "percentage:pct",
			"time_spent:time", "created_at:played:h",
		},
		FetchFn: func(ctx context.Context, cmd *cli.Command, client *api.Client) ([]api.GameResult, error) {
			return client.GameLeaderboard(ctx, cmd.String("game"), cmd.Int("level"), cmd.Int("limit"))
		},
	}
	return runner.Run(ctx, cmd)
}

func GamesClassCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[[]api.ClassGameStats]{
		CommandName: "games-class",
		DefaultAttrs: []string{
			"student_name:student", "total_games:games", "avg_percentage:avg",
			"total_time:time", "favorite_game:favorite", "last_activity:last:h",
		},
		FetchFn: func(ctx context.Context, cmd *cli.Command, client *api.Client) ([]api.ClassGameStats, error) {
			return client.ClassGameStats(ctx, ClassFilter(cmd))
		},
	}
	return runner.Run(ctx, cmd)
}

func GamesRecentCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[[]api.GameResult]{
		CommandName:  "games-recent",
		DefaultAttrs: append([]string{"user.username:user"}, gameResultAttrs...),
		FetchFn: func(ctx context.Context, cmd *cli.Command, client *api.Client) ([]api.GameResult, error) {
			return client.RecentGameResults(ctx, cmd.Int("limit"), ClassFilter(cmd))
		},
	}
	return runner.Run(ctx, cmd)
}

// GamesSubmitCommandAction records a finished game.
func GamesSubmitCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[api.GameResult]{
		CommandName:  "games-submit",
		DefaultAttrs: gameResultAttrs,
		FetchFn: func(ctx context.Context, cmd *cli.Command, client *api.Client) (api.GameResult, error) {
			req, err := GameResultFromFlags(cmd)
			if err != nil {
				return api.GameResult{}, err
			}
			return client.SubmitGameResult(ctx, req)
		},
	}
	return runner.Run(ctx, cmd)
}

// GameResultFromFlags builds the submission and checks that the counts are
// consistent.
func GameResultFromFlags(cmd *cli.Command) (api.GameResultRequest, error) {
	req := api.GameResultRequest{
		GameType:     cmd.String("game"),
		Level:        cmd.Int("level"),
		Score:        cmd.Int("score"),
		MaxScore:     cmd.Int("max-score"),
		TimeSpent:    cmd.Int("time"),
		CorrectCount: cmd.Int("correct"),
		TotalCount:   cmd.Int("total"),
	}
	switch {
	case req.Score < 0 || req.TimeSpent < 0 || req.CorrectCount < 0:
		return req, errors.New("score, time and correct must not be negative")
	case req.MaxScore > 0 && req.Score > req.MaxScore:
		return req, fmt.Errorf("score %d exceeds max score %d", req.Score, req.MaxScore)
	case req.TotalCount > 0 && req.CorrectCount > req.TotalCount:
		return req, fmt.Errorf("correct %d exceeds total %d", req.CorrectCount, req.TotalCount)
	}
	return req, nil
}

func GamesCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "games",
		Usage:     "game results and statistics",
		UsageText: "lessonctl games results|stats|summary|best|leaderboard|class|recent|submit [options]",
		Metadata:  map[string]any{"meta": meta},
		Commands: []*cli.Command{
			(&QueryCommandBuilder{
				Name:      "results",
				Namespace: "games",
				Usage:     "list your game results",
				UsageText: "lessonctl games results [--game G] [--level N] [--limit N] [options]",
				Flags:     append(gameFlags(false), NewLimitFlag("games", 20)),
				Action:    GamesResultsCommandAction,
				Meta:      meta,
			}).Build(),
			(&QueryCommandBuilder{
				Name:      "stats",
				Namespace: "games",
				Usage:     "show your statistics per game and level",
				UsageText: "lessonctl games stats [options]",
				Action:    GamesStatsCommandAction,
				Meta:      meta,
			}).Build(),
			(&QueryCommandBuilder{
				Name:      "summary",
				Namespace: "games",
				Usage:     "show your overall game summary",
				UsageText: "lessonctl games summary [options]",
				Action:    GamesSummaryCommandAction,
				Meta:      meta,
			}).Build(),
			(&QueryCommandBuilder{
				Name:      "best",
				Namespace: "games",
				Usage:     "show your best result for a game level",
				UsageText: "lessonctl games best --game G --level N [options]",
				Flags:     gameFlags(true),
				Action:    GamesBestCommandAction,
				Meta:      meta,
			}).Build(),
			(&QueryCommandBuilder{
				Name:      "leaderboard",
				Namespace: "games",
				Usage:     "show the top results for a game level",
				UsageText: "lessonctl games leaderboard --game G --level N [--limit N] [options]",
				Flags:     append(gameFlags(true), NewLimitFlag("games", 10)),
				Action:    GamesLeaderboardCommandAction,
				Meta:      meta,
			}).Build(),
			(&QueryCommandBuilder{
				Name:      "class",
				Namespace: "games",
				Usage:     "show game statistics per student (teachers)",
				UsageText: "lessonctl games class [--level N] [--letter L] [options]",
				Flags:     NewClassFlags("games"),
				Action:    GamesClassCommandAction,
				Meta:      meta,
			}).Build(),
			(&QueryCommandBuilder{
				Name:      "recent",
				Namespace: "games",
				Usage:     "show recent results of all students (teachers)",
				UsageText: "lessonctl games recent [--level N] [--letter L] [--limit N] [options]",
				Flags:     append(NewClassFlags("games"), NewLimitFlag("games", 20)),
				Action:    GamesRecentCommandAction,
				Meta:      meta,
			}).Build(),
			(&QueryCommandBuilder{
				Name:      "submit",
				Namespace: "games",
				Usage:     "record a finished game",
				UsageText: "lessonctl games submit --game G --level N --score N [options]",
				Flags: append(gameFlags(true),
					&cli.IntFlag{Name: "score", Usage: "points scored", Required: true},
					&cli.IntFlag{Name: "max-score", Usage: "maximum points"},
					&cli.IntFlag{Name: "time", Usage: "seconds spent"},
					&cli.IntFlag{Name: "correct", Usage: "correct answers"},
					&cli.IntFlag{Name: "total", Usage: "total questions"},
				),
				Action: GamesSubmitCommandAction,
				Meta:   meta,
			}).Build(),
		},
	}
}
