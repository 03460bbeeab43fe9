// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/lessonctl/internal/api"
	"github.com/staranto/lessonctl/internal/meta"
)

func LessonsListCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[[]api.Lesson]{
		CommandName: "lessons-list",
		DefaultAttrs: []string{
			"id", "order", "title", "questions_count:questions",
			"progress.best_percentage:best", "progress.is_completed:done",
		},
		FetchFn: func(ctx context.Context, cmd *cli.Command, client *api.Client) ([]api.Lesson, error) {
			return client.Lessons(ctx)
		},
	}
	return runner.Run(ctx, cmd)
}

// LessonsShowCommandAction lists the questions of one lesson with their
// answer options.
func LessonsShowCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[[]api.Question]{
		CommandName: "lessons-show",
		DefaultAttrs: []string{
			"id", "order", "text:question", "answer_options.#.id:option_ids",
			"answer_options.#.text:options",
		},
		FetchFn: func(ctx context.Context, cmd *cli.Command, client *api.Client) ([]api.Question, error) {
			id, err := ArgID(cmd, "lesson")
			if err != nil {
				return nil, err
			}
			return client.LessonQuestions(ctx, id)
		},
	}
	return runner.Run(ctx, cmd)
}

// LessonsSubmitCommandAction submits a test for a lesson. Each --answer is
// QUESTION=OPTION, both IDs.
func LessonsSubmitCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[api.TestAttempt]{
		CommandName: "lessons-submit",
		DefaultAttrs: []string{
			"score", "percentage", "correct_answers:correct",
			"total_questions:total", "is_passed:passed",
		},
		FetchFn: func(ctx context.Context, cmd *cli.Command, client *api.Client) (api.TestAttempt, error) {
			id, err := ArgID(cmd, "lesson")
			if err != nil {
				return api.TestAttempt{}, err
			}
			answers, err := ParseAnswers(cmd.StringSlice("answer"))
			if err != nil {
				return api.TestAttempt{}, err
			}
			log.Debugf("submitting %d answers for lesson %d", len(answers), id)
			return client.SubmitTest(ctx, api.TestSubmission{LessonID: id, Answers: answers})
		},
	}
	return runner.Run(ctx, cmd)
}

// ParseAnswers turns QUESTION=OPTION pairs into a submission's answer map.
// A question answered twice keeps the last answer.
func ParseAnswers(pairs []string) (map[string]int64, error) {
	if len(pairs) == 0 {
		return nil, fmt.Errorf("at least one --answer is required")
	}

	answers := make(map[string]int64, len(pairs))
	for _, p := range pairs {
		q, a, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("invalid answer %q (want QUESTION=OPTION)", p)
		}
		q = strings.TrimSpace(q)
		if _, err := strconv.ParseInt(q, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid question ID in %q", p)
		}
		opt, err := strconv.ParseInt(strings.TrimSpace(a), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid option ID in %q", p)
		}
		answers[q] = opt
	}
	return answers, nil
}

func LessonsCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "lessons",
		Usage:     "browse lessons and submit tests",
		UsageText: "lessonctl lessons list|show|submit [options]",
		Metadata:  map[string]any{"meta": meta},
		Commands: []*cli.Command{
			(&QueryCommandBuilder{
				Name:      "list",
				Namespace: "lessons",
				Usage:     "list lessons with your progress",
				UsageText: "lessonctl lessons list [options]",
				Action:    LessonsListCommandAction,
				Meta:      meta,
			}).Build(),
			(&QueryCommandBuilder{
				Name:      "show",
				Namespace: "lessons",
				Usage:     "show the questions of a lesson",
				UsageText: "lessonctl lessons show ID [options]",
				Action:    LessonsShowCommandAction,
				Meta:      meta,
			}).Build(),
			(&QueryCommandBuilder{
				Name:      "submit",
				Namespace: "lessons",
				Usage:     "submit a lesson test",
				UsageText: "lessonctl lessons submit ID --answer QUESTION=OPTION... [options]",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "answer",
						Usage: "QUESTION=OPTION, repeatable",
					},
				},
				Action: LessonsSubmitCommandAction,
				Meta:   meta,
			}).Build(),
		},
	}
}
