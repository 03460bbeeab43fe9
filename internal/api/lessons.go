// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"fmt"
)

func (c *Client) Lessons(ctx context.Context) ([]Lesson, error) {
	var out []Lesson
	err := c.get(ctx, "/lessons", nil, &out)
	return out, err
}

func (c *Client) Lesson(ctx context.Context, id int64) (Lesson, error) {
	var out Lesson
	err := c.get(ctx, fmt.Sprintf("/lessons/%d", id), nil, &out)
	return out, err
}

func (c *Client) LessonQuestions(ctx context.Context, id int64) ([]Question, error) {
	var out []Question
	err := c.get(ctx, fmt.Sprintf("/lessons/%d/questions", id), nil, &out)
	return out, err
}

// SubmitTest grades a set of answers and records the attempt.
func (c *Client) SubmitTest(ctx context.Context, sub TestSubmission) (TestAttempt, error) {
	var out TestAttempt
	err := c.post(ctx, "/lessons/submit-test", sub, &out)
	return out, err
}

func (c *Client) MyProgress(ctx context.Context) ([]LessonProgress, error) {
	var out []LessonProgress
	err := c.get(ctx, "/lessons/my-progress", nil, &out)
	return out, err
}

func (c *Client) MyStats(ctx context.Context) (UserStats, error) {
	var out UserStats
	err := c.get(ctx, "/users/stats/me", nil, &out)
	return out, err
}
