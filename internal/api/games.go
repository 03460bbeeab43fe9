// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// GameQuery selects results for one game. Zero values are left out.
type GameQuery struct {
	GameType string
	Level    *int
	Limit    int
	Class    ClassFilter
}

func (q GameQuery) values() url.Values {
	v := q.Class.Values()
	if q.GameType != "" {
		v.Set("game_type", q.GameType)
	}
	if q.Level != nil {
		v.Set("level", strconv.Itoa(*q.Level))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

func (c *Client) SubmitGameResult(ctx context.Context, r GameResultRequest) (GameResult, error) {
	var out GameResult
	err := c.post(ctx, "/games/results", r, &out)
	return out, err
}

func (c *Client) MyGameResults(ctx context.Context, q GameQuery) ([]GameResult, error) {
	var out []GameResult
	err := c.get(ctx, "/games/results", q.values(), &out)
	return out, err
}

func (c *Client) MyGameStats(ctx context.Context) ([]GameStats, error) {
	var out []GameStats
	err := c.get(ctx, "/games/stats", nil, &out)
	return out, err
}

func (c *Client) MyGameSummary(ctx context.Context) (GameSummary, error) {
	var out GameSummary
	err := c.get(ctx, "/games/summary", nil, &out)
	return out, err
}

// BestGameResult returns nil when the user has not played the game at that
// level.
func (c *Client) BestGameResult(ctx context.Context, gameType string, level int) (*GameResult, error) {
	var raw json.RawMessage
	q := GameQuery{GameType: gameType, Level: &level}
	if err := c.get(ctx, "/games/best", q.values(), &raw); err != nil {
		return nil, err
	}
	if raw = bytes.TrimSpace(raw); len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var out GameResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode best result: %w", err)
	}
	return &out, nil
}

// GameLeaderboard defaults to the top 10.
func (c *Client) GameLeaderboard(ctx context.Context, gameType string, level, limit int) ([]GameResult, error) {
	if limit <= 0 {
		limit = 10
	}
	var out []GameResult
	q := GameQuery{GameType: gameType, Level: &level, Limit: limit}
	err := c.get(ctx, "/games/leaderboard", q.values(), &out)
	return out, err
}

func (c *Client) ClassGameStats(ctx context.Context, f ClassFilter) ([]ClassGameStats, error) {
	var out []ClassGameStats
	err := c.get(ctx, "/games/class-stats", f.Values(), &out)
	return out, err
}

// RecentGameResults defaults to the latest 20.
func (c *Client) RecentGameResults(ctx context.Context, limit int, f ClassFilter) ([]GameResult, error) {
	if limit <= 0 {
		limit = 20
	}
	var out []GameResult
	q := GameQuery{Limit: limit, Class: f}
	err := c.get(ctx, "/games/recent", q.values(), &out)
	return out, err
}

func (c *Client) StudentGameStats(ctx context.Context, id int64) (StudentGameStats, error) {
	var out StudentGameStats
	err := c.get(ctx, fmt.Sprintf("/games/student/%d/stats", id), nil, &out)
	return out, err
}
