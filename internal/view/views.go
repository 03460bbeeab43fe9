// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package view

import (
	"context"

	"github.com/staranto/lessonctl/internal/api"
	"github.com/staranto/lessonctl/internal/cache"
)

// Source is the slice of the API client the views read from.
type Source interface {
	Leaderboard(ctx context.Context, f api.ClassFilter) ([]api.LeaderboardEntry, error)
	ClassAnalytics(ctx context.Context, f api.ClassFilter) (api.ClassAnalytics, error)
	Students(ctx context.Context, f api.ClassFilter) ([]api.Student, error)
	MyAchievements(ctx context.Context) ([]api.Achievement, error)
}

// LeaderboardKey is the singleton key for an unfiltered board, else the
// class key.
func LeaderboardKey(f api.ClassFilter) string {
	if f.Level == nil && f.Letter == "" {
		return cache.LeaderboardKey
	}
	return cache.ClassKey(f.Level, f.Letter)
}

// Leaderboard caches ranked entries per class filter.
type Leaderboard struct {
	*View[[]api.LeaderboardEntry]
	src Source
}

func NewLeaderboard(src Source, opts ...cache.Option) *Leaderboard {
	return &Leaderboard{View: New[[]api.LeaderboardEntry]("leaderboard", opts...), src: src}
}

func (l *Leaderboard) Get(ctx context.Context, f api.ClassFilter, force bool) ([]api.LeaderboardEntry, error) {
	fetch := func(ctx context.Context) ([]api.LeaderboardEntry, error) {
		return l.src.Leaderboard(ctx, f)
	}
	if force {
		return l.Reload(ctx, LeaderboardKey(f), fetch)
	}
	return l.Load(ctx, LeaderboardKey(f), fetch)
}

// ClassAnalytics caches the per-class summary.
type ClassAnalytics struct {
	*View[api.ClassAnalytics]
	src Source
}

func NewClassAnalytics(src Source, opts ...cache.Option) *ClassAnalytics {
	return &ClassAnalytics{View: New[api.ClassAnalytics]("analytics", opts...), src: src}
}

func (a *ClassAnalytics) Get(ctx context.Context, f api.ClassFilter, force bool) (api.ClassAnalytics, error) {
	fetch := func(ctx context.Context) (api.ClassAnalytics, error) {
		return a.src.ClassAnalytics(ctx, f)
	}
	key := cache.ClassKey(f.Level, f.Letter)
	if force {
		return a.Reload(ctx, key, fetch)
	}
	return a.Load(ctx, key, fetch)
}

// Students caches a teacher's student list per class.
type Students struct {
	*View[[]api.Student]
	src Source
}

func NewStudents(src Source, opts ...cache.Option) *Students {
	return &Students{View: New[[]api.Student]("students", opts...), src: src}
}

func (s *Students) Get(ctx context.Context, f api.ClassFilter, force bool) ([]api.Student, error) {
	fetch := func(ctx context.Context) ([]api.Student, error) {
		return s.src.Students(ctx, f)
	}
	key := cache.ClassKey(f.Level, f.Letter)
	if force {
		return s.Reload(ctx, key, fetch)
	}
	return s.Load(ctx, key, fetch)
}

// AchievementsKey is the singleton key of the achievements view.
const AchievementsKey = "me"

// Achievements caches the current user's achievements.
type Achievements struct {
	*View[[]api.Achievement]
	src Source
}

func NewAchievements(src Source, opts ...cache.Option) *Achievements {
	return &Achievements{View: New[[]api.Achievement]("achievements", opts...), src: src}
}

func (a *Achievements) Get(ctx context.Context, force bool) ([]api.Achievement, error) {
	fetch := func(ctx context.Context) ([]api.Achievement, error) {
		return a.src.MyAchievements(ctx)
	}
	if force {
		return a.Reload(ctx, AchievementsKey, fetch)
	}
	return a.Load(ctx, AchievementsKey, fetch)
}
