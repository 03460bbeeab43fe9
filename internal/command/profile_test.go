// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/lessonctl/internal/api"
	"github.com/staranto/lessonctl/internal/session"
)

type fakeProfileSource struct {
	ach      []api.Achievement
	statsErr error
	// sawCancel is set when Me observes the group context being cancelled.
	sawCancel chan bool
}

func (f *fakeProfileSource) Me(ctx context.Context) (api.User, error) {
	if f.sawCancel != nil {
		select {
		case <-ctx.Done():
			f.sawCancel <- true
		case <-time.After(time.Second):
			f.sawCancel <- false
		}
	}
	return api.User{Username: "anna", FirstName: "Анна", LastName: "Смирнова", Role: api.RoleStudent, ClassDisplay: "5А"}, nil
}

func (f *fakeProfileSource) MyStats(context.Context) (api.UserStats, error) {
	if f.statsErr != nil {
		return api.UserStats{}, f.statsErr
	}
	return api.UserStats{TotalPoints: 120, CompletedLessons: 4, AveragePercentage: 87.5, TotalAttempts: 6}, nil
}

func (f *fakeProfileSource) MyAchievements(context.Context) ([]api.Achievement, error) {
	return f.ach, nil
}

func TestFetchProfile(t *testing.T) {
	day := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	src := &fakeProfileSource{ach: []api.Achievement{
		{Title: "Первый урок", EarnedAt: day},
		{Title: "Отличник", EarnedAt: day.Add(48 * time.Hour)},
		{Title: "Марафон", EarnedAt: day.Add(24 * time.Hour)},
	}}

	p, err := FetchProfile(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, Profile{
		Username:          "anna",
		FullName:          "Анна Смирнова",
		Role:              "student",
		ClassDisplay:      "5А",
		TotalPoints:       120,
		CompletedLessons:  4,
		AveragePercentage: 87.5,
		TotalAttempts:     6,
		Achievements:      3,
		LatestAchievement: "Отличник",
	}, p)
}

func TestFetchProfile_NoAchievements(t *testing.T) {
	p, err := FetchProfile(context.Background(), &fakeProfileSource{})
	require.NoError(t, err)
	assert.Zero(t, p.Achievements)
	assert.Empty(t, p.LatestAchievement)
}

func TestFetchProfile_FailureCancelsTheRest(t *testing.T) {
	boom := errors.New("boom")
	src := &fakeProfileSource{statsErr: boom, sawCancel: make(chan bool, 1)}

	_, err := FetchProfile(context.Background(), src)
	assert.ErrorIs(t, err, boom)
	assert.True(t, <-src.sawCancel)
}

func TestSettings(t *testing.T) {
	f, srv := newFakeAPI(t)
	store := session.NewMemoryStore(session.Pair{Access: "a1", Refresh: "r1"})

	out, err := run(t, store, "settings", "--api", srv.URL, "--level", "6", "--letter", "В")
	require.NoError(t, err)
	assert.Equal(t, "Профиль обновлён\n", out)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(f.body("PUT /users/profile"), &sent))
	assert.Equal(t, map[string]any{"level": float64(6), "level_letter": "В"}, sent)
}

func TestSettings_Rejected(t *testing.T) {
	f, srv := newFakeAPI(t)
	store := session.NewMemoryStore(session.Pair{Access: "a1", Refresh: "r1"})

	_, err := run(t, store, "settings", "--api", srv.URL)
	assert.EqualError(t, err, "nothing to update: give --email, --level or --letter")

	_, err = run(t, store, "settings", "--api", srv.URL, "--letter", "Q")
	assert.Error(t, err)

	_, err = run(t, store, "settings", "--api", srv.URL, "--email", "not-an-email")
	assert.Error(t, err)

	assert.Zero(t, f.count("PUT /users/profile"))
}

func TestParseAnswers(t *testing.T) {
	got, err := ParseAnswers([]string{"10=100", " 11 = 104", "10=101"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"10": 101, "11": 104}, got)

	for in, msg := range map[string]string{
		"10":    `invalid answer "10" (want QUESTION=OPTION)`,
		"x=1":   `invalid question ID in "x=1"`,
		"10=ab": `invalid option ID in "10=ab"`,
	} {
		_, err := ParseAnswers([]string{in})
		assert.EqualError(t, err, msg)
	}

	_, err = ParseAnswers(nil)
	assert.EqualError(t, err, "at least one --answer is required")
}

func TestLessonsShow_InvalidID(t *testing.T) {
	f, srv := newFakeAPI(t)
	store := session.NewMemoryStore(session.Pair{Access: "a1", Refresh: "r1"})

	_, err := run(t, store, "lessons", "show", "--api", srv.URL, "zero")
	assert.EqualError(t, err, `invalid lesson ID "zero"`)

	_, err = run(t, store, "lessons", "show", "--api", srv.URL, "0")
	assert.EqualError(t, err, `invalid lesson ID "0"`)
	assert.Zero(t, f.count("GET /lessons/0/questions"))
}
