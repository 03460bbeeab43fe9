// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/staranto/lessonctl/internal/meta"
	"github.com/staranto/lessonctl/internal/tui"
	"github.com/staranto/lessonctl/internal/view"
)

// DashCommandAction runs the full-screen dashboard. The views live exactly as
// long as the program; closing them cancels whatever is still in flight.
func DashCommandAction(ctx context.Context, cmd *cli.Command) error {
	client, err := NewClient(cmd)
	if err != nil {
		return err
	}

	me, err := client.Me(ctx)
	if err != nil {
		return err
	}

	cfg := tui.Config{
		Leaderboard:  view.NewLeaderboard(client),
		Achievements: view.NewAchievements(client),
		Class:        ClassFilter(cmd),
		User:         fmt.Sprintf("%s (%s)", me.FullName(), me.Role),
	}
	defer cfg.Leaderboard.Close()
	defer cfg.Achievements.Close()
	if me.IsTeacher() {
		cfg.Analytics = view.NewClassAnalytics(client)
		defer cfg.Analytics.Close()
	}

	p := tea.NewProgram(tui.NewDashboardModel(ctx, cfg),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

func DashCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "dash",
		Usage:     "interactive dashboard",
		UsageText: "lessonctl dash [--level N] [--letter L]",
		Metadata:  map[string]any{"meta": meta},
		Flags:     append([]cli.Flag{NewAPIFlag("dash")}, NewClassFlags("dash")...),
		Action:    DashCommandAction,
	}
}
