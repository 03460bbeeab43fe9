// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ViewState is where the dashboard is in its load cycle.
type ViewState int

const (
	// ViewStateLoading indicates a fetch is in flight.
	ViewStateLoading ViewState = iota
	// ViewStateReady indicates the active tab has data.
	ViewStateReady
	// ViewStateError indicates the last fetch failed. Keys still work so the
	// user can retry or switch tabs.
	ViewStateError
	// ViewStateQuitting indicates the program is exiting.
	ViewStateQuitting
)

const (
	defaultWidth  = 100
	defaultHeight = 24

	// chromeHeight is the lines taken by the tab bar, status and help.
	chromeHeight = 7
	minHeight    = 3
)

// Key bindings.
const (
	keyQuit     = "q"
	keyCtrlC    = "ctrl+c"
	keyTab      = "tab"
	keyShiftTab = "shift+tab"
	keyReload   = "r"
	keyRefetch  = "R"
	keyLevelUp  = "+"
	keyLevelDn  = "-"
)

var (
	TabStyle       = lipgloss.NewStyle().Padding(0, 2).Foreground(lipgloss.Color("245"))
	ActiveTabStyle = lipgloss.NewStyle().Padding(0, 2).Bold(true).
			Foreground(lipgloss.Color("#f6be00")).
			Underline(true)
	StatusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	ErrorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	HelpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
	SelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
)

// LoadingState is the spinner shown while a fetch runs.
type LoadingState struct {
	spinner spinner.Model
	message string
}

func NewLoadingState(message string) *LoadingState {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#00c8f0"))
	return &LoadingState{spinner: s, message: message}
}

func (l *LoadingState) Init() tea.Cmd {
	return l.spinner.Tick
}

func (l *LoadingState) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	l.spinner, cmd = l.spinner.Update(msg)
	return cmd
}

// RenderLoading returns the spinner line, or plain text when loading is nil.
func RenderLoading(loading *LoadingState) string {
	if loading == nil {
		return "Loading..."
	}
	return fmt.Sprintf("\n %s %s\n\n", loading.spinner.View(), loading.message)
}
