// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/staranto/lessonctl/internal/api"
	"github.com/staranto/lessonctl/internal/cache"
	"github.com/staranto/lessonctl/internal/validation"
	"github.com/staranto/lessonctl/internal/view"
)

// Tab is one screen of the dashboard.
type Tab int

const (
	TabLeaderboard Tab = iota
	TabAchievements
	TabAnalytics
)

func (t Tab) String() string {
	switch t {
	case TabLeaderboard:
		return "Leaderboard"
	case TabAchievements:
		return "Achievements"
	case TabAnalytics:
		return "Class analytics"
	default:
		return "?"
	}
}

// ErrLevelRequired is shown on the analytics tab until a level is picked.
var ErrLevelRequired = errors.New("select a class level with + or -")

// Config wires the dashboard to its views. The caller owns the views and
// closes them after the program exits.
type Config struct {
	Leaderboard  *view.Leaderboard
	Achievements *view.Achievements
	// Analytics is nil for students, which hides the tab.
	Analytics *view.ClassAnalytics
	Class     api.ClassFilter
	User      string
	Now       func() time.Time
}

// loadedMsg carries one fetch result. seq ties it to the load that asked for
// it so late answers for an abandoned tab or class are dropped.
type loadedMsg struct {
	seq     int
	tab     Tab
	columns []table.Column
	rows    []table.Row
	cached  bool
	err     error
}

// DashboardModel is the Bubble Tea model behind `lessonctl dash`.
type DashboardModel struct {
	ctx context.Context
	cfg Config

	tabs   []Tab
	active int
	class  api.ClassFilter

	state   ViewState
	loading *LoadingState
	table   table.Model
	seq     int

	cached    bool
	fetchedAt time.Time
	err       error

	width  int
	height int
}

// NewDashboardModel starts on the leaderboard in the loading state. Init
// issues the first fetch.
func NewDashboardModel(ctx context.Context, cfg Config) *DashboardModel {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	tabs := []Tab{TabLeaderboard, TabAchievements}
	if cfg.Analytics != nil {
		tabs = append(tabs, TabAnalytics)
	}
	return &DashboardModel{
		ctx:     ctx,
		cfg:     cfg,
		tabs:    tabs,
		class:   cfg.Class,
		state:   ViewStateLoading,
		loading: NewLoadingState("Loading " + strings.ToLower(TabLeaderboard.String()) + "..."),
		width:   defaultWidth,
		height:  defaultHeight,
	}
}

// Init initializes the model.
func (m *DashboardModel) Init() tea.Cmd {
	m.seq++
	return tea.Batch(m.loading.Init(), m.load(m.seq, false))
}

// Tab is the active tab.
func (m *DashboardModel) Tab() Tab { return m.tabs[m.active] }

// Update handles messages and updates the model state.
func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(m.tableHeight())
		m.table.SetWidth(m.width)
		return m, nil
	case loadedMsg:
		return m.handleLoaded(msg)
	case tea.KeyMsg:
		if next, cmd, ok := m.handleKey(msg); ok {
			return next, cmd
		}
	}

	switch m.state {
	case ViewStateLoading:
		return m, m.loading.Update(msg)
	case ViewStateReady:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
}

func (m *DashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {
	case keyQuit, keyCtrlC:
		m.state = ViewStateQuitting
		return m, tea.Quit, true
	case keyTab:
		m.active = (m.active + 1) % len(m.tabs)
		return m, m.reload(false), true
	case keyShiftTab:
		m.active = (m.active + len(m.tabs) - 1) % len(m.tabs)
		return m, m.reload(false), true
	case keyReload:
		return m, m.reload(false), true
	case keyRefetch:
		return m, m.reload(true), true
	case keyLevelUp:
		m.class.Level = stepLevel(m.class.Level, 1)
		return m, m.reload(false), true
	case keyLevelDn:
		m.class.Level = stepLevel(m.class.Level, -1)
		return m, m.reload(false), true
	}
	return m, nil, false
}

// stepLevel cycles through every level, then all levels (nil).
func stepLevel(level *int, delta int) *int {
	next := 0
	if level != nil {
		next = *level
	}
	next += delta
	if next > validation.MaxLevel {
		next = 0
	} else if next < 0 {
		next = validation.MaxLevel
	}
	if next < validation.MinLevel {
		return nil
	}
	return &next
}

// reload enters the loading state and fetches the active tab. Without force
// a fresh cache entry answers without a request.
func (m *DashboardModel) reload(force bool) tea.Cmd {
	m.seq++
	m.state = ViewStateLoading
	m.err = nil
	m.loading = NewLoadingState("Loading " + strings.ToLower(m.Tab().String()) + "...")
	return tea.Batch(m.loading.Init(), m.load(m.seq, force))
}

func (m *DashboardModel) handleLoaded(msg loadedMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.seq {
		log.Debugf("dash: dropping stale %s result", msg.tab)
		return m, nil
	}
	if msg.err != nil {
		if errors.Is(msg.err, view.ErrClosed) {
			m.state = ViewStateQuitting
			return m, tea.Quit
		}
		m.err = msg.err
		m.state = ViewStateError
		return m, nil
	}

	m.table = table.New(
		table.WithColumns(msg.columns),
		table.WithRows(msg.rows),
		table.WithFocused(true),
		table.WithHeight(m.tableHeight()),
		table.WithWidth(m.width),
	)
	styles := table.DefaultStyles()
	styles.Selected = SelectedStyle
	m.table.SetStyles(styles)

	m.cached = msg.cached
	if !msg.cached {
		m.fetchedAt = m.cfg.Now()
	}
	m.state = ViewStateReady
	return m, nil
}

func (m *DashboardModel) tableHeight() int {
	if h := m.height - chromeHeight; h > minHeight {
		return h
	}
	return minHeight
}

// load returns the command fetching the active tab for the current class.
// It captures everything it needs so the model may change while it runs.
func (m *DashboardModel) load(seq int, force bool) tea.Cmd {
	ctx, cfg, tab, class := m.ctx, m.cfg, m.Tab(), m.class
	return func() tea.Msg {
		msg := loadedMsg{seq: seq, tab: tab}
		switch tab {
		case TabLeaderboard:
			_, msg.cached = cfg.Leaderboard.Cached(view.LeaderboardKey(class))
			entries, err := cfg.Leaderboard.Get(ctx, class, force)
			msg.columns, msg.rows, msg.err = leaderboardTable(), leaderboardRows(entries), err
		case TabAchievements:
			_, msg.cached = cfg.Achievements.Cached(view.AchievementsKey)
			achievements, err := cfg.Achievements.Get(ctx, force)
			msg.columns, msg.rows, msg.err = achievementsTable(), achievementsRows(achievements, cfg.Now()), err
		case TabAnalytics:
			if class.Level == nil {
				msg.err = ErrLevelRequired
				break
			}
			_, msg.cached = cfg.Analytics.Cached(cache.ClassKey(class.Level, class.Letter))
			analytics, err := cfg.Analytics.Get(ctx, class, force)
			msg.columns, msg.rows, msg.err = analyticsTable(), analyticsRows(analytics), err
		}
		msg.cached = msg.cached && !force
		return msg
	}
}

func leaderboardTable() []table.Column {
	return []table.Column{
		{Title: "#", Width: 4},
		{Title: "Name", Width: 28},
		{Title: "Class", Width: 8},
		{Title: "Points", Width: 8},
		{Title: "Lessons", Width: 8},
		{Title: "Avg %", Width: 7},
	}
}

func leaderboardRows(entries []api.LeaderboardEntry) []table.Row {
	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		name := e.FullName
		if name == "" {
			name = e.Username
		}
		rows = append(rows, table.Row{
			strconv.Itoa(e.Rank),
			name,
			e.ClassDisplay,
			strconv.Itoa(e.TotalPoints),
			strconv.Itoa(e.CompletedLessons),
			fmt.Sprintf("%.1f", e.AveragePercentage),
		})
	}
	return rows
}

func achievementsTable() []table.Column {
	return []table.Column{
		{Title: "Achievement", Width: 28},
		{Title: "Description", Width: 44},
		{Title: "Earned", Width: 16},
	}
}

func achievementsRows(achievements []api.Achievement, now time.Time) []table.Row {
	rows := make([]table.Row, 0, len(achievements))
	for _, a := range achievements {
		earned := "-"
		if !a.EarnedAt.IsZero() {
			earned = humanize.RelTime(a.EarnedAt, now, "ago", "from now")
		}
		rows = append(rows, table.Row{a.Title, a.Description, earned})
	}
	return rows
}

func analyticsTable() []table.Column {
	return []table.Column{
		{Title: "#", Width: 4},
		{Title: "Lesson", Width: 32},
		{Title: "Done", Width: 6},
		{Title: "Rate %", Width: 7},
		{Title: "Avg %", Width: 7},
		{Title: "Attempts", Width: 9},
	}
}

func analyticsRows(a api.ClassAnalytics) []table.Row {
	rows := make([]table.Row, 0, len(a.LessonsStats))
	for _, s := range a.LessonsStats {
		rows = append(rows, table.Row{
			strconv.Itoa(s.LessonOrder),
			s.LessonTitle,
			strconv.Itoa(s.CompletedCount),
			fmt.Sprintf("%.1f", s.CompletionRate),
			fmt.Sprintf("%.1f", s.AveragePercentage),
			strconv.Itoa(s.TotalAttempts),
		})
	}
	return rows
}

// View renders the current view.
func (m *DashboardModel) View() string {
	if m.state == ViewStateQuitting {
		return ""
	}

	var body string
	switch m.state {
	case ViewStateLoading:
		body = RenderLoading(m.loading)
	case ViewStateError:
		body = "\n " + ErrorStyle.Render(api.Friendly(m.err)) + "\n"
	case ViewStateReady:
		body = m.table.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderTabs(),
		"",
		body,
		"",
		StatusStyle.Render(m.status()),
		HelpStyle.Render("tab switch · r reload · R refetch · +/- level · q quit"),
	)
}

func (m *DashboardModel) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, t := range m.tabs {
		if i == m.active {
			parts = append(parts, ActiveTabStyle.Render(t.String()))
		} else {
			parts = append(parts, TabStyle.Render(t.String()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *DashboardModel) status() string {
	parts := []string{}
	if m.cfg.User != "" {
		parts = append(parts, m.cfg.User)
	}
	parts = append(parts, "class "+ClassLabel(m.class))
	if m.state == ViewStateReady {
		if m.cached {
			parts = append(parts, "cached")
		} else if !m.fetchedAt.IsZero() {
			parts = append(parts, "fetched "+m.fetchedAt.Format("15:04:05"))
		}
	}
	return strings.Join(parts, " · ")
}

// ClassLabel renders a filter the way the server displays classes.
func ClassLabel(f api.ClassFilter) string {
	switch {
	case f.Level == nil && f.Letter == "":
		return "all"
	case f.Level == nil:
		return "all " + f.Letter
	default:
		return strconv.Itoa(*f.Level) + f.Letter
	}
}
