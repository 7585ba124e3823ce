// Package tui provides the Bubble Tea calendar interface.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/streakline/internal/calendar"
	"github.com/verte-zerg/streakline/internal/engine"
	"github.com/verte-zerg/streakline/internal/goal"
	"github.com/verte-zerg/streakline/internal/model"
)

const (
	modeSetup = iota
	modeCalendar
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	dayStyle    = lipgloss.NewStyle().
			Padding(0, 1).
			Align(lipgloss.Center).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	todayStyle = dayStyle.
			BorderForeground(lipgloss.Color("#C89A3A"))
	otherMonthStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	learnedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	frozenStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FAFD7"))
	cardStyle       = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	noticeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FAFD7"))
)

// Model implements the Bubble Tea calendar UI.
type Model struct {
	engine *engine.Engine
	goals  *goal.Manager
	cfg    model.TrackerConfig

	mode      int
	form      setupForm
	goalState goal.State

	currentMonth time.Time
	weekOffset   int
	days         []model.CalendarDay
	stats        model.LearningStats
	notice       string

	width  int
	height int
}

// NewModel constructs the calendar model. With showSetup the goal
// form is shown first; the calendar appears once a goal is saved.
func NewModel(eng *engine.Engine, goals *goal.Manager, cfg model.TrackerConfig, showSetup bool) *Model {
	m := &Model{
		engine: eng,
		goals:  goals,
		cfg:    cfg,
		mode:   modeCalendar,
	}
	m.reloadGoal()
	today := eng.Today()
	m.currentMonth = today
	m.weekOffset = calendar.WeekOffsetFor(today, m.currentMonth, cfg.FirstWeekday)
	m.regenerate()
	if showSetup {
		m.startSetup(m.goalState.Goal == "")
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.mode == modeSetup {
			return m.updateSetup(msg)
		}
		return m.updateCalendar(msg)
	default:
		return m, nil
	}
}

func (m *Model) updateCalendar(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "left", "h":
		m.navigateToPreviousWeek()
	case "right", "l":
		m.navigateToNextWeek()
	case "[":
		m.navigateToPreviousMonth()
	case "]":
		m.navigateToNextMonth()
	case " ", "enter":
		m.logToday(true)
	case "f":
		m.logToday(false)
	case "t":
		m.snapToToday()
	case "e":
		m.startSetup(false)
	}
	return m, nil
}

func (m *Model) logToday(learned bool) {
	ctx := context.Background()
	var applied bool
	var err error
	if learned {
		_, applied, err = m.engine.ToggleLearned(ctx)
	} else {
		_, applied, err = m.engine.ToggleFreezed(ctx)
	}
	if err != nil {
		m.notice = fmt.Sprintf("save failed: %v", err)
		return
	}
	if !applied {
		if learned {
			m.notice = "today is already logged"
		} else {
			m.notice = "today is already logged or no freezes left"
		}
	}
	m.reloadGoal()
	m.regenerate()
}

func (m *Model) snapToToday() {
	today := m.engine.Today()
	m.currentMonth = today
	m.weekOffset = calendar.WeekOffsetFor(today, m.currentMonth, m.cfg.FirstWeekday)
	m.regenerate()
}

func (m *Model) navigateToPreviousWeek() {
	m.weekOffset--
	if m.weekOffset < 0 {
		// Underflow re-anchors to the previous month's last grid row.
		prev := m.currentMonth.AddDate(0, -1, 0)
		lastDay := calendar.MonthStart(m.currentMonth).AddDate(0, 0, -1)
		m.currentMonth = prev
		m.weekOffset = calendar.WeekOffsetFor(lastDay, prev, m.cfg.FirstWeekday)
	}
	m.regenerate()
	m.resyncMonth()
}

func (m *Model) navigateToNextWeek() {
	m.weekOffset++
	m.regenerate()
	m.resyncMonth()
}

func (m *Model) navigateToPreviousMonth() {
	m.currentMonth = m.currentMonth.AddDate(0, -1, 0)
	m.weekOffset = calendar.WeekOffsetFor(m.currentMonth, m.currentMonth, m.cfg.FirstWeekday)
	m.regenerate()
}

func (m *Model) navigateToNextMonth() {
	m.currentMonth = m.currentMonth.AddDate(0, 1, 0)
	m.weekOffset = calendar.WeekOffsetFor(m.currentMonth, m.currentMonth, m.cfg.FirstWeekday)
	m.regenerate()
}

// resyncMonth snaps the displayed month to the visible week after
// week navigation crosses a month boundary.
func (m *Model) resyncMonth() {
	if len(m.days) == 0 {
		return
	}
	first := m.days[0].Date
	if first.Year() == m.currentMonth.Year() && first.Month() == m.currentMonth.Month() {
		return
	}
	m.currentMonth = calendar.MonthStart(first)
	m.weekOffset = calendar.WeekOffsetFor(first, m.currentMonth, m.cfg.FirstWeekday)
	m.regenerate()
}

func (m *Model) regenerate() {
	ctx := context.Background()
	hist, err := m.engine.History(ctx)
	if err != nil {
		m.notice = fmt.Sprintf("load failed: %v", err)
		hist = model.NewLearningHistory()
	}
	today := m.engine.Today()
	m.days = calendar.Generate(m.currentMonth, m.weekOffset, hist, today, m.cfg.FirstWeekday)
	m.stats = engine.ComputeStats(hist, m.goalState.Period, today)
}

func (m *Model) reloadGoal() {
	gstate, err := m.goals.Load(context.Background())
	if err != nil {
		m.notice = fmt.Sprintf("load failed: %v", err)
		return
	}
	m.goalState = gstate
}

// MonthYearString is the calendar header, derived from the first
// visible day so cross-month weeks label themselves correctly.
func (m *Model) MonthYearString() string {
	ref := m.currentMonth
	if len(m.days) > 0 {
		ref = m.days[0].Date
	}
	return ref.Format("January 2006")
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.mode == modeSetup {
		return m.viewSetup()
	}
	return m.viewCalendar()
}

func (m *Model) viewCalendar() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(m.MonthYearString()))
	if m.goalState.Goal != "" {
		b.WriteString(footerStyle.Render("  ·  " + m.goalState.Goal))
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderWeek())
	b.WriteString("\n")
	b.WriteString(m.renderStats())
	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString(footerStyle.Render("←/→ week  [/] month  t today  space log  f freeze  e goal  q quit"))
	content := b.String()
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) renderWeek() string {
	cells := make([]string, 0, len(m.days))
	for _, day := range m.days {
		label := day.Date.Format("Mon")
		number := fmt.Sprintf("%d", day.DayNumber())
		mark := " "
		switch {
		case day.IsLearned:
			mark = learnedStyle.Render("✓")
		case day.IsFreezed:
			mark = frozenStyle.Render("❄")
		}
		body := fmt.Sprintf("%s\n%s\n%s", label, number, mark)
		style := dayStyle
		if day.IsToday {
			style = todayStyle
		}
		if !day.IsCurrentMonth {
			body = otherMonthStyle.Render(body)
		}
		cells = append(cells, style.Render(body))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func (m *Model) renderStats() string {
	cards := []string{
		renderCard("Streak", fmt.Sprintf("%d", m.stats.CurrentStreak)),
		renderCard("Learned", fmt.Sprintf("%d", m.stats.DaysLearned)),
		renderCard("Frozen", fmt.Sprintf("%d", m.stats.DaysFreezed)),
		renderCard("Freezes left", fmt.Sprintf("%d", m.stats.FreezesAvailable)),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func renderCard(title, value string) string {
	body := cardTitleStyle.Render(title) + "\n" + cardValueStyle.Render(value)
	return cardStyle.Render(body)
}
