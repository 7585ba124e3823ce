// Package tui provides the Bubble Tea calendar interface.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/streakline/internal/goal"
)

const (
	fieldGoal = iota
	fieldPeriod
)

var setupPeriods = []goal.Period{goal.PeriodWeek, goal.PeriodMonth, goal.PeriodYear}

var (
	formTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	formBoxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
	periodActiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#F0F0F0")).
				Bold(true).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#C89A3A"))
	periodInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	formErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

type setupForm struct {
	input       textinput.Model
	periodIndex int
	field       int
	isInitial   bool
	errMsg      string
}

func newGoalInput() textinput.Model {
	input := textinput.New()
	input.Prompt = "Goal: "
	input.Placeholder = "Learn Go"
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

// startSetup switches to the goal form. isInitial distinguishes
// onboarding (cannot be cancelled, seeds the activity clock) from a
// later edit, which resets streak progress on save.
func (m *Model) startSetup(isInitial bool) {
	form := setupForm{
		input:     newGoalInput(),
		isInitial: isInitial,
	}
	form.input.SetValue(m.goalState.Goal)
	for i, p := range setupPeriods {
		if p == m.goalState.Period {
			form.periodIndex = i
		}
	}
	form.input.Focus()
	m.form = form
	m.mode = modeSetup
}

func (m *Model) updateSetup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if !m.form.isInitial {
			m.mode = modeCalendar
		}
		return m, nil
	case "tab", "down", "up":
		if m.form.field == fieldGoal {
			m.form.field = fieldPeriod
			m.form.input.Blur()
			return m, nil
		}
		m.form.field = fieldGoal
		return m, m.form.input.Focus()
	case "enter":
		return m.submitSetup()
	}
	if m.form.field == fieldPeriod {
		switch msg.String() {
		case "left", "h":
			m.form.periodIndex = (m.form.periodIndex + len(setupPeriods) - 1) % len(setupPeriods)
			return m, nil
		case "right", "l":
			m.form.periodIndex = (m.form.periodIndex + 1) % len(setupPeriods)
			return m, nil
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.form.input, cmd = m.form.input.Update(msg)
	return m, cmd
}

func (m *Model) submitSetup() (tea.Model, tea.Cmd) {
	goalText := strings.TrimSpace(m.form.input.Value())
	if goalText == "" {
		m.form.errMsg = "goal must not be empty"
		return m, nil
	}
	period := setupPeriods[m.form.periodIndex]

	ctx := context.Background()
	var err error
	if m.form.isInitial {
		err = m.goals.SetInitialGoal(ctx, goalText, period)
	} else {
		err = m.goals.UpdateGoal(ctx, goalText, period)
	}
	if err != nil {
		m.form.errMsg = fmt.Sprintf("save failed: %v", err)
		return m, nil
	}

	m.reloadGoal()
	m.regenerate()
	m.mode = modeCalendar
	return m, nil
}

func (m *Model) viewSetup() string {
	var b strings.Builder
	title := "Set your learning goal"
	if !m.form.isInitial {
		title = "Edit your learning goal"
	}
	b.WriteString(formTitleStyle.Render(title))
	b.WriteString("\n\n")
	b.WriteString(m.form.input.View())
	b.WriteString("\n\n")

	chips := make([]string, 0, len(setupPeriods))
	for i, p := range setupPeriods {
		style := periodInactiveStyle
		if i == m.form.periodIndex {
			style = periodActiveStyle
		}
		chips = append(chips, style.Render(p.String()))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, chips...))
	b.WriteString("\n")
	if m.form.errMsg != "" {
		b.WriteString(formErrorStyle.Render(m.form.errMsg))
		b.WriteString("\n")
	}
	hint := "tab field  ←/→ period  enter save"
	if !m.form.isInitial {
		hint += "  esc cancel"
	}
	b.WriteString(footerStyle.Render(hint))

	content := formBoxStyle.Render(b.String())
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}
