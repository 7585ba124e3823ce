// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/streakline/internal/datekey"
	"github.com/verte-zerg/streakline/internal/stats"
)

const (
	tabOverview = iota
	tabHistory
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	report stats.Report

	tabs         []string
	activeTab    int
	overview     viewport.Model
	historyTable table.Model

	width  int
	height int
}

// NewModel constructs a stats UI model over a prepared report.
func NewModel(report stats.Report) *Model {
	m := &Model{
		report: report,
		tabs:   []string{"Overview", "History"},
	}
	m.overview = viewport.New(0, 0)
	m.historyTable = buildHistoryTable(report, 0, 1)
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
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "g", "home":
			if m.activeTab == tabHistory {
				m.historyTable.GotoTop()
			} else {
				m.overview.GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabHistory {
				m.historyTable.GotoBottom()
			} else {
				m.overview.GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabHistory {
				var cmd tea.Cmd
				m.historyTable, cmd = m.historyTable.Update(msg)
				return m, cmd
			}
			var cmd tea.Cmd
			m.overview, cmd = m.overview.Update(msg)
			return m, cmd
		}
	default:
		return m, nil
	}
}

func (m *Model) moveTab(delta int) {
	m.activeTab = (m.activeTab + delta + len(m.tabs)) % len(m.tabs)
	if m.activeTab == tabHistory {
		m.historyTable.Focus()
	} else {
		m.historyTable.Blur()
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	header := m.renderHeader()
	var body string
	if m.activeTab == tabHistory {
		body = m.historyTable.View()
	} else {
		body = m.overview.View()
	}
	footer := headerStyle.Render("←/→ tabs  g/G top/bottom  q quit")
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) renderHeader() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		style := inactiveNavStyle
		if i == m.activeTab {
			style = activeNavStyle
		}
		parts = append(parts, style.Render(tab))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight int) {
	headerHeight = lipgloss.Height(activeNavStyle.Render("X"))
	if headerHeight < 1 {
		headerHeight = 1
	}
	bodyHeight = m.height - headerHeight - 1
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight := m.layoutHeights()
	m.overview.Width = m.width
	m.overview.Height = bodyHeight
	m.overview.SetContent(m.renderOverview())
	m.historyTable = buildHistoryTable(m.report, m.width, bodyHeight)
	if m.activeTab == tabHistory {
		m.historyTable.Focus()
	}
}

func (m *Model) renderOverview() string {
	var buf bytes.Buffer
	if err := stats.RenderSummary(&buf, m.report); err != nil {
		return fmt.Sprintf("render failed: %v", err)
	}
	sparkWidth := m.width - 2
	if spark := stats.ActivitySparkline(m.report.Days, sparkWidth); spark != "" {
		buf.WriteString("\nActivity:\n")
		buf.WriteString(spark)
		buf.WriteString("\n")
	}
	return buf.String()
}

func buildHistoryTable(report stats.Report, width, height int) table.Model {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Status", Width: 12},
		{Title: "Streak", Width: 8},
	}
	rows := make([]table.Row, 0, len(report.Days))
	for i := len(report.Days) - 1; i >= 0; i-- {
		day := report.Days[i]
		rows = append(rows, table.Row{
			datekey.Encode(day.Date),
			day.StatusMark(),
			fmt.Sprintf("%d", day.RunningStreak),
		})
	}
	if height < 2 {
		height = 2
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(height-1),
	)
	if width > 0 {
		t.SetWidth(width)
	}
	return t
}
