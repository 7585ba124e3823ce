// Package stats prepares and renders tracker reports.
package stats

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/verte-zerg/streakline/internal/datekey"
	"github.com/verte-zerg/streakline/internal/engine"
	"github.com/verte-zerg/streakline/internal/goal"
	"github.com/verte-zerg/streakline/internal/model"
	"github.com/verte-zerg/streakline/internal/store"
)

// DayRow is one history line in the report table.
type DayRow struct {
	Date          time.Time
	Learned       bool
	Freezed       bool
	RunningStreak int
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Goal  goal.State
	Stats model.LearningStats
	Days  []DayRow
}

// BuildReport loads and prepares data for stats rendering. Days
// covers the trailing historyDays ending today, oldest first.
func BuildReport(ctx context.Context, st *store.Store, goals *goal.Manager, period goal.Period, today time.Time, historyDays int) (Report, error) {
	hist, err := st.LoadHistory(ctx)
	if err != nil {
		return Report{}, err
	}
	gstate, err := goals.Load(ctx)
	if err != nil {
		return Report{}, err
	}
	if historyDays <= 0 {
		historyDays = 1
	}

	days := make([]DayRow, 0, historyDays)
	for i := historyDays - 1; i >= 0; i-- {
		day := datekey.Midnight(today).AddDate(0, 0, -i)
		key := datekey.Encode(day)
		days = append(days, DayRow{
			Date:          day,
			Learned:       hist.IsLearned(key),
			Freezed:       hist.IsFreezed(key),
			RunningStreak: engine.Streak(hist, day),
		})
	}

	return Report{
		Goal:  gstate,
		Stats: engine.ComputeStats(hist, period, today),
		Days:  days,
	}, nil
}

// StatusMark returns the table cell for a day's status.
func (r DayRow) StatusMark() string {
	switch {
	case r.Learned:
		return "✓ learned"
	case r.Freezed:
		return "❄ frozen"
	default:
		return "·"
	}
}

// RenderSummary prints the headline numbers for the report.
func RenderSummary(w io.Writer, r Report) error {
	if r.Goal.Goal != "" {
		if _, err := fmt.Fprintf(w, "Goal: %s", r.Goal.Goal); err != nil {
			return err
		}
		if p := r.Goal.Period.String(); p != "" {
			if _, err := fmt.Fprintf(w, " (%s)", p); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Current streak: %d\n", r.Stats.CurrentStreak); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Days learned: %d\n", r.Stats.DaysLearned); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Days frozen: %d\n", r.Stats.DaysFreezed); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Freezes: %d used, %d left\n", r.Stats.FreezesUsed, r.Stats.FreezesAvailable); err != nil {
		return err
	}
	return nil
}

// RenderHistory prints the per-day table for the report window.
func RenderHistory(w io.Writer, r Report) error {
	if len(r.Days) == 0 {
		_, err := fmt.Fprintln(w, "No history yet.")
		return err
	}
	headers := []string{"Date", "Status", "Streak"}
	rows := make([][]string, 0, len(r.Days))
	for _, day := range r.Days {
		rows = append(rows, []string{
			datekey.Encode(day.Date),
			day.StatusMark(),
			fmt.Sprintf("%d", day.RunningStreak),
		})
	}
	for _, line := range formatTable(headers, rows, map[int]bool{2: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderReport prints the full text report: summary, activity
// sparkline, and history table.
func RenderReport(w io.Writer, r Report) error {
	if err := RenderSummary(w, r); err != nil {
		return err
	}
	if spark := ActivitySparkline(r.Days, terminalWidth()); spark != "" {
		if _, err := fmt.Fprintf(w, "\nActivity: %s\n", spark); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return RenderHistory(w, r)
}
