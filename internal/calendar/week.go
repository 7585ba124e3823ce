// Package calendar derives the visible 7-day window from a month and
// week offset.
package calendar

import (
	"math"
	"time"

	"github.com/verte-zerg/streakline/internal/datekey"
	"github.com/verte-zerg/streakline/internal/model"
)

// DaysPerWeek is the window size emitted by Generate.
const DaysPerWeek = 7

// MonthStart returns midnight of the first day of t's month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// baseStart returns the first cell of the month's day grid: the
// weekStart-aligned day on or before the 1st of the month.
func baseStart(refMonth time.Time, weekStart time.Weekday) time.Time {
	monthStart := MonthStart(refMonth)
	daysBack := (int(monthStart.Weekday()) - int(weekStart) + DaysPerWeek) % DaysPerWeek
	return monthStart.AddDate(0, 0, -daysBack)
}

// Generate computes the 7 consecutive days of the weekOffset-th grid
// row of refMonth's day grid, tagging each with its persisted status.
// Negative offsets are treated as 0. The result is always exactly 7
// days in strictly increasing order.
func Generate(refMonth time.Time, weekOffset int, hist model.LearningHistory, today time.Time, weekStart time.Weekday) []model.CalendarDay {
	if weekOffset < 0 {
		weekOffset = 0
	}
	start := baseStart(refMonth, weekStart).AddDate(0, 0, weekOffset*DaysPerWeek)

	days := make([]model.CalendarDay, 0, DaysPerWeek)
	for i := 0; i < DaysPerWeek; i++ {
		date := start.AddDate(0, 0, i)
		key := datekey.Encode(date)
		days = append(days, model.CalendarDay{
			Date:           date,
			IsCurrentMonth: date.Year() == refMonth.Year() && date.Month() == refMonth.Month(),
			IsToday:        datekey.SameDay(date, today),
			IsLearned:      hist.IsLearned(key),
			IsFreezed:      hist.IsFreezed(key),
		})
	}
	return days
}

// WeekOffsetFor returns the grid row of refMonth's day grid that
// contains date. Dates before the grid's first cell clamp to 0
// instead of going negative.
func WeekOffsetFor(date, refMonth time.Time, weekStart time.Weekday) int {
	base := baseStart(refMonth, weekStart)
	days := daysBetween(base, date)
	if days < 0 {
		return 0
	}
	return days / DaysPerWeek
}

// daysBetween counts whole calendar days from a to b, ignoring
// time-of-day. Rounding absorbs the odd hour a DST transition adds
// or removes between midnights.
func daysBetween(a, b time.Time) int {
	am := datekey.Midnight(a)
	bm := datekey.Midnight(b)
	return int(math.Round(bm.Sub(am).Hours() / 24))
}
