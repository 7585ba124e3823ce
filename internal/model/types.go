// Package model defines shared data structures.
package model

import "time"

// TrackerConfig defines calendar and reporting settings.
type TrackerConfig struct {
	FirstWeekday time.Weekday
	GraceHours   int
	HistoryDays  int
}

// CalendarDay is one date's display snapshot in the visible week.
type CalendarDay struct {
	Date           time.Time
	IsCurrentMonth bool
	IsToday        bool
	IsLearned      bool
	IsFreezed      bool
}

// DayNumber returns the day-of-month for display.
func (d CalendarDay) DayNumber() int {
	return d.Date.Day()
}

// IsLogged reports whether the day has any recorded status.
func (d CalendarDay) IsLogged() bool {
	return d.IsLearned || d.IsFreezed
}

// LearningStats aggregates history into the numbers shown in the UI.
type LearningStats struct {
	DaysLearned      int `json:"daysLearned"`
	DaysFreezed      int `json:"daysFreezed"`
	CurrentStreak    int `json:"currentStreak"`
	FreezesUsed      int `json:"freezesUsed"`
	FreezesAvailable int `json:"freezesAvailable"`
}

// LearningHistory is the persisted source of truth. Date keys are
// "YYYY-MM-DD" strings; only true entries are kept.
type LearningHistory struct {
	LearnedDates map[string]bool `json:"learnedDates"`
	FreezedDates map[string]bool `json:"freezedDates"`
	LastStats    LearningStats   `json:"lastStats"`
}

// NewLearningHistory returns an empty history with allocated maps.
func NewLearningHistory() LearningHistory {
	return LearningHistory{
		LearnedDates: map[string]bool{},
		FreezedDates: map[string]bool{},
	}
}

// IsLearned reports whether the key is recorded as learned.
func (h LearningHistory) IsLearned(key string) bool {
	return h.LearnedDates[key]
}

// IsFreezed reports whether the key is recorded as frozen.
func (h LearningHistory) IsFreezed(key string) bool {
	return h.FreezedDates[key]
}
