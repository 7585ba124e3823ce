// Package engine applies the toggle rules and computes streak
// statistics from the persisted history.
package engine

import (
	"context"
	"time"

	"github.com/verte-zerg/streakline/internal/datekey"
	"github.com/verte-zerg/streakline/internal/goal"
	"github.com/verte-zerg/streakline/internal/model"
	"github.com/verte-zerg/streakline/internal/store"
)

// maxStreakScan bounds the backward walk so a corrupted history
// cannot loop for centuries of days.
const maxStreakScan = 36600

// Engine mutates and inspects the learning history. All rejected
// actions are silent no-ops; only store I/O produces errors.
type Engine struct {
	store *store.Store
	goals *goal.Manager
	cfg   model.TrackerConfig
	now   func() time.Time
}

// New creates an engine over the given store and goal manager.
func New(st *store.Store, goals *goal.Manager, cfg model.TrackerConfig) *Engine {
	return &Engine{store: st, goals: goals, cfg: cfg, now: time.Now}
}

// SetClock overrides the engine's clock. Intended for tests.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// Today returns the current local day at midnight.
func (e *Engine) Today() time.Time {
	return datekey.Midnight(e.now())
}

// History loads the persisted history.
func (e *Engine) History(ctx context.Context) (model.LearningHistory, error) {
	return e.store.LoadHistory(ctx)
}

// Stats rescans the full history and returns fresh statistics. The
// rescan is idempotent: counters derive from the history maps, never
// from increments, so repeated calls cannot drift.
func (e *Engine) Stats(ctx context.Context) (model.LearningStats, error) {
	hist, err := e.store.LoadHistory(ctx)
	if err != nil {
		return model.LearningStats{}, err
	}
	gstate, err := e.goals.Load(ctx)
	if err != nil {
		return model.LearningStats{}, err
	}
	return ComputeStats(hist, gstate.Period, e.Today()), nil
}

// ComputeStats derives statistics from a history snapshot.
func ComputeStats(hist model.LearningHistory, period goal.Period, today time.Time) model.LearningStats {
	learned := countTrue(hist.LearnedDates)
	freezed := countTrue(hist.FreezedDates)
	return model.LearningStats{
		DaysLearned:      learned,
		DaysFreezed:      freezed,
		CurrentStreak:    Streak(hist, today),
		FreezesUsed:      freezed,
		FreezesAvailable: goal.FreezeBudget(period, freezed, hist.LastStats.FreezesAvailable),
	}
}

func countTrue(dates map[string]bool) int {
	n := 0
	for _, set := range dates {
		if set {
			n++
		}
	}
	return n
}

// Streak walks backward day by day and counts consecutive
// learned-or-frozen days. An unlogged today does not break the run;
// the walk then starts at yesterday.
func Streak(hist model.LearningHistory, today time.Time) int {
	day := datekey.Midnight(today)
	if !dayLogged(hist, day) {
		day = day.AddDate(0, 0, -1)
	}
	streak := 0
	for i := 0; i < maxStreakScan; i++ {
		if !dayLogged(hist, day) {
			break
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

func dayLogged(hist model.LearningHistory, day time.Time) bool {
	key := datekey.Encode(day)
	return hist.IsLearned(key) || hist.IsFreezed(key)
}

// IsTodayLearned reports whether today is logged as learned.
func (e *Engine) IsTodayLearned(ctx context.Context) (bool, error) {
	hist, err := e.store.LoadHistory(ctx)
	if err != nil {
		return false, err
	}
	return hist.IsLearned(datekey.Encode(e.Today())), nil
}

// IsTodayFreezed reports whether today is logged as frozen.
func (e *Engine) IsTodayFreezed(ctx context.Context) (bool, error) {
	hist, err := e.store.LoadHistory(ctx)
	if err != nil {
		return false, err
	}
	return hist.IsFreezed(datekey.Encode(e.Today())), nil
}

// IsTodayLogged reports whether today has any recorded status.
func (e *Engine) IsTodayLogged(ctx context.Context) (bool, error) {
	hist, err := e.store.LoadHistory(ctx)
	if err != nil {
		return false, err
	}
	return dayLogged(hist, e.Today()), nil
}

// ToggleLearned marks today as learned. The action only applies when
// today is not yet logged; an already-logged day is left untouched
// and applied=false is returned. Marking learned clears any frozen
// flag for the day, advances the activity clock, and persists the
// recomputed stats.
func (e *Engine) ToggleLearned(ctx context.Context) (model.LearningStats, bool, error) {
	hist, err := e.store.LoadHistory(ctx)
	if err != nil {
		return model.LearningStats{}, false, err
	}
	gstate, err := e.goals.Load(ctx)
	if err != nil {
		return model.LearningStats{}, false, err
	}
	today := e.Today()
	if dayLogged(hist, today) {
		return ComputeStats(hist, gstate.Period, today), false, nil
	}

	key := datekey.Encode(today)
	hist.LearnedDates[key] = true
	delete(hist.FreezedDates, key)

	stats := ComputeStats(hist, gstate.Period, today)
	hist.LastStats = stats
	if _, err := e.store.SaveHistory(ctx, hist); err != nil {
		return stats, false, err
	}
	if err := e.goals.TouchActivity(ctx); err != nil {
		return stats, false, err
	}
	if err := e.goals.SetStreak(ctx, stats.CurrentStreak); err != nil {
		return stats, false, err
	}
	return stats, true, nil
}

// ToggleFreezed marks today as frozen. Besides the today-unlogged
// gate this checks the freeze budget: with no freezes left the call
// is a silent no-op and applied=false is returned.
func (e *Engine) ToggleFreezed(ctx context.Context) (model.LearningStats, bool, error) {
	hist, err := e.store.LoadHistory(ctx)
	if err != nil {
		return model.LearningStats{}, false, err
	}
	gstate, err := e.goals.Load(ctx)
	if err != nil {
		return model.LearningStats{}, false, err
	}
	today := e.Today()
	stats := ComputeStats(hist, gstate.Period, today)
	if dayLogged(hist, today) || stats.FreezesAvailable <= 0 {
		return stats, false, nil
	}

	key := datekey.Encode(today)
	hist.FreezedDates[key] = true
	delete(hist.LearnedDates, key)

	stats = ComputeStats(hist, gstate.Period, today)
	hist.LastStats = stats
	if _, err := e.store.SaveHistory(ctx, hist); err != nil {
		return stats, false, err
	}
	if err := e.goals.SetStreak(ctx, stats.CurrentStreak); err != nil {
		return stats, false, err
	}
	return stats, true, nil
}

// CheckStreakValidity applies the grace-period rule once at startup:
// when the last learning activity is older than the grace window and
// no frozen day covers any part of the gap, streak progress is
// forfeited. Returns whether a reset happened.
func (e *Engine) CheckStreakValidity(ctx context.Context) (bool, error) {
	hist, err := e.store.LoadHistory(ctx)
	if err != nil {
		return false, err
	}
	gstate, err := e.goals.Load(ctx)
	if err != nil {
		return false, err
	}

	lastLearned, ok := latestLearnedDay(hist)
	if !ok {
		return false, nil
	}
	// Prefer the exact activity timestamp; fall back to the end of
	// the most recent learned day when only history is available.
	anchor := gstate.LastActive
	if anchor.IsZero() {
		anchor = lastLearned.AddDate(0, 0, 1)
	}
	now := e.now()
	grace := time.Duration(e.cfg.GraceHours) * time.Hour
	if now.Sub(anchor) <= grace {
		return false, nil
	}
	if frozenDayInGap(hist, lastLearned, e.Today()) {
		return false, nil
	}

	if err := e.goals.ResetProgress(ctx); err != nil {
		return false, err
	}
	hist.LastStats = ComputeStats(hist, gstate.Period, e.Today())
	hist.LastStats.CurrentStreak = 0
	if err := e.store.ReplaceHistory(ctx, hist); err != nil {
		return false, err
	}
	return true, nil
}

// latestLearnedDay returns the most recent decodable learned date.
func latestLearnedDay(hist model.LearningHistory) (time.Time, bool) {
	var latest time.Time
	found := false
	for key, set := range hist.LearnedDates {
		if !set {
			continue
		}
		day, ok := datekey.Decode(key)
		if !ok {
			continue
		}
		if !found || day.After(latest) {
			latest = day
			found = true
		}
	}
	return latest, found
}

// frozenDayInGap reports whether any frozen day falls strictly after
// lastLearned and no later than today. Such a day covers the
// inactive window and preserves the streak.
func frozenDayInGap(hist model.LearningHistory, lastLearned, today time.Time) bool {
	for key, set := range hist.FreezedDates {
		if !set {
			continue
		}
		day, ok := datekey.Decode(key)
		if !ok {
			continue
		}
		if day.After(lastLearned) && !day.After(today) {
			return true
		}
	}
	return false
}
