package engine

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/verte-zerg/streakline/internal/datekey"
	"github.com/verte-zerg/streakline/internal/goal"
	"github.com/verte-zerg/streakline/internal/model"
	"github.com/verte-zerg/streakline/internal/store"
)

var testNow = time.Date(2025, 10, 24, 12, 0, 0, 0, time.Local)

func testConfig() model.TrackerConfig {
	return model.TrackerConfig{FirstWeekday: time.Sunday, GraceHours: 32, HistoryDays: 30}
}

func newTestEngine(t *testing.T) (*Engine, *goal.Manager, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		if cerr := st.Close(); cerr != nil {
			t.Errorf("failed to close store: %v", cerr)
		}
	})
	goals := goal.NewManager(st)
	goals.SetClock(func() time.Time { return testNow })
	eng := New(st, goals, testConfig())
	eng.SetClock(func() time.Time { return testNow })
	return eng, goals, st
}

func setPeriod(t *testing.T, st *store.Store, period string) {
	t.Helper()
	if err := st.SetSetting(context.Background(), "period", period); err != nil {
		t.Fatalf("failed to set period: %v", err)
	}
}

func setLastActive(t *testing.T, st *store.Store, ts time.Time) {
	t.Helper()
	if err := st.SetSetting(context.Background(), "last_active", strconv.FormatInt(ts.Unix(), 10)); err != nil {
		t.Fatalf("failed to set last_active: %v", err)
	}
}

func seedHistory(t *testing.T, st *store.Store, learned, frozen []string) {
	t.Helper()
	hist := model.NewLearningHistory()
	for _, key := range learned {
		hist.LearnedDates[key] = true
	}
	for _, key := range frozen {
		hist.FreezedDates[key] = true
	}
	if _, err := st.SaveHistory(context.Background(), hist); err != nil {
		t.Fatalf("failed to seed history: %v", err)
	}
}

func daysAgo(n int) string {
	return datekey.Encode(testNow.AddDate(0, 0, -n))
}

func TestToggleLearnedFirstTime(t *testing.T) {
	eng, goals, st := newTestEngine(t)
	setPeriod(t, st, "Month")
	ctx := context.Background()

	stats, applied, err := eng.ToggleLearned(ctx)
	if err != nil {
		t.Fatalf("ToggleLearned failed: %v", err)
	}
	if !applied {
		t.Fatalf("expected toggle to apply")
	}
	if stats.DaysLearned != 1 || stats.CurrentStreak != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	learned, err := eng.IsTodayLearned(ctx)
	if err != nil || !learned {
		t.Fatalf("expected today learned, got %v (err %v)", learned, err)
	}
	gstate, err := goals.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if gstate.Streak != 1 {
		t.Fatalf("expected goal streak 1, got %d", gstate.Streak)
	}
	if !gstate.LastActive.Equal(time.Unix(testNow.Unix(), 0)) {
		t.Fatalf("expected last active updated, got %v", gstate.LastActive)
	}
}

func TestToggleLearnedAlreadyLoggedNoOp(t *testing.T) {
	eng, _, st := newTestEngine(t)
	setPeriod(t, st, "Month")
	ctx := context.Background()

	if _, applied, err := eng.ToggleLearned(ctx); err != nil || !applied {
		t.Fatalf("first toggle failed: applied=%v err=%v", applied, err)
	}
	before, err := eng.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	after, applied, err := eng.ToggleLearned(ctx)
	if err != nil {
		t.Fatalf("second toggle failed: %v", err)
	}
	if applied {
		t.Fatalf("expected no-op on already-logged day")
	}
	if after != before {
		t.Fatalf("state changed by rejected toggle: %+v vs %+v", after, before)
	}
}

func TestToggleFreezedBudgetExhausted(t *testing.T) {
	eng, _, st := newTestEngine(t)
	setPeriod(t, st, "Week")
	seedHistory(t, st, nil, []string{daysAgo(2), daysAgo(1)})
	ctx := context.Background()

	stats, applied, err := eng.ToggleFreezed(ctx)
	if err != nil {
		t.Fatalf("ToggleFreezed failed: %v", err)
	}
	if applied {
		t.Fatalf("expected rejection with exhausted budget")
	}
	if stats.FreezesUsed != 2 || stats.FreezesAvailable != 0 {
		t.Fatalf("unexpected budget: %+v", stats)
	}
	frozen, err := eng.IsTodayFreezed(ctx)
	if err != nil {
		t.Fatalf("IsTodayFreezed failed: %v", err)
	}
	if frozen {
		t.Fatalf("rejected freeze still recorded today")
	}
}

func TestStreakContinuity(t *testing.T) {
	eng, _, st := newTestEngine(t)
	setPeriod(t, st, "Month")
	seedHistory(t, st, []string{daysAgo(3), daysAgo(2), daysAgo(1)}, nil)
	ctx := context.Background()

	before, err := eng.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if before.CurrentStreak != 3 {
		t.Fatalf("expected streak 3 before logging, got %d", before.CurrentStreak)
	}
	after, applied, err := eng.ToggleLearned(ctx)
	if err != nil || !applied {
		t.Fatalf("ToggleLearned failed: applied=%v err=%v", applied, err)
	}
	if after.CurrentStreak != 4 {
		t.Fatalf("expected streak 4 after logging, got %d", after.CurrentStreak)
	}
}

func TestStreakCountsFrozenDays(t *testing.T) {
	eng, _, st := newTestEngine(t)
	setPeriod(t, st, "Month")
	seedHistory(t, st, []string{daysAgo(3), daysAgo(1)}, []string{daysAgo(2)})
	ctx := context.Background()

	stats, err := eng.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.CurrentStreak != 3 {
		t.Fatalf("frozen day should keep the run alive, got streak %d", stats.CurrentStreak)
	}
}

func TestStreakStopsAtGap(t *testing.T) {
	eng, _, st := newTestEngine(t)
	setPeriod(t, st, "Month")
	seedHistory(t, st, []string{daysAgo(4), daysAgo(3)}, nil)
	ctx := context.Background()

	stats, err := eng.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.CurrentStreak != 0 {
		t.Fatalf("expected broken streak, got %d", stats.CurrentStreak)
	}
}

func TestCheckStreakValidityResetsAfterGap(t *testing.T) {
	eng, goals, st := newTestEngine(t)
	setPeriod(t, st, "Month")
	seedHistory(t, st, []string{daysAgo(2)}, nil)
	setLastActive(t, st, testNow.Add(-40*time.Hour))
	if err := goals.SetStreak(context.Background(), 3); err != nil {
		t.Fatalf("SetStreak failed: %v", err)
	}
	ctx := context.Background()

	reset, err := eng.CheckStreakValidity(ctx)
	if err != nil {
		t.Fatalf("CheckStreakValidity failed: %v", err)
	}
	if !reset {
		t.Fatalf("expected streak reset after 40h gap")
	}
	hist, err := eng.History(ctx)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if hist.LastStats.CurrentStreak != 0 {
		t.Fatalf("expected persisted streak 0, got %d", hist.LastStats.CurrentStreak)
	}
	gstate, err := goals.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if gstate.Streak != 0 || !gstate.LastActive.IsZero() {
		t.Fatalf("expected progress reset, got %+v", gstate)
	}
}

func TestCheckStreakValidityFrozenDayCoversGap(t *testing.T) {
	eng, goals, st := newTestEngine(t)
	setPeriod(t, st, "Month")
	seedHistory(t, st, []string{daysAgo(2)}, []string{daysAgo(1)})
	setLastActive(t, st, testNow.Add(-40*time.Hour))
	if err := goals.SetStreak(context.Background(), 3); err != nil {
		t.Fatalf("SetStreak failed: %v", err)
	}
	ctx := context.Background()

	reset, err := eng.CheckStreakValidity(ctx)
	if err != nil {
		t.Fatalf("CheckStreakValidity failed: %v", err)
	}
	if reset {
		t.Fatalf("frozen day in the gap must preserve the streak")
	}
	gstate, err := goals.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if gstate.Streak != 3 {
		t.Fatalf("expected streak preserved, got %d", gstate.Streak)
	}
}

func TestCheckStreakValidityWithinGrace(t *testing.T) {
	eng, _, st := newTestEngine(t)
	setPeriod(t, st, "Month")
	seedHistory(t, st, []string{daysAgo(1)}, nil)
	setLastActive(t, st, testNow.Add(-10*time.Hour))
	ctx := context.Background()

	reset, err := eng.CheckStreakValidity(ctx)
	if err != nil {
		t.Fatalf("CheckStreakValidity failed: %v", err)
	}
	if reset {
		t.Fatalf("10h gap must not reset the streak")
	}
}

func TestCheckStreakValidityEmptyHistory(t *testing.T) {
	eng, _, st := newTestEngine(t)
	setPeriod(t, st, "Month")
	ctx := context.Background()

	reset, err := eng.CheckStreakValidity(ctx)
	if err != nil {
		t.Fatalf("CheckStreakValidity failed: %v", err)
	}
	if reset {
		t.Fatalf("empty history must not reset")
	}
}

func TestFreezeThenLearnScenario(t *testing.T) {
	eng, _, st := newTestEngine(t)
	setPeriod(t, st, "Month")
	ctx := context.Background()

	frozen, applied, err := eng.ToggleFreezed(ctx)
	if err != nil || !applied {
		t.Fatalf("ToggleFreezed failed: applied=%v err=%v", applied, err)
	}
	if frozen.FreezesUsed != 1 || frozen.FreezesAvailable != 7 {
		t.Fatalf("unexpected budget after freeze: %+v", frozen)
	}
	isFrozen, err := eng.IsTodayFreezed(ctx)
	if err != nil || !isFrozen {
		t.Fatalf("expected today frozen, got %v (err %v)", isFrozen, err)
	}

	after, applied, err := eng.ToggleLearned(ctx)
	if err != nil {
		t.Fatalf("ToggleLearned failed: %v", err)
	}
	if applied {
		t.Fatalf("learning an already-frozen day must be rejected")
	}
	if after != frozen {
		t.Fatalf("rejected toggle changed state: %+v vs %+v", after, frozen)
	}
	stillFrozen, err := eng.IsTodayFreezed(ctx)
	if err != nil || !stillFrozen {
		t.Fatalf("freeze lost after rejected learn: %v (err %v)", stillFrozen, err)
	}
}

func TestComputeStatsUnsetPeriodCarriesForward(t *testing.T) {
	hist := model.NewLearningHistory()
	hist.FreezedDates["2025-10-20"] = true
	hist.LastStats.FreezesAvailable = 5

	stats := ComputeStats(hist, goal.PeriodUnset, testNow)
	if stats.FreezesAvailable != 5 {
		t.Fatalf("expected carried-forward budget 5, got %d", stats.FreezesAvailable)
	}
}

func TestComputeStatsIdempotent(t *testing.T) {
	hist := model.NewLearningHistory()
	hist.LearnedDates[daysAgo(1)] = true
	hist.FreezedDates[daysAgo(2)] = true

	first := ComputeStats(hist, goal.PeriodMonth, testNow)
	second := ComputeStats(hist, goal.PeriodMonth, testNow)
	if first != second {
		t.Fatalf("rescan drifted: %+v vs %+v", first, second)
	}
	if first.DaysLearned != 1 || first.DaysFreezed != 1 || first.FreezesUsed != 1 {
		t.Fatalf("unexpected counters: %+v", first)
	}
}

func TestStreakMalformedKeysSkipped(t *testing.T) {
	hist := model.NewLearningHistory()
	hist.LearnedDates["garbage"] = true
	hist.LearnedDates[daysAgo(1)] = true

	if got := Streak(hist, testNow); got != 1 {
		t.Fatalf("expected streak 1, got %d", got)
	}
}
