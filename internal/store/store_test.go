package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/verte-zerg/streakline/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		if cerr := st.Close(); cerr != nil {
			t.Errorf("failed to close store: %v", cerr)
		}
	})
	return st
}

func TestLoadHistoryFirstRun(t *testing.T) {
	st := newTestStore(t)
	hist, err := st.LoadHistory(context.Background())
	if err != nil {
		t.Fatalf("LoadHistory failed: %v", err)
	}
	if len(hist.LearnedDates) != 0 || len(hist.FreezedDates) != 0 {
		t.Fatalf("expected empty history, got %+v", hist)
	}
	if hist.LearnedDates == nil || hist.FreezedDates == nil {
		t.Fatalf("expected allocated maps")
	}
}

func TestLoadHistoryMalformedRecord(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	if err := st.SetSetting(ctx, "history", "{not json"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	hist, err := st.LoadHistory(ctx)
	if err != nil {
		t.Fatalf("malformed record must not error: %v", err)
	}
	if len(hist.LearnedDates) != 0 || len(hist.FreezedDates) != 0 {
		t.Fatalf("expected empty history, got %+v", hist)
	}
}

func TestSaveHistoryRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	hist := model.NewLearningHistory()
	hist.LearnedDates["2025-10-20"] = true
	hist.FreezedDates["2025-10-21"] = true
	hist.LastStats = model.LearningStats{DaysLearned: 1, DaysFreezed: 1, CurrentStreak: 2, FreezesUsed: 1, FreezesAvailable: 7}

	if _, err := st.SaveHistory(ctx, hist); err != nil {
		t.Fatalf("SaveHistory failed: %v", err)
	}
	loaded, err := st.LoadHistory(ctx)
	if err != nil {
		t.Fatalf("LoadHistory failed: %v", err)
	}
	if !loaded.IsLearned("2025-10-20") || !loaded.IsFreezed("2025-10-21") {
		t.Fatalf("flags lost in round trip: %+v", loaded)
	}
	if loaded.LastStats != hist.LastStats {
		t.Fatalf("stats lost in round trip: %+v", loaded.LastStats)
	}
}

func TestSaveHistoryMergesWithStored(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	first := model.NewLearningHistory()
	first.LearnedDates["2025-10-18"] = true
	if _, err := st.SaveHistory(ctx, first); err != nil {
		t.Fatalf("SaveHistory failed: %v", err)
	}

	second := model.NewLearningHistory()
	second.LearnedDates["2025-10-20"] = true
	merged, err := st.SaveHistory(ctx, second)
	if err != nil {
		t.Fatalf("SaveHistory failed: %v", err)
	}
	if !merged.IsLearned("2025-10-18") || !merged.IsLearned("2025-10-20") {
		t.Fatalf("merge dropped flags: %+v", merged)
	}
}

func TestSaveHistoryKeepsExclusivity(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	frozen := model.NewLearningHistory()
	frozen.FreezedDates["2025-10-20"] = true
	if _, err := st.SaveHistory(ctx, frozen); err != nil {
		t.Fatalf("SaveHistory failed: %v", err)
	}

	learned := model.NewLearningHistory()
	learned.LearnedDates["2025-10-20"] = true
	merged, err := st.SaveHistory(ctx, learned)
	if err != nil {
		t.Fatalf("SaveHistory failed: %v", err)
	}
	if !merged.IsLearned("2025-10-20") {
		t.Fatalf("expected learned flag: %+v", merged)
	}
	if merged.IsFreezed("2025-10-20") {
		t.Fatalf("date is still frozen after being learned: %+v", merged)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if _, ok, err := st.GetSetting(ctx, "goal"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
	if err := st.SetSetting(ctx, "goal", "Learn Go"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	if err := st.SetSetting(ctx, "goal", "Learn Rust"); err != nil {
		t.Fatalf("SetSetting overwrite failed: %v", err)
	}
	value, ok, err := st.GetSetting(ctx, "goal")
	if err != nil || !ok {
		t.Fatalf("GetSetting failed: ok=%v err=%v", ok, err)
	}
	if value != "Learn Rust" {
		t.Fatalf("expected overwritten value, got %q", value)
	}
}
