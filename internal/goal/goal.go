// Package goal holds the learning goal, its period, and the freeze
// budget derived from them.
package goal

import (
	"context"
	"strconv"
	"time"

	"github.com/verte-zerg/streakline/internal/store"
)

// Period is the time span a learning goal is set for.
type Period int

// Period values. Unset means the user has not finished onboarding.
const (
	PeriodUnset Period = iota
	PeriodWeek
	PeriodMonth
	PeriodYear
)

// ParsePeriod maps a stored period string to its enum value.
// Unrecognized input is Unset.
func ParsePeriod(s string) Period {
	switch s {
	case "Week":
		return PeriodWeek
	case "Month":
		return PeriodMonth
	case "Year":
		return PeriodYear
	default:
		return PeriodUnset
	}
}

// String returns the wire form of the period.
func (p Period) String() string {
	switch p {
	case PeriodWeek:
		return "Week"
	case PeriodMonth:
		return "Month"
	case PeriodYear:
		return "Year"
	default:
		return ""
	}
}

// BaseAllowance returns the total freezes granted for the period,
// with ok=false when the period carries no allowance of its own.
func (p Period) BaseAllowance() (int, bool) {
	switch p {
	case PeriodWeek:
		return 2, true
	case PeriodMonth:
		return 8, true
	case PeriodYear:
		return 96, true
	default:
		return 0, false
	}
}

// FreezeBudget computes the remaining freeze budget. An unset period
// carries the previously stored value forward unchanged; otherwise
// the result is the base allowance minus used, floored at zero.
func FreezeBudget(p Period, used, prevAvailable int) int {
	base, ok := p.BaseAllowance()
	if !ok {
		return prevAvailable
	}
	remaining := base - used
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// State is the goal configuration persisted as individual settings
// rows rather than part of the history record.
type State struct {
	Goal       string
	Period     Period
	LastActive time.Time
	Streak     int
}

// Settings keys used in the store.
const (
	keyGoal       = "goal"
	keyPeriod     = "period"
	keyLastActive = "last_active"
	keyStreak     = "streak_count"
)

// Manager loads and mutates the persisted goal state.
type Manager struct {
	store *store.Store
	now   func() time.Time
}

// NewManager creates a goal manager backed by the given store.
func NewManager(st *store.Store) *Manager {
	return &Manager{store: st, now: time.Now}
}

// SetClock overrides the manager's clock. Intended for tests.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// Load reads the goal state. Missing keys produce zero values, so a
// first run yields an empty goal with an unset period.
func (m *Manager) Load(ctx context.Context) (State, error) {
	var st State
	goalText, _, err := m.store.GetSetting(ctx, keyGoal)
	if err != nil {
		return st, err
	}
	st.Goal = goalText

	periodText, _, err := m.store.GetSetting(ctx, keyPeriod)
	if err != nil {
		return st, err
	}
	st.Period = ParsePeriod(periodText)

	lastActive, ok, err := m.store.GetSetting(ctx, keyLastActive)
	if err != nil {
		return st, err
	}
	if ok {
		if unix, perr := strconv.ParseInt(lastActive, 10, 64); perr == nil && unix > 0 {
			st.LastActive = time.Unix(unix, 0)
		}
	}

	streak, ok, err := m.store.GetSetting(ctx, keyStreak)
	if err != nil {
		return st, err
	}
	if ok {
		if n, perr := strconv.Atoi(streak); perr == nil {
			st.Streak = n
		}
	}
	return st, nil
}

func (m *Manager) save(ctx context.Context, st State) error {
	if err := m.store.SetSetting(ctx, keyGoal, st.Goal); err != nil {
		return err
	}
	if err := m.store.SetSetting(ctx, keyPeriod, st.Period.String()); err != nil {
		return err
	}
	lastActive := int64(0)
	if !st.LastActive.IsZero() {
		lastActive = st.LastActive.Unix()
	}
	if err := m.store.SetSetting(ctx, keyLastActive, strconv.FormatInt(lastActive, 10)); err != nil {
		return err
	}
	return m.store.SetSetting(ctx, keyStreak, strconv.Itoa(st.Streak))
}

// SetInitialGoal records the goal chosen at onboarding. The streak
// starts at zero and the activity clock starts now.
func (m *Manager) SetInitialGoal(ctx context.Context, goalText string, period Period) error {
	return m.save(ctx, State{
		Goal:       goalText,
		Period:     period,
		LastActive: m.now(),
	})
}

// UpdateGoal replaces the goal and unconditionally resets streak
// progress. Editing the goal later is destructive by design.
func (m *Manager) UpdateGoal(ctx context.Context, goalText string, period Period) error {
	return m.save(ctx, State{
		Goal:   goalText,
		Period: period,
	})
}

// TouchActivity records now as the last learning activity.
func (m *Manager) TouchActivity(ctx context.Context) error {
	return m.store.SetSetting(ctx, keyLastActive, strconv.FormatInt(m.now().Unix(), 10))
}

// SetStreak persists the current streak counter.
func (m *Manager) SetStreak(ctx context.Context, streak int) error {
	return m.store.SetSetting(ctx, keyStreak, strconv.Itoa(streak))
}

// ResetProgress zeroes the streak and the activity clock, keeping
// the goal itself.
func (m *Manager) ResetProgress(ctx context.Context) error {
	if err := m.store.SetSetting(ctx, keyStreak, "0"); err != nil {
		return err
	}
	return m.store.SetSetting(ctx, keyLastActive, "0")
}

// HasBeenInactive reports whether the last activity is further in
// the past than graceHours. An unset clock is never inactive.
func (st State) HasBeenInactive(now time.Time, graceHours int) bool {
	if st.LastActive.IsZero() {
		return false
	}
	return now.Sub(st.LastActive) > time.Duration(graceHours)*time.Hour
}

// ShouldShowSetup reports whether onboarding must run: either no
// goal was ever set or the streak expired while the user was away.
func (st State) ShouldShowSetup(now time.Time, graceHours int) bool {
	return st.Goal == "" || st.HasBeenInactive(now, graceHours)
}
