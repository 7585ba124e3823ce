// Package main provides the CLI entrypoint for streakline.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/streakline/internal/config"
	"github.com/verte-zerg/streakline/internal/engine"
	"github.com/verte-zerg/streakline/internal/goal"
	"github.com/verte-zerg/streakline/internal/model"
	"github.com/verte-zerg/streakline/internal/stats"
	"github.com/verte-zerg/streakline/internal/statsui"
	"github.com/verte-zerg/streakline/internal/store"
	"github.com/verte-zerg/streakline/internal/tui"
)

const (
	defaultFirstWeekday = "sunday"
	defaultGraceHours   = 32
	defaultHistoryDays  = 30
)

var (
	trackerFirstWeekday string
	trackerGraceHours   int
	trackerHistoryDays  int

	statsUI bool

	goalText   string
	goalPeriod string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "streakline",
		Short:         "TUI learning streak tracker",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runCalendarCmd,
	}

	rootCmd.PersistentFlags().StringVar(&trackerFirstWeekday, "first-weekday", defaultFirstWeekday, "first weekday of the calendar row")
	rootCmd.PersistentFlags().IntVar(&trackerGraceHours, "grace-hours", defaultGraceHours, "inactive hours before the streak is forfeited")
	rootCmd.PersistentFlags().IntVar(&trackerHistoryDays, "history-days", defaultHistoryDays, "days shown in stats history")

	rootCmd.AddCommand(newLogCmd())
	rootCmd.AddCommand(newFreezeCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newGoalCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runCalendarCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadTrackerConfig(cmd)
	if err != nil {
		return err
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeStore(st)

	goals := goal.NewManager(st)
	eng := engine.New(st, goals, cfg)

	ctx := context.Background()
	if _, err := eng.CheckStreakValidity(ctx); err != nil {
		return fmt.Errorf("failed to check streak: %w", err)
	}
	gstate, err := goals.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load goal: %w", err)
	}
	showSetup := gstate.ShouldShowSetup(eng.Today(), cfg.GraceHours)

	tuiModel := tui.NewModel(eng, goals, cfg, showSetup)
	program := tea.NewProgram(tuiModel, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newLogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "log",
		Short: "Mark today as learned",
		Args:  cobra.NoArgs,
		RunE:  runLogCmd,
	}
}

func runLogCmd(cmd *cobra.Command, _ []string) error {
	return runToggle(cmd, true)
}

func newFreezeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "freeze",
		Short: "Mark today as frozen",
		Args:  cobra.NoArgs,
		RunE:  runFreezeCmd,
	}
}

func runFreezeCmd(cmd *cobra.Command, _ []string) error {
	return runToggle(cmd, false)
}

func runToggle(cmd *cobra.Command, learned bool) error {
	cfg, err := loadTrackerConfig(cmd)
	if err != nil {
		return err
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeStore(st)

	goals := goal.NewManager(st)
	eng := engine.New(st, goals, cfg)

	ctx := context.Background()
	if _, err := eng.CheckStreakValidity(ctx); err != nil {
		return fmt.Errorf("failed to check streak: %w", err)
	}

	var result model.LearningStats
	var applied bool
	if learned {
		result, applied, err = eng.ToggleLearned(ctx)
	} else {
		result, applied, err = eng.ToggleFreezed(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to save: %w", err)
	}

	out := cmd.OutOrStdout()
	switch {
	case applied && learned:
		_, err = fmt.Fprintf(out, "Logged today as learned. Streak: %d\n", result.CurrentStreak)
	case applied:
		_, err = fmt.Fprintf(out, "Logged today as frozen. Freezes left: %d\n", result.FreezesAvailable)
	case learned:
		_, err = fmt.Fprintln(out, "Today is already logged.")
	default:
		_, err = fmt.Fprintln(out, "Today is already logged or no freezes are left.")
	}
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().BoolVar(&statsUI, "ui", false, "open the interactive stats view")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadTrackerConfig(cmd)
	if err != nil {
		return err
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeStore(st)

	goals := goal.NewManager(st)
	eng := engine.New(st, goals, cfg)

	ctx := context.Background()
	if _, err := eng.CheckStreakValidity(ctx); err != nil {
		return fmt.Errorf("failed to check streak: %w", err)
	}
	gstate, err := goals.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load goal: %w", err)
	}
	report, err := stats.BuildReport(ctx, st, goals, gstate.Period, eng.Today(), cfg.HistoryDays)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}

	if statsUI {
		program := tea.NewProgram(statsui.NewModel(report), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run stats TUI: %w", err)
		}
		return nil
	}
	return stats.RenderReport(cmd.OutOrStdout(), report)
}

func newGoalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Show or change the learning goal",
		Args:  cobra.NoArgs,
		RunE:  runGoalCmd,
	}
	cmd.Flags().StringVar(&goalText, "set", "", "new goal text")
	cmd.Flags().StringVar(&goalPeriod, "period", "", "goal period: Week, Month, or Year")
	return cmd
}

func runGoalCmd(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeStore(st)

	goals := goal.NewManager(st)
	ctx := context.Background()
	gstate, err := goals.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load goal: %w", err)
	}

	out := cmd.OutOrStdout()
	if goalText == "" && goalPeriod == "" {
		if gstate.Goal == "" {
			_, err = fmt.Fprintln(out, "No goal set. Use: streakline goal --set <goal> --period <Week|Month|Year>")
		} else {
			_, err = fmt.Fprintf(out, "Goal: %s (%s)\n", gstate.Goal, gstate.Period)
		}
		if err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	newGoal := strings.TrimSpace(goalText)
	if newGoal == "" {
		newGoal = gstate.Goal
	}
	if newGoal == "" {
		return fmt.Errorf("--set must not be empty")
	}
	period := gstate.Period
	if goalPeriod != "" {
		period = goal.ParsePeriod(strings.TrimSpace(goalPeriod))
		if period == goal.PeriodUnset {
			return fmt.Errorf("invalid --period %q (use Week, Month, or Year)", goalPeriod)
		}
	}

	if gstate.Goal == "" {
		err = goals.SetInitialGoal(ctx, newGoal, period)
	} else {
		// Editing an existing goal forfeits streak progress.
		err = goals.UpdateGoal(ctx, newGoal, period)
	}
	if err != nil {
		return fmt.Errorf("failed to save goal: %w", err)
	}
	if _, err := fmt.Fprintf(out, "Goal: %s (%s)\n", newGoal, period); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func loadTrackerConfig(cmd *cobra.Command) (model.TrackerConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.TrackerConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "first-weekday", &trackerFirstWeekday, fileCfg.Tracker.FirstWeekday)
	applyIntConfig(cmd, "grace-hours", &trackerGraceHours, fileCfg.Tracker.GraceHours)
	applyIntConfig(cmd, "history-days", &trackerHistoryDays, fileCfg.Tracker.HistoryDays)

	firstWeekday, err := config.ParseWeekday(trackerFirstWeekday)
	if err != nil {
		return model.TrackerConfig{}, err
	}
	if trackerGraceHours <= 0 {
		return model.TrackerConfig{}, fmt.Errorf("--grace-hours must be > 0")
	}
	if trackerHistoryDays <= 0 {
		return model.TrackerConfig{}, fmt.Errorf("--history-days must be > 0")
	}
	return model.TrackerConfig{
		FirstWeekday: firstWeekday,
		GraceHours:   trackerGraceHours,
		HistoryDays:  trackerHistoryDays,
	}, nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# streakline configuration
# Uncomment a value to enable it. CLI flags override config values.

[tracker]
# first-weekday = %q   # First weekday of the calendar row
# grace-hours = %d         # Inactive hours before the streak is forfeited
# history-days = %d        # Days shown in stats history
`,
		defaultFirstWeekday,
		defaultGraceHours,
		defaultHistoryDays,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
