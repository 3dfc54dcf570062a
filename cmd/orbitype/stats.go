package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/orbitype/internal/coach"
	"github.com/verte-zerg/orbitype/internal/config"
	"github.com/verte-zerg/orbitype/internal/model"
	"github.com/verte-zerg/orbitype/internal/record"
	"github.com/verte-zerg/orbitype/internal/stats"
	"github.com/verte-zerg/orbitype/internal/statsui"
)

const defaultCurveWindow = 20

var (
	statsMode        string
	statsLang        string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsPlain       bool
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsMode, "mode", "", "mode filter (velocity or academy)")
	cmd.Flags().StringVar(&statsLang, "lang", "", "language filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print stats instead of opening the stats UI")
	return cmd
}

func statsConfig() (model.StatsConfig, error) {
	cfg := model.StatsConfig{
		Lang:        statsLang,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}
	if statsMode != "" {
		mode, err := model.ParseMode(statsMode)
		if err != nil {
			return cfg, fmt.Errorf("invalid --mode: %w", err)
		}
		cfg.Mode = &mode
	}
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return cfg, fmt.Errorf("invalid --since value: %w", err)
		}
		cfg.Since = &parsed
	}
	if cfg.Last < 0 {
		return cfg, fmt.Errorf("--last must be >= 0")
	}
	if cfg.CurveWindow <= 0 {
		return cfg, fmt.Errorf("--curve-window must be > 0")
	}
	return cfg, nil
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := statsConfig()
	if err != nil {
		return err
	}
	fileCfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	a, err := openApp(ctx, fileCfg, config.DefaultLogPath())
	if err != nil {
		return err
	}
	defer a.Close()

	src := statsSource{sessions: a.store, keys: a.keys}
	if statsPlain {
		report, err := stats.BuildReport(ctx, src, cfg)
		if err != nil {
			return err
		}
		return stats.RenderPlain(cmd.OutOrStdout(), report, cfg.CurveWindow, stats.TerminalWidth())
	}

	program := tea.NewProgram(statsui.NewModel(src, cfg, a.logger), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func newCoachCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "coach",
		Short: "Print a coaching report from recent sessions and key stats",
		Args:  cobra.NoArgs,
		RunE:  runCoachCmd,
	}
}

func runCoachCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	a, err := openApp(ctx, fileCfg, config.DefaultLogPath())
	if err != nil {
		return err
	}
	defer a.Close()

	recent, err := a.store.RecentSummaries(ctx, nil, coach.TargetWindow)
	if err != nil {
		return fmt.Errorf("failed to load recent sessions: %w", err)
	}
	report := coach.BuildReport(recent, a.heat.Snapshot())
	out, err := coach.Render(report.Markdown(), stats.TerminalWidth())
	if err != nil {
		return err
	}
	if _, err := io.WriteString(cmd.OutOrStdout(), out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// printResult writes a finished plain session.
func printResult(w io.Writer, res *record.Result) error {
	r := res.Summary.Result()
	lines := []string{
		fmt.Sprintf("WPM %d · Accuracy %d%% · Errors %d · Time %s", r.WPM, r.Accuracy, r.ErrorCount, r.Duration.Round(10*time.Millisecond)),
	}
	if academy, ok := res.Summary.(model.AcademySummary); ok {
		lines = append(lines, fmt.Sprintf("Rhythm %d/100", academy.RhythmScore))
	}
	for _, rr := range res.Race {
		lines = append(lines, fmt.Sprintf("%d. %-10s %3d WPM", rr.Position, rr.Participant, rr.WPM))
	}
	lines = append(lines,
		fmt.Sprintf("Coach: %s. %s", res.Drill, res.Advice),
		fmt.Sprintf("Next target: %d WPM", res.TargetWPM),
	)
	if res.Warning != "" {
		lines = append(lines, fmt.Sprintf("Warning: %s (see %s)", res.Warning, config.DefaultLogPath()))
	}
	if _, err := fmt.Fprintln(w, strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
