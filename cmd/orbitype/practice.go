package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/orbitype/internal/coach"
	"github.com/verte-zerg/orbitype/internal/config"
	"github.com/verte-zerg/orbitype/internal/generator"
	"github.com/verte-zerg/orbitype/internal/model"
	"github.com/verte-zerg/orbitype/internal/plain"
	"github.com/verte-zerg/orbitype/internal/race"
	"github.com/verte-zerg/orbitype/internal/record"
	"github.com/verte-zerg/orbitype/internal/tui"
	"github.com/verte-zerg/orbitype/internal/wordlist"
)

const (
	defaultMode       = "velocity"
	defaultLang       = "en"
	defaultWords      = 25
	defaultCaps       = 0.5
	defaultPunct      = 0.5
	defaultRaceWords  = 30
	defaultGenerator  = "wordlist"
	matchSessions     = 10
	drillFallbackLang = wordlist.BuiltinLang
)

const defaultPunctSet = ".,!?;:\"'{}()[]-=/<>`"

var (
	practiceMode     string
	practiceLang     string
	practiceWords    int
	practiceCaps     float64
	practicePunct    float64
	practicePunctSet string
	practicePlain    bool

	raceBotsFile string
	raceAvgWPM   int

	drillGenerator string
	drillModel     string
)

func addTextFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&practiceLang, "lang", defaultLang, "language code (default: en)")
	cmd.Flags().IntVar(&practiceWords, "words", defaultWords, "words per text")
	cmd.Flags().Float64Var(&practiceCaps, "caps", defaultCaps, "probability of capitalized first letter (0-1)")
	cmd.Flags().Float64Var(&practicePunct, "punct", defaultPunct, "punctuation probability per word (0-1)")
	cmd.Flags().StringVar(&practicePunctSet, "punct-set", defaultPunctSet, "punctuation set")
	cmd.Flags().BoolVar(&practicePlain, "plain", false, "type on the raw terminal without the full-screen UI")
}

func addPracticeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&practiceMode, "mode", defaultMode, "velocity or academy")
	addTextFlags(cmd)
}

func newPracticeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "practice",
		Short: "Practice on generated text",
		Args:  cobra.NoArgs,
		RunE:  runPracticeCmd,
	}
	addPracticeFlags(cmd)
	return cmd
}

func newRaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "race",
		Short: "Race against bots matched to your recent speed",
		Args:  cobra.NoArgs,
		RunE:  runRaceCmd,
	}
	addTextFlags(cmd)
	cmd.Flags().StringVar(&raceBotsFile, "bots-file", "", "bot roster YAML (default: built-in bots)")
	cmd.Flags().IntVar(&raceAvgWPM, "avg-wpm", 0, "match bots to this WPM instead of recent sessions")
	return cmd
}

func newDrillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drill",
		Short: "Academy session on a drill built from your weakest keys",
		Args:  cobra.NoArgs,
		RunE:  runDrillCmd,
	}
	cmd.Flags().StringVar(&practiceLang, "lang", defaultLang, "word list used by the wordlist generator")
	cmd.Flags().StringVar(&drillGenerator, "generator", defaultGenerator, "drill generator: gemini, wordlist or none")
	cmd.Flags().StringVar(&drillModel, "model", coach.DefaultModel, "Gemini model name")
	cmd.Flags().BoolVar(&practicePlain, "plain", false, "type on the raw terminal without the full-screen UI")
	return cmd
}

// applyTextConfig merges [practice] into the text flags.
func applyTextConfig(cmd *cobra.Command, cfg config.PracticeConfig) model.Config {
	applyConfig(cmd, "mode", &practiceMode, cfg.Mode)
	applyConfig(cmd, "lang", &practiceLang, cfg.Lang)
	applyConfig(cmd, "words", &practiceWords, cfg.Words)
	applyConfig(cmd, "caps", &practiceCaps, cfg.CapsPct)
	applyConfig(cmd, "punct", &practicePunct, cfg.PunctPct)
	applyConfig(cmd, "punct-set", &practicePunctSet, cfg.PunctSet)
	return model.Config{
		Lang:     practiceLang,
		Words:    practiceWords,
		CapsPct:  practiceCaps,
		PunctPct: practicePunct,
		PunctSet: practicePunctSet,
	}
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg := applyTextConfig(cmd, fileCfg.Practice)
	mode, err := model.ParseMode(practiceMode)
	if err != nil {
		return fmt.Errorf("invalid --mode: %w", err)
	}
	cfg.Mode = mode
	if err := validateConfig(cfg); err != nil {
		return err
	}
	words, err := loadWords(cfg.Lang)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := openApp(ctx, fileCfg, config.DefaultLogPath())
	if err != nil {
		return err
	}
	defer a.Close()

	gen := generator.New()
	return runSession(ctx, a, tui.Options{
		Mode:   cfg.Mode,
		Lang:   cfg.Lang,
		Text:   func() string { return gen.Text(words, cfg) },
		Store:  a.store,
		Heat:   a.heat,
		Logger: a.logger,
	})
}

func runRaceCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("words") {
		practiceWords = defaultRaceWords
	}
	cfg := applyTextConfig(cmd, fileCfg.Practice)
	applyConfig(cmd, "words", &cfg.Words, fileCfg.Race.Words)
	applyConfig(cmd, "bots-file", &raceBotsFile, fileCfg.Race.BotsFile)
	applyConfig(cmd, "avg-wpm", &raceAvgWPM, fileCfg.Race.AvgWPM)
	cfg.Mode = model.ModeVelocity
	if err := validateConfig(cfg); err != nil {
		return err
	}
	if raceAvgWPM < 0 {
		return fmt.Errorf("--avg-wpm must be >= 0")
	}
	words, err := loadWords(cfg.Lang)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := openApp(ctx, fileCfg, config.DefaultLogPath())
	if err != nil {
		return err
	}
	defer a.Close()

	botsFile := raceBotsFile
	if botsFile == "" {
		botsFile = config.DefaultBotsPath()
	}
	roster := race.NewRoster(botsFile, a.logger)
	avg := raceAvgWPM
	if avg == 0 {
		avg = recentAverage(ctx, a)
	}
	bots := race.MatchBots(roster.Bots(), avg)
	a.logger.Debug("race matched", zap.Int("avg_wpm", avg), zap.Int("bots", len(bots)))

	gen := generator.New()
	return runSession(ctx, a, tui.Options{
		Mode:   model.ModeVelocity,
		Lang:   cfg.Lang,
		Title:  "Race",
		Text:   func() string { return gen.Text(words, cfg) },
		Race:   func(n int, now time.Time) race.Race { return race.NewRace(bots, n, now) },
		Store:  a.store,
		Heat:   a.heat,
		Logger: a.logger,
	})
}

// recentAverage is the player's matchmaking speed.
func recentAverage(ctx context.Context, a *app) int {
	avg, ok, err := a.store.AverageWPM(ctx, matchSessions)
	if err != nil {
		a.logger.Warn("average wpm unavailable", zap.Error(err))
		return coach.DefaultTargetWPM
	}
	if !ok {
		return coach.DefaultTargetWPM
	}
	return avg
}

func runDrillCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyConfig(cmd, "lang", &practiceLang, fileCfg.Practice.Lang)
	applyConfig(cmd, "generator", &drillGenerator, fileCfg.Coach.Generator)
	applyConfig(cmd, "model", &drillModel, fileCfg.Coach.Model)

	ctx := cmd.Context()
	a, err := openApp(ctx, fileCfg, config.DefaultLogPath())
	if err != nil {
		return err
	}
	defer a.Close()

	gen, err := drillSource(ctx, a, drillGenerator, config.String(fileCfg.Coach.APIKey, ""))
	if err != nil {
		return err
	}
	svc := coach.NewDrillService(gen, a.logger)
	return runSession(ctx, a, tui.Options{
		Mode:  model.ModeAcademy,
		Lang:  practiceLang,
		Title: "Drill",
		Text: func() string {
			drill := svc.Generate(ctx, a.heat.Snapshot().Stats())
			if len(drill.Keys) > 0 {
				a.logger.Info("drill generated", zap.String("keys", string(drill.Keys)), zap.Bool("fallback", drill.Fallback))
			}
			return drill.Text
		},
		Store:  a.store,
		Heat:   a.heat,
		Logger: a.logger,
	})
}

// drillSource builds the configured generator. A nil generator means the
// built-in drills.
func drillSource(ctx context.Context, a *app, name, apiKey string) (coach.Generator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "none":
		return nil, nil
	case "gemini":
		if apiKey == "" {
			logErrln("GEMINI_API_KEY is not set; using the word list generator")
			break
		}
		gen, err := coach.NewGeminiGenerator(ctx, apiKey, drillModel)
		if err != nil {
			a.logger.Warn("gemini unavailable, using word list generator", zap.Error(err))
			break
		}
		return gen, nil
	case "wordlist", "":
	default:
		return nil, fmt.Errorf("unknown --generator %q (use gemini, wordlist or none)", name)
	}
	words, err := loadWords(practiceLang)
	if err != nil {
		a.logger.Warn("word list unavailable for drills", zap.String("lang", practiceLang), zap.Error(err))
		words, _, err = wordlist.LoadForLang(config.DefaultWordListDir(), drillFallbackLang)
		if err != nil {
			return nil, err
		}
	}
	return coach.NewWordlistGenerator(generator.New(), words), nil
}

func loadWords(lang string) ([]string, error) {
	words, path, err := wordlist.LoadForLang(config.DefaultWordListDir(), lang)
	if err != nil {
		return nil, wordListLoadError(lang, path, err)
	}
	return words, nil
}

func runSession(ctx context.Context, a *app, opts tui.Options) error {
	if practicePlain {
		return runPlain(ctx, a, opts)
	}
	program := tea.NewProgram(tui.NewModel(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// runPlain plays one text on the raw terminal and prints the result.
func runPlain(ctx context.Context, a *app, opts tui.Options) error {
	text := opts.Text()
	var rc *race.Race
	if opts.Race != nil {
		r := opts.Race(len([]rune(text)), time.Now())
		rc = &r
		logErrf("Race starts in %s against %d bots\n", race.Countdown, len(r.Bots))
	}
	restore, err := plain.MakeRaw(os.Stdin)
	if err != nil {
		return err
	}
	res, err := plain.Run(ctx, plain.Options{
		Mode:   opts.Mode,
		Text:   text,
		In:     os.Stdin,
		Out:    os.Stdout,
		Race:   rc,
		Logger: a.logger,
	})
	restore()
	if err != nil {
		return err
	}
	if res.Aborted() {
		logErrln("Session aborted.")
		return nil
	}
	result := record.NewRecorder(a.store, a.heat, a.logger).Record(ctx, record.Session{
		Lang:      opts.Lang,
		Summary:   res.Summary,
		StartedAt: res.StartedAt,
		EndedAt:   res.EndedAt,
		KeyStats:  res.KeyStats,
		Latencies: res.Latencies,
		Race:      rc,
	})
	return printResult(os.Stdout, result)
}
