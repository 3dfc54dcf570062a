// Package main provides the CLI entrypoint for orbitype.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/orbitype/internal/config"
	"github.com/verte-zerg/orbitype/internal/heatmap"
	"github.com/verte-zerg/orbitype/internal/kvstore"
	"github.com/verte-zerg/orbitype/internal/logging"
	"github.com/verte-zerg/orbitype/internal/model"
	"github.com/verte-zerg/orbitype/internal/store"
)

const defaultRedisAddr = "localhost:6379"

var verbose bool

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	rootCmd := newRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "orbitype",
		Short:         "Typing trainer with bot races and coaching",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	addPracticeFlags(rootCmd)

	rootCmd.AddCommand(newPracticeCmd())
	rootCmd.AddCommand(newRaceCmd())
	rootCmd.AddCommand(newDrillCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newCoachCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLangsCmd())

	return rootCmd
}

// app bundles what every command opens: config, logger and storage.
type app struct {
	cfg    config.FileConfig
	logger *zap.Logger
	store  *store.Store
	kv     *kvstore.Store
	keys   heatmap.Store
	heat   *heatmap.Aggregator
}

// loadConfig reads the config file and applies environment overrides.
func loadConfig() (config.FileConfig, error) {
	cfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	config.ApplyEnv(&cfg)
	return cfg, nil
}

// openApp wires storage. logFile empty logs to stderr.
func openApp(ctx context.Context, cfg config.FileConfig, logFile string) (*app, error) {
	logger, err := logging.New(logging.Options{Verbose: verbose, File: logFile})
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger}

	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.store = st
	a.keys = st

	if config.Bool(cfg.Redis.Enabled, false) {
		kv, err := kvstore.New(ctx, kvstore.Options{
			Addr:     config.String(cfg.Redis.Addr, defaultRedisAddr),
			Password: config.String(cfg.Redis.Password, ""),
			DB:       config.Int(cfg.Redis.DB, 0),
			User:     config.String(cfg.Redis.User, ""),
		})
		if err != nil {
			a.Close()
			return nil, err
		}
		a.kv = kv
		a.keys = kv
		logger.Debug("key stats stored in redis", zap.String("addr", config.String(cfg.Redis.Addr, defaultRedisAddr)))
	}

	a.heat = heatmap.NewAggregator(a.keys, logger)
	if err := a.heat.Load(ctx); err != nil {
		logger.Warn("starting with empty heatmap", zap.Error(err))
	}
	return a, nil
}

func openStore(ctx context.Context, cfg config.StoreConfig) (*store.Store, error) {
	driver := config.String(cfg.Driver, "sqlite")
	if driver == "sqlite" {
		path := config.String(cfg.Path, config.String(cfg.DSN, config.DefaultDBPath()))
		st, err := store.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open db: %w", err)
		}
		return st, nil
	}
	dsn := config.String(cfg.DSN, "")
	if dsn == "" {
		return nil, fmt.Errorf("store driver %q needs a dsn (set [store] dsn or ORBITYPE_DB_DSN)", driver)
	}
	st, err := store.OpenDSN(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

// Close releases storage and flushes the logger.
func (a *app) Close() {
	if a.kv != nil {
		if cerr := a.kv.Close(); cerr != nil {
			a.logger.Warn("failed to close redis", zap.Error(cerr))
		}
	}
	if a.store != nil {
		if cerr := a.store.Close(); cerr != nil {
			a.logger.Warn("failed to close db", zap.Error(cerr))
		}
	}
	if serr := a.logger.Sync(); serr != nil {
		// stderr sync fails on some terminals.
		_ = serr
	}
}

// statsSource reads sessions from SQL and key stats from wherever they live.
type statsSource struct {
	sessions *store.Store
	keys     heatmap.Store
}

func (s statsSource) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	return s.sessions.ListSessions(ctx, cfg)
}

func (s statsSource) LoadKeyStats(ctx context.Context) ([]model.KeyStat, error) {
	return s.keys.LoadKeyStats(ctx)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
