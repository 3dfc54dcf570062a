package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/orbitype/internal/config"
	"github.com/verte-zerg/orbitype/internal/race"
	"github.com/verte-zerg/orbitype/internal/server"
)

const (
	defaultAddr     = ":8080"
	shutdownTimeout = 5 * time.Second
)

var (
	serveAddr     string
	serveBotsFile string
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the race and coaching HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", defaultAddr, "listen address")
	cmd.Flags().StringVar(&serveBotsFile, "bots-file", "", "bot roster YAML, reloaded on change")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyConfig(cmd, "addr", &serveAddr, fileCfg.Server.Addr)
	applyConfig(cmd, "bots-file", &serveBotsFile, fileCfg.Race.BotsFile)
	if serveBotsFile == "" {
		serveBotsFile = config.DefaultBotsPath()
	}

	ctx := cmd.Context()
	a, err := openApp(ctx, fileCfg, "")
	if err != nil {
		return err
	}
	defer a.Close()

	roster := race.NewRoster(serveBotsFile, a.logger)
	deps := server.Deps{
		Results: a.store,
		Heat:    a.heat,
		Bots:    roster,
		Logger:  a.logger,
	}
	if a.kv != nil {
		deps.Races = a.kv
	}
	handler := server.NewHandler(deps)
	srv := &http.Server{
		Addr:              serveAddr,
		Handler:           server.NewRouter(handler, a.logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("server starting", zap.String("addr", serveAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := roster.Watch(gctx); err != nil {
			a.logger.Warn("roster reload disabled", zap.String("path", serveBotsFile), zap.Error(err))
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	a.logger.Info("server exited")
	return nil
}
