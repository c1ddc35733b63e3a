package main

import (
	"ApiMonitor/internal/config"
	"ApiMonitor/internal/dependencies"
	"ApiMonitor/internal/server"
	"ApiMonitor/pkg/logger"
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
)

const startupTimeout = 10 * time.Second

func newRunCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start monitoring the configured endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
}

func run(parent context.Context, cfg *config.Config) error {
	log := logger.Setup(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Starting ApiMonitor",
		"version", Version,
		"endpoints", len(cfg.EndpointSpecs()),
		"channels", len(cfg.Channels()),
	)

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	container, err := dependencies.NewContainer(startCtx, cfg, log)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to create dependency container: %w", err)
	}

	var srv *server.Server
	serverErr := make(chan error, 1)
	if cfg.Server.Enabled {
		srv = server.New(&cfg.Server, container)
		go func() {
			serverErr <- srv.Start()
		}()
	}

	schedulerDone := make(chan error, 1)
	go func() {
		schedulerDone <- container.Scheduler.Run(ctx)
	}()

	var errs *multierror.Error

	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			log.Error("Server failed", "error", err)
			errs = multierror.Append(errs, err)
		}
	}

	grace := cfg.ShutdownGrace()
	if err := container.Scheduler.Shutdown(grace); err != nil {
		errs = multierror.Append(errs, err)
	} else if err := <-schedulerDone; err != nil {
		errs = multierror.Append(errs, err)
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			errs = multierror.Append(errs, fmt.Errorf("server shutdown failed: %w", err))
		}
		cancel()
	}

	if err := container.Close(); err != nil {
		errs = multierror.Append(errs, err)
	}

	if err := errs.ErrorOrNil(); err != nil {
		log.Error("ApiMonitor stopped with errors", "error", err)
		return err
	}

	log.Info("ApiMonitor stopped gracefully")
	return nil
}
