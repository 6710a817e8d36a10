package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bitbeans/kaco"
	"github.com/bitbeans/kaco/config"
)

const (
	shutdownTimeout = 10 * time.Second
)

// serveCmd starts the monitor.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the inverter monitor",
	Long: `Start the kaco inverter monitor.

The monitor will:
  - Load configuration from the specified YAML file
  - Start polling all configured inverters
  - Serve snapshots, SSE and Prometheus metrics on the configured port

The monitor runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  kaco serve -c config.yaml
  kaco serve --config /etc/kaco/config.yaml --verbose`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	serveCmd.Flags().BoolP("verbose", "v", false, "enable debug logging")
	_ = serveCmd.MarkFlagRequired("config")
}

func runServe(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger, zaplog := newLogger(verbose)
	defer func() { _ = zaplog.Sync() }()

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Info("config loaded",
		"inverters", len(cfg.Inverters),
		"port", cfg.Port,
	)

	// convert config to SDK inverters
	inverters, err := config.BuildInverters(cfg)
	if err != nil {
		return fmt.Errorf("failed to build inverters: %w", err)
	}

	m, err := kaco.New(
		kaco.WithInverters(inverters...),
		kaco.WithPort(cfg.Port),
		kaco.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create monitor: %w", err)
	}

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// start monitor - blocks until context cancelled
	errChan := make(chan error, 1)
	go func() {
		errChan <- m.Start(ctx)
	}()

	// wait for monitor to finish
	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("monitor error: %w", err)
		}
		logger.Info("shutdown complete")
		return nil

	case <-ctx.Done():
		// signal received, wait for graceful shutdown with timeout
		select {
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("monitor error: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out",
				"timeout", shutdownTimeout.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}
