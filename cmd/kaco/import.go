package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bitbeans/kaco/config"
	"github.com/bitbeans/kaco/internal/fetch"
	"github.com/bitbeans/kaco/internal/history"
)

// importCmd bulk-imports historical daily production into SQLite.
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import historical daily production",
	Long: `Import the dated daily-energy files an inverter still holds into a
local SQLite database.

Inverters keep years of daily CSV files on flash. This command probes
backwards to find the oldest one, then walks day by day to today and
records each day's final production figure. Requests are paced so the
device's tiny web server is not overwhelmed; a full import can take a
while.

Re-running the import is safe: existing days are overwritten in place.

Requires history_db to be set in the config file.

Example:
  kaco import -c config.yaml
  kaco import -c config.yaml --pace 2s`,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	importCmd.Flags().Duration("pace", history.DefaultPace, "delay between requests to the inverter")
	importCmd.Flags().BoolP("verbose", "v", false, "enable debug logging")
	_ = importCmd.MarkFlagRequired("config")
}

func runImport(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger, zaplog := newLogger(verbose)
	defer func() { _ = zaplog.Sync() }()

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.HistoryDB == "" {
		return fmt.Errorf("history_db must be set in the config file for imports")
	}

	pace, _ := cmd.Flags().GetDuration("pace")
	if pace < time.Second {
		return fmt.Errorf("pace must be at least 1s, got %s", pace)
	}

	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := store.Init(ctx); err != nil {
		return err
	}

	client := fetch.NewClient()
	defer client.Close()

	importer := history.NewImporter(client, store, pace, logger)

	for _, ic := range cfg.Inverters {
		if ic.Address == "" {
			logger.Info("skipping inverter without address", "inverter", ic.Name)
			continue
		}

		report, err := importer.Run(ctx, ic.Name, ic.Address)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// one unreachable inverter should not abort the others
			logger.Warn("import failed", "inverter", ic.Name, "error", err)
			continue
		}

		logger.Info("import summary",
			"inverter", ic.Name,
			"scanned", report.DaysScanned,
			"imported", report.DaysImported,
		)
	}

	return nil
}
