package main

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/bitbeans/kaco/config"
)

// validateCmd validates a config file without starting the monitor.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a kaco configuration file without starting the monitor.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  kaco validate -c config.yaml
  kaco validate --config /etc/kaco/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	addressed := lo.CountBy(cfg.Inverters, func(ic config.InverterConfig) bool {
		return ic.Address != ""
	})
	placeholders := len(cfg.Inverters) - addressed

	fmt.Printf("Config is valid!\n")
	fmt.Printf("  Port:       %d\n", cfg.Port)
	fmt.Printf("  Inverters:  %d addressed + %d placeholders = %d total\n",
		addressed, placeholders, len(cfg.Inverters))
	if cfg.HistoryDB != "" {
		fmt.Printf("  History DB: %s\n", cfg.HistoryDB)
	}

	return nil
}
