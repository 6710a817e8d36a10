// Package main is the entry point for the kaco CLI.
//
// The monitor can be run either as a library (SDK) or as a standalone
// binary with YAML configuration. This CLI provides the standalone binary
// approach.
//
// Usage:
//
//	kaco serve -c config.yaml    # Start monitoring
//	kaco validate -c config.yaml # Validate configuration
//	kaco import -c config.yaml   # Import historical daily production
//	kaco version                 # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "kaco",
	Short: "A monitor for KACO Powador solar inverters",
	Long: `kaco polls KACO Powador inverters over their embedded HTTP interface
and serves the live measurements as JSON, Server-Sent Events and
Prometheus metrics.

Quick start:
  1. Create a config file (kaco.yaml)
  2. Run: kaco serve -c kaco.yaml
  3. Open http://localhost:8080 in your browser

Example config:
  port: 8080
  inverters:
    - name: Roof
      address: 192.168.1.40
      interval: 20s`,
	// No Run/RunE means this just shows help when called without subcommands
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this kaco binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("kaco %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	// Register subcommands with root
	rootCmd.AddCommand(versionCmd)
}
