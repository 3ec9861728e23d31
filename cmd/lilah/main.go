// lilah runs a scripted 2D game project.
//
// Usage:
//
//	lilah run       - Open the project window and play
//	lilah validate  - Load the project and report the first error
//	lilah inspect   - Run a few headless frames and print the world
//	lilah preview   - Play a prefab's sprite animations
//
// Global flags:
//
//	--config <path>     - Project file (default: $LILAH_CONFIG, ./lilah.yaml, then the demo)
//	--log-level <level> - Override the project log level
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/milk9111/lilah/config"
	"github.com/milk9111/lilah/game"
	"github.com/milk9111/lilah/logging"
	"github.com/spf13/cobra"
)

var (
	flagConfig   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "lilah",
	Short:         "Lilah - a scripted 2D game runtime",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to lilah.yaml")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(inspectCmd)
}

// loadConfig finds the project and applies the log level.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig, game.FS)
	if err != nil {
		return nil, err
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	lvl, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	logging.SetLevel(lvl)
	return cfg, nil
}
