package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "etfrotate",
	Short: "Backtests a rotation-gated, signal-driven ETF portfolio",
	Long: `etfrotate simulates a periodically rotated multi-asset portfolio where
newly eligible assets wait for an adaptive moving-average golden cross before
entering, and dropped assets are liquidated at the next rotation.`,
}

func main() {
	// Optional .env for local path defaults (ETFROTATE_CONFIG etc.).
	_ = godotenv.Load()

	setupLogging()

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(loadCmd())
	rootCmd.AddCommand(scheduleCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogging() {
	level := zerolog.InfoLevel
	if v := os.Getenv("ETFROTATE_LOG_LEVEL"); v != "" {
		if parsed, err := zerolog.ParseLevel(v); err == nil {
			level = parsed
		}
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

// envOr returns the environment value for key, or fallback when unset.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
