package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"etfrotate/internal/backtest"
	"etfrotate/internal/config"
	"etfrotate/internal/data"
	"etfrotate/internal/report"
	"etfrotate/internal/schedule"
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the rotation backtest for one cadence (or all)",
		RunE:  runBacktest,
	}
	cmd.Flags().String("config", envOr("ETFROTATE_CONFIG", ""), "path to YAML config")
	cmd.Flags().String("cadence", "", "quarterly, semiannual, annual or all (overrides config)")
	cmd.Flags().String("from", "", "start date YYYY-MM-DD (overrides config)")
	cmd.Flags().String("to", "", "end date YYYY-MM-DD (overrides config)")
	cmd.Flags().Float64("cash", 0, "initial cash (overrides config)")
	cmd.Flags().String("schedule", "", "path to quarterly schedule JSON (overrides config)")
	cmd.Flags().String("db", "", "path to price database (overrides config)")
	cmd.Flags().String("out", "", "artifact output directory (overrides config)")
	return cmd
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if v, _ := cmd.Flags().GetString("cadence"); v != "" {
		cfg.Cadence = v
	}
	if v, _ := cmd.Flags().GetString("from"); v != "" {
		cfg.From = v
	}
	if v, _ := cmd.Flags().GetString("to"); v != "" {
		cfg.To = v
	}
	if v, _ := cmd.Flags().GetFloat64("cash"); v > 0 {
		cfg.InitialCash = v
	}
	if v, _ := cmd.Flags().GetString("schedule"); v != "" {
		cfg.SchedulePath = v
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.DBPath = v
	}
	if v, _ := cmd.Flags().GetString("out"); v != "" {
		cfg.OutputDir = v
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	base, err := schedule.Load(cfg.SchedulePath)
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfg.DBPath); err != nil {
		return fmt.Errorf("price database %s not found (run 'etfrotate load' first): %w", cfg.DBPath, err)
	}
	store, err := data.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	runner := backtest.NewRunner(cfg, store, base)
	writer := report.NewWriter(cfg.OutputDir)

	if cfg.Cadence == "all" {
		results, err := runner.RunAll(ctx)
		if err != nil {
			return err
		}
		for _, res := range results {
			if err := writer.WriteAll(res); err != nil {
				return err
			}
			printSummary(res)
		}
		return writer.WriteComparison(results)
	}

	cadence, err := schedule.ParseCadence(cfg.Cadence)
	if err != nil {
		return err
	}
	result, err := runner.Run(ctx, cadence)
	if err != nil {
		return err
	}
	if err := writer.WriteAll(result); err != nil {
		return err
	}
	printSummary(result)
	return nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	log.Info().Str("path", path).Msg("Loaded configuration")
	return cfg, nil
}

func printSummary(res *backtest.Result) {
	s := res.Summary
	fmt.Printf("\n%s rotation: %s to %s\n", res.Cadence,
		res.From.Format("2006-01-02"), res.To.Format("2006-01-02"))
	fmt.Printf("  Final NAV:         %.2f\n", s.FinalNav)
	fmt.Printf("  Total Return:      %.2f%%\n", s.TotalReturnPct)
	fmt.Printf("  Annualized Return: %.2f%%\n", s.AnnualizedReturnPct)
	fmt.Printf("  Max Drawdown:      %.2f%%\n", s.MaxDrawdownPct)
	fmt.Printf("  Sharpe:            %.2f\n", s.Sharpe)
	fmt.Printf("  Trades:            %d rotation, %d signal (cost %.2f)\n",
		s.RotationTrades, s.SignalTrades, s.TotalCost)
}
