package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"etfrotate/internal/backtest"
)

// writeReport generates the per-run markdown report.
func (w *Writer) writeReport(dir string, result *backtest.Result) error {
	content := renderReport(result)
	if err := os.WriteFile(filepath.Join(dir, "report.md"), []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write report.md: %w", err)
	}
	return nil
}

func renderReport(result *backtest.Result) string {
	var b strings.Builder
	s := result.Summary

	b.WriteString(fmt.Sprintf("# Rotation Backtest: %s\n\n", result.Cadence))
	b.WriteString(fmt.Sprintf("- **Run ID**: %s\n", result.RunID))
	b.WriteString(fmt.Sprintf("- **Period**: %s to %s (%d trading days)\n",
		result.From.Format("2006-01-02"), result.To.Format("2006-01-02"), s.TradingDays))
	b.WriteString(fmt.Sprintf("- **Initial Cash**: %.2f\n\n", s.InitialCash))

	b.WriteString("## Performance\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	b.WriteString(fmt.Sprintf("| Final NAV | %.2f |\n", s.FinalNav))
	b.WriteString(fmt.Sprintf("| Total Return | %.2f%% |\n", s.TotalReturnPct))
	b.WriteString(fmt.Sprintf("| Annualized Return | %.2f%% |\n", s.AnnualizedReturnPct))
	b.WriteString(fmt.Sprintf("| Max Drawdown | %.2f%% |\n", s.MaxDrawdownPct))
	b.WriteString(fmt.Sprintf("| Sharpe | %.2f |\n\n", s.Sharpe))

	b.WriteString("## Trading Activity\n\n")
	b.WriteString("| | Count | Cost |\n|---|---|---|\n")
	b.WriteString(fmt.Sprintf("| Rotation trades | %d | %.2f |\n", s.RotationTrades, s.RotationCost))
	b.WriteString(fmt.Sprintf("| Signal trades | %d | %.2f |\n", s.SignalTrades, s.SignalCost))
	b.WriteString(fmt.Sprintf("| **Total** | %d | %.2f |\n\n", s.RotationTrades+s.SignalTrades, s.TotalCost))

	if len(result.Rotations) > 0 {
		b.WriteString("## Rotations\n\n")
		b.WriteString("| Date | Sold | Added | Kept | Proceeds | Cost |\n|---|---|---|---|---|---|\n")
		for _, r := range result.Rotations {
			b.WriteString(fmt.Sprintf("| %s | %s | %s | %d | %.2f | %.2f |\n",
				r.Date.Format("2006-01-02"),
				joinOrDash(r.Sold), joinOrDash(r.Added), len(r.Kept),
				r.Proceeds, r.SellCost))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// WriteComparison emits a cross-cadence comparison table for an "all" run.
func (w *Writer) WriteComparison(results []*backtest.Result) error {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("# Cadence Comparison\n\n")
	b.WriteString("| Cadence | Total Return | Annualized | Max Drawdown | Sharpe | Trades | Total Cost |\n")
	b.WriteString("|---|---|---|---|---|---|---|\n")
	for _, r := range results {
		s := r.Summary
		b.WriteString(fmt.Sprintf("| %s | %.2f%% | %.2f%% | %.2f%% | %.2f | %d | %.2f |\n",
			r.Cadence, s.TotalReturnPct, s.AnnualizedReturnPct, s.MaxDrawdownPct,
			s.Sharpe, s.RotationTrades+s.SignalTrades, s.TotalCost))
	}

	path := filepath.Join(w.outputDir, "comparison.md")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write comparison.md: %w", err)
	}
	return nil
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
