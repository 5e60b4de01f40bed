package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog/log"

	"etfrotate/internal/backtest"
)

// Writer persists run artifacts into <outputDir>/<cadence>/: summary.json,
// nav.csv, trades.csv, rotations.json, nav.png and report.md.
type Writer struct {
	outputDir string
}

// NewWriter creates a writer rooted at outputDir.
func NewWriter(outputDir string) *Writer {
	return &Writer{outputDir: outputDir}
}

// WriteAll emits every artifact for one run. The chart is best-effort: a
// render failure is logged and does not fail the write.
func (w *Writer) WriteAll(result *backtest.Result) error {
	dir := filepath.Join(w.outputDir, string(result.Cadence))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := w.writeSummary(dir, result); err != nil {
		return err
	}
	if err := w.writeNav(dir, result); err != nil {
		return err
	}
	if err := w.writeTrades(dir, result); err != nil {
		return err
	}
	if err := w.writeRotations(dir, result); err != nil {
		return err
	}
	if err := w.writeReport(dir, result); err != nil {
		return err
	}
	if err := w.writeChart(dir, result); err != nil {
		log.Warn().Err(err).Msg("Failed to render NAV chart")
	}

	log.Info().Str("dir", dir).Str("cadence", string(result.Cadence)).Msg("Artifacts written")
	return nil
}

func (w *Writer) writeSummary(dir string, result *backtest.Result) error {
	payload := struct {
		RunID   string      `json:"run_id"`
		Cadence string      `json:"cadence"`
		From    string      `json:"from"`
		To      string      `json:"to"`
		Summary interface{} `json:"summary"`
	}{
		RunID:   result.RunID,
		Cadence: string(result.Cadence),
		From:    result.From.Format("2006-01-02"),
		To:      result.To.Format("2006-01-02"),
		Summary: result.Summary,
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "summary.json"), data, 0644); err != nil {
		return fmt.Errorf("failed to write summary.json: %w", err)
	}
	return nil
}

func (w *Writer) writeNav(dir string, result *backtest.Result) error {
	f, err := os.Create(filepath.Join(dir, "nav.csv"))
	if err != nil {
		return fmt.Errorf("failed to create nav.csv: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if err := cw.Write([]string{"date", "nav", "cash", "position_value", "cum_return_pct"}); err != nil {
		return fmt.Errorf("failed to write nav header: %w", err)
	}
	for _, p := range result.Nav {
		row := []string{
			p.Date.Format("2006-01-02"),
			formatFloat(p.Nav),
			formatFloat(p.Cash),
			formatFloat(p.PositionValue),
			formatFloat(p.CumReturnPct),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write nav row: %w", err)
		}
	}
	return nil
}

func (w *Writer) writeTrades(dir string, result *backtest.Result) error {
	f, err := os.Create(filepath.Join(dir, "trades.csv"))
	if err != nil {
		return fmt.Errorf("failed to create trades.csv: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	header := []string{"date", "asset", "side", "kind", "shares", "price", "amount", "commission", "slippage", "total_cost", "note"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write trades header: %w", err)
	}
	for _, t := range result.Trades {
		row := []string{
			t.Date.Format("2006-01-02"),
			t.Asset,
			string(t.Side),
			string(t.Kind),
			formatFloat(t.Shares),
			formatFloat(t.Price),
			formatFloat(t.Amount),
			formatFloat(t.Commission),
			formatFloat(t.Slippage),
			formatFloat(t.TotalCost),
			t.Note,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write trade row: %w", err)
		}
	}
	return nil
}

func (w *Writer) writeRotations(dir string, result *backtest.Result) error {
	data, err := json.MarshalIndent(result.Rotations, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal rotations: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "rotations.json"), data, 0644); err != nil {
		return fmt.Errorf("failed to write rotations.json: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
