package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etfrotate/internal/backtest"
	"etfrotate/internal/engine"
	"etfrotate/internal/schedule"
)

func sampleResult() *backtest.Result {
	day := func(n int) time.Time {
		return time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
	}
	return &backtest.Result{
		RunID:   "test-run-id",
		Cadence: schedule.Quarterly,
		From:    day(0),
		To:      day(2),
		Summary: engine.Summary{
			InitialCash:    100000,
			FinalNav:       105000,
			TotalReturnPct: 5,
			Sharpe:         1.2,
			TradingDays:    3,
			RotationTrades: 1,
			SignalTrades:   2,
			TotalCost:      42.5,
		},
		Nav: []engine.NavPoint{
			{Date: day(0), Nav: 100000, Cash: 100000},
			{Date: day(1), Nav: 102000, Cash: 500, PositionValue: 101500, CumReturnPct: 2},
			{Date: day(2), Nav: 105000, Cash: 500, PositionValue: 104500, CumReturnPct: 5},
		},
		Trades: []engine.Trade{
			{Date: day(1), Asset: "SPY", Side: engine.SideBuy, Kind: engine.KindSignal, Shares: 210, Price: 480, Amount: 100800},
		},
		Rotations: []engine.RotationResult{
			{Date: day(0), Added: []string{"SPY", "QQQ"}},
		},
	}
}

func TestWriteAll_EmitsArtifacts(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	require.NoError(t, w.WriteAll(sampleResult()))

	base := filepath.Join(dir, "quarterly")
	for _, name := range []string{"summary.json", "nav.csv", "trades.csv", "rotations.json", "report.md"} {
		_, err := os.Stat(filepath.Join(base, name))
		assert.NoError(t, err, "%s should exist", name)
	}

	data, err := os.ReadFile(filepath.Join(base, "summary.json"))
	require.NoError(t, err)
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Equal(t, "test-run-id", payload["run_id"])
	assert.Equal(t, "quarterly", payload["cadence"])

	nav, err := os.ReadFile(filepath.Join(base, "nav.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(nav)), "\n")
	assert.Len(t, lines, 4, "header plus one row per NAV point")
	assert.Equal(t, "date,nav,cash,position_value,cum_return_pct", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "2024-01-02,100000.0000"))
}

func TestRenderReport(t *testing.T) {
	content := renderReport(sampleResult())

	assert.Contains(t, content, "# Rotation Backtest: quarterly")
	assert.Contains(t, content, "test-run-id")
	assert.Contains(t, content, "| Total Return | 5.00% |")
	assert.Contains(t, content, "| Rotation trades | 1 |")
	assert.Contains(t, content, "## Rotations")
	assert.Contains(t, content, "SPY, QQQ")
}

func TestWriteComparison(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	q := sampleResult()
	a := sampleResult()
	a.Cadence = schedule.Annual
	a.Summary.TotalReturnPct = 8

	require.NoError(t, w.WriteComparison([]*backtest.Result{q, a}))

	data, err := os.ReadFile(filepath.Join(dir, "comparison.md"))
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "| quarterly |")
	assert.Contains(t, content, "| annual | 8.00%")
}
