package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1_000_000.0, cfg.InitialCash)
	assert.Equal(t, "quarterly", cfg.Cadence)
	assert.True(t, cfg.KAMA.Params().Valid())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
initial_cash: 250000
cadence: annual
from: "2023-01-01"
to: "2024-06-30"
costs:
  commission_rate: 0.0005
  stamp_tax_rate: 0.001
kama:
  window: 20
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 250_000.0, cfg.InitialCash)
	assert.Equal(t, "annual", cfg.Cadence)
	assert.Equal(t, 0.0005, cfg.Costs.CommissionRate)
	assert.Equal(t, 0.001, cfg.Costs.StampTaxRate)
	assert.Equal(t, 20, cfg.KAMA.Window)
	// Untouched fields keep their defaults.
	assert.Equal(t, 0.001, cfg.Costs.SlippageRate)
	assert.Equal(t, 2, cfg.KAMA.Fast)
	assert.Equal(t, "data/prices.db", cfg.DBPath)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("initial_cash: [not a number]"), 0644))
	_, err = Load(bad)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.InitialCash = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Costs.CommissionRate = -1
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.KAMA.Window = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.From = "01/02/2024"
	assert.Error(t, cfg.Validate())
}

func TestDateRange(t *testing.T) {
	cfg := Default()
	from, to, err := cfg.DateRange()
	require.NoError(t, err)
	assert.True(t, from.IsZero())
	assert.True(t, to.IsZero())

	cfg.From = "2024-01-01"
	cfg.To = "2024-06-30"
	from, to, err = cfg.DateRange()
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", from.Format("2006-01-02"))
	assert.Equal(t, "2024-06-30", to.Format("2006-01-02"))

	cfg.From = "2024-07-01"
	_, _, err = cfg.DateRange()
	assert.Error(t, err, "inverted range is rejected")
}
