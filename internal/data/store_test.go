package data

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func memStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_UpsertAndSeries(t *testing.T) {
	s := memStore(t)
	ctx := context.Background()

	bars := []Bar{
		{Date: date("2024-01-02"), Close: 100.5},
		{Date: date("2024-01-03"), Close: 101.25},
		{Date: date("2024-01-04"), Close: 99.0},
	}
	require.NoError(t, s.UpsertBatch(ctx, "SPY", bars))

	got, err := s.Series(ctx, "SPY", date("2024-01-01"), date("2024-01-31"))
	require.NoError(t, err)
	assert.Equal(t, bars, got)

	// Inclusive range edges.
	got, err = s.Series(ctx, "SPY", date("2024-01-03"), date("2024-01-03"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 101.25, got[0].Close)

	// Upsert replaces.
	require.NoError(t, s.Upsert(ctx, "SPY", Bar{Date: date("2024-01-03"), Close: 200}))
	got, err = s.Series(ctx, "SPY", date("2024-01-03"), date("2024-01-03"))
	require.NoError(t, err)
	assert.Equal(t, 200.0, got[0].Close)
}

func TestStore_TradingDates(t *testing.T) {
	s := memStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertBatch(ctx, "SPY", []Bar{
		{Date: date("2024-01-02"), Close: 1},
		{Date: date("2024-01-03"), Close: 1},
	}))
	require.NoError(t, s.UpsertBatch(ctx, "QQQ", []Bar{
		{Date: date("2024-01-03"), Close: 1},
		{Date: date("2024-01-04"), Close: 1},
	}))

	got, err := s.TradingDates(ctx, date("2024-01-01"), date("2024-01-31"))
	require.NoError(t, err)
	assert.Equal(t, []time.Time{date("2024-01-02"), date("2024-01-03"), date("2024-01-04")}, got,
		"calendar is the distinct union across symbols")
}

func TestStore_Symbols(t *testing.T) {
	s := memStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, "QQQ", Bar{Date: date("2024-01-02"), Close: 1}))
	require.NoError(t, s.Upsert(ctx, "SPY", Bar{Date: date("2024-01-02"), Close: 1}))

	got, err := s.Symbols(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"QQQ", "SPY"}, got)
}

func TestStore_RequireSymbols(t *testing.T) {
	s := memStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, "SPY", Bar{Date: date("2024-01-02"), Close: 1}))

	assert.NoError(t, s.RequireSymbols(ctx, []string{"SPY"}))

	err := s.RequireSymbols(ctx, []string{"SPY", "QQQ", "IWM"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QQQ")
	assert.Contains(t, err.Error(), "IWM")
}

func TestStore_DateBounds(t *testing.T) {
	s := memStore(t)
	ctx := context.Background()

	_, _, err := s.DateBounds(ctx)
	assert.Error(t, err, "empty store has no bounds")

	require.NoError(t, s.UpsertBatch(ctx, "SPY", []Bar{
		{Date: date("2024-01-05"), Close: 1},
		{Date: date("2024-03-01"), Close: 1},
	}))

	min, max, err := s.DateBounds(ctx)
	require.NoError(t, err)
	assert.Equal(t, date("2024-01-05"), min)
	assert.Equal(t, date("2024-03-01"), max)
}

func TestImportCSV(t *testing.T) {
	s := memStore(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "SPY.csv")
	content := "Date,Close\n2024-01-02,470.5\n2024-01-03,468.25\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	n, err := s.ImportCSV(ctx, "SPY", path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := s.Series(ctx, "SPY", date("2024-01-01"), date("2024-01-31"))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 470.5, got[0].Close)
}

func TestImportCSV_HeaderlessAndColumnOrder(t *testing.T) {
	s := memStore(t)
	ctx := context.Background()

	// No header: columns 0 and 1 are assumed.
	bare := filepath.Join(t.TempDir(), "bare.csv")
	require.NoError(t, os.WriteFile(bare, []byte("2024-01-02,100\n2024-01-03,101\n"), 0644))
	n, err := s.ImportCSV(ctx, "AAA", bare)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Header with extra columns in a different order.
	wide := filepath.Join(t.TempDir(), "wide.csv")
	content := "Open,Close,Date\n99,100.5,2024-01-02\n"
	require.NoError(t, os.WriteFile(wide, []byte(content), 0644))
	n, err = s.ImportCSV(ctx, "BBB", wide)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := s.Series(ctx, "BBB", date("2024-01-02"), date("2024-01-02"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 100.5, got[0].Close)
}

func TestImportCSV_Errors(t *testing.T) {
	s := memStore(t)
	ctx := context.Background()

	_, err := s.ImportCSV(ctx, "SPY", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("Date,Close\n2024-01-02,not-a-number\n"), 0644))
	_, err = s.ImportCSV(ctx, "SPY", bad)
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(empty, []byte("Date,Close\n"), 0644))
	_, err = s.ImportCSV(ctx, "SPY", empty)
	assert.Error(t, err)
}
