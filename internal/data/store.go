package data

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const dateLayout = "2006-01-02"

// Bar is one daily close for one symbol.
type Bar struct {
	Date  time.Time
	Close float64
}

type barRow struct {
	Date  string  `db:"date"`
	Close float64 `db:"close"`
}

const schema = `
CREATE TABLE IF NOT EXISTS prices (
	symbol TEXT NOT NULL,
	date   TEXT NOT NULL,
	close  REAL NOT NULL,
	PRIMARY KEY (symbol, date)
);
CREATE INDEX IF NOT EXISTS idx_prices_date ON prices(date);
`

// Store is the local price-history database backing a simulation run.
type Store struct {
	db      *sqlx.DB
	timeout time.Duration
}

// Open opens (creating if needed) the sqlite price database at path. Use
// ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open price database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize price schema: %w", err)
	}
	return &Store{db: db, timeout: 30 * time.Second}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Upsert writes one close, replacing any existing row for the symbol/date.
func (s *Store) Upsert(ctx context.Context, symbol string, bar Bar) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO prices (symbol, date, close) VALUES (?, ?, ?)`,
		symbol, bar.Date.Format(dateLayout), bar.Close)
	if err != nil {
		return fmt.Errorf("failed to upsert price %s %s: %w", symbol, bar.Date.Format(dateLayout), err)
	}
	return nil
}

// UpsertBatch writes a series of closes for one symbol in a single
// transaction.
func (s *Store) UpsertBatch(ctx context.Context, symbol string, bars []Bar) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin price batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx,
		`INSERT OR REPLACE INTO prices (symbol, date, close) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare price insert: %w", err)
	}
	defer stmt.Close()

	for _, bar := range bars {
		if _, err := stmt.ExecContext(ctx, symbol, bar.Date.Format(dateLayout), bar.Close); err != nil {
			return fmt.Errorf("failed to insert price %s %s: %w", symbol, bar.Date.Format(dateLayout), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit price batch: %w", err)
	}
	return nil
}

// Series returns a symbol's closes between from and to inclusive, in
// chronological order.
func (s *Store) Series(ctx context.Context, symbol string, from, to time.Time) ([]Bar, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var rows []barRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT date, close FROM prices WHERE symbol = ? AND date >= ? AND date <= ? ORDER BY date`,
		symbol, from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query series for %s: %w", symbol, err)
	}

	bars := make([]Bar, 0, len(rows))
	for _, r := range rows {
		d, err := time.Parse(dateLayout, r.Date)
		if err != nil {
			return nil, fmt.Errorf("corrupt date %q for %s: %w", r.Date, symbol, err)
		}
		bars = append(bars, Bar{Date: d, Close: r.Close})
	}
	return bars, nil
}

// TradingDates returns the distinct dates with any price in [from, to],
// ascending. This is the trading calendar the schedule resolver consumes.
func (s *Store) TradingDates(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var raw []string
	err := s.db.SelectContext(ctx, &raw,
		`SELECT DISTINCT date FROM prices WHERE date >= ? AND date <= ? ORDER BY date`,
		from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query trading dates: %w", err)
	}

	dates := make([]time.Time, 0, len(raw))
	for _, r := range raw {
		d, err := time.Parse(dateLayout, r)
		if err != nil {
			return nil, fmt.Errorf("corrupt trading date %q: %w", r, err)
		}
		dates = append(dates, d)
	}
	return dates, nil
}

// Symbols returns every symbol present in the store, sorted.
func (s *Store) Symbols(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var symbols []string
	err := s.db.SelectContext(ctx, &symbols,
		`SELECT DISTINCT symbol FROM prices ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("failed to query symbols: %w", err)
	}
	return symbols, nil
}

// RequireSymbols verifies that every requested symbol has at least one price
// row. A missing symbol is a fatal startup condition for a run.
func (s *Store) RequireSymbols(ctx context.Context, symbols []string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var missing []string
	for _, sym := range symbols {
		var n int
		err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM prices WHERE symbol = ?`, sym)
		if err != nil && err != sql.ErrNoRows {
			return fmt.Errorf("failed to check symbol %s: %w", sym, err)
		}
		if n == 0 {
			missing = append(missing, sym)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("price data missing for: %s", strings.Join(missing, ", "))
	}
	return nil
}

// DateBounds returns the earliest and latest dates present in the store.
func (s *Store) DateBounds(ctx context.Context) (min, max time.Time, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var row struct {
		Min sql.NullString `db:"min"`
		Max sql.NullString `db:"max"`
	}
	if err := s.db.GetContext(ctx, &row,
		`SELECT MIN(date) AS min, MAX(date) AS max FROM prices`); err != nil {
		return min, max, fmt.Errorf("failed to query date bounds: %w", err)
	}
	if !row.Min.Valid || !row.Max.Valid {
		return min, max, fmt.Errorf("price database is empty")
	}
	if min, err = time.Parse(dateLayout, row.Min.String); err != nil {
		return min, max, fmt.Errorf("corrupt min date %q: %w", row.Min.String, err)
	}
	if max, err = time.Parse(dateLayout, row.Max.String); err != nil {
		return min, max, fmt.Errorf("corrupt max date %q: %w", row.Max.String, err)
	}
	return min, max, nil
}
