package data

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// ImportCSV loads a symbol's daily closes from a CSV file into the store. The
// file needs a date column and a close column; a header row naming them (in
// any casing) is detected and otherwise columns 0 and 1 are assumed. Returns
// the number of rows imported.
func (s *Store) ImportCSV(ctx context.Context, symbol, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open price file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	dateCol, closeCol := 0, 1
	first := true

	var bars []Bar
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if len(record) < 2 {
			continue
		}

		if first {
			first = false
			if cols, ok := headerColumns(record); ok {
				dateCol, closeCol = cols[0], cols[1]
				continue
			}
		}

		date, err := time.Parse(dateLayout, record[dateCol])
		if err != nil {
			return 0, fmt.Errorf("%s: bad date %q: %w", path, record[dateCol], err)
		}
		price, err := strconv.ParseFloat(record[closeCol], 64)
		if err != nil {
			return 0, fmt.Errorf("%s: bad close %q: %w", path, record[closeCol], err)
		}
		bars = append(bars, Bar{Date: date, Close: price})
	}

	if len(bars) == 0 {
		return 0, fmt.Errorf("%s: no price rows found", path)
	}
	if err := s.UpsertBatch(ctx, symbol, bars); err != nil {
		return 0, err
	}
	return len(bars), nil
}

// headerColumns recognizes a header row and returns the [date, close] column
// indices.
func headerColumns(record []string) ([2]int, bool) {
	cols := [2]int{-1, -1}
	for i, cell := range record {
		switch strings.ToLower(strings.TrimSpace(cell)) {
		case "date", "trade_date":
			cols[0] = i
		case "close", "adj close", "adj_close":
			if cols[1] == -1 {
				cols[1] = i
			}
		}
	}
	if cols[0] >= 0 && cols[1] >= 0 {
		return cols, true
	}
	return cols, false
}
