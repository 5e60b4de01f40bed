package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"etfrotate/internal/data"
)

func loadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <csv-file-or-dir>...",
		Short: "Import daily close CSVs into the price database",
		Long: `Imports one or more CSV price files into the local price database. Each
file holds one symbol's daily closes (date,close with an optional header);
the symbol is taken from the file name, e.g. SPY.csv -> SPY.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runLoad,
	}
	cmd.Flags().String("db", envOr("ETFROTATE_DB", "data/prices.db"), "path to price database")
	return cmd
}

func runLoad(cmd *cobra.Command, args []string) error {
	dbPath, _ := cmd.Flags().GetString("db")

	store, err := data.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var files []string
	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil || len(matches) == 0 {
			matches = []string{arg}
		}
		for _, m := range matches {
			expanded, err := filepath.Glob(filepath.Join(m, "*.csv"))
			if err == nil && len(expanded) > 0 {
				files = append(files, expanded...)
				continue
			}
			files = append(files, m)
		}
	}

	total := 0
	for _, file := range files {
		symbol := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		n, err := store.ImportCSV(ctx, strings.ToUpper(symbol), file)
		if err != nil {
			return fmt.Errorf("import %s: %w", file, err)
		}
		log.Info().Str("symbol", strings.ToUpper(symbol)).Int("rows", n).Msg("Imported price file")
		total += n
	}

	fmt.Printf("Imported %d rows from %d files into %s\n", total, len(files), dbPath)
	return nil
}
