package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"etfrotate/internal/schedule"
)

func scheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule <schedule.json>",
		Short: "Inspect the resolved rotation periods for each cadence",
		Args:  cobra.ExactArgs(1),
		RunE:  runSchedule,
	}
	cmd.Flags().String("cadence", "all", "quarterly, semiannual, annual or all")
	return cmd
}

func runSchedule(cmd *cobra.Command, args []string) error {
	base, err := schedule.Load(args[0])
	if err != nil {
		return err
	}

	selector, _ := cmd.Flags().GetString("cadence")
	cadences := []schedule.Cadence{schedule.Quarterly, schedule.SemiAnnual, schedule.Annual}
	if selector != "all" {
		c, err := schedule.ParseCadence(selector)
		if err != nil {
			return err
		}
		cadences = []schedule.Cadence{c}
	}

	for _, cadence := range cadences {
		resolver, err := schedule.NewResolver(base, cadence)
		if err != nil {
			return err
		}
		fmt.Printf("%s (%d periods, %d assets)\n", cadence,
			len(resolver.Periods()), len(resolver.AllAssets()))
		for _, p := range resolver.Periods() {
			fmt.Printf("  %-8s %s .. %s  [%s]\n", p.Key,
				p.Start.Format("2006-01-02"), p.End.Format("2006-01-02"),
				strings.Join(p.Assets, " "))
		}
		fmt.Println()
	}
	return nil
}
