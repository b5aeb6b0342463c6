package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/AngelCh415/reporting-api/internal/period"
)

// periodsCmd imprime el par de ventanas que resolvería un request con esos parámetros.
func periodsCmd() *cobra.Command {
	var (
		sel   period.Selector
		today string
	)
	cmd := &cobra.Command{
		Use:   "periods",
		Short: "Resolve a period selector into its current and previous windows",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			if today != "" {
				t, err := period.ParseDay(today)
				if err != nil {
					return err
				}
				now = t
			}
			pair, err := period.Resolve(sel, now)
			if err != nil {
				return err
			}
			b, err := json.MarshalIndent(pair, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&sel.Filter, "filter", "", "named selector (currentmonth, previousmonth, currentyear, last6months, today, week, last30days, monthtodate, yeartodate)")
	f.StringVar(&sel.StartMonth, "start-month", "", "explicit first month, MM-YYYY")
	f.StringVar(&sel.EndMonth, "end-month", "", "explicit last month, MM-YYYY")
	f.StringVar(&sel.FromDate, "from", "", "explicit first day, YYYY-MM-DD")
	f.StringVar(&sel.ToDate, "to", "", "explicit last day, YYYY-MM-DD")
	f.StringVar(&today, "today", "", "reference day, YYYY-MM-DD (defaults to now)")
	return cmd
}
