package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/ridecheck/core/history"
)

var histOpts struct {
	worker string
	ride   string
	days   int
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect past schedules",
}

var historyPairsCmd = &cobra.Command{
	Use:   "pairs",
	Short: "Show how often each worker checked each ride",
	RunE:  runHistoryPairs,
}

func init() {
	f := historyPairsCmd.Flags()
	f.StringVar(&histOpts.worker, "worker", "", "only this worker")
	f.StringVar(&histOpts.ride, "ride", "", "only this ride")
	f.IntVar(&histOpts.days, "days", 0, "only runs from the last N days")
	historyCmd.AddCommand(historyPairsCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryPairs(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := history.Open(cfg.History.Config)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	q := history.Query{Worker: histOpts.worker, Ride: histOpts.ride}
	if histOpts.days > 0 {
		q.Since = time.Now().AddDate(0, 0, -histOpts.days)
	}
	pairs, err := store.PairCounts(context.Background(), q)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "WORKER\tRIDE\tCHECKS")
	for _, p := range pairs {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\n", p.Worker, p.Ride, p.Count)
	}
	return tw.Flush()
}
