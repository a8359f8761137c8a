package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/ridecheck/core/model"
	"github.com/kilianp07/ridecheck/core/problem"
)

var validateInput string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check an instance snapshot and report days that cannot be covered",
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateInput, "input", "i", "", "instance snapshot (yaml or json)")
	_ = validateCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	inst, err := model.LoadInstance(validateInput)
	if err != nil {
		return err
	}
	if err := inst.Validate(); err != nil {
		return err
	}
	cat, err := problem.NewCatalog(inst.Workers, inst.Rides)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, d := range model.Weekdays {
		p := cat.Build(d, inst.Day(d))
		switch {
		case inst.Day(d).ParkClosed():
			_, _ = fmt.Fprintf(out, "%-9s park closed\n", d)
		case len(p.EmptyDomains()) > 0:
			_, _ = fmt.Fprintf(out, "%-9s %d rides, no eligible worker for %v\n", d, len(p.Variables), p.EmptyDomains())
		default:
			need := p.Durations.Total(p.Rides())
			avail := p.Capacity * len(p.Workers())
			_, _ = fmt.Fprintf(out, "%-9s %d rides, %d/%d worker minutes\n", d, len(p.Variables), need, avail)
		}
	}
	return nil
}
