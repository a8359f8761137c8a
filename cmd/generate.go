package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/ridecheck/app"
	"github.com/kilianp07/ridecheck/core/events"
	"github.com/kilianp07/ridecheck/core/model"
	"github.com/kilianp07/ridecheck/core/scheduler"
	"github.com/kilianp07/ridecheck/infra/logger"
	"github.com/kilianp07/ridecheck/pkg/export"
)

var genOpts struct {
	input    string
	output   string
	format   string
	publish  bool
	progress bool
	strict   bool
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the weekly inspection schedule",
	RunE:  runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringVarP(&genOpts.input, "input", "i", "", "instance snapshot (yaml or json)")
	f.StringVarP(&genOpts.output, "output", "o", "", "output file, stdout when empty")
	f.StringVar(&genOpts.format, "format", "", "output format: csv or json")
	f.BoolVar(&genOpts.publish, "publish", false, "publish the schedule over MQTT")
	f.BoolVar(&genOpts.progress, "progress", false, "print per-day progress to stderr")
	f.BoolVar(&genOpts.strict, "strict", false, "exit with an error when a day is not fully scheduled")
	_ = generateCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if genOpts.format != "" {
		cfg.Export.Format = genOpts.format
	}
	if genOpts.output != "" {
		cfg.Export.Path = genOpts.output
	}
	if genOpts.publish {
		cfg.MQTT.Enabled = true
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	inst, err := model.LoadInstance(genOpts.input)
	if err != nil {
		return err
	}

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	log := logger.New("main")
	defer func() {
		if err := svc.Close(); err != nil {
			log.Errorf("service close: %v", err)
		}
	}()
	svc.Start(ctx)
	if genOpts.progress {
		go printProgress(cmd.ErrOrStderr(), svc.Bus.Subscribe())
	}

	ws, genErr := svc.Generate(ctx, inst)
	if ws.RunID == "" {
		return genErr
	}
	if err := writeSchedule(cmd.OutOrStdout(), cfg.Export.Path, cfg.Export.Format, ws); err != nil {
		return err
	}
	for _, de := range ws.Errors() {
		log.Warnf("%v", de)
	}
	if genErr != nil {
		return genErr
	}
	if genOpts.strict && !ws.Complete() {
		return fmt.Errorf("schedule incomplete: %w", ws.Err())
	}
	return nil
}

func writeSchedule(stdout io.Writer, path, format string, ws scheduler.WeeklySchedule) (err error) {
	w := stdout
	if path != "" {
		f, ferr := os.Create(path)
		if ferr != nil {
			return ferr
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}
	return export.Write(w, format, ws)
}

func printProgress(w io.Writer, sub <-chan events.Event) {
	for ev := range sub {
		switch e := ev.(type) {
		case events.DayEvent:
			_, _ = fmt.Fprintf(w, "%-9s %-11s %s\n", e.Day, e.Status, e.Elapsed)
		case events.WeekEvent:
			_, _ = fmt.Fprintf(w, "run %s complete=%t in %s\n", e.RunID, e.Complete, e.Elapsed)
		}
	}
}
