package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/ridecheck/api"
	apihist "github.com/kilianp07/ridecheck/api/history"
	"github.com/kilianp07/ridecheck/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the schedule history over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address, overrides api.addr")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.API.Addr = addr
	}
	cfg.History.Enabled = true
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	svc.Start(ctx)
	err = api.Serve(ctx, cfg.API.Addr, apihist.NewMux(svc.History(), cfg.API.Token))
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
