// Package app wires configuration into a ready to use schedule generator.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/ridecheck/config"
	"github.com/kilianp07/ridecheck/core/events"
	"github.com/kilianp07/ridecheck/core/history"
	coremetrics "github.com/kilianp07/ridecheck/core/metrics"
	"github.com/kilianp07/ridecheck/core/model"
	coremon "github.com/kilianp07/ridecheck/core/monitoring"
	"github.com/kilianp07/ridecheck/core/scheduler"
	"github.com/kilianp07/ridecheck/core/solver"
	"github.com/kilianp07/ridecheck/infra/logger"
	"github.com/kilianp07/ridecheck/infra/metrics"
	"github.com/kilianp07/ridecheck/infra/monitoring"
	"github.com/kilianp07/ridecheck/infra/mqtt"
	"github.com/kilianp07/ridecheck/internal/eventbus"
)

// Publisher delivers generated schedules to subscribers.
type Publisher interface {
	PublishWeek(ctx context.Context, ws scheduler.WeeklySchedule) error
	Disconnect()
}

// Service generates schedules and forwards them to the configured outputs.
type Service struct {
	Scheduler *scheduler.Scheduler
	Bus       *eventbus.Bus[events.Event]
	history   history.Store
	publisher Publisher
	monitor   coremon.Monitor
	log       logger.Logger
	promPort  string
	stopProm  context.CancelFunc
}

// Option customises a Service.
type Option func(*Service)

// WithPublisher replaces the MQTT publisher.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithMonitor replaces the Sentry monitor.
func WithMonitor(m coremon.Monitor) Option {
	return func(s *Service) { s.monitor = m }
}

// WithHistory replaces the configured history store.
func WithHistory(h history.Store) Option {
	return func(s *Service) { s.history = h }
}

// New creates a Service from the configuration.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return nil, err
	}
	logg := logger.New("service")
	slv, err := solver.New(cfg.Solver)
	if err != nil {
		return nil, fmt.Errorf("solver: %w", err)
	}
	rec, err := coremetrics.NewRecorder(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	svc := &Service{
		Bus:      eventbus.New[events.Event](2 * model.DaysPerWeek),
		log:      logg,
		promPort: cfg.Metrics.PrometheusPort,
	}
	for _, o := range opts {
		o(svc)
	}
	svc.Scheduler = scheduler.New(cfg.Scheduler, slv,
		scheduler.WithLogger(logger.New("scheduler")),
		scheduler.WithRecorder(rec),
		scheduler.WithEvents(svc.Bus),
	)

	if svc.monitor == nil {
		if svc.monitor, err = monitoring.NewSentryMonitor(cfg.Sentry); err != nil {
			svc.Bus.Close()
			return nil, fmt.Errorf("sentry: %w", err)
		}
	}
	if svc.history == nil && cfg.History.Enabled {
		if svc.history, err = history.Open(cfg.History.Config); err != nil {
			svc.Bus.Close()
			return nil, fmt.Errorf("history: %w", err)
		}
	}
	if svc.publisher == nil && cfg.MQTT.Enabled {
		pub, err := mqtt.NewPublisher(cfg.MQTT.Config)
		if err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		svc.publisher = pub
	}
	return svc, nil
}

// Start serves Prometheus metrics when a port is configured. The server
// stops on Close or when ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	if s.promPort == "" || s.stopProm != nil {
		return
	}
	ctx, s.stopProm = context.WithCancel(ctx)
	go func() {
		if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
			s.log.Errorf("prom server: %v", err)
		}
	}()
}

// Generate schedules the week, stores it in the history and publishes it.
// Output failures are returned along with the schedule so callers can still
// write it out; scheduling failures return an empty schedule.
func (s *Service) Generate(ctx context.Context, inst model.Instance) (scheduler.WeeklySchedule, error) {
	ws, err := s.Scheduler.Generate(ctx, inst)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.monitor.CaptureException(err, map[string]string{"stage": "schedule"})
		}
		return scheduler.WeeklySchedule{}, err
	}
	if n := coremon.ReportWeek(s.monitor, ws); n > 0 {
		s.log.Debugf("reported %d day problems for run %s", n, ws.RunID)
	}
	var errs []error
	if s.history != nil {
		recs := history.FromSchedule(ws)
		if err := s.history.Append(ctx, recs...); err != nil {
			errs = append(errs, fmt.Errorf("history: %w", err))
		} else {
			s.log.Debugf("stored %d checks for run %s", len(recs), ws.RunID)
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishWeek(ctx, ws); err != nil {
			errs = append(errs, fmt.Errorf("publish: %w", err))
		} else {
			s.log.Infof("published run %s", ws.RunID)
		}
	}
	for _, e := range errs {
		s.monitor.CaptureException(e, map[string]string{"stage": "output", "run_id": ws.RunID})
	}
	return ws, errors.Join(errs...)
}

// History returns the configured store or nil.
func (s *Service) History() history.Store { return s.history }

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.stopProm != nil {
		s.stopProm()
	}
	if s.publisher != nil {
		s.publisher.Disconnect()
	}
	s.Bus.Close()
	if s.monitor != nil {
		s.monitor.Flush(2 * time.Second)
	}
	if s.history != nil {
		return s.history.Close()
	}
	return nil
}
