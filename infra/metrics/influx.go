package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/ridecheck/core/metrics"
	"github.com/kilianp07/ridecheck/infra/logger"
)

// InfluxConfig locates the InfluxDB bucket.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxRecorder writes schedule outcomes to InfluxDB using the official client.
type InfluxRecorder struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxRecorder creates a recorder for the given endpoint. A URL ending
// with /api/v2/write is accepted.
func NewInfluxRecorder(cfg InfluxConfig) *InfluxRecorder {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxRecorder{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-recorder"),
	}
}

// NewInfluxRecorderWithFallback pings InfluxDB and returns a NopRecorder when
// the health check fails.
func NewInfluxRecorderWithFallback(cfg InfluxConfig) coremetrics.Recorder {
	rec := NewInfluxRecorder(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := rec.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			rec.log.Errorf("influx health check error: %v", err)
		} else {
			rec.log.Errorf("influx health status: %s", health.Status)
		}
		rec.client.Close()
		return coremetrics.NopRecorder{}
	}
	return rec
}

// RecordDay writes a schedule_day point.
func (r *InfluxRecorder) RecordDay(ev coremetrics.DayOutcome) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("schedule_day").
		AddTag("run_id", ev.RunID).
		AddTag("day", ev.Day).
		AddTag("status", ev.Status).
		AddField("rides", ev.Rides).
		AddField("closed_rides", ev.ClosedRides).
		AddField("unassigned", ev.Unassigned).
		AddField("workers", ev.Workers).
		AddField("iterations", ev.Iterations).
		AddField("conflicts", ev.Conflicts).
		AddField("overflow_minutes", ev.OverflowMinutes).
		AddField("elapsed_ms", ev.Elapsed.Milliseconds()).
		SetTime(ev.Time)
	return r.writeAPI.WritePoint(ctx, p)
}

// RecordWeek writes a schedule_week point.
func (r *InfluxRecorder) RecordWeek(ev coremetrics.WeekSummary) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("schedule_week").
		AddTag("run_id", ev.RunID).
		AddField("checks", ev.Checks).
		AddField("load_mean", ev.LoadMean).
		AddField("load_stddev", ev.LoadStdDev).
		AddField("elapsed_ms", ev.Elapsed.Milliseconds()).
		SetTime(ev.Time)
	for status, n := range ev.Statuses {
		p = p.AddField("days_"+status, n)
	}
	return r.writeAPI.WritePoint(ctx, p)
}

// Close releases the HTTP client.
func (r *InfluxRecorder) Close() { r.client.Close() }
