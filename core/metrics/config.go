package metrics

import "github.com/kilianp07/ridecheck/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusPort serves /metrics when non-empty.
	PrometheusPort string `json:"prometheus_port"`
}
