// Package metrics provides the Prometheus and InfluxDB recorders for schedule
// generation. Importing it registers the "nop", "prometheus" and "influx"
// recorder types with core/metrics.
package metrics
