// Package metrics defines the recorders used to observe schedule generation.
// Implementations such as PromRecorder and InfluxRecorder live in
// infra/metrics and register themselves with the factory registry so the
// configuration can list any number of sinks. A MultiRecorder is returned
// when more than one sink is configured.
package metrics
