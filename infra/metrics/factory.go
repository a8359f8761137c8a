package metrics

import (
	"github.com/kilianp07/ridecheck/core/factory"
	coremetrics "github.com/kilianp07/ridecheck/core/metrics"
)

// init registers built-in recorders.
func init() {
	_ = coremetrics.RegisterRecorder("nop", func(map[string]any) (coremetrics.Recorder, error) {
		return coremetrics.NopRecorder{}, nil
	})

	_ = coremetrics.RegisterRecorder("prometheus", func(map[string]any) (coremetrics.Recorder, error) {
		// The HTTP endpoint is started by the caller from metrics.prometheus_port.
		return NewPromRecorder()
	})

	_ = coremetrics.RegisterRecorder("influx", func(conf map[string]any) (coremetrics.Recorder, error) {
		var c InfluxConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxRecorderWithFallback(c), nil
	})
}
