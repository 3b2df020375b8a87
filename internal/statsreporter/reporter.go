// Package statsreporter periodically logs pipeline throughput counters.
// It is an ambient observability nicety, not part of the metric data
// path: it polls a stats snapshot on a cron schedule and logs the delta.
package statsreporter

import (
	"github.com/robfig/cron/v3"

	"github.com/dogproxy/statsdproxy"
)

// StatsSource reports the current pipeline throughput snapshot.
type StatsSource interface {
	Stats() statsdproxy.Stats
}

// Reporter wraps a cron schedule that logs throughput deltas.
type Reporter struct {
	cron   *cron.Cron
	source StatsSource
	logger statsdproxy.Logger
	last   statsdproxy.Stats
}

// New builds a Reporter. spec is a standard cron expression, e.g. "@every
// 1m". Call Start to begin reporting.
func New(spec string, source StatsSource, logger statsdproxy.Logger) (*Reporter, error) {
	if logger == nil {
		logger = statsdproxy.NopLogger{}
	}
	r := &Reporter{cron: cron.New(), source: source, logger: logger}
	_, err := r.cron.AddFunc(spec, r.report)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Reporter) report() {
	snap := r.source.Stats()
	r.logger.Info("pipeline throughput",
		"datagrams_total", snap.DatagramsReceived,
		"datagrams_delta", snap.DatagramsReceived-r.last.DatagramsReceived,
		"metrics_total", snap.MetricsSubmitted,
		"metrics_delta", snap.MetricsSubmitted-r.last.MetricsSubmitted,
	)
	r.last = snap
}

// Start begins the cron schedule in the background.
func (r *Reporter) Start() { r.cron.Start() }

// Stop ends the cron schedule, waiting for any in-flight report to finish.
func (r *Reporter) Stop() { <-r.cron.Stop().Done() }
