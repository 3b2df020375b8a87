package statsdproxy

import "sync/atomic"

// Stats is a point-in-time snapshot of pipeline throughput counters,
// exposed to operators via internal/adminhttp and logged periodically by
// internal/statsreporter.
type Stats struct {
	DatagramsReceived uint64
	MetricsSubmitted  uint64
}

// statsCounters are the atomic counters a running Server increments;
// snapshot copies them out without locking the data path.
type statsCounters struct {
	datagramsReceived atomic.Uint64
	metricsSubmitted  atomic.Uint64
}

func (c *statsCounters) snapshot() Stats {
	return Stats{
		DatagramsReceived: c.datagramsReceived.Load(),
		MetricsSubmitted:  c.metricsSubmitted.Load(),
	}
}
