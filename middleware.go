package statsdproxy

import "time"

// Stage is the middleware contract every pipeline element satisfies. A
// chain is built by nesting stages by ownership: each stage holds its
// downstream Stage and forwards Poll/Submit/Join calls to it. The
// downstream is held as a Stage interface value, so every forwarded call
// is an interface method call.
//
// Submit is fire-and-forget: a stage decides locally whether to forward,
// mutate, or drop a metric, and never learns whether a downstream stage
// ultimately delivered it. Nothing in this chain blocks except the
// Upstream's socket send.
type Stage interface {
	// Poll advances any time-based state and propagates to the downstream
	// stage. Called by the Server before every Submit, and again whenever
	// the receive socket has been idle for about a second.
	Poll(now time.Time)

	// Submit applies the stage's transformation and, if the result should
	// continue downstream, calls the next stage's Submit. It may call
	// Submit zero, one, or more times (AggregateMetrics calls it zero times
	// per input and later many times from Poll-driven flushes).
	Submit(m *Metric)

	// Join flushes any pending state on shutdown, then joins the
	// downstream stage. Called once, after the receive loop has stopped.
	Join()
}

// timeSource lets tests and library embedders override wall-clock time.
// Production code leaves it at the zero value and gets time.Now.
var timeSource func() time.Time

// now returns the current time, honoring a test override installed via
// SetTimeSource.
func now() time.Time {
	if timeSource != nil {
		return timeSource()
	}
	return time.Now()
}

// SetTimeSource installs a process-wide override for now(). Passing nil
// restores time.Now. Intended for deterministic tests: CardinalityLimit
// and Upstream read now() directly, and Server and Sink pass now() to
// Poll (AggregateMetrics uses only the time it is given by Poll);
// production code should never call this.
func SetTimeSource(f func() time.Time) {
	timeSource = f
}
