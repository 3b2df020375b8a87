package statsdproxy

import "errors"

// Sentinel errors for startup paths. NewSample returns
// ErrInvalidSampleRate (and config.BuildChain passes it on); the config
// package reports negative durations and unknown middleware types with its
// own unexported sentinels, so nothing returns ErrNegativeDuration or
// ErrUnknownMiddleware. Runtime errors inside a stage never reach the caller; per the error
// taxonomy, a stage that fails to parse a metric forwards it unchanged
// instead of returning an error.
var (
	ErrInvalidSampleRate = errors.New("statsdproxy: sample rate must be in [0.0, 1.0]")
	ErrNegativeDuration  = errors.New("statsdproxy: duration must not be negative")
	ErrUnknownMiddleware = errors.New("statsdproxy: unknown middleware type")
)
