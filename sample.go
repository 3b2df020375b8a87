package statsdproxy

import (
	"math/rand/v2"
	"time"
)

// Sample forwards metrics probabilistically. It is not in the business of
// rewriting the sample-rate field on the wire; it only decides whether to
// forward at all, mirroring how a client-side sampler's decision is
// already baked into the `@rate` suffix by the time it reaches this stage.
type Sample struct {
	rate float64
	rng  *rand.Rand
	next Stage
}

// NewSample builds a Sample stage forwarding roughly a rate fraction of
// submitted metrics. rate must be in [0.0, 1.0].
func NewSample(rate float64, next Stage) (*Sample, error) {
	if rate < 0.0 || rate > 1.0 {
		return nil, ErrInvalidSampleRate
	}
	return &Sample{
		rate: rate,
		rng:  rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		next: next,
	}, nil
}

func (s *Sample) Poll(t time.Time) { s.next.Poll(t) }

func (s *Sample) Submit(m *Metric) {
	if s.rate == 0.0 {
		return
	}
	if s.rng.Float64() < s.rate {
		s.next.Submit(m)
	}
}

func (s *Sample) Join() { s.next.Join() }
