package statsdproxy

import "time"

// recordingStage is a terminal Stage used by tests to observe what reaches
// the end of a chain.
type recordingStage struct {
	polls     []time.Time
	submitted []string
	joined    bool
}

func (r *recordingStage) Poll(t time.Time)   { r.polls = append(r.polls, t) }
func (r *recordingStage) Submit(m *Metric)   { r.submitted = append(r.submitted, m.String()) }
func (r *recordingStage) Join()              { r.joined = true }
