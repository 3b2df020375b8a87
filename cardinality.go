package statsdproxy

import (
	"hash/crc32"
	"time"
)

// cardinalityGranule is one slice of a sliding-window quota's time range.
type cardinalityGranule struct {
	start int64
	hash  map[uint32]struct{}
}

// cardinalityQuota is a single {window, limit} admission-control bucket
// over the whole-metric identity hash, approximated as a sliding window of
// granules rather than a single unbounded set with timestamps per entry.
type cardinalityQuota struct {
	windowSec      int64
	limit          uint64
	granularitySec int64
	granules       []*cardinalityGranule // ordered oldest-first
}

func newCardinalityQuota(windowSec int64, limit uint64) *cardinalityQuota {
	return &cardinalityQuota{
		windowSec:      windowSec,
		limit:          limit,
		granularitySec: granularityFor(windowSec),
	}
}

func granularityFor(windowSec int64) int64 {
	switch {
	case windowSec <= 300:
		return 1
	case windowSec <= 1800:
		return 60
	default:
		return 3600
	}
}

func (q *cardinalityQuota) removeOld(nowSec int64) {
	cutoff := nowSec - q.windowSec
	i := 0
	for ; i < len(q.granules); i++ {
		if q.granules[i].start >= cutoff {
			break
		}
	}
	q.granules = q.granules[i:]
}

func (q *cardinalityQuota) doesFit(h uint32) bool {
	if len(q.granules) == 0 {
		return true
	}
	oldest := q.granules[0]
	if _, seen := oldest.hash[h]; seen {
		return true
	}
	return uint64(len(oldest.hash)) < q.limit
}

func (q *cardinalityQuota) insert(nowSec int64, h uint32) {
	for ts := nowSec - q.windowSec; ts < nowSec; ts += q.granularitySec {
		g := q.granuleAt(ts)
		g.hash[h] = struct{}{}
	}
}

func (q *cardinalityQuota) granuleAt(ts int64) *cardinalityGranule {
	for _, g := range q.granules {
		if g.start == ts {
			return g
		}
	}
	g := &cardinalityGranule{start: ts, hash: make(map[uint32]struct{})}
	// keep granules ordered oldest-first
	i := 0
	for ; i < len(q.granules); i++ {
		if q.granules[i].start > ts {
			break
		}
	}
	q.granules = append(q.granules, nil)
	copy(q.granules[i+1:], q.granules[i:])
	q.granules[i] = g
	return g
}

// CardinalityQuotaConfig describes one {window, limit} entry.
type CardinalityQuotaConfig struct {
	WindowSeconds int64
	Limit         uint64
}

// CardinalityLimit admits metrics into the downstream chain only while the
// number of distinct whole-metric identities (CRC-32 of name+tags) seen
// within each configured sliding window stays under that window's limit.
type CardinalityLimit struct {
	quotas []*cardinalityQuota
	next   Stage
}

// NewCardinalityLimit builds a CardinalityLimit stage from quota configs.
func NewCardinalityLimit(quotas []CardinalityQuotaConfig, next Stage) *CardinalityLimit {
	cl := &CardinalityLimit{next: next}
	for _, q := range quotas {
		cl.quotas = append(cl.quotas, newCardinalityQuota(q.WindowSeconds, q.Limit))
	}
	return cl
}

func hashMetricIdentity(m *Metric) uint32 {
	h := crc32.NewIEEE()
	h.Write(m.Name())
	if tags, ok := m.Tags(); ok {
		h.Write(tags)
	}
	return h.Sum32()
}

func (s *CardinalityLimit) Poll(t time.Time) { s.next.Poll(t) }

func (s *CardinalityLimit) Submit(m *Metric) {
	h := hashMetricIdentity(m)
	nowSec := now().Unix()

	for _, q := range s.quotas {
		q.removeOld(nowSec)
		if !q.doesFit(h) {
			return
		}
	}

	s.next.Submit(m)

	for _, q := range s.quotas {
		q.insert(nowSec, h)
	}
}

func (s *CardinalityLimit) Join() { s.next.Join() }
