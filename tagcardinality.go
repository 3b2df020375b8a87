package statsdproxy

import "time"

// tagQuota caps the number of distinct values seen for a tag key (or every
// key, if tag == "*").
type tagQuota struct {
	tag        string
	limit      uint64
	valuesSeen map[string]struct{}
}

func (q *tagQuota) matchesKey(name string) bool {
	return q.tag == "*" || q.tag == name
}

func (q *tagQuota) full(value []byte) bool {
	if _, seen := q.valuesSeen[string(value)]; seen {
		return false
	}
	return uint64(len(q.valuesSeen)) >= q.limit
}

// TagCardinalityQuotaConfig describes one {tag, limit} entry. tag may be
// "*" to match every tag key.
type TagCardinalityQuotaConfig struct {
	Tag   string
	Limit uint64
}

// TagCardinalityLimit drops individual tags once the number of distinct
// values observed for that tag key reaches a configured limit, rather than
// dropping the whole metric. Tags without a value are never limited.
type TagCardinalityLimit struct {
	quotas []*tagQuota
	next   Stage
}

// NewTagCardinalityLimit builds a TagCardinalityLimit stage from quotas.
func NewTagCardinalityLimit(quotas []TagCardinalityQuotaConfig, next Stage) *TagCardinalityLimit {
	tc := &TagCardinalityLimit{next: next}
	for _, q := range quotas {
		tc.quotas = append(tc.quotas, &tagQuota{tag: q.Tag, limit: q.Limit, valuesSeen: make(map[string]struct{})})
	}
	return tc
}

func (s *TagCardinalityLimit) Poll(t time.Time) { s.next.Poll(t) }

func (s *TagCardinalityLimit) Submit(m *Metric) {
	var kept []MetricTag
	dropped := false

	for tag := range m.TagsIter() {
		name, hasName := tag.Name()
		value, hasValue := tag.Value()
		if !hasValue {
			kept = append(kept, tag)
			continue
		}
		limited := false
		if hasName {
			for _, q := range s.quotas {
				if q.matchesKey(string(name)) && q.full(value) {
					limited = true
					break
				}
			}
		}
		if limited {
			dropped = true
			continue
		}
		kept = append(kept, tag)
	}

	if dropped {
		m.SetTagsFromSlice(kept)
	}

	s.next.Submit(m)

	for _, tag := range kept {
		name, hasName := tag.Name()
		value, hasValue := tag.Value()
		if !hasName || !hasValue {
			continue
		}
		for _, q := range s.quotas {
			if q.matchesKey(string(name)) {
				q.valuesSeen[string(value)] = struct{}{}
			}
		}
	}
}

func (s *TagCardinalityLimit) Join() { s.next.Join() }
