package statsdproxy

import "time"

// AllowTag keeps only tags whose name is in a configured allow-list,
// dropping everything else including nameless tags.
type AllowTag struct {
	allowed map[string]struct{}
	next    Stage
}

// NewAllowTag builds an AllowTag stage retaining the given tag names.
func NewAllowTag(names []string, next Stage) *AllowTag {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return &AllowTag{allowed: set, next: next}
}

func (s *AllowTag) Poll(t time.Time) { s.next.Poll(t) }

func (s *AllowTag) Submit(m *Metric) {
	var kept []MetricTag
	dropped := false
	for tag := range m.TagsIter() {
		name, ok := tag.Name()
		if ok {
			if _, allowed := s.allowed[string(name)]; allowed {
				kept = append(kept, tag)
				continue
			}
		}
		dropped = true
	}
	if dropped {
		m.SetTagsFromSlice(kept)
	}
	s.next.Submit(m)
}

func (s *AllowTag) Join() { s.next.Join() }
