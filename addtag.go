package statsdproxy

import (
	"bytes"
	"time"
)

// AddTag unconditionally appends a configured set of tags to every metric
// it sees.
type AddTag struct {
	tags []byte // pre-joined, comma-separated
	next Stage
}

// NewAddTag builds an AddTag stage that appends tags (e.g. "env:prod",
// "region:eu") ahead of next.
func NewAddTag(tags []string, next Stage) *AddTag {
	return &AddTag{tags: []byte(joinStrings(tags, ",")), next: next}
}

func joinStrings(ss []string, sep string) string {
	switch len(ss) {
	case 0:
		return ""
	case 1:
		return ss[0]
	}
	var buf bytes.Buffer
	for i, s := range ss {
		if i > 0 {
			buf.WriteString(sep)
		}
		buf.WriteString(s)
	}
	return buf.String()
}

func (s *AddTag) Poll(t time.Time) { s.next.Poll(t) }

func (s *AddTag) Submit(m *Metric) {
	if existing, ok := m.Tags(); ok && len(existing) > 0 {
		combined := make([]byte, 0, len(existing)+1+len(s.tags))
		combined = append(combined, existing...)
		combined = append(combined, ',')
		combined = append(combined, s.tags...)
		m.SetTags(combined)
	} else {
		m.SetTags(s.tags)
	}
	s.next.Submit(m)
}

func (s *AddTag) Join() { s.next.Join() }
