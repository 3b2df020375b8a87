package statsdproxy

import (
	"bytes"
	"time"
)

// DenyTag drops tags whose name matches a configured prefix, suffix, or
// exact-match pattern. Tags without a name are always kept.
type DenyTag struct {
	startsWith [][]byte
	endsWith   [][]byte
	exact      map[string]struct{}
	next       Stage
}

// NewDenyTag builds a DenyTag stage. Each pattern list is deduplicated.
func NewDenyTag(startsWith, endsWith, exact []string, next Stage) *DenyTag {
	return &DenyTag{
		startsWith: dedupBytes(startsWith),
		endsWith:   dedupBytes(endsWith),
		exact:      dedupSet(exact),
		next:       next,
	}
}

func dedupBytes(ss []string) [][]byte {
	seen := make(map[string]struct{}, len(ss))
	var out [][]byte
	for _, s := range ss {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, []byte(s))
	}
	return out
}

func dedupSet(ss []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ss))
	for _, s := range ss {
		set[s] = struct{}{}
	}
	return set
}

func (s *DenyTag) matches(name []byte) bool {
	if _, ok := s.exact[string(name)]; ok {
		return true
	}
	for _, p := range s.startsWith {
		if bytes.HasPrefix(name, p) {
			return true
		}
	}
	for _, p := range s.endsWith {
		if bytes.HasSuffix(name, p) {
			return true
		}
	}
	return false
}

func (s *DenyTag) Poll(t time.Time) { s.next.Poll(t) }

func (s *DenyTag) Submit(m *Metric) {
	var kept []MetricTag
	dropped := false
	for tag := range m.TagsIter() {
		name, ok := tag.Name()
		if ok && s.matches(name) {
			dropped = true
			continue
		}
		kept = append(kept, tag)
	}
	if dropped {
		m.SetTagsFromSlice(kept)
	}
	s.next.Submit(m)
}

func (s *DenyTag) Join() { s.next.Join() }
