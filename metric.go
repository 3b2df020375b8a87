// Package statsdproxy implements a UDP sidecar for the DogStatsD wire
// format. It parses metric lines without copying them, runs them through a
// configurable chain of middleware stages, and forwards the result to an
// upstream statsd collector.
package statsdproxy

import (
	"bytes"
	"iter"
)

// tagsRange records the half-open byte range of a Metric's tag segment
// (the bytes between "|#" and the next "|" or end of buffer).
type tagsRange struct {
	start, end int
	ok         bool
}

// Metric is a zero-copy handle over one DogStatsD line:
//
//	<NAME>:<VALUE>|<TYPE>[|@<SAMPLE_RATE>][|#<TAG1>[,<TAG2>...]][|...]
//
// All accessors read directly from raw; nothing is parsed eagerly and no
// intermediate representation is materialized. Only the tag segment can be
// rewritten in place; every other byte survives untouched unless a stage
// (Aggregate) deliberately reconstructs the value field.
type Metric struct {
	raw     []byte
	tagsPos tagsRange
}

// NewMetric wraps raw (which must not include a trailing newline) as a
// Metric, locating its tag segment if present. raw is taken by reference,
// not copied; callers must not mutate it afterward except through Metric's
// own mutators.
func NewMetric(raw []byte) *Metric {
	m := &Metric{raw: raw}
	m.tagsPos = findTagsRange(raw)
	return m
}

func findTagsRange(raw []byte) tagsRange {
	idx := bytes.Index(raw, []byte("|#"))
	if idx < 0 {
		return tagsRange{}
	}
	start := idx + 2
	end := start
	for end < len(raw) && raw[end] != '|' {
		end++
	}
	return tagsRange{start: start, end: end, ok: true}
}

// Raw returns the exact on-wire bytes currently represented by m.
func (m *Metric) Raw() []byte { return m.raw }

// Name returns the bytes before the first ':'.
func (m *Metric) Name() []byte {
	idx := bytes.IndexByte(m.raw, ':')
	if idx < 0 {
		return m.raw
	}
	return m.raw[:idx]
}

// Value returns the bytes between the first ':' and the following '|'.
func (m *Metric) Value() []byte {
	colon := bytes.IndexByte(m.raw, ':')
	if colon < 0 {
		return nil
	}
	rest := m.raw[colon+1:]
	pipe := bytes.IndexByte(rest, '|')
	if pipe < 0 {
		return rest
	}
	return rest[:pipe]
}

// valueRange reports the absolute byte offsets of the value field, used by
// Aggregate to strip and later re-insert it.
func (m *Metric) valueRange() (start, end int, ok bool) {
	colon := bytes.IndexByte(m.raw, ':')
	if colon < 0 {
		return 0, 0, false
	}
	start = colon + 1
	rest := m.raw[start:]
	pipe := bytes.IndexByte(rest, '|')
	if pipe < 0 {
		return start, len(m.raw), true
	}
	return start, start + pipe, true
}

// Type returns the bytes between the first '|' and the next '|' or
// end-of-line.
func (m *Metric) Type() []byte {
	p1 := bytes.IndexByte(m.raw, '|')
	if p1 < 0 {
		return nil
	}
	rest := m.raw[p1+1:]
	p2 := bytes.IndexByte(rest, '|')
	if p2 < 0 {
		return rest
	}
	return rest[:p2]
}

// Tags returns the raw tag segment bytes and whether one is present.
func (m *Metric) Tags() ([]byte, bool) {
	if !m.tagsPos.ok {
		return nil, false
	}
	return m.raw[m.tagsPos.start:m.tagsPos.end], true
}

// HasTags reports whether the metric carries a "|#" tag segment at all,
// independent of whether that segment is empty.
func (m *Metric) HasTags() bool { return m.tagsPos.ok }

// MetricTag is a view into one comma-delimited segment of a tag list.
type MetricTag struct {
	raw   []byte
	colon int
}

func newMetricTag(seg []byte) MetricTag {
	return MetricTag{raw: seg, colon: bytes.IndexByte(seg, ':')}
}

// Raw returns the full segment, e.g. "env:prod" or "standalone".
func (t MetricTag) Raw() []byte { return t.raw }

// Name returns the bytes before the segment's ':', if any.
func (t MetricTag) Name() ([]byte, bool) {
	if t.colon < 0 {
		return nil, false
	}
	return t.raw[:t.colon], true
}

// Value returns the bytes after the segment's ':', if any.
func (t MetricTag) Value() ([]byte, bool) {
	if t.colon < 0 {
		return nil, false
	}
	return t.raw[t.colon+1:], true
}

// TagsIter lazily yields one MetricTag per comma-separated segment of the
// tag list. A bare "|#" (empty tag segment) yields exactly one empty tag,
// matching how an application would emit a valueless, nameless tag marker.
func (m *Metric) TagsIter() iter.Seq[MetricTag] {
	return func(yield func(MetricTag) bool) {
		tb, ok := m.Tags()
		if !ok {
			return
		}
		if len(tb) == 0 {
			yield(newMetricTag(tb))
			return
		}
		start := 0
		for i := 0; i <= len(tb); i++ {
			if i == len(tb) || tb[i] == ',' {
				if !yield(newMetricTag(tb[start:i])) {
					return
				}
				start = i + 1
			}
		}
	}
}

// TagsSlice materializes TagsIter into a slice, for stages that need to
// filter and rebuild the tag list.
func (m *Metric) TagsSlice() []MetricTag {
	var out []MetricTag
	for t := range m.TagsIter() {
		out = append(out, t)
	}
	return out
}

// SetTags replaces the metric's tag segment with tags. An empty tags
// argument removes the "|#..." segment (including the leading "|#")
// entirely. All bytes outside the tag segment are preserved verbatim.
func (m *Metric) SetTags(tags []byte) {
	if len(tags) == 0 {
		if m.tagsPos.ok {
			start := m.tagsPos.start - 2
			end := m.tagsPos.end
			m.raw = append(m.raw[:start:start], m.raw[end:]...)
			m.tagsPos = tagsRange{}
		}
		return
	}
	if m.tagsPos.ok {
		out := make([]byte, 0, m.tagsPos.start+len(tags)+(len(m.raw)-m.tagsPos.end))
		out = append(out, m.raw[:m.tagsPos.start]...)
		out = append(out, tags...)
		out = append(out, m.raw[m.tagsPos.end:]...)
		m.raw = out
		m.tagsPos.end = m.tagsPos.start + len(tags)
		return
	}
	start := len(m.raw) + 2
	m.raw = append(m.raw, '|', '#')
	m.raw = append(m.raw, tags...)
	m.tagsPos = tagsRange{start: start, end: len(m.raw), ok: true}
}

// SetTagsFromSlice joins tags with "," and installs the result via SetTags.
func (m *Metric) SetTagsFromSlice(tags []MetricTag) {
	if len(tags) == 0 {
		m.SetTags(nil)
		return
	}
	raws := make([][]byte, len(tags))
	for i, t := range tags {
		raws[i] = t.raw
	}
	m.SetTags(bytes.Join(raws, []byte(",")))
}

// Clone returns a deep copy that shares no backing array with m, safe for a
// stage to mutate independently after forwarding the original.
func (m *Metric) Clone() *Metric {
	raw := make([]byte, len(m.raw))
	copy(raw, m.raw)
	return &Metric{raw: raw, tagsPos: m.tagsPos}
}

// String renders the metric's current bytes, for logging.
func (m *Metric) String() string { return string(m.raw) }
