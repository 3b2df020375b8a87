package statsdproxy

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricAccessors(t *testing.T) {
	m := NewMetric([]byte("users.online:1|c|@0.5|#env:prod,region"))

	assert.Equal(t, []byte("users.online"), m.Name())
	assert.Equal(t, []byte("1"), m.Value())
	assert.Equal(t, []byte("c"), m.Type())

	tags, ok := m.Tags()
	require.True(t, ok)
	assert.Equal(t, []byte("env:prod,region"), tags)
}

func TestMetricNoTags(t *testing.T) {
	m := NewMetric([]byte("users.online:1|c"))
	_, ok := m.Tags()
	assert.False(t, ok)
	assert.False(t, m.HasTags())
}

func TestMetricRoundTripNoEdits(t *testing.T) {
	// Invariant 1: constructing from bytes B and serializing with no edits
	// yields exactly B.
	raw := []byte("foo.bar:1|c|#abc.tag:test,hc_project:1000")
	m := NewMetric(raw)
	assert.Equal(t, raw, m.Raw())
}

func TestTagsIterJoinRoundTrip(t *testing.T) {
	// Invariant 4: iterating tags_iter and re-joining with ',' yields
	// exactly tags().
	m := NewMetric([]byte("x:1|c|#a:1,b,c:3"))
	var segs [][]byte
	for tag := range m.TagsIter() {
		segs = append(segs, tag.Raw())
	}
	require.Len(t, segs, 3)
	assert.Equal(t, []byte("a:1"), segs[0])
	assert.Equal(t, []byte("b"), segs[1])
	assert.Equal(t, []byte("c:3"), segs[2])

	tags, ok := m.Tags()
	require.True(t, ok)
	assert.Equal(t, tags, bytes.Join(segs, []byte(",")))
}

func TestTagsIterEmptySegmentYieldsOneEmptyTag(t *testing.T) {
	// Invariant 9: a tag segment of a single empty tag ("|#") yields at
	// least one empty MetricTag with no name or value.
	m := NewMetric([]byte("x:1|c|#"))
	var tags []MetricTag
	for tag := range m.TagsIter() {
		tags = append(tags, tag)
	}
	require.Len(t, tags, 1)
	_, ok := tags[0].Name()
	assert.False(t, ok)
	_, ok = tags[0].Value()
	assert.False(t, ok)
}

func TestMetricTagNameValue(t *testing.T) {
	m := NewMetric([]byte("x:1|c|#k:v,bare"))
	tags := m.TagsSlice()
	require.Len(t, tags, 2)

	name, ok := tags[0].Name()
	require.True(t, ok)
	assert.Equal(t, []byte("k"), name)
	value, ok := tags[0].Value()
	require.True(t, ok)
	assert.Equal(t, []byte("v"), value)

	_, ok = tags[1].Name()
	assert.False(t, ok)
	_, ok = tags[1].Value()
	assert.False(t, ok)
}

func TestSetTagsAppendsWhenNoneExist(t *testing.T) {
	m := NewMetric([]byte("users.online:1|c"))
	m.SetTags([]byte("env:prod"))
	assert.Equal(t, "users.online:1|c|#env:prod", m.String())
}

func TestSetTagsSplicesExisting(t *testing.T) {
	// Invariant 3: set_tags preserves all bytes outside the tag segment
	// when the segment already exists.
	m := NewMetric([]byte("users.online:1|c|#tag1:a|@0.5"))
	m.SetTags([]byte("tag1:a,env:prod"))
	assert.Equal(t, "users.online:1|c|#tag1:a,env:prod|@0.5", m.String())
}

func TestSetTagsEmptyRemovesSegment(t *testing.T) {
	// Invariant 2.
	m := NewMetric([]byte("users.online:1|c|#env:prod"))
	m.SetTags(nil)
	assert.Equal(t, "users.online:1|c", m.String())
	_, ok := m.Tags()
	assert.False(t, ok)
}

func TestCloneIsIndependent(t *testing.T) {
	m := NewMetric([]byte("x:1|c|#a:1"))
	c := m.Clone()
	c.SetTags([]byte("a:2"))
	assert.Equal(t, "x:1|c|#a:1", m.String())
	assert.Equal(t, "x:1|c|#a:2", c.String())
}
