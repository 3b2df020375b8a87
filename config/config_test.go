package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dogproxy/statsdproxy"
)

const sampleYAML = `
middlewares:
  - type: add-tag
    tags: ["env:prod"]
  - type: deny-tag
    starts_with: ["hc_"]
  - type: aggregate-metrics
    flush_interval: 10s
    max_map_size: 10000
  - type: cardinality-limit
    limits:
      - window: 3600
        limit: 100000
  - type: tag-cardinality-limit
    limits:
      - tag: "*"
        limit: 1000
`

func TestParseTaggedUnion(t *testing.T) {
	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte(sampleYAML), &cfg))
	require.Len(t, cfg.Middlewares, 5)

	require.NotNil(t, cfg.Middlewares[0].AddTag)
	assert.Equal(t, []string{"env:prod"}, cfg.Middlewares[0].AddTag.Tags)

	require.NotNil(t, cfg.Middlewares[1].DenyTag)
	assert.Equal(t, []string{"hc_"}, cfg.Middlewares[1].DenyTag.StartsWith)

	require.NotNil(t, cfg.Middlewares[2].AggregateMetrics)
	assert.Equal(t, 10*time.Second, cfg.Middlewares[2].AggregateMetrics.FlushInterval.Std())
	assert.True(t, cfg.Middlewares[2].AggregateMetrics.AggregateCounters, "default true when omitted")

	require.NotNil(t, cfg.Middlewares[3].CardinalityLimit)
	assert.EqualValues(t, 3600, cfg.Middlewares[3].CardinalityLimit.Limits[0].Window)

	require.NotNil(t, cfg.Middlewares[4].TagCardinalityLimit)
	assert.Equal(t, "*", cfg.Middlewares[4].TagCardinalityLimit.Limits[0].Tag)
}

func TestDurationAcceptsBareMilliseconds(t *testing.T) {
	var cfg Config
	src := `
middlewares:
  - type: aggregate-metrics
    flush_interval: 1500
`
	require.NoError(t, yaml.Unmarshal([]byte(src), &cfg))
	assert.Equal(t, 1500*time.Millisecond, cfg.Middlewares[0].AggregateMetrics.FlushInterval.Std())
}

func TestDurationRejectsNegative(t *testing.T) {
	var cfg Config
	src := `
middlewares:
  - type: aggregate-metrics
    flush_interval: -1s
`
	err := yaml.Unmarshal([]byte(src), &cfg)
	assert.Error(t, err)
}

func TestUnknownMiddlewareTypeIsAnError(t *testing.T) {
	var cfg Config
	src := `
middlewares:
  - type: does-not-exist
`
	err := yaml.Unmarshal([]byte(src), &cfg)
	assert.ErrorIs(t, err, errUnknownMiddlewareType)
}

func TestBuildChainOrdersInReverse(t *testing.T) {
	// The last YAML entry ends up wrapping closest to upstream: AddTag
	// runs closest to ingress, so its output is what the terminal
	// recorder below sees.
	cfg := &Config{
		Middlewares: []MiddlewareConfig{
			{Type: "add-tag", AddTag: &AddTagConfig{Tags: []string{"env:prod"}}},
			{Type: "deny-tag", DenyTag: &DenyTagConfig{Tags: []string{"env"}}},
		},
	}

	term := &recordingTerminal{}
	chain, err := BuildChain(cfg, term, nil)
	require.NoError(t, err)

	chain.Submit(statsdproxy.NewMetric([]byte("x:1|c")))
	require.Len(t, term.submitted, 1)
	// add-tag ran first (env:prod added), deny-tag ran second (env* dropped).
	assert.Equal(t, "x:1|c", term.submitted[0])
}

type recordingTerminal struct {
	submitted []string
}

func (r *recordingTerminal) Poll(time.Time)               {}
func (r *recordingTerminal) Submit(m *statsdproxy.Metric) { r.submitted = append(r.submitted, m.String()) }
func (r *recordingTerminal) Join()                        {}
