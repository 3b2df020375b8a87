package config

import (
	"fmt"

	"github.com/dogproxy/statsdproxy"
)

// BuildChain constructs a middleware chain from cfg, ending in upstream.
// Middlewares are walked in reverse YAML order, so the last configured
// entry ends up wrapping upstream most closely and the first entry is
// closest to ingress — the same order the original CLI builds its chain
// in, working backward from the terminal sink.
func BuildChain(cfg *Config, upstream statsdproxy.Stage, logger statsdproxy.Logger) (statsdproxy.Stage, error) {
	chain := upstream
	for i := len(cfg.Middlewares) - 1; i >= 0; i-- {
		mw := cfg.Middlewares[i]
		next, err := buildOne(mw, chain)
		if err != nil {
			return nil, fmt.Errorf("config: building middleware %d (%s): %w", i, mw.Type, err)
		}
		chain = next
	}
	return chain, nil
}

func buildOne(mw MiddlewareConfig, next statsdproxy.Stage) (statsdproxy.Stage, error) {
	switch {
	case mw.AddTag != nil:
		return statsdproxy.NewAddTag(mw.AddTag.Tags, next), nil
	case mw.AllowTag != nil:
		return statsdproxy.NewAllowTag(mw.AllowTag.Tags, next), nil
	case mw.DenyTag != nil:
		return statsdproxy.NewDenyTag(mw.DenyTag.StartsWith, mw.DenyTag.EndsWith, mw.DenyTag.Tags, next), nil
	case mw.Sample != nil:
		return statsdproxy.NewSample(mw.Sample.SampleRate, next)
	case mw.AggregateMetrics != nil:
		c := mw.AggregateMetrics
		return statsdproxy.NewAggregateMetrics(statsdproxy.AggregateConfig{
			AggregateCounters: c.AggregateCounters,
			AggregateGauges:   c.AggregateGauges,
			FlushInterval:     c.FlushInterval.Std(),
			FlushOffset:       c.FlushOffset,
			MaxMapSize:        c.MaxMapSize,
		}, next), nil
	case mw.CardinalityLimit != nil:
		quotas := make([]statsdproxy.CardinalityQuotaConfig, len(mw.CardinalityLimit.Limits))
		for i, l := range mw.CardinalityLimit.Limits {
			quotas[i] = statsdproxy.CardinalityQuotaConfig{WindowSeconds: int64(l.Window), Limit: l.Limit}
		}
		return statsdproxy.NewCardinalityLimit(quotas, next), nil
	case mw.TagCardinalityLimit != nil:
		quotas := make([]statsdproxy.TagCardinalityQuotaConfig, len(mw.TagCardinalityLimit.Limits))
		for i, l := range mw.TagCardinalityLimit.Limits {
			quotas[i] = statsdproxy.TagCardinalityQuotaConfig{Tag: l.Tag, Limit: l.Limit}
		}
		return statsdproxy.NewTagCardinalityLimit(quotas, next), nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownMiddlewareType, mw.Type)
	}
}
