// Package config loads the YAML pipeline configuration and builds a
// middleware chain from it.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/golobby/cast"
)

var (
	errNegativeDuration      = errors.New("duration must not be negative")
	errUnknownMiddlewareType = errors.New("unknown middleware type")
)

// Duration unmarshals from either a bare non-negative number (milliseconds)
// or a human-readable duration string ("125ms", "1s"), matching the
// convention described for flush-interval-like fields.
type Duration time.Duration

// UnmarshalYAML accepts a scalar YAML node holding either an int/float
// (milliseconds) or a string (parsed via golobby/cast, the same
// string-to-typed-value coercion used elsewhere in this stack for
// environment-sourced config values).
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var raw any
	if err := unmarshal(&raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case int:
		return d.fromMillis(int64(v))
	case int64:
		return d.fromMillis(v)
	case float64:
		return d.fromMillis(int64(v))
	case string:
		converted, err := cast.FromType(v, reflect.TypeOf(time.Duration(0)))
		if err != nil {
			return fmt.Errorf("config: invalid duration %q: %w", v, err)
		}
		dur := converted.(time.Duration)
		if dur < 0 {
			return fmt.Errorf("config: %w: %q", errNegativeDuration, v)
		}
		*d = Duration(dur)
		return nil
	default:
		return fmt.Errorf("config: duration must be a number or string, got %T", raw)
	}
}

func (d *Duration) fromMillis(ms int64) error {
	if ms < 0 {
		return fmt.Errorf("config: %w: %dms", errNegativeDuration, ms)
	}
	*d = Duration(time.Duration(ms) * time.Millisecond)
	return nil
}

// Std converts back to a time.Duration for use by the domain types.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the top-level YAML document: an ordered pipeline of
// middlewares, built closest-to-ingress first and walked in reverse to
// construct the chain (the last entry ends up wrapping Upstream most
// closely).
type Config struct {
	Middlewares []MiddlewareConfig `yaml:"middlewares"`
}

// MiddlewareConfig is a tagged union on the "type" discriminator. Exactly
// one of the embedded config structs is populated, matching whichever
// Type names.
type MiddlewareConfig struct {
	Type string `yaml:"type"`

	AddTag              *AddTagConfig
	AllowTag            *AllowTagConfig
	DenyTag             *DenyTagConfig
	Sample              *SampleConfig
	AggregateMetrics    *AggregateMetricsConfig
	CardinalityLimit    *CardinalityLimitConfig
	TagCardinalityLimit *TagCardinalityLimitConfig
}

// UnmarshalYAML decodes the "type" discriminator first, then decodes the
// same node into the one matching config struct, kebab-case names
// matching the tagged-union convention this pipeline config was modeled
// on ("add-tag", "allow-tag", "deny-tag", "sample", "aggregate-metrics",
// "cardinality-limit", "tag-cardinality-limit").
func (c *MiddlewareConfig) UnmarshalYAML(unmarshal func(any) error) error {
	var discriminator struct {
		Type string `yaml:"type"`
	}
	if err := unmarshal(&discriminator); err != nil {
		return err
	}
	c.Type = discriminator.Type

	switch discriminator.Type {
	case "add-tag":
		c.AddTag = &AddTagConfig{}
		return unmarshal(c.AddTag)
	case "allow-tag":
		c.AllowTag = &AllowTagConfig{}
		return unmarshal(c.AllowTag)
	case "deny-tag":
		c.DenyTag = &DenyTagConfig{}
		return unmarshal(c.DenyTag)
	case "sample":
		c.Sample = &SampleConfig{}
		return unmarshal(c.Sample)
	case "aggregate-metrics":
		c.AggregateMetrics = &AggregateMetricsConfig{AggregateCounters: true, AggregateGauges: true}
		return unmarshal(c.AggregateMetrics)
	case "cardinality-limit":
		c.CardinalityLimit = &CardinalityLimitConfig{}
		return unmarshal(c.CardinalityLimit)
	case "tag-cardinality-limit":
		c.TagCardinalityLimit = &TagCardinalityLimitConfig{}
		return unmarshal(c.TagCardinalityLimit)
	default:
		return fmt.Errorf("config: %w: %q", errUnknownMiddlewareType, discriminator.Type)
	}
}

// AddTagConfig is the "add-tag" middleware's configuration.
type AddTagConfig struct {
	Tags []string `yaml:"tags"`
}

// AllowTagConfig is the "allow-tag" middleware's configuration.
type AllowTagConfig struct {
	Tags []string `yaml:"tags"`
}

// DenyTagConfig is the "deny-tag" middleware's configuration.
type DenyTagConfig struct {
	StartsWith []string `yaml:"starts_with"`
	EndsWith   []string `yaml:"ends_with"`
	Tags       []string `yaml:"tags"`
}

// SampleConfig is the "sample" middleware's configuration.
type SampleConfig struct {
	SampleRate float64 `yaml:"sample_rate"`
}

// LimitConfig is one {window, limit} entry shared by cardinality-limit
// quotas.
type LimitConfig struct {
	Window uint16 `yaml:"window"`
	Limit  uint64 `yaml:"limit"`
}

// CardinalityLimitConfig is the "cardinality-limit" middleware's
// configuration: a list of whole-metric quotas.
type CardinalityLimitConfig struct {
	Limits []LimitConfig `yaml:"limits"`
}

// TagLimitConfig is one {tag, limit} entry for tag-cardinality-limit.
type TagLimitConfig struct {
	Tag   string `yaml:"tag"`
	Limit uint64 `yaml:"limit"`
}

// TagCardinalityLimitConfig is the "tag-cardinality-limit" middleware's
// configuration.
type TagCardinalityLimitConfig struct {
	Limits []TagLimitConfig `yaml:"limits"`
}

// AggregateMetricsConfig is the "aggregate-metrics" middleware's
// configuration.
type AggregateMetricsConfig struct {
	AggregateCounters bool     `yaml:"aggregate_counters"`
	AggregateGauges   bool     `yaml:"aggregate_gauges"`
	FlushInterval     Duration `yaml:"flush_interval"`
	FlushOffset       int64    `yaml:"flush_offset"`
	MaxMapSize        int      `yaml:"max_map_size"`
}
