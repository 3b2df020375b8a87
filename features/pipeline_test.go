// Package features runs the godog acceptance suite for the pipeline
// builder, end to end from YAML to a terminal stage's observed output.
package features

import (
	"fmt"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"gopkg.in/yaml.v3"

	"github.com/dogproxy/statsdproxy"
	"github.com/dogproxy/statsdproxy/config"
)

type fakeUpstream struct {
	received []string
}

func (f *fakeUpstream) Poll(time.Time)               {}
func (f *fakeUpstream) Submit(m *statsdproxy.Metric) { f.received = append(f.received, m.String()) }
func (f *fakeUpstream) Join()                        {}

type pipelineFeature struct {
	upstream *fakeUpstream
	chain    statsdproxy.Stage
}

func (p *pipelineFeature) aPipelineBuiltFrom(yamlDoc *godog.DocString) error {
	var cfg config.Config
	if err := yaml.Unmarshal([]byte(yamlDoc.Content), &cfg); err != nil {
		return err
	}
	p.upstream = &fakeUpstream{}
	chain, err := config.BuildChain(&cfg, p.upstream, nil)
	if err != nil {
		return err
	}
	p.chain = chain
	return nil
}

func (p *pipelineFeature) iSubmitTheMetric(line string) error {
	p.chain.Submit(statsdproxy.NewMetric([]byte(line)))
	return nil
}

func (p *pipelineFeature) theUpstreamReceivesExactly(expected string) error {
	if len(p.upstream.received) != 1 {
		return fmt.Errorf("expected upstream to receive exactly one metric, got %d: %q", len(p.upstream.received), p.upstream.received)
	}
	if p.upstream.received[0] != expected {
		return &mismatchError{expected: expected, actual: p.upstream.received[0]}
	}
	return nil
}

type mismatchError struct{ expected, actual string }

func (e *mismatchError) Error() string {
	return "expected upstream to receive " + e.expected + " but got " + e.actual
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	p := &pipelineFeature{}
	ctx.Step(`^a pipeline built from:$`, p.aPipelineBuiltFrom)
	ctx.Step(`^I submit the metric "([^"]*)"$`, p.iSubmitTheMetric)
	ctx.Step(`^the upstream receives exactly "([^"]*)"$`, p.theUpstreamReceivesExactly)
}

func TestPipelineFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"pipeline.feature"},
			TestingT: t,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("non-zero status returned from godog pipeline suite")
	}
}
