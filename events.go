package statsdproxy

import (
	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
)

// newEvent builds a CloudEvents envelope for eventType, sourced from this
// proxy instance, with freeform data attached. Mirrors the construction
// pattern used elsewhere in this stack for config-reload notifications:
// NewEvent, then SetType/SetSource/SetSubject/SetTime/SetID.
func newEvent(eventType, source, subject string, data any) cloudevents.Event {
	event := cloudevents.NewEvent()
	event.SetType(eventType)
	event.SetSource(source)
	event.SetSubject(subject)
	event.SetTime(now())
	event.SetID(uuid.NewString())
	if data != nil {
		_ = event.SetData(cloudevents.ApplicationJSON, data)
	}
	return event
}

// metricDroppedData is a payload shape for EventTypeMetricDropped events
// (which stage rejected a metric and why); no stage in this module
// publishes such events, so nothing constructs it.
type metricDroppedData struct {
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
	Metric string `json:"metric"`
}
