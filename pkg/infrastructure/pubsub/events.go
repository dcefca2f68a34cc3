package pubsub

import (
	cloudevents "github.com/cloudevents/sdk-go/v2"
)

// Event type URNs carried on the ingestion topics.
const (
	EventTypeTakeoutUploaded = "com.roamly.takeout.uploaded.v1"
	EventTypeProfileUpdated  = "com.roamly.profile.updated.v1"

	EventSourceAPI       = "roamly/api"
	EventSourceProcessor = "roamly/takeout-processor"
)

// NewCloudEvent creates a standardized CloudEvent v1.0
func NewCloudEvent(source, eventType string, data interface{}) (cloudevents.Event, error) {
	e := cloudevents.NewEvent()
	e.SetSpecVersion("1.0")
	e.SetType(eventType)
	e.SetSource(source)

	if err := e.SetData(cloudevents.ApplicationJSON, data); err != nil {
		return e, err
	}

	return e, nil
}
