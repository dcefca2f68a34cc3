package framework

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/cloudevents/sdk-go/v2/event"

	"github.com/roamly/server/pkg/bootstrap"
	"github.com/roamly/server/pkg/testing/mocks"
	"github.com/roamly/server/pkg/types"
)

// pubsubEvent wraps a domain payload the way the publisher does: a CloudEvent
// JSON envelope inside a Pub/Sub message inside the trigger event.
func pubsubEvent(t *testing.T, payload interface{}) event.Event {
	t.Helper()

	envelope := map[string]interface{}{
		"specversion": "1.0",
		"type":        "com.roamly.takeout.uploaded.v1",
		"source":      "roamly/api",
		"data":        payload,
	}
	inner, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}

	var msg types.PubSubMessage
	msg.Message.Data = inner

	e := event.New()
	e.SetType("google.cloud.pubsub.topic.v1.messagePublished")
	e.SetSource("//pubsub.googleapis.com/")
	if err := e.SetData(event.ApplicationJSON, msg); err != nil {
		t.Fatalf("set event data: %v", err)
	}
	return e
}

func TestWrapCloudEvent_LogsSuccess(t *testing.T) {
	var started, updated bool
	var startRecord *types.ExecutionRecord
	var updateData map[string]interface{}

	db := &mocks.MockDatabase{
		SetExecutionFunc: func(ctx context.Context, record *types.ExecutionRecord) error {
			started = true
			startRecord = record
			return nil
		},
		UpdateExecutionFunc: func(ctx context.Context, id string, data map[string]interface{}) error {
			updated = true
			updateData = data
			return nil
		},
	}
	svc := &bootstrap.Service{DB: db, Config: &bootstrap.Config{}}

	handlerCalled := false
	handler := func(ctx context.Context, e event.Event, fwCtx *FrameworkContext) (interface{}, error) {
		handlerCalled = true
		if fwCtx.ExecutionID == "" {
			t.Error("expected an execution id")
		}
		return nil, nil
	}

	e := pubsubEvent(t, map[string]string{"user_id": "user-1"})
	if err := WrapCloudEvent("takeout-processor", svc, handler)(context.Background(), e); err != nil {
		t.Fatalf("wrapped handler failed: %v", err)
	}

	if !handlerCalled {
		t.Fatal("handler never ran")
	}
	if !started || !updated {
		t.Fatal("execution record not written")
	}
	if startRecord.UserID != "user-1" {
		t.Errorf("execution not attributed: %+v", startRecord)
	}
	if startRecord.Service != "takeout-processor" {
		t.Errorf("wrong service name: %s", startRecord.Service)
	}
	if updateData["status"] != string(types.ExecutionSuccess) {
		t.Errorf("expected success status, got %v", updateData["status"])
	}
}

func TestWrapCloudEvent_LogsFailure(t *testing.T) {
	var updateData map[string]interface{}
	db := &mocks.MockDatabase{
		UpdateExecutionFunc: func(ctx context.Context, id string, data map[string]interface{}) error {
			updateData = data
			return nil
		},
	}
	svc := &bootstrap.Service{DB: db, Config: &bootstrap.Config{}}

	boom := errors.New("archive unreadable")
	handler := func(ctx context.Context, e event.Event, fwCtx *FrameworkContext) (interface{}, error) {
		return nil, boom
	}

	e := pubsubEvent(t, map[string]string{"user_id": "user-1"})
	err := WrapCloudEvent("takeout-processor", svc, handler)(context.Background(), e)
	if !errors.Is(err, boom) {
		t.Fatalf("expected handler error back, got %v", err)
	}

	if updateData["status"] != string(types.ExecutionFailure) {
		t.Errorf("expected failure status, got %v", updateData["status"])
	}
	if updateData["error"] != boom.Error() {
		t.Errorf("expected error recorded, got %v", updateData["error"])
	}
}

func TestExtractUserID(t *testing.T) {
	e := pubsubEvent(t, types.TakeoutUploadedEvent{UserID: "user-42", RunID: "run-1"})
	if got := extractUserID(e); got != "user-42" {
		t.Errorf("extractUserID = %q, want user-42", got)
	}

	// Events that are not Pub/Sub wrapped yield no attribution, not a panic.
	plain := event.New()
	plain.SetType("some.other.event")
	plain.SetSource("test")
	if got := extractUserID(plain); got != "" {
		t.Errorf("expected empty user id, got %q", got)
	}
}
