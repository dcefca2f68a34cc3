package takeoutprocessor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/cloudevents/sdk-go/v2/event"

	"github.com/roamly/server/pkg/bootstrap"
	"github.com/roamly/server/pkg/framework"
	"github.com/roamly/server/pkg/pipeline"
	"github.com/roamly/server/pkg/predict"
	"github.com/roamly/server/pkg/types"
)

var (
	svc     *bootstrap.Service
	svcOnce sync.Once
	svcErr  error
)

func init() {
	functions.CloudEvent("ProcessTakeout", ProcessTakeout)
}

func initService(ctx context.Context) (*bootstrap.Service, error) {
	if svc != nil {
		return svc, nil
	}
	svcOnce.Do(func() {
		baseSvc, err := bootstrap.NewService(ctx)
		if err != nil {
			slog.Error("Failed to initialize service", "error", err)
			svcErr = err
			return
		}
		svc = baseSvc
	})
	return svc, svcErr
}

// ProcessTakeout is the entry point
func ProcessTakeout(ctx context.Context, e event.Event) error {
	svc, err := initService(ctx)
	if err != nil {
		return fmt.Errorf("service init failed: %v", err)
	}
	return framework.WrapCloudEvent("takeout-processor", svc, processHandler)(ctx, e)
}

// eventEnvelope is the CloudEvent JSON carried inside the Pub/Sub message.
type eventEnvelope struct {
	Data types.TakeoutUploadedEvent `json:"data"`
}

// processHandler contains the business logic
func processHandler(ctx context.Context, e event.Event, fwCtx *framework.FrameworkContext) (interface{}, error) {
	// Parse Pub/Sub message
	var msg types.PubSubMessage
	if err := e.DataAs(&msg); err != nil {
		return nil, fmt.Errorf("event.DataAs: %v", err)
	}

	var envelope eventEnvelope
	if err := json.Unmarshal(msg.Message.Data, &envelope); err != nil {
		return nil, fmt.Errorf("unmarshal takeout.uploaded event: %v", err)
	}
	payload := envelope.Data
	if payload.UserID == "" {
		return nil, fmt.Errorf("takeout.uploaded event missing user_id")
	}

	fwCtx.Logger.Info("Starting takeout processing",
		"run_id", payload.RunID, "bucket", payload.Bucket, "object", payload.Object)

	if fwCtx.Service.Model == nil || fwCtx.Service.Files == nil {
		return nil, fmt.Errorf("prediction model is not configured")
	}

	archive, err := fwCtx.Service.Store.Read(ctx, payload.Bucket, payload.Object)
	if err != nil {
		return nil, fmt.Errorf("read archive gs://%s/%s: %w", payload.Bucket, payload.Object, err)
	}

	p := pipeline.New(
		fwCtx.Service.DB,
		fwCtx.Service.Files,
		predict.NewDispatcher(fwCtx.Service.Model),
		fwCtx.Service.Notifier,
		fwCtx.Service.Pub,
	)

	result, err := p.Run(ctx, fwCtx.Logger, pipeline.Input{
		UserID:   payload.UserID,
		UserName: payload.UserName,
		RunID:    payload.RunID,
		Archive:  archive,
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
