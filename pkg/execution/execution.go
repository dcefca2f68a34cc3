// Package execution records function invocations in the executions
// collection so failed runs can be audited after the fact.
package execution

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/roamly/server/pkg/types"
)

// Database is the execution-record subset of the shared Database interface.
type Database interface {
	SetExecution(ctx context.Context, record *types.ExecutionRecord) error
	UpdateExecution(ctx context.Context, id string, data map[string]interface{}) error
}

// Options carry optional metadata for the execution record.
type Options struct {
	UserID      string
	TriggerType string
}

// LogStart writes a started record and returns its id.
func LogStart(ctx context.Context, db Database, serviceName string, opts Options) (string, error) {
	id := uuid.NewString()
	record := &types.ExecutionRecord{
		ExecutionID: id,
		Service:     serviceName,
		UserID:      opts.UserID,
		TriggerType: opts.TriggerType,
		Status:      types.ExecutionStarted,
		StartedAt:   time.Now().UTC(),
	}
	if err := db.SetExecution(ctx, record); err != nil {
		return id, err
	}
	return id, nil
}

// LogSuccess marks the record finished.
func LogSuccess(ctx context.Context, db Database, id string) error {
	return db.UpdateExecution(ctx, id, map[string]interface{}{
		"status":      string(types.ExecutionSuccess),
		"finished_at": time.Now().UTC(),
	})
}

// LogFailure marks the record failed with the handler's error.
func LogFailure(ctx context.Context, db Database, id string, handlerErr error) error {
	message := ""
	if handlerErr != nil {
		message = handlerErr.Error()
	}
	return db.UpdateExecution(ctx, id, map[string]interface{}{
		"status":      string(types.ExecutionFailure),
		"error":       message,
		"finished_at": time.Now().UTC(),
	})
}
