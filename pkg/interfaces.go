package shared

import (
	"context"

	"github.com/cloudevents/sdk-go/v2/event"

	"github.com/roamly/server/pkg/profile"
	"github.com/roamly/server/pkg/types"
)

// --- Persistence Interfaces ---

type Database interface {
	// Executions (function invocation records)
	SetExecution(ctx context.Context, record *types.ExecutionRecord) error
	UpdateExecution(ctx context.Context, id string, data map[string]interface{}) error

	// User profile
	GetProfile(ctx context.Context, userID string) (*profile.Profile, error)
	UpdateProfile(ctx context.Context, userID string, data map[string]interface{}) error

	// Categories (sub-collection of users)
	ListCategories(ctx context.Context, userID string) ([]*profile.Category, error)
	ReplaceCategories(ctx context.Context, userID string, categories []*profile.Category) error

	// Ingestion runs (sub-collection of users)
	GetIngestionRun(ctx context.Context, userID string, runID string) (*types.IngestionRun, error)
	SetIngestionRun(ctx context.Context, userID string, run *types.IngestionRun) error
	UpdateIngestionRun(ctx context.Context, userID string, runID string, data map[string]interface{}) error
}

// --- Messaging Interfaces ---

type Publisher interface {
	PublishCloudEvent(ctx context.Context, topic string, e event.Event) (string, error)
}

// --- Storage Interfaces ---

type BlobStore interface {
	Write(ctx context.Context, bucket, object string, data []byte) error
	Read(ctx context.Context, bucket, object string) ([]byte, error)
}

// FileRef identifies a blob staged in the remote content store for the model.
type FileRef struct {
	URI  string
	Name string
}

// FileStore stages payloads for the generative model out-of-band from the
// request body. Upload is single-shot: retrying identical bytes will not fix a
// quota or auth failure, so retry policy lives with the caller's run, not here.
type FileStore interface {
	Upload(ctx context.Context, data []byte, displayName string) (FileRef, error)
	Delete(ctx context.Context, name string) error
}

// ModelClient issues one structured-extraction request against a staged file
// and returns the model's raw text output.
type ModelClient interface {
	GenerateContent(ctx context.Context, instruction string, file FileRef) (string, error)
}

// --- Notification Interfaces ---

type NotificationService interface {
	SendPushNotification(ctx context.Context, userID string, title, body string, tokens []string, data map[string]string) error
}
