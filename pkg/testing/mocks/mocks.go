package mocks

import (
	"context"
	"fmt"

	"github.com/cloudevents/sdk-go/v2/event"

	shared "github.com/roamly/server/pkg"
	"github.com/roamly/server/pkg/profile"
	"github.com/roamly/server/pkg/types"
)

// --- Mock Database ---
type MockDatabase struct {
	SetExecutionFunc       func(ctx context.Context, record *types.ExecutionRecord) error
	UpdateExecutionFunc    func(ctx context.Context, id string, data map[string]interface{}) error
	GetProfileFunc         func(ctx context.Context, userID string) (*profile.Profile, error)
	UpdateProfileFunc      func(ctx context.Context, userID string, data map[string]interface{}) error
	ListCategoriesFunc     func(ctx context.Context, userID string) ([]*profile.Category, error)
	ReplaceCategoriesFunc  func(ctx context.Context, userID string, categories []*profile.Category) error
	GetIngestionRunFunc    func(ctx context.Context, userID, runID string) (*types.IngestionRun, error)
	SetIngestionRunFunc    func(ctx context.Context, userID string, run *types.IngestionRun) error
	UpdateIngestionRunFunc func(ctx context.Context, userID, runID string, data map[string]interface{}) error
}

func (m *MockDatabase) SetExecution(ctx context.Context, record *types.ExecutionRecord) error {
	if m.SetExecutionFunc != nil {
		return m.SetExecutionFunc(ctx, record)
	}
	return nil
}
func (m *MockDatabase) UpdateExecution(ctx context.Context, id string, data map[string]interface{}) error {
	if m.UpdateExecutionFunc != nil {
		return m.UpdateExecutionFunc(ctx, id, data)
	}
	return nil
}
func (m *MockDatabase) GetProfile(ctx context.Context, userID string) (*profile.Profile, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx, userID)
	}
	return &profile.Profile{}, nil
}
func (m *MockDatabase) UpdateProfile(ctx context.Context, userID string, data map[string]interface{}) error {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, userID, data)
	}
	return nil
}
func (m *MockDatabase) ListCategories(ctx context.Context, userID string) ([]*profile.Category, error) {
	if m.ListCategoriesFunc != nil {
		return m.ListCategoriesFunc(ctx, userID)
	}
	return nil, nil
}
func (m *MockDatabase) ReplaceCategories(ctx context.Context, userID string, categories []*profile.Category) error {
	if m.ReplaceCategoriesFunc != nil {
		return m.ReplaceCategoriesFunc(ctx, userID, categories)
	}
	return nil
}
func (m *MockDatabase) GetIngestionRun(ctx context.Context, userID, runID string) (*types.IngestionRun, error) {
	if m.GetIngestionRunFunc != nil {
		return m.GetIngestionRunFunc(ctx, userID, runID)
	}
	return nil, fmt.Errorf("run not found")
}
func (m *MockDatabase) SetIngestionRun(ctx context.Context, userID string, run *types.IngestionRun) error {
	if m.SetIngestionRunFunc != nil {
		return m.SetIngestionRunFunc(ctx, userID, run)
	}
	return nil
}
func (m *MockDatabase) UpdateIngestionRun(ctx context.Context, userID, runID string, data map[string]interface{}) error {
	if m.UpdateIngestionRunFunc != nil {
		return m.UpdateIngestionRunFunc(ctx, userID, runID, data)
	}
	return nil
}

// --- Mock Publisher ---
type MockPublisher struct {
	PublishCloudEventFunc func(ctx context.Context, topic string, e event.Event) (string, error)
}

func (m *MockPublisher) PublishCloudEvent(ctx context.Context, topic string, e event.Event) (string, error) {
	if m.PublishCloudEventFunc != nil {
		return m.PublishCloudEventFunc(ctx, topic, e)
	}
	return "msg-id", nil
}

// --- Mock Storage ---
type MockBlobStore struct {
	WriteFunc func(ctx context.Context, bucket, object string, data []byte) error
	ReadFunc  func(ctx context.Context, bucket, object string) ([]byte, error)
}

func (m *MockBlobStore) Write(ctx context.Context, bucket, object string, data []byte) error {
	if m.WriteFunc != nil {
		return m.WriteFunc(ctx, bucket, object, data)
	}
	return nil
}
func (m *MockBlobStore) Read(ctx context.Context, bucket, object string) ([]byte, error) {
	if m.ReadFunc != nil {
		return m.ReadFunc(ctx, bucket, object)
	}
	return []byte("mock-data"), nil
}

// --- Mock File Store ---
type MockFileStore struct {
	UploadFunc func(ctx context.Context, data []byte, displayName string) (shared.FileRef, error)
	DeleteFunc func(ctx context.Context, name string) error
}

func (m *MockFileStore) Upload(ctx context.Context, data []byte, displayName string) (shared.FileRef, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, data, displayName)
	}
	return shared.FileRef{URI: "mock://file", Name: "files/mock"}, nil
}
func (m *MockFileStore) Delete(ctx context.Context, name string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, name)
	}
	return nil
}

// --- Mock Model Client ---
type MockModelClient struct {
	GenerateContentFunc func(ctx context.Context, instruction string, file shared.FileRef) (string, error)
}

func (m *MockModelClient) GenerateContent(ctx context.Context, instruction string, file shared.FileRef) (string, error) {
	if m.GenerateContentFunc != nil {
		return m.GenerateContentFunc(ctx, instruction, file)
	}
	return "{}", nil
}

// --- Mock Notification Service ---
type MockNotificationService struct {
	SendPushNotificationFunc func(ctx context.Context, userID, title, body string, tokens []string, data map[string]string) error
}

func (m *MockNotificationService) SendPushNotification(ctx context.Context, userID string, title, body string, tokens []string, data map[string]string) error {
	if m.SendPushNotificationFunc != nil {
		return m.SendPushNotificationFunc(ctx, userID, title, body, tokens, data)
	}
	return nil
}
