package pipeline_test

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/cloudevents/sdk-go/v2/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	shared "github.com/roamly/server/pkg"
	"github.com/roamly/server/pkg/pipeline"
	"github.com/roamly/server/pkg/predict"
	"github.com/roamly/server/pkg/profile"
	"github.com/roamly/server/pkg/testing/mocks"
	"github.com/roamly/server/pkg/types"
)

const (
	transportationJSON = `{"transportation":{"walking":{"selected":true,"radius":2.0}},"homeAddress":"12 Elm St"}`
	lifestyleJSON      = `{"lifestyle":["Quiet"],"otherPreferences":["Affordable"],"lifestyleParagraph":"I walk everywhere."}`
	categoriesJSON     = `{"categories":[{"title":"Coffee Shops","cost":"$$","preference":"quiet cafes","subcategories":["Espresso Bars"],"vibes":["Cozy"]}]}`
)

func testArchive(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("Takeout/My Activity/Maps/MyActivity.json")
	require.NoError(t, err)
	_, err = f.Write([]byte(`[{"header":"Maps","title":"Visited Blue Bottle Coffee","time":"2024-03-10T08:30:00Z"}]`))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// sectionModel answers each section with canned JSON, keyed off the full
// instruction text.
func sectionModel(answers map[predict.Section]string) *mocks.MockModelClient {
	return &mocks.MockModelClient{
		GenerateContentFunc: func(ctx context.Context, instruction string, file shared.FileRef) (string, error) {
			for section, answer := range answers {
				if instruction == predict.Instruction(section) {
					return answer, nil
				}
			}
			return "", fmt.Errorf("unexpected instruction")
		},
	}
}

type harness struct {
	db       *mocks.MockDatabase
	files    *mocks.MockFileStore
	pub      *mocks.MockPublisher
	pipeline *pipeline.Pipeline

	mu             sync.Mutex
	uploads        int
	deletes        int
	profileUpdates []map[string]interface{}
	replaced       [][]*profile.Category
	runUpdates     []map[string]interface{}
	published      []string
}

func newHarness(model shared.ModelClient) *harness {
	h := &harness{}
	h.db = &mocks.MockDatabase{
		GetProfileFunc: func(ctx context.Context, userID string) (*profile.Profile, error) {
			return &profile.Profile{Name: "Ada"}, nil
		},
		UpdateProfileFunc: func(ctx context.Context, userID string, data map[string]interface{}) error {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.profileUpdates = append(h.profileUpdates, data)
			return nil
		},
		ReplaceCategoriesFunc: func(ctx context.Context, userID string, categories []*profile.Category) error {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.replaced = append(h.replaced, categories)
			return nil
		},
		UpdateIngestionRunFunc: func(ctx context.Context, userID, runID string, data map[string]interface{}) error {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.runUpdates = append(h.runUpdates, data)
			return nil
		},
	}
	h.files = &mocks.MockFileStore{
		UploadFunc: func(ctx context.Context, data []byte, displayName string) (shared.FileRef, error) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.uploads++
			return shared.FileRef{URI: "mock://staged", Name: "files/staged"}, nil
		},
		DeleteFunc: func(ctx context.Context, name string) error {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.deletes++
			return nil
		},
	}
	h.pub = &mocks.MockPublisher{
		PublishCloudEventFunc: func(ctx context.Context, topic string, e event.Event) (string, error) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.published = append(h.published, topic)
			return "msg-id", nil
		},
	}
	dispatcher := predict.NewDispatcher(model)
	dispatcher.Sleep = func(ctx context.Context, d time.Duration) error { return nil }
	h.pipeline = pipeline.New(h.db, h.files, dispatcher, nil, h.pub)
	return h
}

func TestRun_HappyPath(t *testing.T) {
	model := sectionModel(map[predict.Section]string{
		predict.SectionTransportation: transportationJSON,
		predict.SectionLifestyle:      lifestyleJSON,
		predict.SectionCategories:     categoriesJSON,
	})
	h := newHarness(model)

	result, err := h.pipeline.Run(context.Background(), slog.Default(), pipeline.Input{
		UserID:   "user-1",
		UserName: "Ada",
		RunID:    "run-1",
		Archive:  testArchive(t),
	})
	require.NoError(t, err)

	for _, section := range predict.Sections {
		assert.Equal(t, types.SectionSuccess, result.Statuses[section], "section %s", section)
	}
	assert.Equal(t, 1, h.uploads, "payload must be staged exactly once for all three sections")
	assert.Equal(t, 1, h.deletes, "staged file must be deleted exactly once after the join")
	assert.True(t, result.CleanupOK)
	assert.False(t, result.Truncated)

	// Transportation and lifestyle each merge-write the profile once.
	assert.Len(t, h.profileUpdates, 2)
	assert.Len(t, h.replaced, 1, "categories replace exactly once")
	require.NotNil(t, result.Snapshot)
	assert.Equal(t, "Ada", result.Snapshot.Profile.Name)
	assert.Equal(t, []string{shared.TopicProfileUpdated}, h.published)
}

func TestRun_SectionFailureIsIsolated(t *testing.T) {
	model := &mocks.MockModelClient{
		GenerateContentFunc: func(ctx context.Context, instruction string, file shared.FileRef) (string, error) {
			switch instruction {
			case predict.Instruction(predict.SectionTransportation):
				return "", fmt.Errorf("blocked by safety settings")
			case predict.Instruction(predict.SectionLifestyle):
				return lifestyleJSON, nil
			default:
				return categoriesJSON, nil
			}
		},
	}
	h := newHarness(model)

	result, err := h.pipeline.Run(context.Background(), slog.Default(), pipeline.Input{
		UserID:  "user-1",
		Archive: testArchive(t),
	})
	require.NoError(t, err, "a failed section must not fail the run")

	assert.Equal(t, types.SectionFailed, result.Statuses[predict.SectionTransportation])
	assert.Equal(t, types.SectionSuccess, result.Statuses[predict.SectionLifestyle])
	assert.Equal(t, types.SectionSuccess, result.Statuses[predict.SectionCategories])

	// Lifestyle still merge-wrote; categories still replaced; refresh still ran.
	assert.Len(t, h.profileUpdates, 1)
	assert.Len(t, h.replaced, 1)
	assert.NotNil(t, result.Snapshot)
	assert.Equal(t, 1, h.deletes)
}

func TestRun_BadArchiveAbortsBeforeStaging(t *testing.T) {
	h := newHarness(sectionModel(nil))

	result, err := h.pipeline.Run(context.Background(), slog.Default(), pipeline.Input{
		UserID:  "user-1",
		RunID:   "run-1",
		Archive: []byte("not a zip"),
	})
	require.Error(t, err)
	assert.Equal(t, 0, h.uploads, "nothing may be staged for unreadable input")
	assert.Equal(t, 0, h.deletes)
	assert.Nil(t, result.Snapshot)

	// The run document records the failure for the polling client.
	require.NotEmpty(t, h.runUpdates)
	last := h.runUpdates[len(h.runUpdates)-1]
	assert.NotEmpty(t, last["error"])
}

func TestRun_UploadFailureIsFatal(t *testing.T) {
	model := sectionModel(map[predict.Section]string{
		predict.SectionTransportation: transportationJSON,
		predict.SectionLifestyle:      lifestyleJSON,
		predict.SectionCategories:     categoriesJSON,
	})
	h := newHarness(model)
	h.files.UploadFunc = func(ctx context.Context, data []byte, displayName string) (shared.FileRef, error) {
		return shared.FileRef{}, fmt.Errorf("file service unavailable")
	}

	_, err := h.pipeline.Run(context.Background(), slog.Default(), pipeline.Input{
		UserID:  "user-1",
		Archive: testArchive(t),
	})
	require.Error(t, err)
	assert.Len(t, h.profileUpdates, 0, "no section may run without a staged file")
	assert.Len(t, h.replaced, 0)
}

func TestRun_CleanupFailureIsNonFatal(t *testing.T) {
	model := sectionModel(map[predict.Section]string{
		predict.SectionTransportation: transportationJSON,
		predict.SectionLifestyle:      lifestyleJSON,
		predict.SectionCategories:     categoriesJSON,
	})
	h := newHarness(model)
	h.files.DeleteFunc = func(ctx context.Context, name string) error {
		return fmt.Errorf("already gone")
	}

	result, err := h.pipeline.Run(context.Background(), slog.Default(), pipeline.Input{
		UserID:  "user-1",
		Archive: testArchive(t),
	})
	require.NoError(t, err)
	assert.False(t, result.CleanupOK)
	for _, section := range predict.Sections {
		assert.Equal(t, types.SectionSuccess, result.Statuses[section])
	}
}

func TestRun_EmptyCategoriesFailSection(t *testing.T) {
	// The categories payload decodes fine but carries no entries, which the
	// persist layer rejects rather than wiping the sub-collection.
	model := sectionModel(map[predict.Section]string{
		predict.SectionTransportation: transportationJSON,
		predict.SectionLifestyle:      lifestyleJSON,
		predict.SectionCategories:     `{"categories":[]}`,
	})
	h := newHarness(model)

	result, err := h.pipeline.Run(context.Background(), slog.Default(), pipeline.Input{
		UserID:  "user-1",
		Archive: testArchive(t),
	})
	require.NoError(t, err)
	assert.Equal(t, types.SectionFailed, result.Statuses[predict.SectionCategories])
	assert.Equal(t, types.SectionSuccess, result.Statuses[predict.SectionTransportation])
	assert.Len(t, h.replaced, 0)
}
