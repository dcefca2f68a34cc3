// Package pipeline runs one takeout archive end to end: extraction,
// normalization, remote staging, concurrent section prediction, persistence
// and cleanup. Sections are isolated from each other; only input and staging
// failures abort the whole run.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	shared "github.com/roamly/server/pkg"
	"github.com/roamly/server/pkg/infrastructure/pubsub"
	"github.com/roamly/server/pkg/predict"
	"github.com/roamly/server/pkg/profile"
	"github.com/roamly/server/pkg/takeout"
	"github.com/roamly/server/pkg/types"
)

// Input carries one archive through the pipeline. RunID may be empty, in
// which case no ingestion-run document is tracked.
type Input struct {
	UserID   string
	UserName string
	RunID    string
	Archive  []byte
}

// Result reports what the run did. Statuses always holds a terminal state for
// all three sections once Run returns without an input error.
type Result struct {
	Statuses  map[predict.Section]types.SectionStatus
	Truncated bool
	Dropped   int
	Snapshot  *profile.Snapshot
	CleanupOK bool
}

// Pipeline holds the run's collaborators. Notifier and Publisher are
// optional; a nil value disables the corresponding side effect.
type Pipeline struct {
	DB         shared.Database
	Files      shared.FileStore
	Dispatcher *predict.Dispatcher
	Notifier   shared.NotificationService
	Publisher  shared.Publisher

	// SizeLimit bounds the serialized activity payload. Zero means the
	// takeout package default.
	SizeLimit int
}

func New(db shared.Database, files shared.FileStore, dispatcher *predict.Dispatcher, notifier shared.NotificationService, publisher shared.Publisher) *Pipeline {
	return &Pipeline{DB: db, Files: files, Dispatcher: dispatcher, Notifier: notifier, Publisher: publisher}
}

// Run executes the full flow for one archive. Errors returned here are
// run-level: a bad archive, unparseable activity data, or a failed staging
// upload. Per-section prediction or persistence failures are absorbed into
// the section statuses instead.
func (p *Pipeline) Run(ctx context.Context, logger *slog.Logger, in Input) (*Result, error) {
	result := &Result{
		Statuses:  make(map[predict.Section]types.SectionStatus, len(predict.Sections)),
		CleanupOK: true,
	}
	for _, section := range predict.Sections {
		result.Statuses[section] = types.SectionNeutral
	}

	text, err := takeout.Extract(in.Archive)
	if err != nil {
		return result, p.failRun(ctx, logger, in, fmt.Errorf("extract archive: %w", err))
	}
	records, err := takeout.ParseActivities(text)
	if err != nil {
		return result, p.failRun(ctx, logger, in, fmt.Errorf("parse activities: %w", err))
	}

	batch, err := takeout.Bound(takeout.Normalize(records), p.SizeLimit)
	if err != nil {
		return result, p.failRun(ctx, logger, in, err)
	}
	result.Truncated = batch.Truncated
	result.Dropped = batch.Dropped
	if batch.Truncated {
		logger.Warn("Activity payload truncated to size limit",
			"user_id", in.UserID, "kept", len(batch.Activities), "dropped", batch.Dropped)
	}

	payload, err := batch.Serialize()
	if err != nil {
		return result, p.failRun(ctx, logger, in, err)
	}

	file, err := p.Files.Upload(ctx, payload, fmt.Sprintf("takeout-%s", in.UserID))
	if err != nil {
		return result, p.failRun(ctx, logger, in, fmt.Errorf("stage takeout payload: %w", err))
	}
	logger.Info("Staged takeout payload", "user_id", in.UserID, "file", file.Name, "bytes", len(payload))
	defer func() {
		if err := p.Files.Delete(ctx, file.Name); err != nil {
			// The remote store expires files on its own schedule, so a
			// failed delete is logged and swallowed.
			result.CleanupOK = false
			logger.Warn("Failed to delete staged file", "file", file.Name, "error", err)
		}
	}()

	p.updateRun(ctx, logger, in, map[string]interface{}{
		"remote_file_name": file.Name,
		"truncated":        batch.Truncated,
		"dropped":          batch.Dropped,
	})

	for _, section := range predict.Sections {
		result.Statuses[section] = types.SectionProcessing
	}
	p.updateRun(ctx, logger, in, map[string]interface{}{"statuses": statusDoc(result.Statuses)})

	// Each section runs dispatch, validation and persistence in its own
	// goroutine so a slow or failing section never stalls its siblings.
	// Cleanup of the staged file waits for the join.
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, section := range predict.Sections {
		wg.Add(1)
		go func(section predict.Section) {
			defer wg.Done()
			status := p.runSection(ctx, logger, in, file, section)
			mu.Lock()
			result.Statuses[section] = status
			mu.Unlock()
			p.updateRun(ctx, logger, in, map[string]interface{}{
				"statuses": map[string]interface{}{section.String(): string(status)},
			})
		}(section)
	}
	wg.Wait()

	anySuccess := false
	for _, status := range result.Statuses {
		if status == types.SectionSuccess {
			anySuccess = true
		}
	}
	if anySuccess {
		snapshot, err := profile.Refresh(ctx, logger, p.DB, p.notifier(), in.UserID, in.UserName)
		if err != nil {
			logger.Error("Profile refresh failed", "user_id", in.UserID, "error", err)
		} else {
			result.Snapshot = snapshot
			p.publishProfileUpdated(ctx, logger, in)
		}
	}

	logger.Info("Takeout run finished",
		"user_id", in.UserID,
		"transportation", result.Statuses[predict.SectionTransportation],
		"lifestyle", result.Statuses[predict.SectionLifestyle],
		"categories", result.Statuses[predict.SectionCategories],
	)
	return result, nil
}

// runSection drives one section to a terminal status. Validation findings are
// logged but do not block persistence; only decode and write failures do.
func (p *Pipeline) runSection(ctx context.Context, logger *slog.Logger, in Input, file shared.FileRef, section predict.Section) types.SectionStatus {
	outcome := p.Dispatcher.DispatchSection(ctx, logger, file, section)
	if !outcome.OK {
		return types.SectionFailed
	}

	report := predict.Validate(section, outcome.Raw)
	report.Log(logger)

	if err := p.persistSection(ctx, in.UserID, section, outcome.Raw); err != nil {
		logger.Error("Section persistence failed", "section", section, "user_id", in.UserID, "error", err)
		return types.SectionFailed
	}
	return types.SectionSuccess
}

func (p *Pipeline) persistSection(ctx context.Context, userID string, section predict.Section, raw json.RawMessage) error {
	switch section {
	case predict.SectionTransportation:
		var result profile.TransportationResult
		if err := json.Unmarshal(raw, &result); err != nil {
			return fmt.Errorf("decode transportation result: %w", err)
		}
		return profile.PersistTransportation(ctx, p.DB, userID, &result)
	case predict.SectionLifestyle:
		var result profile.LifestyleResult
		if err := json.Unmarshal(raw, &result); err != nil {
			return fmt.Errorf("decode lifestyle result: %w", err)
		}
		return profile.PersistLifestyle(ctx, p.DB, userID, &result)
	case predict.SectionCategories:
		var result profile.CategoriesResult
		if err := json.Unmarshal(raw, &result); err != nil {
			return fmt.Errorf("decode categories result: %w", err)
		}
		return profile.PersistCategories(ctx, p.DB, userID, result.Categories)
	default:
		return fmt.Errorf("unknown section %q", section)
	}
}

func (p *Pipeline) publishProfileUpdated(ctx context.Context, logger *slog.Logger, in Input) {
	if p.Publisher == nil {
		return
	}
	e, err := pubsub.NewCloudEvent(pubsub.EventSourceProcessor, pubsub.EventTypeProfileUpdated,
		types.ProfileUpdatedEvent{UserID: in.UserID, RunID: in.RunID})
	if err != nil {
		logger.Error("Failed to build profile.updated event", "error", err)
		return
	}
	if _, err := p.Publisher.PublishCloudEvent(ctx, shared.TopicProfileUpdated, e); err != nil {
		logger.Error("Failed to publish profile.updated event", "user_id", in.UserID, "error", err)
	}
}

// failRun records a run-level error on the ingestion-run document and marks
// every section failed, then hands the error back for execution tracking.
func (p *Pipeline) failRun(ctx context.Context, logger *slog.Logger, in Input, err error) error {
	logger.Error("Takeout run aborted", "user_id", in.UserID, "error", err)
	statuses := make(map[predict.Section]types.SectionStatus, len(predict.Sections))
	for _, section := range predict.Sections {
		statuses[section] = types.SectionFailed
	}
	p.updateRun(ctx, logger, in, map[string]interface{}{
		"statuses": statusDoc(statuses),
		"error":    err.Error(),
	})
	return err
}

func (p *Pipeline) updateRun(ctx context.Context, logger *slog.Logger, in Input, data map[string]interface{}) {
	if in.RunID == "" {
		return
	}
	data["updated_at"] = time.Now()
	if err := p.DB.UpdateIngestionRun(ctx, in.UserID, in.RunID, data); err != nil {
		logger.Warn("Failed to update ingestion run", "run_id", in.RunID, "error", err)
	}
}

func (p *Pipeline) notifier() profile.Notifier {
	if p.Notifier == nil {
		return nil
	}
	return p.Notifier
}

func statusDoc(statuses map[predict.Section]types.SectionStatus) map[string]interface{} {
	doc := make(map[string]interface{}, len(statuses))
	for section, status := range statuses {
		doc[section.String()] = string(status)
	}
	return doc
}
