package database

import (
	"context"

	"cloud.google.com/go/firestore"

	"github.com/roamly/server/pkg/profile"
	storage "github.com/roamly/server/pkg/storage/firestore"
	"github.com/roamly/server/pkg/types"
)

// FirestoreAdapter provides database operations using Firestore
// It wraps our typed storage client
type FirestoreAdapter struct {
	Client  *firestore.Client
	storage *storage.Client // internal typed wrapper
}

func NewFirestoreAdapter(client *firestore.Client) *FirestoreAdapter {
	return &FirestoreAdapter{
		Client:  client,
		storage: storage.NewClient(client),
	}
}

// --- Executions ---

func (a *FirestoreAdapter) SetExecution(ctx context.Context, record *types.ExecutionRecord) error {
	return a.storage.Executions().Doc(record.ExecutionID).Set(ctx, record)
}

func (a *FirestoreAdapter) UpdateExecution(ctx context.Context, id string, data map[string]interface{}) error {
	return a.storage.Executions().Doc(id).Update(ctx, data)
}

// --- Profile ---

func (a *FirestoreAdapter) GetProfile(ctx context.Context, userID string) (*profile.Profile, error) {
	return a.storage.Users().Doc(userID).Get(ctx)
}

func (a *FirestoreAdapter) UpdateProfile(ctx context.Context, userID string, data map[string]interface{}) error {
	return a.storage.Users().Doc(userID).Update(ctx, data)
}

// --- Categories ---

func (a *FirestoreAdapter) ListCategories(ctx context.Context, userID string) ([]*profile.Category, error) {
	categories, ids, err := a.storage.Categories(userID).All(ctx)
	if err != nil {
		return nil, err
	}
	for i, category := range categories {
		category.ID = ids[i]
	}
	return categories, nil
}

// ReplaceCategories deletes every existing category document and inserts the
// new set in a single transaction, so readers never observe a mixture of old
// and new predictions.
func (a *FirestoreAdapter) ReplaceCategories(ctx context.Context, userID string, categories []*profile.Category) error {
	ref := a.storage.Categories(userID).Ref

	return a.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		// All reads first; Firestore transactions forbid reads after writes.
		existing, err := tx.Documents(ref).GetAll()
		if err != nil {
			return err
		}
		for _, snap := range existing {
			if err := tx.Delete(snap.Ref); err != nil {
				return err
			}
		}
		for _, category := range categories {
			if err := tx.Create(ref.NewDoc(), storage.CategoryToFirestore(category)); err != nil {
				return err
			}
		}
		return nil
	})
}

// --- Ingestion Runs ---

func (a *FirestoreAdapter) GetIngestionRun(ctx context.Context, userID string, runID string) (*types.IngestionRun, error) {
	return a.storage.IngestionRuns(userID).Doc(runID).Get(ctx)
}

func (a *FirestoreAdapter) SetIngestionRun(ctx context.Context, userID string, run *types.IngestionRun) error {
	return a.storage.IngestionRuns(userID).Doc(run.RunID).Set(ctx, run)
}

func (a *FirestoreAdapter) UpdateIngestionRun(ctx context.Context, userID string, runID string, data map[string]interface{}) error {
	return a.storage.IngestionRuns(userID).Doc(runID).Update(ctx, data)
}
