package profile

import (
	"context"
	"fmt"
	"log/slog"
)

// Database is the persistence subset the adapter needs. This matches the
// shared Database interface in pkg/interfaces.go.
type Database interface {
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	UpdateProfile(ctx context.Context, userID string, data map[string]interface{}) error
	ListCategories(ctx context.Context, userID string) ([]*Category, error)
	ReplaceCategories(ctx context.Context, userID string, categories []*Category) error
}

// PersistTransportation merge-writes the predicted transportation map and
// home address onto the user's profile document.
func PersistTransportation(ctx context.Context, db Database, userID string, result *TransportationResult) error {
	modes := make(map[string]interface{}, len(result.Transportation))
	for key, mode := range result.Transportation {
		var radius interface{}
		if mode.Radius != nil {
			radius = *mode.Radius
		}
		modes[key] = map[string]interface{}{
			"selected": mode.Selected,
			"radius":   radius,
		}
	}

	if err := db.UpdateProfile(ctx, userID, map[string]interface{}{
		"transportations": modes,
		"home_address":    result.HomeAddress,
	}); err != nil {
		return fmt.Errorf("persist transportation: %w", err)
	}
	return nil
}

// PersistLifestyle folds the section's two trait lists into one boolean map
// and merge-writes it with the lifestyle paragraph.
func PersistLifestyle(ctx context.Context, db Database, userID string, result *LifestyleResult) error {
	if err := db.UpdateProfile(ctx, userID, map[string]interface{}{
		"lifestyle_traits":    MergeTraits(result.Lifestyle, result.OtherPreferences),
		"lifestyle_paragraph": result.LifestyleParagraph,
	}); err != nil {
		return fmt.Errorf("persist lifestyle: %w", err)
	}
	return nil
}

// PersistCategories replaces the user's categories sub-collection with the
// predicted set. Predicted categories supersede prior predictions entirely:
// there is no incremental merge, and the replace must be atomic so a failure
// mid-write never leaves a mixture of old and new records.
func PersistCategories(ctx context.Context, db Database, userID string, categories []Category) error {
	if len(categories) == 0 {
		return fmt.Errorf("persist categories: no categories provided")
	}

	docs := make([]*Category, len(categories))
	for i := range categories {
		c := categories[i]
		c.ID = "" // ids are reassigned on insert
		c.Vibes = NormalizeVibes(c.Vibes)
		if c.Status == "" {
			c.Status = CategoryActive
		}
		if c.FavoritePlaces == nil {
			c.FavoritePlaces = map[string]FavoritePlace{}
		}
		docs[i] = &c
	}

	if err := db.ReplaceCategories(ctx, userID, docs); err != nil {
		return fmt.Errorf("persist categories: %w", err)
	}
	return nil
}

// Notifier is the push subset used by Refresh. Matches the shared
// NotificationService interface.
type Notifier interface {
	SendPushNotification(ctx context.Context, userID string, title, body string, tokens []string, data map[string]string) error
}

// Refresh re-reads the profile and categories after persistence and returns
// the client-visible snapshot. Reading back from the store is what preserves
// user-edited fields (name, birthday, gender): the merge writes above never
// touch them, so the snapshot carries the user's own values. When a notifier
// is supplied the user's devices are told to re-pull.
func Refresh(ctx context.Context, logger *slog.Logger, db Database, notifier Notifier, userID, userName string) (*Snapshot, error) {
	prof, err := db.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("refresh profile: %w", err)
	}
	categories, err := db.ListCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("refresh categories: %w", err)
	}

	if prof.Name == "" {
		prof.Name = userName
	}

	snapshot := &Snapshot{Profile: prof, Categories: categories}

	if notifier != nil {
		err := notifier.SendPushNotification(ctx, userID,
			"Your profile is ready",
			"We finished analyzing your location history.",
			prof.FCMTokens,
			map[string]string{"action": "refresh_profile"},
		)
		if err != nil {
			// Refresh already succeeded; a lost push only delays the re-pull.
			logger.Warn("Refresh notification failed", "user_id", userID, "error", err)
		}
	}

	return snapshot, nil
}
