package firestore

import (
	"time"

	"github.com/roamly/server/pkg/profile"
	"github.com/roamly/server/pkg/types"
)

// Helper to safely get string from map
func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Helper to safely get bool from map
func getBool(m map[string]interface{}, key string) bool {
	if v, ok := m[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

// Helper to safely get int from map (Firestore stores numbers as int64)
func getInt(m map[string]interface{}, key string) int {
	if v, ok := m[key]; ok {
		if n, ok := v.(int64); ok {
			return int(n)
		}
		if f, ok := v.(float64); ok {
			return int(f)
		}
	}
	return 0
}

// Helper to safely get time from map (handles time.Time from Firestore)
func getTime(m map[string]interface{}, key string) time.Time {
	if v, ok := m[key]; ok {
		if t, ok := v.(time.Time); ok {
			return t
		}
	}
	return time.Time{}
}

func getStringSlice(m map[string]interface{}, key string) []string {
	v, ok := m[key]
	if !ok {
		return nil
	}
	list, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, entry := range list {
		if s, ok := entry.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func getBoolMap(m map[string]interface{}, key string) map[string]bool {
	v, ok := m[key]
	if !ok {
		return nil
	}
	raw, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	out := make(map[string]bool, len(raw))
	for k, entry := range raw {
		if b, ok := entry.(bool); ok {
			out[k] = b
		}
	}
	return out
}

// --- Profile Converters ---

func TransportationsToFirestore(modes map[string]profile.TransportMode) map[string]interface{} {
	out := make(map[string]interface{}, len(modes))
	for key, mode := range modes {
		var radius interface{}
		if mode.Radius != nil {
			radius = *mode.Radius
		}
		out[key] = map[string]interface{}{
			"selected": mode.Selected,
			"radius":   radius,
		}
	}
	return out
}

func firestoreToTransportations(m map[string]interface{}, key string) map[string]profile.TransportMode {
	v, ok := m[key]
	if !ok {
		return nil
	}
	raw, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	out := make(map[string]profile.TransportMode, len(raw))
	for modeKey, entry := range raw {
		modeMap, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		mode := profile.TransportMode{Selected: getBool(modeMap, "selected")}
		if f, ok := modeMap["radius"].(float64); ok {
			mode.Radius = &f
		} else if n, ok := modeMap["radius"].(int64); ok {
			f := float64(n)
			mode.Radius = &f
		}
		out[modeKey] = mode
	}
	return out
}

func ProfileToFirestore(p *profile.Profile) map[string]interface{} {
	return map[string]interface{}{
		"name":                p.Name,
		"birthday":            p.Birthday,
		"gender":              p.Gender,
		"home_address":        p.HomeAddress,
		"transportations":     TransportationsToFirestore(p.Transportations),
		"lifestyle_traits":    p.LifestyleTraits,
		"lifestyle_paragraph": p.LifestyleParagraph,
		"additional_info":     p.AdditionalInfo,
	}
}

func FirestoreToProfile(m map[string]interface{}) *profile.Profile {
	return &profile.Profile{
		Name:               getString(m, "name"),
		Birthday:           getString(m, "birthday"),
		Gender:             getString(m, "gender"),
		HomeAddress:        getString(m, "home_address"),
		Transportations:    firestoreToTransportations(m, "transportations"),
		LifestyleTraits:    getBoolMap(m, "lifestyle_traits"),
		LifestyleParagraph: getString(m, "lifestyle_paragraph"),
		AdditionalInfo:     getString(m, "additional_info"),
		FCMTokens:          getStringSlice(m, "fcm_tokens"),
	}
}

// --- Category Converters ---

func CategoryToFirestore(c *profile.Category) map[string]interface{} {
	places := make(map[string]interface{}, len(c.FavoritePlaces))
	for id, place := range c.FavoritePlaces {
		places[id] = map[string]interface{}{
			"address":          place.Address,
			"why_they_like_it": place.WhyTheyLikeIt,
			"photo_url":        place.PhotoURL,
		}
	}
	status := c.Status
	if status == "" {
		status = profile.CategoryActive
	}
	return map[string]interface{}{
		"title":           c.Title,
		"cost":            c.Cost,
		"preference":      c.Preference,
		"subcategories":   c.Subcategories,
		"vibes":           c.Vibes,
		"status":          string(status),
		"favorite_places": places,
	}
}

func FirestoreToCategory(m map[string]interface{}) *profile.Category {
	category := &profile.Category{
		Title:          getString(m, "title"),
		Cost:           getString(m, "cost"),
		Preference:     getString(m, "preference"),
		Subcategories:  getStringSlice(m, "subcategories"),
		Vibes:          getStringSlice(m, "vibes"),
		Status:         profile.CategoryStatus(getString(m, "status")),
		FavoritePlaces: map[string]profile.FavoritePlace{},
	}
	if category.Status == "" {
		category.Status = profile.CategoryActive
	}
	if raw, ok := m["favorite_places"].(map[string]interface{}); ok {
		for id, entry := range raw {
			placeMap, ok := entry.(map[string]interface{})
			if !ok {
				continue
			}
			category.FavoritePlaces[id] = profile.FavoritePlace{
				Address:       getString(placeMap, "address"),
				WhyTheyLikeIt: getString(placeMap, "why_they_like_it"),
				PhotoURL:      getString(placeMap, "photo_url"),
			}
		}
	}
	return category
}

// --- IngestionRun Converters ---

func IngestionRunToFirestore(r *types.IngestionRun) map[string]interface{} {
	statuses := make(map[string]interface{}, len(r.Statuses))
	for section, status := range r.Statuses {
		statuses[section] = string(status)
	}
	return map[string]interface{}{
		"run_id":           r.RunID,
		"user_id":          r.UserID,
		"user_name":        r.UserName,
		"archive_bucket":   r.ArchiveBucket,
		"archive_object":   r.ArchiveObject,
		"remote_file_name": r.RemoteFileName,
		"statuses":         statuses,
		"truncated":        r.Truncated,
		"dropped":          r.Dropped,
		"error":            r.Error,
		"created_at":       r.CreatedAt,
		"updated_at":       r.UpdatedAt,
	}
}

func FirestoreToIngestionRun(m map[string]interface{}) *types.IngestionRun {
	run := &types.IngestionRun{
		RunID:          getString(m, "run_id"),
		UserID:         getString(m, "user_id"),
		UserName:       getString(m, "user_name"),
		ArchiveBucket:  getString(m, "archive_bucket"),
		ArchiveObject:  getString(m, "archive_object"),
		RemoteFileName: getString(m, "remote_file_name"),
		Statuses:       map[string]types.SectionStatus{},
		Truncated:      getBool(m, "truncated"),
		Dropped:        getInt(m, "dropped"),
		Error:          getString(m, "error"),
		CreatedAt:      getTime(m, "created_at"),
		UpdatedAt:      getTime(m, "updated_at"),
	}
	if raw, ok := m["statuses"].(map[string]interface{}); ok {
		for section, status := range raw {
			if s, ok := status.(string); ok {
				run.Statuses[section] = types.SectionStatus(s)
			}
		}
	}
	return run
}

// --- ExecutionRecord Converters ---

func ExecutionToFirestore(r *types.ExecutionRecord) map[string]interface{} {
	return map[string]interface{}{
		"execution_id": r.ExecutionID,
		"service":      r.Service,
		"user_id":      r.UserID,
		"trigger_type": r.TriggerType,
		"status":       string(r.Status),
		"error":        r.Error,
		"started_at":   r.StartedAt,
		"finished_at":  r.FinishedAt,
	}
}

func FirestoreToExecution(m map[string]interface{}) *types.ExecutionRecord {
	return &types.ExecutionRecord{
		ExecutionID: getString(m, "execution_id"),
		Service:     getString(m, "service"),
		UserID:      getString(m, "user_id"),
		TriggerType: getString(m, "trigger_type"),
		Status:      types.ExecutionStatus(getString(m, "status")),
		Error:       getString(m, "error"),
		StartedAt:   getTime(m, "started_at"),
		FinishedAt:  getTime(m, "finished_at"),
	}
}
