package profile

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// SnakeCase converts a display-form trait key ("Family Friendly") into its
// stored form ("family_friendly").
func SnakeCase(key string) string {
	return strings.ToLower(strings.Join(strings.Fields(key), "_"))
}

// TitleCase converts a stored trait key back to its display form.
func TitleCase(key string) string {
	return titleCaser.String(strings.ReplaceAll(key, "_", " "))
}

// MergeTraits folds the lifestyle section's two lists into one boolean map:
// core lifestyle keys map to true, other preferences to false. Core lifestyle
// is applied second, so a key present in both lists comes out true.
func MergeTraits(lifestyle, otherPreferences []string) map[string]bool {
	combined := make(map[string]bool, len(lifestyle)+len(otherPreferences))
	for _, preference := range otherPreferences {
		combined[SnakeCase(preference)] = false
	}
	for _, preference := range lifestyle {
		combined[SnakeCase(preference)] = true
	}
	return combined
}

// NormalizeVibes coerces vibes to the contract's Title Case form and trims
// the list to at most six entries. The model frequently ignores both rules.
func NormalizeVibes(vibes []string) []string {
	if len(vibes) > 6 {
		vibes = vibes[:6]
	}
	normalized := make([]string, len(vibes))
	for i, vibe := range vibes {
		normalized[i] = titleCaser.String(strings.TrimSpace(vibe))
	}
	return normalized
}
