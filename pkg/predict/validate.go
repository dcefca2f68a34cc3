package predict

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// Violation is one structural mismatch between a section payload and its
// declared schema. Index is -1 for top-level fields.
type Violation struct {
	Index    int
	Field    string
	Expected string
	Actual   string
}

func (v Violation) String() string {
	if v.Index >= 0 {
		return fmt.Sprintf("[%d].%s: expected %s, got %s", v.Index, v.Field, v.Expected, v.Actual)
	}
	return fmt.Sprintf("%s: expected %s, got %s", v.Field, v.Expected, v.Actual)
}

// Report collects every violation found in one section's payload. Validation
// is structural and observational: violations are logged for diagnostics but
// do not block persistence.
type Report struct {
	Section    Section
	Violations []Violation
}

func (r Report) Valid() bool { return len(r.Violations) == 0 }

// Log emits every violation at warn level.
func (r Report) Log(logger *slog.Logger) {
	for _, v := range r.Violations {
		logger.Warn("Schema violation in model output", "section", r.Section, "violation", v.String())
	}
}

// Validate checks a section payload against its schema contract, collecting
// every violation rather than stopping at the first.
func Validate(section Section, raw json.RawMessage) Report {
	report := Report{Section: section}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		report.add(-1, "(root)", "object", describe(raw))
		return report
	}

	switch section {
	case SectionTransportation:
		validateTransportation(payload, &report)
	case SectionLifestyle:
		validateLifestyle(payload, &report)
	case SectionCategories:
		validateCategories(payload, &report)
	}
	return report
}

func (r *Report) add(index int, field, expected string, actual any) {
	r.Violations = append(r.Violations, Violation{
		Index:    index,
		Field:    field,
		Expected: expected,
		Actual:   describe(actual),
	})
}

func validateTransportation(payload map[string]any, report *Report) {
	modes, ok := payload["transportation"].(map[string]any)
	if !ok {
		report.add(-1, "transportation", "object", payload["transportation"])
	} else {
		for key, value := range modes {
			mode, ok := value.(map[string]any)
			if !ok {
				report.add(-1, "transportation."+key, "object", value)
				continue
			}
			selected, ok := mode["selected"].(bool)
			if !ok {
				report.add(-1, "transportation."+key+".selected", "bool", mode["selected"])
				continue
			}
			_, isNumber := mode["radius"].(float64)
			isNull := mode["radius"] == nil
			switch {
			case selected && !isNumber:
				report.add(-1, "transportation."+key+".radius", "number when selected", mode["radius"])
			case !selected && !isNull:
				report.add(-1, "transportation."+key+".radius", "null when not selected", mode["radius"])
			}
		}
	}
	if _, ok := payload["homeAddress"].(string); !ok {
		report.add(-1, "homeAddress", "string", payload["homeAddress"])
	}
}

func validateLifestyle(payload map[string]any, report *Report) {
	checkStringArray(payload["lifestyle"], -1, "lifestyle", report)
	if checkStringArray(payload["otherPreferences"], -1, "otherPreferences", report) {
		if prefs := payload["otherPreferences"].([]any); len(prefs) > 20 {
			report.add(-1, "otherPreferences", "at most 20 entries", fmt.Sprintf("%d entries", len(prefs)))
		}
	}
	if _, ok := payload["lifestyleParagraph"].(string); !ok {
		report.add(-1, "lifestyleParagraph", "string", payload["lifestyleParagraph"])
	}
}

func validateCategories(payload map[string]any, report *Report) {
	list, ok := payload["categories"].([]any)
	if !ok {
		report.add(-1, "categories", "array", payload["categories"])
		return
	}

	for i, entry := range list {
		category, ok := entry.(map[string]any)
		if !ok {
			report.add(i, "(element)", "object", entry)
			continue
		}
		if _, ok := category["title"].(string); !ok {
			report.add(i, "title", "string", category["title"])
		}
		if _, ok := category["preference"].(string); !ok {
			report.add(i, "preference", "string", category["preference"])
		}
		checkStringArray(category["vibes"], i, "vibes", report)
		if vibes, ok := category["vibes"].([]any); ok && len(vibes) > 6 {
			report.add(i, "vibes", "at most 6 entries", fmt.Sprintf("%d entries", len(vibes)))
		}
		checkStringArray(category["subcategories"], i, "subcategories", report)

		cost, ok := category["cost"].(string)
		if !ok {
			report.add(i, "cost", "string price tier", category["cost"])
		} else if !isCostTier(cost) {
			report.add(i, "cost", `one of "$" "$$" "$$$" "$$$$"`, cost)
		}
	}
}

func checkStringArray(value any, index int, field string, report *Report) bool {
	list, ok := value.([]any)
	if !ok {
		report.add(index, field, "array of strings", value)
		return false
	}
	for _, entry := range list {
		if _, ok := entry.(string); !ok {
			report.add(index, field, "array of strings", entry)
			return false
		}
	}
	return true
}

func isCostTier(cost string) bool {
	switch cost {
	case "$", "$$", "$$$", "$$$$":
		return true
	}
	return false
}

func describe(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case bool:
		return fmt.Sprintf("bool(%v)", v)
	case float64:
		return fmt.Sprintf("number(%v)", v)
	case string:
		return fmt.Sprintf("string(%q)", v)
	case []any:
		return fmt.Sprintf("array(len %d)", len(v))
	case map[string]any:
		return "object"
	case json.RawMessage:
		return "non-object JSON"
	default:
		return fmt.Sprintf("%T", v)
	}
}
