package predict

import (
	"encoding/json"
	"testing"
)

func validateRaw(t *testing.T, section Section, payload string) Report {
	t.Helper()
	return Validate(section, json.RawMessage(payload))
}

func TestValidateTransportation(t *testing.T) {
	tests := []struct {
		name       string
		payload    string
		violations int
	}{
		{
			name: "valid payload",
			payload: `{"transportation":{
				"walking":{"selected":true,"radius":2.5},
				"driving":{"selected":false,"radius":null}
			},"homeAddress":"123 Main St"}`,
			violations: 0,
		},
		{
			name: "radius set while not selected",
			payload: `{"transportation":{
				"cycling":{"selected":false,"radius":5}
			},"homeAddress":"x"}`,
			violations: 1,
		},
		{
			name: "radius missing while selected",
			payload: `{"transportation":{
				"walking":{"selected":true,"radius":null}
			},"homeAddress":"x"}`,
			violations: 1,
		},
		{
			name:       "missing home address",
			payload:    `{"transportation":{}}`,
			violations: 1,
		},
		{
			name:       "transportation not an object",
			payload:    `{"transportation":[],"homeAddress":"x"}`,
			violations: 1,
		},
		{
			name:       "not an object at all",
			payload:    `["walking"]`,
			violations: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := validateRaw(t, SectionTransportation, tt.payload)
			if len(report.Violations) != tt.violations {
				t.Errorf("expected %d violations, got %d: %v", tt.violations, len(report.Violations), report.Violations)
			}
		})
	}
}

func TestValidateLifestyle(t *testing.T) {
	valid := `{"lifestyle":["hiking","coffee"],"otherPreferences":["quiet"],"lifestyleParagraph":"Enjoys the outdoors."}`
	report := validateRaw(t, SectionLifestyle, valid)
	if !report.Valid() {
		t.Errorf("expected valid, got %v", report.Violations)
	}

	report = validateRaw(t, SectionLifestyle, `{"lifestyle":"hiking","otherPreferences":[],"lifestyleParagraph":""}`)
	if report.Valid() {
		t.Error("expected violation for non-array lifestyle")
	}

	// More than 20 other preferences.
	prefs := "["
	for i := 0; i < 21; i++ {
		if i > 0 {
			prefs += ","
		}
		prefs += `"p"`
	}
	prefs += "]"
	report = validateRaw(t, SectionLifestyle, `{"lifestyle":[],"otherPreferences":`+prefs+`,"lifestyleParagraph":"x"}`)
	if report.Valid() {
		t.Error("expected violation for oversized otherPreferences")
	}
}

func TestValidateCategories(t *testing.T) {
	valid := `{"categories":[{
		"title":"Coffee Shops",
		"cost":"$$",
		"preference":"Loves quiet cafes with good espresso",
		"subcategories":["Espresso Bars"],
		"vibes":["Cozy","Quiet"]
	}]}`
	report := validateRaw(t, SectionCategories, valid)
	if !report.Valid() {
		t.Errorf("expected valid, got %v", report.Violations)
	}

	tests := []struct {
		name    string
		payload string
	}{
		{"missing categories", `{}`},
		{"bad cost tier", `{"categories":[{"title":"t","cost":"$$$$$","preference":"p","subcategories":[],"vibes":[]}]}`},
		{"too many vibes", `{"categories":[{"title":"t","cost":"$","preference":"p","subcategories":[],"vibes":["a","b","c","d","e","f","g"]}]}`},
		{"non-object element", `{"categories":["just a string"]}`},
		{"missing title", `{"categories":[{"cost":"$","preference":"p","subcategories":[],"vibes":[]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := validateRaw(t, SectionCategories, tt.payload)
			if report.Valid() {
				t.Error("expected at least one violation")
			}
		})
	}
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	payload := `{"categories":[
		{"title":1,"cost":"free","preference":2,"subcategories":"none","vibes":{}},
		{"title":"ok","cost":"$","preference":"ok","subcategories":[],"vibes":[]}
	]}`
	report := validateRaw(t, SectionCategories, payload)
	if len(report.Violations) < 4 {
		t.Errorf("expected validation to keep going past the first failure, got %v", report.Violations)
	}
	for _, v := range report.Violations {
		if v.Index == 1 {
			t.Errorf("valid element flagged: %v", v)
		}
	}
}
