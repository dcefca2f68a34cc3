package profile

import (
	"reflect"
	"testing"
)

func TestSnakeCase(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Family Friendly", "family_friendly"},
		{"Pet Owner", "pet_owner"},
		{"vegan", "vegan"},
		{"  Early  Riser ", "early_riser"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SnakeCase(tt.input); got != tt.want {
			t.Errorf("SnakeCase(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"family_friendly", "Family Friendly"},
		{"vegan", "Vegan"},
		{"pet_owner", "Pet Owner"},
	}
	for _, tt := range tests {
		if got := TitleCase(tt.input); got != tt.want {
			t.Errorf("TitleCase(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestMergeTraits_CoreWinsOverOther(t *testing.T) {
	merged := MergeTraits(
		[]string{"Hiking", "Coffee Lover"},
		[]string{"Night Owl", "Hiking"},
	)

	want := map[string]bool{
		"hiking":       true, // present in both lists; core wins
		"coffee_lover": true,
		"night_owl":    false,
	}
	if !reflect.DeepEqual(merged, want) {
		t.Errorf("MergeTraits = %v, want %v", merged, want)
	}
}

func TestMergeTraits_Empty(t *testing.T) {
	merged := MergeTraits(nil, nil)
	if len(merged) != 0 {
		t.Errorf("expected empty map, got %v", merged)
	}
}

func TestNormalizeVibes(t *testing.T) {
	got := NormalizeVibes([]string{"cozy", " QUIET ", "hip and trendy", "a", "b", "c", "overflow"})
	if len(got) != 6 {
		t.Fatalf("expected 6 vibes, got %d", len(got))
	}
	if got[0] != "Cozy" || got[1] != "Quiet" {
		t.Errorf("vibes not title-cased: %v", got)
	}
	if got[2] != "Hip And Trendy" {
		t.Errorf("multi-word vibe mangled: %q", got[2])
	}
}
