package sanitizer

import (
	"reflect"
	"testing"
)

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trim spaces", "  Harbour View  ", "Harbour View"},
		{"multiple spaces between words", "Harbour    View", "Harbour View"},
		{"tabs and newlines", "Harbour\t\nView", "Harbour View"},
		{"empty string", "", ""},
		{"only whitespace", "   \t\n  ", ""},
		{"preserve special characters", " Café & Spa™ ", "Café & Spa™"},
		{"non latin", " 東京 ホテル ", "東京 ホテル"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.input); got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := TrimAndNormalize(tt.want); again != tt.want {
				t.Errorf("not idempotent: %q -> %q", tt.want, again)
			}
		})
	}
}

func TestNormalizeNameAndLocation(t *testing.T) {
	if got := NormalizeName("  The   Grand "); got != "The Grand" {
		t.Errorf("NormalizeName = %q", got)
	}
	if got := NormalizeLocation("\tLisbon,  Portugal\n"); got != "Lisbon, Portugal" {
		t.Errorf("NormalizeLocation = %q", got)
	}
}

func TestNormalizeIDs(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{"nil", nil, []string{}},
		{"trim and lowercase", []string{" 65A1B2C3D4E5F60718293A4B "}, []string{"65a1b2c3d4e5f60718293a4b"}},
		{
			"duplicates after normalisation",
			[]string{"65a1b2c3d4e5f60718293a4b", "65A1B2C3D4E5F60718293A4B", "65a1b2c3d4e5f60718293a4c"},
			[]string{"65a1b2c3d4e5f60718293a4b", "65a1b2c3d4e5f60718293a4c"},
		},
		{"blank entries dropped", []string{" ", "", "65a1b2c3d4e5f60718293a4b"}, []string{"65a1b2c3d4e5f60718293a4b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeIDs(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeIDs(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
