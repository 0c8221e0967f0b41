package sanitizer

import (
	"regexp"
	"testing"

	"bookspace/pkg/model"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "trim spaces",
			input: "  Main Auditorium  ",
			want:  "Main Auditorium",
		},
		{
			name:  "multiple spaces between words",
			input: "Main    Auditorium",
			want:  "Main Auditorium",
		},
		{
			name:  "tabs and newlines",
			input: "Main\t\nAuditorium",
			want:  "Main Auditorium",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   \t\n  ",
			want:  "",
		},
		{
			name:  "preserve special characters",
			input: " Café & Lounge™ ",
			want:  "Café & Lounge™",
		},
		{
			name:  "non-latin characters",
			input: " सभागार  हॉल ",
			want:  "सभागार हॉल",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeName(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  Alice@Example.COM ", "alice@example.com"},
		{"bob@example.com", "bob@example.com"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeEmail(tt.input); got != tt.want {
				t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "basic trim",
			input: "  hello  ",
			want:  "hello",
		},
		{
			name:  "multiple spaces",
			input: "hello    world",
			want:  "hello world",
		},
		{
			name:  "tabs and newlines",
			input: "hello\t\nworld",
			want:  "hello world",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEscapeSearch(t *testing.T) {
	escaped := EscapeSearch("  a.b*(c) ")
	re := regexp.MustCompile("(?i)" + escaped)

	if !re.MatchString("xx A.B*(C) yy") {
		t.Errorf("escaped pattern %q should match the literal term", escaped)
	}
	if re.MatchString("aXb*(c)") {
		t.Errorf("escaped pattern %q should not treat '.' as a wildcard", escaped)
	}
}

func TestNormalizeFacilities(t *testing.T) {
	input := []model.Facility{
		{Name: "  Projector ", Email: " AV@Example.com"},
		{Name: "projector", Email: "other@example.com"},
		{Name: "   "},
		{Name: "Sound   System"},
	}

	got := NormalizeFacilities(input)

	if len(got) != 2 {
		t.Fatalf("NormalizeFacilities() returned %d facilities, want 2: %+v", len(got), got)
	}
	if got[0].Name != "Projector" || got[0].Email != "av@example.com" {
		t.Errorf("first facility = %+v, want Projector/av@example.com", got[0])
	}
	if got[1].Name != "Sound System" {
		t.Errorf("second facility name = %q, want %q", got[1].Name, "Sound System")
	}
}

func TestNormalizeFacilitiesEmpty(t *testing.T) {
	if got := NormalizeFacilities(nil); got == nil || len(got) != 0 {
		t.Errorf("NormalizeFacilities(nil) = %v, want empty non-nil slice", got)
	}
}

func TestNormalizeStringSlice(t *testing.T) {
	got := NormalizeStringSlice([]string{" A ", "a", "", "B"}, NormalizeEmail)
	want := []string{"a", "b"}
	if len(got) != len(want) {
		t.Fatalf("NormalizeStringSlice() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("NormalizeStringSlice()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
