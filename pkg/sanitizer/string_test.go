package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "trim spaces", input: "  Weekly sync  ", want: "Weekly sync"},
		{name: "inner runs", input: "Weekly    sync", want: "Weekly sync"},
		{name: "tabs and newlines", input: "Weekly\t\nsync", want: "Weekly sync"},
		{name: "empty", input: "", want: ""},
		{name: "only whitespace", input: " \t\n ", want: ""},
		{name: "control characters dropped", input: "Plan\x00ning", want: "Planning"},
		{name: "unicode kept", input: " Réunion équipe ", want: "Réunion équipe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := TrimAndNormalize(got); again != got {
				t.Errorf("not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestNormalizeHHMM(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "09:00", want: "09:00"},
		{input: "9:00", want: "09:00"},
		{input: " 9.30 ", want: "09:30"},
		{input: "18:00", want: "18:00"},
		{input: "25:00", want: "25:00"},
		{input: "nine", want: "nine"},
		{input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeHHMM(tt.input); got != tt.want {
				t.Errorf("NormalizeHHMM(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeTimeZone(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "utc", want: "UTC"},
		{input: " Z ", want: "UTC"},
		{input: "Europe/Berlin", want: "Europe/Berlin"},
		{input: "  America/New_York", want: "America/New_York"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeTimeZone(tt.input); got != tt.want {
				t.Errorf("NormalizeTimeZone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
