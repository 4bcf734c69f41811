package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Dermatology", "Dermatology"},
		{"surrounding whitespace", "  Dermatology  ", "Dermatology"},
		{"internal runs collapse", "Dr.   Noa \t Levi", "Dr. Noa Levi"},
		{"newlines collapse", "12 Herzl St\nTel Aviv", "12 Herzl St Tel Aviv"},
		{"empty", "", ""},
		{"only whitespace", " \t\n ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.input); got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeFeedback(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"keeps line breaks", "Great visit.\nVery attentive.", "Great visit.\nVery attentive."},
		{"strips control characters", "Good\x00 doctor\x07", "Good doctor"},
		{"trims edges", "  solid advice \n", "solid advice"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeFeedback(tt.input); got != tt.want {
				t.Errorf("NormalizeFeedback(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
