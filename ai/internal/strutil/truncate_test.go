package strutil

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{"empty", "", 10, ""},
		{"fits", "shoes", 10, "shoes"},
		{"exact", "shoes", 5, "shoes"},
		{"cut", "blue gym shoes", 4, "blue..."},
		{"zero limit", "shoes", 0, ""},
		{"negative limit", "shoes", -3, ""},
		{"multibyte", "café crème", 4, "café..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.input, tt.maxLen); got != tt.expected {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.expected)
			}
		})
	}
}
