package routing

import (
	"strings"

	"github.com/neusearch/neusearch/ai/internal/strutil"
)

// truncate shortens input for log lines.
func truncate(s string, maxLen int) string {
	return strutil.Truncate(s, maxLen)
}

// normalize lower-cases and trims input for pattern matching.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// containsAny checks if s contains any of the patterns.
func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
