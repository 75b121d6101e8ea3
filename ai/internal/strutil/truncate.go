// Package strutil holds small string helpers shared by the ai packages.
package strutil

// Truncate shortens s to at most maxLen runes and appends "..." when cut.
// A non-positive maxLen yields "".
func Truncate(s string, maxLen int) string {
	if s == "" || maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
