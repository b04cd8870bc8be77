package utils

import "strings"

// Truncate shortens text to at most max runes, marking the cut with an
// ellipsis. Previews in logs and context windows in prompts both use this.
func Truncate(text string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "…"
}

// Preview compresses text to a single short log-friendly line.
func Preview(text string, max int) string {
	flattened := strings.Join(strings.Fields(text), " ")
	return Truncate(flattened, max)
}
