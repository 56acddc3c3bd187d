// Package text provides rune-aware helpers for counting and truncating text.
// Extracted article bodies and summaries are frequently Chinese or Japanese,
// so every length in this module is measured in Unicode characters, not bytes.
package text

import "strings"

// CountRunes counts the number of Unicode characters (runes) in the given text.
//
// Examples:
//
//	CountRunes("hello")     // returns 5
//	CountRunes("量子位")      // returns 3
//	CountRunes("")          // returns 0
func CountRunes(text string) int {
	return len([]rune(text))
}

// Truncate cuts text to at most max runes. A non-positive max returns the text unchanged.
func Truncate(text string, max int) string {
	if max <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}

// CollapseNewlines replaces every line break with a single space and trims the result.
func CollapseNewlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
}
