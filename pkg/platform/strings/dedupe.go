// Package strings holds the text cleanup shared by tag names and excerpts.
package strings

import (
	"strings"
	"unicode/utf8"
)

// DedupeFold drops blank values and case-insensitive duplicates, collapsing
// whitespace runs in what it keeps. The first spelling of each value wins.
//
// Example:
//
//	DedupeFold([]string{" Go  Lang", "go lang", "Rust"})
//	// Returns: []string{"Go Lang", "Rust"}
func DedupeFold(values []string) []string {
	return dedupe(values, CollapseSpace, strings.ToLower)
}

func dedupe(values []string, clean, key func(string) string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		cleaned := clean(v)
		if cleaned == "" {
			continue
		}
		k := key(cleaned)
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			result = append(result, cleaned)
		}
	}

	return result
}

// CollapseSpace trims s and replaces every whitespace run with one space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate shortens s to at most n runes, appending an ellipsis when cut.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimRightFunc(string(runes[:n]), func(r rune) bool { return r == ' ' }) + "…"
}
