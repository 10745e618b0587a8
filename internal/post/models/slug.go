package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	slugStrip    = regexp.MustCompile(`[^a-z0-9_\s-]`)
	slugSeparate = regexp.MustCompile(`[\s_-]+`)
)

// BaseSlug derives the URL slug of a title: lowercase ASCII words joined by
// single hyphens. Titles with no usable characters get "post-<unix millis>".
func BaseSlug(title string, now time.Time) string {
	s := strings.TrimSpace(strings.ToLower(title))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugSeparate.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return fmt.Sprintf("post-%d", now.UnixMilli())
	}
	return s
}

// SlugCandidate returns the n-th candidate for base: base itself, then
// base-1, base-2 and so on.
func SlugCandidate(base string, n int) string {
	if n == 0 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, n)
}
