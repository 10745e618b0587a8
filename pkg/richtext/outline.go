package richtext

import (
	"encoding/json"
	"math"
	"strings"
	"unicode"
)

// Heading is one entry of a document outline.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	Slug  string `json:"slug"`
}

// Outline lists the top-level headings of doc in document order. Headings
// with an invalid level or no text are skipped. Slugs are not disambiguated:
// two headings with the same text share an anchor.
func Outline(doc Document) []Heading {
	headings := []Heading{}
	for _, n := range doc.Content {
		if n.Kind() != KindHeading {
			continue
		}
		level, ok := headingLevel(n)
		if !ok {
			continue
		}
		text := inlineText(n)
		if strings.TrimSpace(text) == "" {
			continue
		}
		headings = append(headings, Heading{Level: level, Text: text, Slug: Slugify(text)})
	}
	return headings
}

// headingLevel reads attrs.level, defaulting to 1 when absent.
func headingLevel(n Node) (int, bool) {
	raw, ok := n.Attrs["level"]
	if !ok || raw == nil {
		return 1, true
	}
	var f float64
	switch v := raw.(type) {
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case float64:
		f = v
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if f != math.Trunc(f) || f < 1 || f > 6 {
		return 0, false
	}
	return int(f), true
}

// inlineText concatenates the text of the direct text children of n.
func inlineText(n Node) string {
	var b strings.Builder
	for _, child := range n.Content {
		if child.Kind() == KindText {
			b.WriteString(child.TextValue())
		}
	}
	return b.String()
}

// Slugify derives an anchor identifier from text. It keeps lowercase ASCII
// letters, digits, underscores and hyphens, turns each whitespace run into one
// hyphen, and trims hyphens from both ends. Hyphens already in the text are
// kept, so "a--b" stays "a--b".
func Slugify(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Trim(strings.Join(strings.Fields(b.String()), "-"), "-")
}
