package richtext

import (
	"strings"
	"unicode/utf8"
)

// WordsPerMinute is the reading speed used by ReadingMinutes.
const WordsPerMinute = 200

// Stats summarizes a document for listings and the CLI.
type Stats struct {
	Words      int `json:"words" yaml:"words"`
	Characters int `json:"characters" yaml:"characters"`
	Headings   int `json:"headings" yaml:"headings"`
	Images     int `json:"images" yaml:"images"`
}

// ReadingMinutes rounds up, with a minimum of one minute for non-empty text.
func (s Stats) ReadingMinutes() int {
	if s.Words == 0 {
		return 0
	}
	return (s.Words + WordsPerMinute - 1) / WordsPerMinute
}

// Walk visits every node of doc depth-first in document order. Returning
// false from fn skips the node's children.
func Walk(doc Document, fn func(n Node, depth int) bool) {
	var visit func(nodes []Node, depth int)
	visit = func(nodes []Node, depth int) {
		if depth > MaxDepth {
			return
		}
		for _, n := range nodes {
			if fn(n, depth) {
				visit(n.Content, depth+1)
			}
		}
	}
	visit(doc.Content, 1)
}

// PlainText flattens doc to text, one line per block.
func PlainText(doc Document) string {
	var lines []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			lines = append(lines, cur.String())
			cur.Reset()
		}
	}
	Walk(doc, func(n Node, _ int) bool {
		switch n.Kind() {
		case KindText:
			cur.WriteString(n.TextValue())
		case KindHardBreak:
			cur.WriteString("\n")
		case KindParagraph, KindHeading, KindCodeBlock, KindListItem, KindTaskItem:
			flush()
		}
		return true
	})
	flush()
	return strings.Join(lines, "\n")
}

// ComputeStats counts words, characters, headings at any depth and images.
func ComputeStats(doc Document) Stats {
	var s Stats
	Walk(doc, func(n Node, _ int) bool {
		switch n.Kind() {
		case KindHeading:
			s.Headings++
		case KindImage:
			s.Images++
		}
		return true
	})
	text := PlainText(doc)
	s.Words = len(strings.Fields(text))
	s.Characters = utf8.RuneCountInString(strings.Join(strings.Fields(text), " "))
	return s
}
