package richtext

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainText(t *testing.T) {
	doc := NewDocument(
		HeadingNode(1, TextNode("Title")),
		Paragraph(TextNode("first "), TextNode("line", Mark{Type: "bold"})),
		Node{Type: "bulletList", Content: []Node{
			{Type: "listItem", Content: []Node{Paragraph(TextNode("item"))}},
		}},
	)
	assert.Equal(t, "Title\nfirst line\nitem", PlainText(doc))
	assert.Equal(t, "", PlainText(EmptyDocument()))
}

func TestComputeStats(t *testing.T) {
	words := strings.TrimSpace(strings.Repeat("word ", 401))
	doc := NewDocument(
		HeadingNode(1, TextNode("Title")),
		Paragraph(TextNode(words)),
		Node{Type: "blockquote", Content: []Node{HeadingNode(2, TextNode("Nested"))}},
		Node{Type: "image", Attrs: map[string]any{"src": "/a.png"}},
	)
	stats := ComputeStats(doc)
	assert.Equal(t, 403, stats.Words)
	assert.Equal(t, 2, stats.Headings)
	assert.Equal(t, 1, stats.Images)
	assert.Equal(t, 3, stats.ReadingMinutes())

	assert.Equal(t, 0, ComputeStats(EmptyDocument()).ReadingMinutes())
	assert.Equal(t, len("Title\nHi"), ComputeStats(NewDocument(HeadingNode(1, TextNode("Title")), Paragraph(TextNode("Hi")))).Characters)
}

func TestWalkSkipsChildren(t *testing.T) {
	doc := NewDocument(Node{Type: "blockquote", Content: []Node{Paragraph(TextNode("hidden"))}}, Paragraph(TextNode("shown")))
	var seen []string
	Walk(doc, func(n Node, depth int) bool {
		if n.Kind() == KindText {
			seen = append(seen, n.TextValue())
		}
		return n.Kind() != KindBlockquote
	})
	assert.Equal(t, []string{"shown"}, seen)
}
