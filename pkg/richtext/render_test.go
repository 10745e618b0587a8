package richtext

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderQuery(t *testing.T, doc Document) *goquery.Document {
	t.Helper()
	out, err := RenderHTML(doc)
	require.NoError(t, err)
	q, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	require.NoError(t, err)
	return q
}

func sampleDocument(t *testing.T) Document {
	t.Helper()
	return NormalizeJSON([]byte(`{"type":"doc","content":[
		{"type":"heading","attrs":{"level":2},"content":[{"type":"text","text":"Hello World!"}]},
		{"type":"paragraph","content":[
			{"type":"text","text":"Read "},
			{"type":"text","text":"this","marks":[{"type":"bold"},{"type":"italic"}]},
			{"type":"text","text":" and "},
			{"type":"text","text":"that","marks":[{"type":"link","attrs":{"href":"https://example.com/a","target":"_blank"}}]},
			{"type":"text","text":" or ","marks":[{"type":"unknownMark"}]},
			{"type":"text","text":"never","marks":[{"type":"link","attrs":{"href":"javascript:alert(1)"}}]}
		]},
		{"type":"orderedList","attrs":{"start":3},"content":[
			{"type":"listItem","content":[{"type":"paragraph","content":[{"type":"text","text":"three"}]}]}
		]},
		{"type":"taskList","content":[
			{"type":"taskItem","attrs":{"checked":true},"content":[{"type":"paragraph","content":[{"type":"text","text":"done"}]}]}
		]},
		{"type":"codeBlock","attrs":{"language":"go"},"content":[{"type":"text","text":"fmt.Println(\"<hi>\")"}]},
		{"type":"image","attrs":{"src":"/uploads/cat.png","alt":"A cat"}},
		{"type":"image","attrs":{"src":"javascript:alert(1)"}},
		{"type":"callout","content":[{"type":"paragraph","content":[{"type":"text","text":"inside unknown"}]}]},
		{"type":"horizontalRule"}
	]}`))
}

func TestRenderHTML(t *testing.T) {
	q := renderQuery(t, sampleDocument(t))

	t.Run("heading ids match outline slugs", func(t *testing.T) {
		h := q.Find("h2")
		require.Equal(t, 1, h.Length())
		id, _ := h.Attr("id")
		assert.Equal(t, Outline(sampleDocument(t))[0].Slug, id)
		assert.Equal(t, "Hello World!", h.Text())
	})

	t.Run("marks nest in order", func(t *testing.T) {
		assert.Equal(t, "this", q.Find("p strong > em").Text())
	})

	t.Run("links are kept only for safe schemes", func(t *testing.T) {
		links := q.Find("a")
		require.Equal(t, 1, links.Length())
		href, _ := links.Attr("href")
		assert.Equal(t, "https://example.com/a", href)
		rel, _ := links.Attr("rel")
		assert.Contains(t, rel, "noopener")
		target, _ := links.Attr("target")
		assert.Equal(t, "_blank", target)
		assert.Contains(t, q.Find("p").First().Text(), "never")
	})

	t.Run("lists and tasks", func(t *testing.T) {
		start, _ := q.Find("ol").Attr("start")
		assert.Equal(t, "3", start)
		assert.Equal(t, "three", q.Find("ol > li > p").Text())

		item := q.Find(`ul[data-type="taskList"] > li`)
		checked, _ := item.Attr("data-checked")
		assert.Equal(t, "true", checked)
		_, hasChecked := item.Find(`input[type="checkbox"]`).Attr("checked")
		assert.True(t, hasChecked)
	})

	t.Run("code is escaped and labelled", func(t *testing.T) {
		code := q.Find("pre > code")
		class, _ := code.Attr("class")
		assert.Equal(t, "language-go", class)
		assert.Equal(t, `fmt.Println("<hi>")`, code.Text())
	})

	t.Run("images with unsafe sources are dropped", func(t *testing.T) {
		imgs := q.Find("img")
		require.Equal(t, 1, imgs.Length())
		alt, _ := imgs.Attr("alt")
		assert.Equal(t, "A cat", alt)
	})

	t.Run("unknown nodes render their children", func(t *testing.T) {
		assert.Equal(t, 1, q.Find("p:contains('inside unknown')").Length())
		assert.Equal(t, 1, q.Find("hr").Length())
	})
}

func TestRenderHTMLEscapesText(t *testing.T) {
	out, err := RenderHTML(NewDocument(Paragraph(TextNode(`<script>alert("x")</script>`))))
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestRenderMarkdown(t *testing.T) {
	doc := NewDocument(
		HeadingNode(2, TextNode("Hello World")),
		Paragraph(TextNode("plain "), TextNode("bold", Mark{Type: "bold"})),
		Node{Type: "bulletList", Content: []Node{
			{Type: "listItem", Content: []Node{Paragraph(TextNode("one"))}},
			{Type: "listItem", Content: []Node{Paragraph(TextNode("two"))}},
		}},
	)
	md, err := RenderMarkdown(doc)
	require.NoError(t, err)
	assert.Contains(t, md, "## Hello World")
	assert.Contains(t, md, "**bold**")
	assert.Contains(t, md, "- one")
	assert.Contains(t, md, "- two")
}
