// Package richtext models editor documents as a tree of typed nodes and
// provides the three transforms applied to them on every request:
//
//   - Normalize coerces arbitrary input into a well-formed Document and never fails.
//   - Validate is the strict gate for write paths and reports every violation by path.
//   - Outline derives the heading table of contents with anchor slugs.
//
// All functions are pure and safe for concurrent use.
package richtext

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
)

// DocType is the discriminator of a document root.
const DocType = "doc"

// Document is the root container. Content is always a sequence once a
// Document leaves Normalize or Validate.
type Document struct {
	Type    string
	Content []Node
	Extra   map[string]any
}

// Node is a block or inline element. A nil Content means the field was
// absent; a non-nil empty slice means it was present and empty. Extra keeps
// unknown fields, and known fields whose values had the wrong shape, so that
// lenient decoding never loses data.
type Node struct {
	Type    string
	Attrs   map[string]any
	Content []Node
	Marks   []Mark
	Text    *string
	Extra   map[string]any
}

// Mark is an inline annotation on a text node.
type Mark struct {
	Type  string
	Attrs map[string]any
	Extra map[string]any
}

// EmptyDocument returns the canonical empty document: one empty paragraph.
func EmptyDocument() Document {
	return Document{
		Type:    DocType,
		Content: []Node{{Type: "paragraph", Content: []Node{}}},
	}
}

// TextNode builds a leaf text node.
func TextNode(text string, marks ...Mark) Node {
	n := Node{Type: "text", Text: &text}
	if len(marks) > 0 {
		n.Marks = marks
	}
	return n
}

// Paragraph builds a paragraph around the given children.
func Paragraph(children ...Node) Node {
	if children == nil {
		children = []Node{}
	}
	return Node{Type: "paragraph", Content: children}
}

// HeadingNode builds a heading of the given level around the given children.
func HeadingNode(level int, children ...Node) Node {
	if children == nil {
		children = []Node{}
	}
	return Node{Type: "heading", Attrs: map[string]any{"level": level}, Content: children}
}

// NewDocument builds a document around the given top-level nodes.
func NewDocument(nodes ...Node) Document {
	if nodes == nil {
		nodes = []Node{}
	}
	return Document{Type: DocType, Content: nodes}
}

// Kind returns the node's kind in the known set, or KindUnknown.
func (n Node) Kind() Kind {
	return KindOf(n.Type)
}

// TextValue returns the text payload, or "" for non-leaf nodes.
func (n Node) TextValue() string {
	if n.Text == nil {
		return ""
	}
	return *n.Text
}

// HasMark reports whether the node carries a mark of the given type.
func (n Node) HasMark(markType string) bool {
	for _, m := range n.Marks {
		if m.Type == markType {
			return true
		}
	}
	return false
}

// Attr returns a string attribute, or "" if absent or not a string.
func (n Node) Attr(key string) string {
	s, _ := n.Attrs[key].(string)
	return s
}

// Attr returns a string attribute of the mark, or "" if absent or not a string.
func (m Mark) Attr(key string) string {
	s, _ := m.Attrs[key].(string)
	return s
}

func (d Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Extra)+2)
	maps.Copy(out, d.Extra)
	setType(out, d.Type)
	content := d.Content
	if content == nil {
		content = []Node{}
	}
	out["content"] = content
	return json.Marshal(out)
}

// UnmarshalJSON decodes leniently: fields of the wrong shape move to Extra.
// Use Validate to reject malformed input.
func (d *Document) UnmarshalJSON(b []byte) error {
	v, err := decodeJSON(b)
	if err != nil {
		return err
	}
	m, ok := v.(map[string]any)
	if !ok {
		*d = Document{Content: nodesFromValues(asSlice(v))}
		return nil
	}
	*d = documentFromMap(m)
	return nil
}

func (n Node) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(n.Extra)+5)
	maps.Copy(out, n.Extra)
	setType(out, n.Type)
	if n.Attrs != nil {
		out["attrs"] = n.Attrs
	}
	if n.Content != nil {
		out["content"] = n.Content
	}
	if n.Marks != nil {
		out["marks"] = n.Marks
	}
	if n.Text != nil {
		out["text"] = *n.Text
	}
	return json.Marshal(out)
}

func (n *Node) UnmarshalJSON(b []byte) error {
	v, err := decodeJSON(b)
	if err != nil {
		return err
	}
	*n = nodeFromValue(v)
	return nil
}

func (m Mark) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Extra)+2)
	maps.Copy(out, m.Extra)
	setType(out, m.Type)
	if m.Attrs != nil {
		out["attrs"] = m.Attrs
	}
	return json.Marshal(out)
}

func (m *Mark) UnmarshalJSON(b []byte) error {
	v, err := decodeJSON(b)
	if err != nil {
		return err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		*m = Mark{Extra: map[string]any{"value": v}}
		return nil
	}
	*m = markFromMap(obj)
	return nil
}

// setType writes the discriminator unless it is empty and a malformed
// original value was preserved in Extra.
func setType(out map[string]any, t string) {
	if _, kept := out["type"]; kept && t == "" {
		return
	}
	out["type"] = t
}

// decodeJSON parses b into generic values, keeping numbers as json.Number.
func decodeJSON(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after top-level value at offset %d", dec.InputOffset())
	}
	return v, nil
}

func asSlice(v any) []any {
	if s, ok := v.([]any); ok {
		return s
	}
	return []any{}
}
