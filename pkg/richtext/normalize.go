package richtext

import (
	"bytes"
	"encoding/json"
)

// Normalize coerces v into a well-formed Document. It never fails: the result
// always has Type == DocType and a non-nil Content.
//
// Accepted shapes, in order:
//  1. nil and other empty values ("", false, 0) passed directly: the empty
//     document. Once a string has been parsed only null counts as empty.
//  2. string: parsed as JSON; if that fails the raw string becomes a paragraph.
//  3. object with type "doc" and a content array: kept as is.
//  4. object with a content array but another or no type: content rewrapped.
//  5. array: elements become the content; any other value is serialized into
//     a paragraph so nothing is silently dropped.
func Normalize(v any) (doc Document) {
	defer func() {
		if r := recover(); r != nil {
			doc = EmptyDocument()
		}
	}()
	return normalize(v)
}

// NormalizeJSON normalizes serialized content, typically a stored column.
// Bytes that are not JSON are treated as plain text.
// Decoded falsy scalars (0, false, "") are content, not absence.
func NormalizeJSON(raw []byte) (doc Document) {
	defer func() {
		if r := recover(); r != nil {
			doc = EmptyDocument()
		}
	}()
	if len(bytes.TrimSpace(raw)) == 0 {
		return EmptyDocument()
	}
	v, err := decodeJSON(raw)
	if err != nil {
		return textDocument(string(raw))
	}
	return normalizeParsed(v)
}

func normalize(v any) Document {
	switch x := v.(type) {
	case Document:
		return normalizeDocument(x)
	case *Document:
		if x == nil {
			return EmptyDocument()
		}
		return normalizeDocument(*x)
	case []Node:
		if x == nil {
			x = []Node{}
		}
		return Document{Type: DocType, Content: x}
	case json.RawMessage:
		return NormalizeJSON(x)
	case []byte:
		return NormalizeJSON(x)
	case string:
		if x == "" {
			return EmptyDocument()
		}
		parsed, err := decodeJSON([]byte(x))
		if err != nil {
			return textDocument(x)
		}
		return normalizeParsed(parsed)
	}
	if isEmptyValue(v) {
		return EmptyDocument()
	}
	return normalizeParsed(v)
}

// normalizeParsed applies rules 3-5 to a decoded value. Strings reaching this
// point were already parsed once and are not parsed again. Only null counts
// as empty here; other falsy scalars are serialized into a paragraph.
func normalizeParsed(v any) Document {
	if v == nil {
		return EmptyDocument()
	}
	switch x := v.(type) {
	case map[string]any:
		content, ok := x["content"].([]any)
		if !ok {
			return textDocument(encodeText(x))
		}
		if t, _ := x["type"].(string); t == DocType {
			return documentFromMap(x)
		}
		return Document{Type: DocType, Content: nodesFromValues(content)}
	case []any:
		return Document{Type: DocType, Content: nodesFromValues(x)}
	}
	return textDocument(encodeText(v))
}

func normalizeDocument(d Document) Document {
	content := d.Content
	if content == nil {
		content = []Node{}
	}
	if d.Type == DocType {
		d.Content = content
		return d
	}
	return Document{Type: DocType, Content: content}
}

// textDocument wraps raw text as a single paragraph.
func textDocument(text string) Document {
	return NewDocument(Paragraph(TextNode(text)))
}

func isEmptyValue(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return !x
	case string:
		return x == ""
	case json.Number:
		f, err := x.Float64()
		return err == nil && f == 0
	case float64:
		return x == 0
	case int:
		return x == 0
	}
	return false
}
