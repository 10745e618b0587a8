package richtext

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// MaxDepth bounds node nesting accepted by Validate.
const MaxDepth = 64

// ValidationError lists every violation found in a document, keyed by field
// path ("type", "content[0].content[2].marks[1].type"). The empty path is
// the root value itself.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, p := range e.Paths() {
		name := p
		if name == "" {
			name = "(root)"
		}
		parts = append(parts, name+": "+strings.Join(e.Fields[p], ", "))
	}
	return "invalid document: " + strings.Join(parts, "; ")
}

// Paths returns the failing paths in sorted order.
func (e *ValidationError) Paths() []string {
	paths := make([]string, 0, len(e.Fields))
	for p := range e.Fields {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Prefixed returns the field reasons re-rooted under prefix, for documents
// nested inside a larger payload.
func (e *ValidationError) Prefixed(prefix string) map[string][]string {
	out := make(map[string][]string, len(e.Fields))
	for p, reasons := range e.Fields {
		out[joinPath(prefix, p)] = append([]string(nil), reasons...)
	}
	return out
}

// Validate checks v against the document grammar and returns the typed
// document. v is a generic JSON value (as produced by encoding/json), a
// Document, or raw JSON bytes. Unknown fields are accepted and preserved.
func Validate(v any) (Document, error) {
	switch x := v.(type) {
	case json.RawMessage:
		return ValidateJSON(x)
	case []byte:
		return ValidateJSON(x)
	case Document, *Document:
		b, err := json.Marshal(x)
		if err != nil {
			return Document{}, &ValidationError{Fields: map[string][]string{"": {"cannot be encoded: " + err.Error()}}}
		}
		return ValidateJSON(b)
	}
	s := &schema{}
	doc := s.document(v)
	if len(s.errs) > 0 {
		return Document{}, &ValidationError{Fields: s.errs}
	}
	return doc, nil
}

// ValidateJSON parses raw and validates the result.
func ValidateJSON(raw []byte) (Document, error) {
	v, err := decodeJSON(raw)
	if err != nil {
		return Document{}, &ValidationError{Fields: map[string][]string{"": {"must be valid JSON"}}}
	}
	return Validate(v)
}

// schema is a recursive-descent checker that accumulates errors instead of
// stopping at the first one.
type schema struct {
	errs map[string][]string
}

func (s *schema) fail(path, reason string) {
	if s.errs == nil {
		s.errs = make(map[string][]string)
	}
	s.errs[path] = append(s.errs[path], reason)
}

func (s *schema) document(v any) Document {
	m, ok := v.(map[string]any)
	if !ok {
		s.fail("", "must be an object")
		return Document{}
	}
	doc := Document{}
	if t, present := m["type"]; !present {
		s.fail("type", "is required")
	} else if str, ok := t.(string); !ok {
		s.fail("type", "must be a string")
	} else if str != DocType {
		s.fail("type", fmt.Sprintf("must be %q", DocType))
	} else {
		doc.Type = str
	}

	if c, present := m["content"]; !present {
		s.fail("content", "is required")
	} else if arr, ok := c.([]any); !ok {
		s.fail("content", "must be an array")
	} else {
		doc.Content = s.nodes("content", arr, 1)
	}

	for k, val := range m {
		if k != "type" && k != "content" {
			doc.Extra = putExtra(doc.Extra, k, val)
		}
	}
	return doc
}

func (s *schema) nodes(path string, arr []any, depth int) []Node {
	nodes := make([]Node, 0, len(arr))
	for i, item := range arr {
		nodes = append(nodes, s.node(indexPath(path, i), item, depth))
	}
	return nodes
}

func (s *schema) node(path string, v any, depth int) Node {
	if depth > MaxDepth {
		s.fail(path, fmt.Sprintf("exceeds maximum nesting depth of %d", MaxDepth))
		return Node{}
	}
	m, ok := v.(map[string]any)
	if !ok {
		s.fail(path, "must be an object")
		return Node{}
	}
	n := Node{}
	n.Type = s.requiredType(joinPath(path, "type"), m)
	for k, val := range m {
		field := joinPath(path, k)
		switch k {
		case "type":
		case "attrs":
			n.Attrs = s.attrs(field, val)
		case "content":
			arr, ok := val.([]any)
			if !ok {
				s.fail(field, "must be an array")
				continue
			}
			n.Content = s.nodes(field, arr, depth+1)
		case "marks":
			arr, ok := val.([]any)
			if !ok {
				s.fail(field, "must be an array")
				continue
			}
			n.Marks = make([]Mark, 0, len(arr))
			for i, item := range arr {
				n.Marks = append(n.Marks, s.mark(indexPath(field, i), item))
			}
		case "text":
			str, ok := val.(string)
			if !ok {
				s.fail(field, "must be a string")
				continue
			}
			n.Text = &str
		default:
			n.Extra = putExtra(n.Extra, k, val)
		}
	}
	return n
}

func (s *schema) mark(path string, v any) Mark {
	m, ok := v.(map[string]any)
	if !ok {
		s.fail(path, "must be an object")
		return Mark{}
	}
	mk := Mark{}
	mk.Type = s.requiredType(joinPath(path, "type"), m)
	for k, val := range m {
		switch k {
		case "type":
		case "attrs":
			mk.Attrs = s.attrs(joinPath(path, k), val)
		default:
			mk.Extra = putExtra(mk.Extra, k, val)
		}
	}
	return mk
}

func (s *schema) requiredType(path string, m map[string]any) string {
	t, present := m["type"]
	if !present {
		s.fail(path, "is required")
		return ""
	}
	str, ok := t.(string)
	if !ok {
		s.fail(path, "must be a string")
		return ""
	}
	if str == "" {
		s.fail(path, "must not be empty")
	}
	return str
}

func (s *schema) attrs(path string, v any) map[string]any {
	a, ok := v.(map[string]any)
	if !ok {
		s.fail(path, "must be an object")
		return nil
	}
	return a
}

func joinPath(base, field string) string {
	if base == "" {
		return field
	}
	if field == "" {
		return base
	}
	return base + "." + field
}

func indexPath(base string, i int) string {
	return base + "[" + strconv.Itoa(i) + "]"
}
