package richtext

import (
	"encoding/json"
	"fmt"
)

// Lenient conversion from generic JSON values to typed nodes. Values that do
// not fit a typed slot are kept in Extra under their original key.

func documentFromMap(m map[string]any) Document {
	d := Document{}
	for k, v := range m {
		switch k {
		case "type":
			if s, ok := v.(string); ok {
				d.Type = s
				continue
			}
		case "content":
			if arr, ok := v.([]any); ok {
				d.Content = nodesFromValues(arr)
				continue
			}
		}
		d.Extra = putExtra(d.Extra, k, v)
	}
	return d
}

func nodesFromValues(vals []any) []Node {
	nodes := make([]Node, 0, len(vals))
	for _, v := range vals {
		if v == nil {
			continue
		}
		nodes = append(nodes, nodeFromValue(v))
	}
	return nodes
}

// nodeFromValue converts one content element. Objects become nodes, strings
// become text nodes, anything else becomes a text node of its JSON encoding.
func nodeFromValue(v any) Node {
	switch x := v.(type) {
	case map[string]any:
		return nodeFromMap(x)
	case string:
		return TextNode(x)
	default:
		return TextNode(encodeText(x))
	}
}

func nodeFromMap(m map[string]any) Node {
	n := Node{}
	for k, v := range m {
		switch k {
		case "type":
			if s, ok := v.(string); ok {
				n.Type = s
				continue
			}
		case "attrs":
			if a, ok := v.(map[string]any); ok {
				n.Attrs = a
				continue
			}
		case "content":
			if arr, ok := v.([]any); ok {
				n.Content = nodesFromValues(arr)
				continue
			}
		case "marks":
			if marks, ok := marksFromValue(v); ok {
				n.Marks = marks
				continue
			}
		case "text":
			if s, ok := v.(string); ok {
				n.Text = &s
				continue
			}
		}
		n.Extra = putExtra(n.Extra, k, v)
	}
	return n
}

// marksFromValue accepts only an array made entirely of objects; anything
// else is left for the caller to keep verbatim.
func marksFromValue(v any) ([]Mark, bool) {
	arr, ok := v.([]any)
	if !ok {
		return nil, false
	}
	marks := make([]Mark, 0, len(arr))
	for _, item := range arr {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, false
		}
		marks = append(marks, markFromMap(obj))
	}
	return marks, true
}

func markFromMap(m map[string]any) Mark {
	mk := Mark{}
	for k, v := range m {
		switch k {
		case "type":
			if s, ok := v.(string); ok {
				mk.Type = s
				continue
			}
		case "attrs":
			if a, ok := v.(map[string]any); ok {
				mk.Attrs = a
				continue
			}
		}
		mk.Extra = putExtra(mk.Extra, k, v)
	}
	return mk
}

func putExtra(extra map[string]any, k string, v any) map[string]any {
	if extra == nil {
		extra = make(map[string]any)
	}
	extra[k] = v
	return extra
}

// encodeText serializes an arbitrary value for embedding as text.
func encodeText(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
