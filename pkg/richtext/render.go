package richtext

import (
	"bytes"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var blockAtoms = map[Kind]atom.Atom{
	KindParagraph:   atom.P,
	KindBlockquote:  atom.Blockquote,
	KindBulletList:  atom.Ul,
	KindOrderedList: atom.Ol,
	KindListItem:    atom.Li,
	KindTaskList:    atom.Ul,
	KindTaskItem:    atom.Li,
}

var markAtoms = map[string]atom.Atom{
	"bold":        atom.Strong,
	"italic":      atom.Em,
	"strike":      atom.S,
	"underline":   atom.U,
	"code":        atom.Code,
	"highlight":   atom.Mark,
	"subscript":   atom.Sub,
	"superscript": atom.Sup,
	"link":        atom.A,
}

var headingAtoms = [...]atom.Atom{atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6}

// RenderHTML renders doc as an HTML fragment for reading views. Heading ids
// match the slugs returned by Outline. Link and image URLs outside
// http, https, mailto and relative references are dropped.
func RenderHTML(doc Document) (string, error) {
	root := &html.Node{Type: html.DocumentNode}
	for _, n := range doc.Content {
		renderNode(root, n, 1)
	}
	var buf bytes.Buffer
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("rendering html: %w", err)
		}
	}
	return buf.String(), nil
}

func renderNode(parent *html.Node, n Node, depth int) {
	if depth > MaxDepth {
		return
	}
	switch kind := n.Kind(); kind {
	case KindText:
		parent.AppendChild(renderText(n))
	case KindHeading:
		el := element(atom.P)
		if level, ok := headingLevel(n); ok {
			el = element(headingAtoms[level-1])
			if slug := Slugify(inlineText(n)); slug != "" {
				el.Attr = append(el.Attr, html.Attribute{Key: "id", Val: slug})
			}
		}
		renderChildren(el, n, depth)
		parent.AppendChild(el)
	case KindCodeBlock:
		pre := element(atom.Pre)
		code := element(atom.Code)
		if lang := n.Attr("language"); lang != "" {
			code.Attr = append(code.Attr, html.Attribute{Key: "class", Val: "language-" + lang})
		}
		code.AppendChild(textNode(inlineText(n)))
		pre.AppendChild(code)
		parent.AppendChild(pre)
	case KindHorizontalRule:
		parent.AppendChild(element(atom.Hr))
	case KindHardBreak:
		parent.AppendChild(element(atom.Br))
	case KindImage:
		src, ok := safeURL(n.Attr("src"))
		if !ok || src == "" {
			return
		}
		img := element(atom.Img, html.Attribute{Key: "src", Val: src})
		if alt := n.Attr("alt"); alt != "" {
			img.Attr = append(img.Attr, html.Attribute{Key: "alt", Val: alt})
		}
		if title := n.Attr("title"); title != "" {
			img.Attr = append(img.Attr, html.Attribute{Key: "title", Val: title})
		}
		parent.AppendChild(img)
	default:
		a, ok := blockAtoms[kind]
		if !ok {
			renderChildren(parent, n, depth)
			return
		}
		el := element(a)
		switch kind {
		case KindOrderedList:
			if start, ok := intAttr(n, "start"); ok && start != 1 {
				el.Attr = append(el.Attr, html.Attribute{Key: "start", Val: strconv.Itoa(start)})
			}
		case KindTaskList:
			el.Attr = append(el.Attr, html.Attribute{Key: "data-type", Val: "taskList"})
		case KindTaskItem:
			checked, _ := n.Attrs["checked"].(bool)
			el.Attr = append(el.Attr, html.Attribute{Key: "data-checked", Val: strconv.FormatBool(checked)})
			box := element(atom.Input,
				html.Attribute{Key: "type", Val: "checkbox"},
				html.Attribute{Key: "disabled"},
			)
			if checked {
				box.Attr = append(box.Attr, html.Attribute{Key: "checked"})
			}
			el.AppendChild(box)
		}
		renderChildren(el, n, depth)
		parent.AppendChild(el)
	}
}

func renderChildren(parent *html.Node, n Node, depth int) {
	for _, child := range n.Content {
		renderNode(parent, child, depth+1)
	}
}

// renderText wraps a text leaf in its marks, first mark outermost.
func renderText(n Node) *html.Node {
	leaf := textNode(n.TextValue())
	for i := len(n.Marks) - 1; i >= 0; i-- {
		m := n.Marks[i]
		a, ok := markAtoms[m.Type]
		if !ok {
			continue
		}
		el := element(a)
		if a == atom.A {
			href, ok := safeURL(m.Attr("href"))
			if !ok {
				continue
			}
			el.Attr = append(el.Attr,
				html.Attribute{Key: "href", Val: href},
				html.Attribute{Key: "rel", Val: "noopener noreferrer nofollow"},
			)
			if m.Attr("target") == "_blank" {
				el.Attr = append(el.Attr, html.Attribute{Key: "target", Val: "_blank"})
			}
		}
		el.AppendChild(leaf)
		leaf = el
	}
	return leaf
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// safeURL accepts relative references and http, https and mailto URLs.
func safeURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https", "mailto":
		return raw, true
	}
	return "", false
}

func intAttr(n Node, key string) (int, bool) {
	switch v := n.Attrs[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), v == float64(int(v))
	case interface{ Int64() (int64, error) }:
		i, err := v.Int64()
		return int(i), err == nil
	}
	return 0, false
}
