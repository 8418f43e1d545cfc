package markup

import (
	"strings"

	"golang.org/x/net/html"
)

// ParseFixture parses a constrained HTML literal into a Node tree plus a
// flat per-element PropertyMap built from each element's inline `style`
// attribute. Tests, the CLI and the --serve surface all parse project
// markup through it. It reads only inline `style` attributes: it does no
// selector matching and no cascade, which the external tokenizer
// (spec.md §6) would perform.
func ParseFixture(source string) (*Node, PropertyMap, error) {
	doc, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return nil, nil, err
	}

	props := PropertyMap{}
	root := convert(doc, props)
	return root, props, nil
}

func convert(n *html.Node, props PropertyMap) *Node {
	switch n.Type {
	case html.TextNode:
		return &Node{Type: NodeText, Text: n.Data}
	case html.ElementNode:
		attrs := map[string]string{}
		for _, a := range n.Attr {
			attrs[a.Key] = a.Val
		}

		node := &Node{Type: NodeTag, Name: n.Data, Attribs: attrs}

		var children []*Node
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			child := convert(c, props)
			if child != nil {
				children = append(children, child)
			}
		}
		node.Children = children

		if style, ok := attrs["style"]; ok {
			props[node] = parseInlineStyle(style)
		}

		return node
	default:
		var children []*Node
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			child := convert(c, props)
			if child != nil {
				children = append(children, child)
			}
		}
		if len(children) == 1 {
			return children[0]
		}
		return &Node{Type: NodeTag, Name: "#document", Children: children}
	}
}

// parseInlineStyle splits a `prop: value; prop2: value2` string into a flat
// property map, mirroring the shape the external cascade would hand over
// (one layer of specificity already resolved).
func parseInlineStyle(style string) map[string]string {
	out := map[string]string{}
	for _, decl := range strings.Split(style, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		parts := strings.SplitN(decl, ":", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		out[key] = val
	}
	return out
}
