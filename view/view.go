// Package view holds the view tree produced by the renderer: a minimal
// element tree convertible to markup nodes for serialization and for the
// headless page.
package view

import (
	"slices"
	"strings"
)

// Kind is the node type discriminator.
type Kind uint8

const (
	KindElement  Kind = iota // <p>, <figure>, etc.
	KindText                 // plain text
	KindFragment             // grouping without wrapper
)

func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	default:
		return "Unknown"
	}
}

// Attr is a single attribute. Attributes keep insertion order so output is
// deterministic.
type Attr struct {
	Key string
	Val string
}

// Node is a view tree node.
type Node struct {
	Kind     Kind
	Tag      string
	Attrs    []Attr
	Children []*Node
	Text     string
}

// Element creates element node. Nil children are skipped.
func Element(tag string, attrs []Attr, children ...*Node) *Node {
	return &Node{Kind: KindElement, Tag: tag, Attrs: attrs, Children: compact(children)}
}

// Text creates text node.
func Text(s string) *Node {
	return &Node{Kind: KindText, Text: s}
}

// Fragment groups nodes without wrapper element.
func Fragment(children ...*Node) *Node {
	return &Node{Kind: KindFragment, Children: compact(children)}
}

func compact(children []*Node) []*Node {
	if !slices.Contains(children, nil) {
		return children
	}
	return slices.DeleteFunc(slices.Clone(children), func(n *Node) bool { return n == nil })
}

// Attr returns attribute value.
func (n *Node) Attr(key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr replaces attribute value or appends new attribute.
func (n *Node) SetAttr(key, val string) *Node {
	for i := range n.Attrs {
		if n.Attrs[i].Key == key {
			n.Attrs[i].Val = val
			return n
		}
	}
	n.Attrs = append(n.Attrs, Attr{Key: key, Val: val})
	return n
}

// AddClass appends class unless already present.
func (n *Node) AddClass(classes ...string) *Node {
	cur, _ := n.Attr("class")
	have := strings.Fields(cur)
	for _, c := range classes {
		if c != "" && !slices.Contains(have, c) {
			have = append(have, c)
		}
	}
	if len(have) > 0 {
		n.SetAttr("class", strings.Join(have, " "))
	}
	return n
}

// Append adds children skipping nils.
func (n *Node) Append(children ...*Node) *Node {
	n.Children = append(n.Children, compact(children)...)
	return n
}

// TextContent returns concatenated text of the subtree.
func (n *Node) TextContent() string {
	if n == nil {
		return ""
	}
	if n.Kind == KindText {
		return n.Text
	}
	var sb strings.Builder
	for _, c := range n.Children {
		sb.WriteString(c.TextContent())
	}
	return sb.String()
}

// Find returns nodes with tag in document order.
func (n *Node) Find(tag string) []*Node {
	var out []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		if n.Kind == KindElement && n.Tag == tag {
			out = append(out, n)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(n)
	return out
}
