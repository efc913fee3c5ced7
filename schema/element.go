package schema

import (
	"strings"

	"golang.org/x/net/html"

	"tripdoc/css"
)

// Element is an element of authored markup prepared for recovery rules:
// inline style is parsed once and shared by all rules looking at it.
type Element struct {
	node  *html.Node
	style css.Declarations
}

func (r *Registry) inspect(n *html.Node) *Element {
	e := &Element{node: n}
	if s, ok := e.Attr("style"); ok {
		e.style = r.css.ParseInline(s)
	}
	return e
}

// Node returns underlying markup node.
func (e *Element) Node() *html.Node {
	return e.node
}

// Tag returns lower-cased element name.
func (e *Element) Tag() string {
	return strings.ToLower(e.node.Data)
}

// Is reports whether element name is one of tags.
func (e *Element) Is(tags ...string) bool {
	tag := e.Tag()
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Attr returns value of markup attribute.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}

// AttrOrNil returns attribute value or nil when attribute is absent, suitable
// for nullable string attributes.
func (e *Element) AttrOrNil(name string) any {
	if v, ok := e.Attr(name); ok {
		return v
	}
	return nil
}

// Style returns inline style value of property.
func (e *Element) Style(property string) (css.Value, bool) {
	return e.style.Get(property)
}

// StyleOrNil returns raw inline style value or nil.
func (e *Element) StyleOrNil(property string) any {
	if v, ok := e.style.Get(property); ok && v.Raw != "" {
		return v.Raw
	}
	return nil
}

// HasClass reports whether class attribute lists class.
func (e *Element) HasClass(class string) bool {
	v, _ := e.Attr("class")
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

// Classes returns classes in attribute order.
func (e *Element) Classes() []string {
	v, _ := e.Attr("class")
	return strings.Fields(v)
}

// Child returns first direct or nested element with requested tag.
func (e *Element) Child(tag string) *html.Node {
	var found *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil && found == nil; c = c.NextSibling {
			if c.Type == html.ElementNode && strings.EqualFold(c.Data, tag) {
				found = c
				return
			}
			walk(c)
		}
	}
	walk(e.node)
	return found
}

// TextContent returns concatenated text of the markup subtree.
func TextContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func attrOf(n *html.Node, name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}
