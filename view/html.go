package view

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ToHTML converts view tree to markup nodes. Fragments are flattened, so
// result may hold several top level nodes.
func (n *Node) ToHTML() []*html.Node {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KindText:
		return []*html.Node{{Type: html.TextNode, Data: n.Text}}
	case KindFragment:
		var out []*html.Node
		for _, c := range n.Children {
			out = append(out, c.ToHTML()...)
		}
		return out
	}

	tag := strings.ToLower(n.Tag)
	el := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	for _, a := range n.Attrs {
		el.Attr = append(el.Attr, html.Attribute{Key: a.Key, Val: a.Val})
	}
	for _, c := range n.Children {
		for _, h := range c.ToHTML() {
			el.AppendChild(h)
		}
	}
	return []*html.Node{el}
}

// Render writes view tree as HTML.
func Render(w io.Writer, n *Node) error {
	for _, h := range n.ToHTML() {
		if err := html.Render(w, h); err != nil {
			return fmt.Errorf("unable to render view: %w", err)
		}
	}
	return nil
}

// HTML returns view tree as HTML string.
func (n *Node) HTML() (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
