package markup

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"tripdoc/doc"
	"tripdoc/schema"
)

// never content
var skippedElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Template: true,
	atom.Noscript: true,
	atom.Head:     true,
	atom.Iframe:   true,
}

// Decode recovers canonical tree from markup. Recovery is lenient: elements
// no declared type claims are unwrapped keeping their content, attributes
// which could not be recovered get defaults.
func (c *Codec) Decode(markup string) (*doc.Node, error) {
	nodes, err := html.ParseFragment(strings.NewReader(markup), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to parse markup: %w", err)
	}

	root := doc.NewDoc()
	d := decoder{reg: c.reg, log: c.log}
	s := &scope{reg: c.reg, parent: root}
	for _, n := range nodes {
		d.visit(n, s, nil)
	}
	mergeText(root)
	return root, nil
}

// scope tracks node receiving decoded children. Inline content met directly
// in block container goes into implicit paragraph.
type scope struct {
	reg       *schema.Registry
	parent    *doc.Node
	textblock bool
	implicit  *doc.Node
}

func (s *scope) inline() *doc.Node {
	if s.textblock {
		return s.parent
	}
	if s.implicit == nil {
		s.implicit = doc.New(doc.TypeParagraph, s.reg.NodeDefaults(doc.TypeParagraph))
		s.parent.Children = append(s.parent.Children, s.implicit)
	}
	return s.implicit
}

func (s *scope) block(n *doc.Node) {
	s.implicit = nil
	s.parent.Children = append(s.parent.Children, n)
}

type decoder struct {
	reg *schema.Registry
	log *zap.Logger
}

func (d *decoder) visit(n *html.Node, s *scope, marks []doc.Mark) {
	switch n.Type {
	case html.TextNode:
		if !s.textblock && s.implicit == nil && strings.TrimSpace(n.Data) == "" {
			return
		}
		p := s.inline()
		p.Children = append(p.Children, doc.NewText(n.Data, cloneMarks(marks)...))

	case html.ElementNode:
		if skippedElements[n.DataAtom] {
			return
		}
		spec, attrs, ok := d.reg.RecoverNode(n)
		if !ok {
			d.children(n, s, withMarks(marks, d.reg.RecoverMarks(n)))
			return
		}
		node := &doc.Node{Type: spec.Type, Attrs: attrs}
		switch {
		case spec.Inline:
			node.Marks = cloneMarks(marks)
			if s.textblock || s.implicit != nil {
				p := s.inline()
				p.Children = append(p.Children, node)
			} else {
				s.block(node)
			}
		case s.textblock:
			// block inside textblock, keep it rather than lose content
			s.parent.Children = append(s.parent.Children, node)
		default:
			s.block(node)
		}
		if !spec.Atom {
			d.children(n, &scope{reg: d.reg, parent: node, textblock: spec.Textblock}, nil)
		}

	case html.DocumentNode:
		d.children(n, s, marks)
	}
}

func (d *decoder) children(n *html.Node, s *scope, marks []doc.Mark) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.visit(c, s, marks)
	}
}

// withMarks puts marks of inner element in front of active ones, inner
// wrappers come first in mark list. Types already active are not repeated.
func withMarks(active, inner []doc.Mark) []doc.Mark {
	if len(inner) == 0 {
		return active
	}
	out := make([]doc.Mark, 0, len(inner)+len(active))
	for _, m := range inner {
		dup := false
		for _, a := range active {
			if a.Type == m.Type {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, m)
		}
	}
	return append(out, active...)
}

func cloneMarks(marks []doc.Mark) []doc.Mark {
	if len(marks) == 0 {
		return nil
	}
	out := make([]doc.Mark, len(marks))
	for i, m := range marks {
		out[i] = doc.Mark{Type: m.Type, Attrs: m.Attrs.Clone()}
	}
	return out
}

// mergeText joins adjacent text leaves carrying equal marks, markup does not
// preserve such boundaries.
func mergeText(root *doc.Node) {
	root.Walk(func(n *doc.Node, _ int) bool {
		if len(n.Children) < 2 {
			return true
		}
		out := n.Children[:1]
		for _, c := range n.Children[1:] {
			last := out[len(out)-1]
			if last.Type == doc.TypeText && c.Type == doc.TypeText && doc.MarksEqual(last.Marks, c.Marks) {
				last.Text += c.Text
				continue
			}
			out = append(out, c)
		}
		n.Children = out
		return true
	})
}
