// Package markup converts canonical trees to markup and back.
package markup

import (
	"fmt"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"tripdoc/doc"
	"tripdoc/schema"
)

// Encode emits markup for the tree. Nodes of undeclared types are dropped
// with their content, undeclared marks are skipped leaving content in place.
func (c *Codec) Encode(root *doc.Node) (string, error) {
	if root == nil {
		return "", nil
	}
	d := schema.NewFragment()
	e := encoder{reg: c.reg, log: c.log}
	if root.Type == doc.TypeDoc {
		e.children(&d.Element, root)
	} else {
		e.node(&d.Element, root)
	}
	if e.dropped > 0 {
		c.log.Debug("Undeclared nodes dropped", zap.Int("count", e.dropped))
	}
	out, err := schema.HTMLString(d)
	if err != nil {
		return "", fmt.Errorf("unable to write markup: %w", err)
	}
	return out, nil
}

type encoder struct {
	reg     *schema.Registry
	log     *zap.Logger
	dropped int
}

func (e *encoder) children(parent *etree.Element, n *doc.Node) {
	for _, c := range n.Children {
		e.node(parent, c)
	}
}

func (e *encoder) node(parent *etree.Element, n *doc.Node) {
	if n == nil {
		return
	}
	if n.Type == doc.TypeText {
		if n.Text != "" {
			e.wrap(parent, n.Marks).CreateText(n.Text)
		}
		return
	}
	outer, hole, ok := e.reg.EmitNode(n)
	if !ok {
		e.dropped++
		e.log.Debug("Dropping node", zap.String("type", string(n.Type)))
		return
	}
	e.wrap(parent, n.Marks).AddChild(outer)
	if hole != nil {
		e.children(hole, n)
	}
}

// wrap creates mark wrappers under parent and returns innermost one. First
// mark of the list ends up innermost.
func (e *encoder) wrap(parent *etree.Element, marks []doc.Mark) *etree.Element {
	for i := len(marks) - 1; i >= 0; i-- {
		el, ok := e.reg.EmitMark(marks[i])
		if !ok {
			continue
		}
		parent.AddChild(el)
		parent = el
	}
	return parent
}
