// Package render turns canonical trees into view trees. Rendering is pure and
// lenient: nodes of undeclared types are omitted, marks of undeclared types
// leave their content unwrapped.
package render

import (
	"strconv"

	"go.uber.org/zap"

	"tripdoc/doc"
	"tripdoc/schema"
	"tripdoc/view"
)

type nodeView func(r *Renderer, n *doc.Node, attrs doc.Attrs) *view.Node

type markView func(attrs doc.Attrs, inner *view.Node) *view.Node

// Renderer dispatches per node type. It keeps heading anchors of the current
// render, so it must not be shared between concurrent renders.
type Renderer struct {
	reg     *schema.Registry
	log     *zap.Logger
	anchors *Anchors
}

func New(reg *schema.Registry, log *zap.Logger) *Renderer {
	if reg == nil {
		reg = schema.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{reg: reg, log: log.Named("render")}
}

// Render renders tree with default registry.
func Render(tree *doc.Node) *view.Node {
	return New(nil, nil).Render(tree)
}

// Render produces view tree for the whole document.
func (r *Renderer) Render(tree *doc.Node) *view.Node {
	r.anchors = NewAnchors()
	// stored ids win over generated ones
	tree.Walk(func(n *doc.Node, _ int) bool {
		if n.Type == doc.TypeHeading {
			r.anchors.Reserve(n.Attrs.String("id"))
		}
		return true
	})
	return r.RenderNode(tree)
}

// RenderNode renders a single node with its subtree. Undeclared types yield
// nil.
func (r *Renderer) RenderNode(n *doc.Node) *view.Node {
	if n == nil {
		return nil
	}
	fn, ok := nodeViews[n.Type]
	if !ok {
		r.log.Debug("Omitting node of undeclared type", zap.String("type", string(n.Type)))
		return nil
	}
	if r.anchors == nil {
		r.anchors = NewAnchors()
	}
	out := fn(r, n, r.reg.NodeAttrs(n.Type, n.Attrs))
	if n.Type != doc.TypeDoc && len(n.Marks) > 0 {
		out = r.RenderMarks(n.Marks, out)
	}
	return out
}

// RenderMarks wraps inner view with marks, left to right: first mark becomes
// innermost wrapper. Undeclared marks return accumulator unchanged.
func (r *Renderer) RenderMarks(marks []doc.Mark, inner *view.Node) *view.Node {
	acc := inner
	for _, m := range marks {
		fn, ok := markViews[m.Type]
		if !ok {
			continue
		}
		acc = fn(r.reg.MarkAttrs(m.Type, m.Attrs), acc)
	}
	return acc
}

func (r *Renderer) children(n *doc.Node) []*view.Node {
	out := make([]*view.Node, 0, len(n.Children))
	for _, c := range n.Children {
		if v := r.RenderNode(c); v != nil {
			out = append(out, v)
		}
	}
	return out
}

var nodeViews map[doc.NodeType]nodeView

func init() {
	// assigned in init to break reference cycle through Renderer methods
	nodeViews = map[doc.NodeType]nodeView{
		doc.TypeDoc: func(r *Renderer, n *doc.Node, _ doc.Attrs) *view.Node {
			return view.Fragment(r.children(n)...)
		},
		doc.TypeText: func(_ *Renderer, n *doc.Node, _ doc.Attrs) *view.Node {
			return view.Text(n.Text)
		},
		doc.TypeParagraph:      container("p"),
		doc.TypeBulletList:     container("ul"),
		doc.TypeListItem:       container("li"),
		doc.TypeBlockquote:     container("blockquote"),
		doc.TypeHorizontalRule: empty("hr"),
		doc.TypeHardBreak:      empty("br"),
		doc.TypeHeading:        heading,
		doc.TypeOrderedList: func(r *Renderer, n *doc.Node, attrs doc.Attrs) *view.Node {
			el := view.Element("ol", nil, r.children(n)...)
			if start, _ := attrs.Int("start"); start != 1 {
				el.SetAttr("start", strconv.Itoa(start))
			}
			return el
		},
		doc.TypeImage: func(_ *Renderer, _ *doc.Node, attrs doc.Attrs) *view.Node {
			return img(attrs)
		},
		doc.TypeEnhancedImage: enhancedImage,
		doc.TypeCallout:       callout,
	}
}

func container(tag string) nodeView {
	return func(r *Renderer, n *doc.Node, attrs doc.Attrs) *view.Node {
		el := view.Element(tag, nil, r.children(n)...)
		alignStyle(el, attrs)
		return el
	}
}

func empty(tag string) nodeView {
	return func(*Renderer, *doc.Node, doc.Attrs) *view.Node {
		return view.Element(tag, nil)
	}
}

func alignStyle(el *view.Node, attrs doc.Attrs) {
	if a := attrs.String("textAlign"); a != "" {
		el.SetAttr("style", "text-align: "+a)
	}
}
