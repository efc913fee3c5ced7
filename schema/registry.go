// Package schema declares node and mark types of the document model together
// with their attribute defaults and the rules converting them to and from
// markup.
package schema

import (
	"sync"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"tripdoc/css"
	"tripdoc/doc"
)

// NodeSpec describes a node type.
type NodeSpec struct {
	Type  doc.NodeType
	Attrs []AttrSpec
	// Atom nodes own their markup subtree, its content is not recovered as
	// children.
	Atom bool
	// Inline nodes live among text leaves.
	Inline bool
	// Textblock nodes hold inline content directly.
	Textblock bool

	Match   func(e *Element) bool
	Recover func(e *Element) doc.Attrs
	// Emit returns outer element and element children should be appended to,
	// nil hole means node has no content.
	Emit func(attrs doc.Attrs) (outer, hole *etree.Element)
	// Fix restores consistency between normalized attributes.
	Fix func(attrs doc.Attrs)
}

// MarkSpec describes a mark type.
type MarkSpec struct {
	Type    doc.MarkType
	Attrs   []AttrSpec
	Recover func(e *Element) (doc.Attrs, bool)
	Emit    func(attrs doc.Attrs) *etree.Element
	Fix     func(attrs doc.Attrs)
}

// Registry holds declared node and mark types. Dispatch is total over the
// declared set, lookups of undeclared types simply report absence.
type Registry struct {
	log   *zap.Logger
	css   *css.Parser
	nodes []*NodeSpec
	marks []*MarkSpec

	nodeIdx map[doc.NodeType]*NodeSpec
	markIdx map[doc.MarkType]*MarkSpec
}

// New creates registry with all built-in types.
func New(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Registry{
		log:     log.Named("schema"),
		css:     css.NewParser(log),
		nodeIdx: make(map[doc.NodeType]*NodeSpec),
		markIdx: make(map[doc.MarkType]*MarkSpec),
	}
	for _, s := range builtinNodes() {
		r.RegisterNode(s)
	}
	for _, s := range builtinMarks() {
		r.RegisterMark(s)
	}
	return r
}

var defaultRegistry = sync.OnceValue(func() *Registry { return New(nil) })

// Default returns shared registry with built-in types and no logging.
func Default() *Registry {
	return defaultRegistry()
}

// RegisterNode adds or replaces node type. Replacement keeps original
// recovery priority.
func (r *Registry) RegisterNode(s *NodeSpec) {
	if old, ok := r.nodeIdx[s.Type]; ok {
		for i := range r.nodes {
			if r.nodes[i] == old {
				r.nodes[i] = s
			}
		}
	} else {
		r.nodes = append(r.nodes, s)
	}
	r.nodeIdx[s.Type] = s
}

// RegisterMark adds or replaces mark type.
func (r *Registry) RegisterMark(s *MarkSpec) {
	if old, ok := r.markIdx[s.Type]; ok {
		for i := range r.marks {
			if r.marks[i] == old {
				r.marks[i] = s
			}
		}
	} else {
		r.marks = append(r.marks, s)
	}
	r.markIdx[s.Type] = s
}

func (r *Registry) Node(t doc.NodeType) (*NodeSpec, bool) {
	s, ok := r.nodeIdx[t]
	return s, ok
}

func (r *Registry) Mark(t doc.MarkType) (*MarkSpec, bool) {
	s, ok := r.markIdx[t]
	return s, ok
}

// NodeTypes lists declared node types in registration order.
func (r *Registry) NodeTypes() []doc.NodeType {
	out := make([]doc.NodeType, len(r.nodes))
	for i, s := range r.nodes {
		out[i] = s.Type
	}
	return out
}

// MarkTypes lists declared mark types in registration order.
func (r *Registry) MarkTypes() []doc.MarkType {
	out := make([]doc.MarkType, len(r.marks))
	for i, s := range r.marks {
		out[i] = s.Type
	}
	return out
}

// NodeDefaults returns default attributes of node type, nil for undeclared
// types and types without attributes.
func (r *Registry) NodeDefaults(t doc.NodeType) doc.Attrs {
	if s, ok := r.nodeIdx[t]; ok {
		return r.fixNode(s, defaultAttrs(s.Attrs))
	}
	return nil
}

// MarkDefaults returns default attributes of mark type.
func (r *Registry) MarkDefaults(t doc.MarkType) doc.Attrs {
	if s, ok := r.markIdx[t]; ok {
		return r.fixMark(s, defaultAttrs(s.Attrs))
	}
	return nil
}

// NodeAttrs normalizes attributes of a node type: every declared attribute is
// present with value of declared kind, undeclared attributes are dropped.
// Attributes of undeclared types are returned unchanged.
func (r *Registry) NodeAttrs(t doc.NodeType, attrs doc.Attrs) doc.Attrs {
	s, ok := r.nodeIdx[t]
	if !ok {
		return attrs.Clone()
	}
	return r.fixNode(s, normalizeAttrs(s.Attrs, attrs))
}

// MarkAttrs normalizes attributes of a mark type.
func (r *Registry) MarkAttrs(t doc.MarkType, attrs doc.Attrs) doc.Attrs {
	s, ok := r.markIdx[t]
	if !ok {
		return attrs.Clone()
	}
	return r.fixMark(s, normalizeAttrs(s.Attrs, attrs))
}

func (r *Registry) fixNode(s *NodeSpec, attrs doc.Attrs) doc.Attrs {
	if s.Fix != nil && attrs != nil {
		s.Fix(attrs)
	}
	return attrs
}

func (r *Registry) fixMark(s *MarkSpec, attrs doc.Attrs) doc.Attrs {
	if s.Fix != nil && attrs != nil {
		s.Fix(attrs)
	}
	return attrs
}

// Normalize brings attributes of every node and mark in the tree to their
// declared shape in place. Nodes and marks of undeclared types are left alone.
func (r *Registry) Normalize(root *doc.Node) {
	root.Walk(func(n *doc.Node, _ int) bool {
		if _, ok := r.nodeIdx[n.Type]; ok {
			n.Attrs = r.NodeAttrs(n.Type, n.Attrs)
		}
		for i := range n.Marks {
			if _, ok := r.markIdx[n.Marks[i].Type]; ok {
				n.Marks[i].Attrs = r.MarkAttrs(n.Marks[i].Type, n.Marks[i].Attrs)
			}
		}
		return true
	})
}

// RecoverNode finds node type for markup element and recovers its attributes.
// Elements no declared type claims report false.
func (r *Registry) RecoverNode(n *html.Node) (*NodeSpec, doc.Attrs, bool) {
	if n == nil || n.Type != html.ElementNode {
		return nil, nil, false
	}
	e := r.inspect(n)
	for _, s := range r.nodes {
		if s.Match == nil || !s.Match(e) {
			continue
		}
		var attrs doc.Attrs
		if s.Recover != nil {
			attrs = s.Recover(e)
		}
		return s, r.fixNode(s, normalizeAttrs(s.Attrs, attrs)), true
	}
	return nil, nil, false
}

// RecoverMarks returns marks markup element stands for, in registration
// order. Single element may carry several marks, for example span with both
// color and weight declared inline.
func (r *Registry) RecoverMarks(n *html.Node) []doc.Mark {
	if n == nil || n.Type != html.ElementNode {
		return nil
	}
	e := r.inspect(n)
	var marks []doc.Mark
	for _, s := range r.marks {
		if s.Recover == nil {
			continue
		}
		attrs, ok := s.Recover(e)
		if !ok {
			continue
		}
		marks = append(marks, doc.Mark{Type: s.Type, Attrs: r.fixMark(s, normalizeAttrs(s.Attrs, attrs))})
	}
	if len(marks) > 0 {
		r.log.Debug("Recovered marks", zap.String("tag", n.Data), zap.Int("count", len(marks)))
	}
	return marks
}

// EmitNode produces markup element for node. Undeclared types and types
// without markup form report false.
func (r *Registry) EmitNode(n *doc.Node) (outer, hole *etree.Element, ok bool) {
	s, found := r.nodeIdx[n.Type]
	if !found || s.Emit == nil {
		return nil, nil, false
	}
	outer, hole = s.Emit(r.NodeAttrs(n.Type, n.Attrs))
	return outer, hole, outer != nil
}

// EmitMark produces wrapper element for mark.
func (r *Registry) EmitMark(m doc.Mark) (*etree.Element, bool) {
	s, found := r.markIdx[m.Type]
	if !found || s.Emit == nil {
		return nil, false
	}
	el := s.Emit(r.MarkAttrs(m.Type, m.Attrs))
	return el, el != nil
}
