// Package doc defines the canonical document tree: an ordered tree of typed
// nodes rooted at a single document node, with marks decorating text leaves.
package doc

import (
	"strings"
)

// NodeType names a kind of node. Unknown values are allowed in the tree, every
// consumer is expected to treat them leniently.
type NodeType string

const (
	TypeDoc            NodeType = "doc"
	TypeParagraph      NodeType = "paragraph"
	TypeHeading        NodeType = "heading"
	TypeBulletList     NodeType = "bulletList"
	TypeOrderedList    NodeType = "orderedList"
	TypeListItem       NodeType = "listItem"
	TypeBlockquote     NodeType = "blockquote"
	TypeHorizontalRule NodeType = "horizontalRule"
	TypeHardBreak      NodeType = "hardBreak"
	TypeImage          NodeType = "image"
	TypeEnhancedImage  NodeType = "enhancedImage"
	TypeCallout        NodeType = "callout"
	TypeText           NodeType = "text"
)

// MarkType names a kind of inline decoration.
type MarkType string

const (
	MarkBold           MarkType = "bold"
	MarkItalic         MarkType = "italic"
	MarkUnderline      MarkType = "underline"
	MarkStrike         MarkType = "strike"
	MarkSubscript      MarkType = "subscript"
	MarkSuperscript    MarkType = "superscript"
	MarkLink           MarkType = "link"
	MarkTextStyle      MarkType = "textStyle"
	MarkFontWeight     MarkType = "fontWeight"
	MarkTextDecoration MarkType = "textDecoration"
)

// Mark is a composable inline decoration. Marks on a leaf are applied in list
// order, first one ends up innermost.
type Mark struct {
	Type  MarkType `json:"type"`
	Attrs Attrs    `json:"attrs,omitempty"`
}

// Node is one element of the canonical tree. Text is only meaningful for text
// leaves, Marks only for leaves.
type Node struct {
	Type     NodeType `json:"type"`
	Attrs    Attrs    `json:"attrs,omitempty"`
	Children []*Node  `json:"children,omitempty"`
	Marks    []Mark   `json:"marks,omitempty"`
	Text     string   `json:"text,omitempty"`
}

// New creates node of requested type with children.
func New(typ NodeType, attrs Attrs, children ...*Node) *Node {
	return &Node{Type: typ, Attrs: attrs, Children: children}
}

// NewDoc creates document root.
func NewDoc(children ...*Node) *Node {
	return New(TypeDoc, nil, children...)
}

// NewText creates text leaf decorated with marks in the given order.
func NewText(text string, marks ...Mark) *Node {
	return &Node{Type: TypeText, Text: text, Marks: marks}
}

// IsLeaf reports whether node has no children.
func (n *Node) IsLeaf() bool {
	return n != nil && len(n.Children) == 0
}

// HasMark reports whether leaf carries mark of requested type.
func (n *Node) HasMark(typ MarkType) bool {
	return n.MarkIndex(typ) >= 0
}

// MarkIndex returns position of the first mark of requested type or -1.
func (n *Node) MarkIndex(typ MarkType) int {
	if n == nil {
		return -1
	}
	for i := range n.Marks {
		if n.Marks[i].Type == typ {
			return i
		}
	}
	return -1
}

// Walk visits node and all its descendants depth first in document order.
// Returning false from fn skips node's children.
func (n *Node) Walk(fn func(n *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(n *Node, depth int) bool, depth int) {
	if n == nil || !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// PlainText returns concatenated text of all leaves. Block boundaries and hard
// breaks are separated by a single space.
func (n *Node) PlainText() string {
	var parts []string
	var cur strings.Builder
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			parts = append(parts, s)
		}
		cur.Reset()
	}
	n.Walk(func(node *Node, _ int) bool {
		switch node.Type {
		case TypeText:
			cur.WriteString(node.Text)
		case TypeHardBreak:
			flush()
		default:
			if len(node.Children) > 0 {
				flush()
			}
		}
		return true
	})
	flush()
	return strings.Join(parts, " ")
}

// Clone makes deep copy of the tree so that copies never share children.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{
		Type:  n.Type,
		Attrs: n.Attrs.Clone(),
		Text:  n.Text,
	}
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	if n.Marks != nil {
		c.Marks = make([]Mark, len(n.Marks))
		for i, m := range n.Marks {
			c.Marks[i] = Mark{Type: m.Type, Attrs: m.Attrs.Clone()}
		}
	}
	return c
}

// Equal compares two trees structurally, attributes are compared with
// numeric tolerance.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Type != b.Type || a.Text != b.Text || !a.Attrs.Equal(b.Attrs) || !MarksEqual(a.Marks, b.Marks) {
		return false
	}
	if len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}
