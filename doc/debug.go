package doc

import (
	"tripdoc/utils/debug"
)

type treeWriter struct {
	*debug.TreeWriter
}

// String returns a readable tree for manual inspection and debug reports.
func (n *Node) String() string {
	if n == nil {
		return "<nil Node>"
	}
	return treeWriter{debug.NewTreeWriter()}.node(n, 0).String()
}

func (tw treeWriter) node(n *Node, depth int) treeWriter {
	tw.Line(depth, "%s", n.Type)
	tw.Attrs(depth+1, "attrs", n.Attrs)
	for i, m := range n.Marks {
		tw.Line(depth+1, "mark[%d] %s", i, m.Type)
		tw.Attrs(depth+2, "attrs", m.Attrs)
	}
	if n.Type == TypeText {
		tw.TextBlock(depth+1, "text", n.Text)
	}
	for _, c := range n.Children {
		tw.node(c, depth+1)
	}
	return tw
}
