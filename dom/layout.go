package dom

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Rect is a box in CSS pixels.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

func (r Rect) Top() float64    { return r.Y }
func (r Rect) Left() float64   { return r.X }
func (r Rect) Bottom() float64 { return r.Y + r.Height }
func (r Rect) Right() float64  { return r.X + r.Width }

// Translate returns rect moved by dx, dy.
func (r Rect) Translate(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Center returns coordinates of rect center.
func (r Rect) Center() (float64, float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Empty reports whether rect has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Layout computes element boxes in document coordinates.
type Layout interface {
	Box(n *html.Node) Rect
}

// Reflower is implemented by layouts that depend on viewport width.
type Reflower interface {
	Reflow(width float64)
}

// AttrLayout takes geometry from data-left, data-top, data-width and
// data-height attributes. Missing values are zero.
type AttrLayout struct{}

func (AttrLayout) Box(n *html.Node) Rect {
	return Rect{
		X:      numAttr(n, "data-left"),
		Y:      numAttr(n, "data-top"),
		Width:  numAttr(n, "data-width"),
		Height: numAttr(n, "data-height"),
	}
}

func numAttr(n *html.Node, key string) float64 {
	v, ok := attr(n, key)
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(v), "px"), 64)
	if err != nil {
		return 0
	}
	return f
}

// FlowLayout stacks block elements top to bottom with fixed text metrics.
// It is crude but deterministic, enough to drive scroll tracking from the
// command line.
type FlowLayout struct {
	Width       float64
	LineHeight  float64
	CharWidth   float64
	Gap         float64
	ImageHeight float64

	boxes map[*html.Node]Rect
	root  *html.Node
}

// NewFlowLayout creates layout with typical prose metrics.
func NewFlowLayout(width float64) *FlowLayout {
	return &FlowLayout{
		Width:       width,
		LineHeight:  24,
		CharWidth:   8,
		Gap:         16,
		ImageHeight: 320,
	}
}

func (l *FlowLayout) Reflow(width float64) {
	l.Width = width
	l.boxes = nil
}

func (l *FlowLayout) Box(n *html.Node) Rect {
	root := n
	for root.Parent != nil {
		root = root.Parent
	}
	if l.boxes == nil || l.root != root {
		l.boxes = make(map[*html.Node]Rect)
		l.root = root
		l.block(root, 0, 0, l.Width)
	}
	return l.boxes[n]
}

var blockElements = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Body: true, atom.Dd: true, atom.Div: true, atom.Dl: true, atom.Dt: true,
	atom.Figcaption: true, atom.Figure: true, atom.Footer: true, atom.Form: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Header: true, atom.Hr: true, atom.Html: true, atom.Li: true, atom.Main: true,
	atom.Nav: true, atom.Ol: true, atom.P: true, atom.Pre: true, atom.Section: true,
	atom.Table: true, atom.Ul: true,
}

func isBlock(n *html.Node) bool {
	return n.Type == html.DocumentNode || n.Type == html.ElementNode && blockElements[n.DataAtom]
}

func hasBlockChildren(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isBlock(c) {
			return true
		}
	}
	return false
}

// block lays out n at y and returns its height.
func (l *FlowLayout) block(n *html.Node, x, y, width float64) float64 {
	var h float64
	switch {
	case n.Type == html.ElementNode && n.DataAtom == atom.Hr:
		h = 1
	case n.Type == html.ElementNode && n.DataAtom == atom.Head:
		return 0
	case hasBlockChildren(n):
		cur := y
		var run []*html.Node
		flush := func() {
			if len(run) == 0 {
				return
			}
			if h := l.inline(run, x, cur, width, l.LineHeight); h > 0 {
				cur += h + l.Gap
			}
			run = run[:0]
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !isBlock(c) {
				run = append(run, c)
				continue
			}
			flush()
			indent := 0.0
			if c.DataAtom == atom.Ul || c.DataAtom == atom.Ol || c.DataAtom == atom.Blockquote {
				indent = 24
			}
			if ch := l.block(c, x+indent, cur, width-indent); ch > 0 {
				cur += ch + l.Gap
			}
		}
		flush()
		h = max(cur-y-l.Gap, 0)
	default:
		lh := l.LineHeight
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.H1, atom.H2:
				lh *= 1.5
			case atom.H3, atom.H4:
				lh *= 1.25
			}
		}
		var kids []*html.Node
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			kids = append(kids, c)
		}
		h = l.inline(kids, x, y, width, lh)
	}
	if n.Type == html.ElementNode {
		l.boxes[n] = Rect{X: x, Y: y, Width: width, Height: h}
	}
	return h
}

// inline lays out run of inline nodes as text lines followed by images.
// Inline elements share the box of the whole run.
func (l *FlowLayout) inline(nodes []*html.Node, x, y, width, lh float64) float64 {
	var (
		chars  int
		images []*html.Node
		inline []*html.Node
	)
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			chars += utf8.RuneCountInString(strings.Join(strings.Fields(n.Data), " "))
		case html.ElementNode:
			if n.DataAtom == atom.Img {
				images = append(images, n)
				return
			}
			inline = append(inline, n)
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	if chars == 0 && len(images) == 0 {
		return 0
	}

	var h float64
	if chars > 0 {
		perLine := max(math.Floor(width/l.CharWidth), 1)
		h = math.Ceil(float64(chars)/perLine) * lh
	}
	for _, img := range images {
		w, ih := width, l.ImageHeight
		if aw, ah := numAttr(img, "width"), numAttr(img, "height"); aw > 0 && ah > 0 {
			w = min(aw, width)
			ih = ah * w / aw
		}
		l.boxes[img] = Rect{X: x, Y: y + h, Width: w, Height: ih}
		h += ih
	}
	for _, n := range inline {
		l.boxes[n] = Rect{X: x, Y: y, Width: width, Height: h}
	}
	return h
}
