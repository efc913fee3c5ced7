package dom

import (
	"slices"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"tripdoc/css"
)

// Event names dispatched on elements.
const (
	EventClick         = "click"
	EventTransitionEnd = "transitionend"
	EventError         = "error"
)

// Element is a page element. The same markup node always maps to the same
// Element so listeners survive repeated queries.
type Element struct {
	doc       *Document
	node      *html.Node
	listeners map[string][]*listener
}

type listener struct {
	f func()
}

func (e *Element) Node() *html.Node {
	return e.node
}

func (e *Element) Tag() string {
	return e.node.Data
}

func (e *Element) Attr(key string) (string, bool) {
	return attr(e.node, key)
}

func (e *Element) HasAttr(key string) bool {
	_, ok := attr(e.node, key)
	return ok
}

func (e *Element) SetAttr(key, val string) {
	for i, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == key {
			e.node.Attr[i].Val = val
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: key, Val: val})
}

func (e *Element) RemoveAttr(key string) {
	e.node.Attr = slices.DeleteFunc(e.node.Attr, func(a html.Attribute) bool {
		return a.Namespace == "" && a.Key == key
	})
}

func (e *Element) ID() string {
	id, _ := e.Attr("id")
	return id
}

// Style returns parsed inline style.
func (e *Element) Style() css.Declarations {
	s, _ := e.Attr("style")
	return e.doc.css.ParseInline(s)
}

// SetStyle sets inline style property, empty value removes it.
func (e *Element) SetStyle(property, value string) {
	var (
		pairs [][2]string
		found bool
	)
	for _, d := range e.Style() {
		if d.Property != property {
			pairs = append(pairs, [2]string{d.Property, d.Value.Raw})
			continue
		}
		if !found && value != "" {
			pairs = append(pairs, [2]string{property, value})
		}
		found = true
	}
	if !found && value != "" {
		pairs = append(pairs, [2]string{property, value})
	}
	if len(pairs) == 0 {
		e.RemoveAttr("style")
		return
	}
	e.SetAttr("style", css.Join(pairs...))
}

// TextContent returns concatenated text of all descendants.
func (e *Element) TextContent() string {
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
	walk(e.node)
	return sb.String()
}

func (e *Element) Parent() *Element {
	if e.node.Parent == nil || e.node.Parent.Type != html.ElementNode {
		return nil
	}
	return e.doc.wrap(e.node.Parent)
}

// Contains reports whether other is e or its descendant.
func (e *Element) Contains(other *Element) bool {
	for n := other.node; n != nil; n = n.Parent {
		if n == e.node {
			return true
		}
	}
	return false
}

func (e *Element) AppendChild(child *Element) {
	if child.node.Parent != nil {
		child.node.Parent.RemoveChild(child.node)
	}
	e.node.AppendChild(child.node)
}

// Remove detaches element from its parent.
func (e *Element) Remove() {
	if e.node.Parent != nil {
		e.node.Parent.RemoveChild(e.node)
	}
}

// Query returns first descendant matching selector or nil.
func (e *Element) Query(selector string) (*Element, error) {
	sel, err := compile(selector)
	if err != nil {
		return nil, err
	}
	return e.doc.wrap(cascadia.Query(e.node, sel)), nil
}

// QueryAll returns descendants matching selector in document order.
func (e *Element) QueryAll(selector string) ([]*Element, error) {
	sel, err := compile(selector)
	if err != nil {
		return nil, err
	}
	nodes := cascadia.QueryAll(e.node, sel)
	out := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, e.doc.wrap(n))
	}
	return out, nil
}

// Box is the layout box in document coordinates.
func (e *Element) Box() Rect {
	return e.doc.layout.Box(e.node)
}

func (e *Element) OffsetTop() float64 {
	return e.Box().Y
}

func (e *Element) OffsetHeight() float64 {
	return e.Box().Height
}

// Rect is the bounding box relative to the viewport.
func (e *Element) Rect() Rect {
	return e.Box().Translate(0, -e.doc.win.ScrollY())
}

// On registers event listener. Returned function removes it.
func (e *Element) On(event string, f func()) func() {
	if e.listeners == nil {
		e.listeners = make(map[string][]*listener)
	}
	l := &listener{f: f}
	e.listeners[event] = append(e.listeners[event], l)
	return func() {
		e.listeners[event] = slices.DeleteFunc(e.listeners[event], func(x *listener) bool { return x == l })
	}
}

func (e *Element) OnClick(f func()) func() {
	return e.On(EventClick, f)
}

// Dispatch runs listeners registered for event on this element. Events do
// not bubble. Returns number of listeners run.
func (e *Element) Dispatch(event string) int {
	ls := slices.Clone(e.listeners[event])
	for _, l := range ls {
		l.f()
	}
	return len(ls)
}

func (e *Element) Click() int {
	return e.Dispatch(EventClick)
}

// Listeners returns number of listeners registered for event.
func (e *Element) Listeners(event string) int {
	return len(e.listeners[event])
}
