// Package dom is a headless rendition of the rendered page: a markup tree
// with injectable geometry, a scrollable viewport and synchronous event
// dispatch. Interactive subsystems are written against it instead of a
// browser.
package dom

import (
	"fmt"
	"io"

	"github.com/andybalholm/cascadia"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"tripdoc/css"
	"tripdoc/view"
)

// Page is what interactive subsystems mount on.
type Page interface {
	// Query returns first element matching selector or nil.
	Query(selector string) (*Element, error)
	Body() *Element
	CreateElement(tag string) *Element
	Viewport() Viewport
}

// Size is viewport dimensions.
type Size struct {
	Width, Height float64
}

// Document implements Page over x/net/html tree.
type Document struct {
	log    *zap.Logger
	root   *html.Node
	body   *html.Node
	layout Layout
	css    *css.Parser
	win    *Window
	elems  map[*html.Node]*Element
}

// New wraps existing markup tree. When layout is nil AttrLayout is used.
func New(root *html.Node, layout Layout, size Size, log *zap.Logger) *Document {
	if log == nil {
		log = zap.NewNop()
	}
	if layout == nil {
		layout = AttrLayout{}
	}
	d := &Document{
		log:    log.Named("dom"),
		root:   root,
		layout: layout,
		css:    css.NewParser(log),
		elems:  make(map[*html.Node]*Element),
	}
	d.body = findBody(root)
	d.win = newWindow(d, size)
	if r, ok := layout.(Reflower); ok {
		r.Reflow(size.Width)
	}
	return d
}

// Parse reads HTML document.
func Parse(r io.Reader, layout Layout, size Size, log *zap.Logger) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("unable to parse page: %w", err)
	}
	return New(root, layout, size, log), nil
}

// FromView places rendered view tree into the body of an empty page.
func FromView(v *view.Node, layout Layout, size Size, log *zap.Logger) *Document {
	root := &html.Node{Type: html.DocumentNode}
	htmlEl := newNode("html")
	body := newNode("body")
	root.AppendChild(htmlEl)
	htmlEl.AppendChild(newNode("head"))
	htmlEl.AppendChild(body)
	for _, n := range v.ToHTML() {
		body.AppendChild(n)
	}
	return New(root, layout, size, log)
}

func newNode(tag string) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
}

func findBody(root *html.Node) *html.Node {
	if root.Type == html.ElementNode {
		return root
	}
	if n := cascadia.Query(root, cascadia.MustCompile("body")); n != nil {
		return n
	}
	return root
}

// Root returns underlying markup tree.
func (d *Document) Root() *html.Node {
	return d.root
}

func (d *Document) Body() *Element {
	return d.wrap(d.body)
}

func (d *Document) Viewport() Viewport {
	return d.win
}

// Window returns viewport with host side controls.
func (d *Document) Window() *Window {
	return d.win
}

func (d *Document) Query(selector string) (*Element, error) {
	return d.wrap(d.root).Query(selector)
}

func (d *Document) QueryAll(selector string) ([]*Element, error) {
	return d.wrap(d.root).QueryAll(selector)
}

// CreateElement creates detached element.
func (d *Document) CreateElement(tag string) *Element {
	return d.wrap(newNode(tag))
}

// ScrollHeight is the bottom of the lowest box in the document.
func (d *Document) ScrollHeight() float64 {
	var h float64
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			h = max(h, d.layout.Box(n).Bottom())
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.root)
	return h
}

func (d *Document) wrap(n *html.Node) *Element {
	if n == nil {
		return nil
	}
	if e, ok := d.elems[n]; ok {
		return e
	}
	e := &Element{doc: d, node: n}
	d.elems[n] = e
	return e
}

func compile(selector string) (cascadia.SelectorGroup, error) {
	sel, err := cascadia.ParseGroup(selector)
	if err != nil {
		return nil, fmt.Errorf("bad selector %q: %w", selector, err)
	}
	return sel, nil
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
