package dom

import (
	"slices"

	"go.uber.org/zap"
)

// Viewport is the scrollable window as seen by interactive subsystems.
type Viewport interface {
	ScrollY() float64
	Width() float64
	Height() float64
	// ScrollTo moves viewport. Smooth scroll completes asynchronously.
	ScrollTo(y float64, smooth bool)
	OnScroll(f func()) (remove func())
	OnResize(f func()) (remove func())
	OnKey(f func(key string)) (remove func())
}

// Window implements Viewport. Host side methods (Scroll, Settle, Resize,
// Press) stand for user input.
type Window struct {
	doc     *Document
	size    Size
	scrollY float64
	target  *float64

	scroll []*listener
	resize []*listener
	keys   []*keyListener
}

type keyListener struct {
	f func(string)
}

func newWindow(d *Document, size Size) *Window {
	return &Window{doc: d, size: size}
}

func (w *Window) ScrollY() float64 { return w.scrollY }
func (w *Window) Width() float64   { return w.size.Width }
func (w *Window) Height() float64  { return w.size.Height }

func (w *Window) clamp(y float64) float64 {
	if limit := w.doc.ScrollHeight() - w.size.Height; limit > 0 {
		y = min(y, limit)
	}
	return max(y, 0)
}

func (w *Window) ScrollTo(y float64, smooth bool) {
	y = w.clamp(y)
	if smooth {
		w.target = &y
		w.doc.log.Debug("Smooth scroll started", zap.Float64("from", w.scrollY), zap.Float64("to", y))
		return
	}
	w.target = nil
	w.set(y)
}

// Pending returns target of smooth scroll in progress.
func (w *Window) Pending() (float64, bool) {
	if w.target == nil {
		return 0, false
	}
	return *w.target, true
}

// Settle completes smooth scroll in progress. Returns false when there is
// nothing to complete.
func (w *Window) Settle() bool {
	if w.target == nil {
		return false
	}
	y := *w.target
	w.target = nil
	w.set(y)
	return true
}

// Scroll is a user scroll, it interrupts smooth scroll in progress.
func (w *Window) Scroll(y float64) {
	w.target = nil
	w.set(w.clamp(y))
}

func (w *Window) set(y float64) {
	w.scrollY = y
	for _, l := range slices.Clone(w.scroll) {
		l.f()
	}
}

// Resize changes viewport dimensions and reflows layout when it depends on
// width.
func (w *Window) Resize(width, height float64) {
	w.size = Size{Width: width, Height: height}
	if r, ok := w.doc.layout.(Reflower); ok {
		r.Reflow(width)
	}
	for _, l := range slices.Clone(w.resize) {
		l.f()
	}
}

// Press delivers key press.
func (w *Window) Press(key string) {
	for _, l := range slices.Clone(w.keys) {
		l.f(key)
	}
}

func (w *Window) OnScroll(f func()) func() {
	return addListener(&w.scroll, f)
}

func (w *Window) OnResize(f func()) func() {
	return addListener(&w.resize, f)
}

func (w *Window) OnKey(f func(key string)) func() {
	l := &keyListener{f: f}
	w.keys = append(w.keys, l)
	return func() {
		w.keys = slices.DeleteFunc(w.keys, func(x *keyListener) bool { return x == l })
	}
}

// Listeners returns total number of registered window listeners.
func (w *Window) Listeners() int {
	return len(w.scroll) + len(w.resize) + len(w.keys)
}

func addListener(list *[]*listener, f func()) func() {
	l := &listener{f: f}
	*list = append(*list, l)
	return func() {
		*list = slices.DeleteFunc(*list, func(x *listener) bool { return x == l })
	}
}
