// Package gallery turns images of the rendered content region into a
// zoomable overlay gallery with keyboard navigation.
package gallery

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"tripdoc/clock"
	"tripdoc/config"
	"tripdoc/dom"
)

// State of the overlay.
type State int

const (
	Closed State = iota
	Zooming
	Open
	Transitioning
	Closing
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Zooming:
		return "zooming"
	case Open:
		return "open"
	case Transitioning:
		return "transitioning"
	case Closing:
		return "closing"
	default:
		return "unknown"
	}
}

// Markers placed on discovered and overlay elements.
const (
	IndexAttr   = "data-gallery-index"
	ErrorAttr   = "data-gallery-error"
	OverlayAttr = "data-gallery-overlay"
)

// Image is a discovered gallery image in encounter order.
type Image struct {
	Src     string
	Alt     string
	Rect    dom.Rect
	Element *dom.Element
	Failed  bool
}

// ErrNoRegion is returned when selector matches nothing.
var ErrNoRegion = errors.New("content region not found")

// Gallery is mounted image overlay. All methods must be called from the
// scheduler goroutine.
type Gallery struct {
	log   *zap.Logger
	cfg   config.GalleryConfig
	sched clock.Scheduler
	page  dom.Page
	vp    dom.Viewport

	selector string
	key      string

	images  []Image
	overlay *dom.Element
	frame   *dom.Element

	state  State
	index  int
	origin dom.Rect
	box    dom.Rect

	timers    []clock.Timer
	closeDone bool
	removers  []func()
	imgOff    []func()
	onChange  func(State, int)
	mounted   bool
}

// Mount discovers images inside region matched by selector and attaches
// click handlers to them.
func Mount(page dom.Page, selector string, cfg config.GalleryConfig, sched clock.Scheduler, log *zap.Logger) (*Gallery, error) {
	if log == nil {
		log = zap.NewNop()
	}
	region, err := page.Query(selector)
	if err != nil {
		return nil, fmt.Errorf("unable to mount gallery: %w", err)
	}
	if region == nil {
		return nil, fmt.Errorf("unable to mount gallery on %q: %w", selector, ErrNoRegion)
	}

	g := &Gallery{
		log:   log.Named("gallery"),
		cfg:   cfg,
		sched: sched,
		page:  page,
		vp:    page.Viewport(),
		index: -1,

		selector: selector,
	}
	if err := g.discover(region); err != nil {
		return nil, err
	}

	g.overlay = page.CreateElement("div")
	g.overlay.SetAttr(OverlayAttr, "")
	g.overlay.SetAttr("role", "dialog")
	g.overlay.SetAttr("aria-modal", "true")
	g.overlay.SetStyle("display", "none")
	g.overlay.SetAttr("data-state", Closed.String())
	g.frame = page.CreateElement("img")
	g.overlay.AppendChild(g.frame)
	page.Body().AppendChild(g.overlay)

	g.removers = append(g.removers,
		g.vp.OnKey(g.handleKey),
		g.overlay.On(dom.EventTransitionEnd, g.finishClose),
		g.overlay.OnClick(func() { g.Close() }),
	)
	g.mounted = true
	g.log.Debug("Gallery mounted", zap.Int("images", len(g.images)))
	return g, nil
}

func (g *Gallery) discover(region *dom.Element) error {
	elems, err := region.QueryAll("img")
	if err != nil {
		return fmt.Errorf("unable to collect images: %w", err)
	}
	for _, e := range elems {
		if e.HasAttr(g.cfg.IgnoreMarker) {
			continue
		}
		i := len(g.images)
		src, _ := e.Attr("src")
		alt, _ := e.Attr("alt")
		g.images = append(g.images, Image{Src: src, Alt: alt, Rect: e.Rect(), Element: e})

		e.SetAttr(IndexAttr, strconv.Itoa(i))
		e.SetStyle("cursor", "zoom-in")
		g.imgOff = append(g.imgOff,
			e.OnClick(func() { g.handleImageClick(i) }),
			e.On(dom.EventError, func() { g.ImageFailed(i) }),
		)
	}
	return nil
}

// release detaches image listeners and clears markers placed by discover.
func (g *Gallery) release() {
	for _, remove := range g.imgOff {
		remove()
	}
	g.imgOff = nil
	for _, img := range g.images {
		img.Element.RemoveAttr(IndexAttr)
		img.Element.RemoveAttr(ErrorAttr)
		img.Element.SetStyle("cursor", "")
	}
	g.images = nil
}

// OnChange registers callback invoked on every state change.
func (g *Gallery) OnChange(f func(State, int)) {
	g.onChange = f
}

func (g *Gallery) Images() []Image       { return g.images }
func (g *Gallery) State() State          { return g.state }
func (g *Gallery) Overlay() *dom.Element { return g.overlay }

// Index returns index of displayed image, -1 when closed.
func (g *Gallery) Index() int {
	return g.index
}

// Box returns current overlay image box in viewport coordinates.
func (g *Gallery) Box() dom.Rect {
	return g.box
}

// Visible reports whether overlay is shown.
func (g *Gallery) Visible() bool {
	return g.mounted && !g.overlay.Style().Has("display")
}

// Select handles thumbnail click: opens gallery when closed, switches image
// when open.
func (g *Gallery) Select(i int) bool {
	if !g.mounted || i < 0 || i >= len(g.images) {
		return false
	}
	switch g.state {
	case Closed:
		g.open(i)
		return true
	case Open:
		return g.switchTo(i)
	}
	return false
}

// SwitchImage moves by delta with wraparound. Ignored unless open.
func (g *Gallery) SwitchImage(delta int) bool {
	if !g.mounted || g.state != Open {
		return false
	}
	n := len(g.images)
	return g.switchTo(((g.index+delta)%n + n) % n)
}

// Close shrinks overlay back to the origin image. Refused when closed or
// in the middle of a transition.
func (g *Gallery) Close() bool {
	if !g.mounted || g.state != Open {
		return false
	}
	g.cancelTimers()
	g.closeDone = false
	g.origin = g.images[g.index].Element.Rect()
	g.setState(Closing)
	g.setBox(g.origin, g.transition("transform", g.cfg.ZoomDuration))
	g.after(g.cfg.CloseFallback, g.finishClose)
	return true
}

// ImageFailed records load failure of image i. There is no retry.
func (g *Gallery) ImageFailed(i int) {
	if i < 0 || i >= len(g.images) || g.images[i].Failed {
		return
	}
	g.images[i].Failed = true
	g.images[i].Element.SetAttr(ErrorAttr, "")
	if g.index == i && g.state != Closed {
		g.frame.SetAttr(ErrorAttr, "")
	}
	g.log.Warn("Image failed to load", zap.Int("index", i), zap.String("src", g.images[i].Src))
}

// SetContentKey rediscovers images when content identity changes. Open
// overlay is dropped without animation. Returns true when rescan happened.
func (g *Gallery) SetContentKey(key string) (bool, error) {
	if !g.mounted || key == g.key {
		return false, nil
	}
	g.key = key
	g.cancelTimers()
	g.closeDone = false
	g.overlay.SetStyle("display", "none")
	g.frame.RemoveAttr(ErrorAttr)
	g.reset()
	g.release()

	region, err := g.page.Query(g.selector)
	if err != nil {
		return true, fmt.Errorf("unable to rescan gallery: %w", err)
	}
	if region == nil {
		return true, fmt.Errorf("unable to rescan gallery on %q: %w", g.selector, ErrNoRegion)
	}
	if err := g.discover(region); err != nil {
		return true, err
	}
	g.log.Debug("Gallery rescanned", zap.String("key", key), zap.Int("images", len(g.images)))
	return true, nil
}

// Unmount removes listeners and markers, cancels timers and detaches overlay.
func (g *Gallery) Unmount() {
	if !g.mounted {
		return
	}
	g.cancelTimers()
	for _, remove := range g.removers {
		remove()
	}
	g.removers = nil
	g.release()
	g.overlay.Remove()
	g.mounted = false
}

func (g *Gallery) handleImageClick(i int) {
	switch g.state {
	case Closed:
		g.open(i)
	case Open:
		if i != g.index {
			g.rezoom(i)
		}
	}
}

func (g *Gallery) handleKey(key string) {
	if g.state != Open {
		return
	}
	switch key {
	case "Escape":
		g.Close()
	case "ArrowLeft":
		g.SwitchImage(-1)
	case "ArrowRight":
		g.SwitchImage(1)
	}
}

func (g *Gallery) open(i int) {
	g.cancelTimers()
	g.index = i
	g.origin = g.images[i].Element.Rect()
	g.show(i)
	g.setState(Zooming)
	g.setBox(g.origin, "none")

	g.frameTimer(func() {
		g.setBox(g.fit(g.origin), g.transition("transform", g.cfg.ZoomDuration))
		g.after(g.cfg.ZoomDuration, func() { g.setState(Open) })
	})
}

// rezoom shrinks toward another in-content image and reopens from it.
func (g *Gallery) rezoom(i int) {
	g.cancelTimers()
	g.setState(Transitioning)
	g.setBox(g.images[i].Element.Rect(), g.transition("transform", g.cfg.ZoomDuration))
	g.after(g.cfg.ZoomDuration, func() { g.open(i) })
}

func (g *Gallery) switchTo(i int) bool {
	if i == g.index {
		return false
	}
	g.cancelTimers()
	g.setState(Transitioning)
	fade := g.transition("opacity", g.cfg.FadeDuration)
	g.frame.SetStyle("transition", fade)
	g.frame.SetStyle("opacity", "0")

	g.after(g.cfg.FadeDuration, func() {
		g.index = i
		g.origin = g.images[i].Element.Rect()
		g.show(i)
		g.setBox(g.fit(g.origin), fade)
		g.frame.SetStyle("opacity", "1")
		g.after(g.cfg.FadeDuration, func() { g.setState(Open) })
	})
	return true
}

// finishClose runs on the first of transition end and fallback timer.
func (g *Gallery) finishClose() {
	if g.state != Closing || g.closeDone {
		return
	}
	g.closeDone = true
	g.cancelTimers()
	g.overlay.SetStyle("display", "none")

	e := g.images[g.index].Element
	if r := e.Rect(); r.Top() >= 0 && r.Bottom() <= g.vp.Height() {
		g.reset()
		return
	}
	box := e.Box()
	g.vp.ScrollTo(box.Y-(g.vp.Height()-box.Height)/2, true)
	g.after(g.cfg.ScrollSettle, g.reset)
}

func (g *Gallery) reset() {
	g.index = -1
	g.origin = dom.Rect{}
	g.box = dom.Rect{}
	g.setState(Closed)
}

func (g *Gallery) show(i int) {
	img := g.images[i]
	g.frame.SetAttr("src", img.Src)
	g.frame.SetAttr("alt", img.Alt)
	if img.Failed {
		g.frame.SetAttr(ErrorAttr, "")
	} else {
		g.frame.RemoveAttr(ErrorAttr)
	}
	g.frame.SetStyle("opacity", "1")
	g.overlay.SetStyle("display", "")
}

// fit returns centered box limited by viewport fraction preserving aspect
// ratio of r.
func (g *Gallery) fit(r dom.Rect) dom.Rect {
	maxW := g.vp.Width() * g.cfg.MaxViewportFraction
	maxH := g.vp.Height() * g.cfg.MaxViewportFraction
	w, h := maxW, maxH
	if !r.Empty() {
		scale := min(maxW/r.Width, maxH/r.Height)
		w, h = r.Width*scale, r.Height*scale
	}
	return dom.Rect{X: (g.vp.Width() - w) / 2, Y: (g.vp.Height() - h) / 2, Width: w, Height: h}
}

func (g *Gallery) setBox(r dom.Rect, transition string) {
	g.box = r
	g.frame.SetStyle("transition", transition)
	g.frame.SetStyle("left", px(r.X))
	g.frame.SetStyle("top", px(r.Y))
	g.frame.SetStyle("width", px(r.Width))
	g.frame.SetStyle("height", px(r.Height))
}

func (g *Gallery) transition(property string, d time.Duration) string {
	return property + " " + strconv.FormatInt(d.Milliseconds(), 10) + "ms " + g.cfg.Easing
}

func (g *Gallery) setState(s State) {
	if g.state == s {
		return
	}
	g.log.Debug("State changed", zap.Stringer("from", g.state), zap.Stringer("to", s), zap.Int("index", g.index))
	g.state = s
	g.overlay.SetAttr("data-state", s.String())
	if g.onChange != nil {
		g.onChange(s, g.index)
	}
}

func (g *Gallery) after(d time.Duration, f func()) {
	g.timers = append(g.timers, g.sched.AfterFunc(d, f))
}

func (g *Gallery) frameTimer(f func()) {
	g.timers = append(g.timers, g.sched.NextFrame(f))
}

func (g *Gallery) cancelTimers() {
	for _, t := range g.timers {
		t.Stop()
	}
	g.timers = g.timers[:0]
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}
