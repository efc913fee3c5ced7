// Package toc tracks headings of the rendered content region and keeps
// the active table of contents entry in sync with scroll position.
package toc

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"go.uber.org/zap"

	"tripdoc/clock"
	"tripdoc/config"
	"tripdoc/dom"
	"tripdoc/render"
	"tripdoc/schema"
)

const headingSelector = "h1, h2, h3, h4, h5, h6"

// State of the tracker.
type State int

const (
	Scanning State = iota
	Tracking
	Locked
)

func (s State) String() string {
	switch s {
	case Scanning:
		return "scanning"
	case Tracking:
		return "tracking"
	case Locked:
		return "locked"
	default:
		return "unknown"
	}
}

// Direction of the last scroll movement.
type Direction int

const (
	Down Direction = iota
	Up
)

func (d Direction) String() string {
	if d == Up {
		return "up"
	}
	return "down"
}

// Heading is a heading found during scan.
type Heading struct {
	Text      string
	Level     int
	ID        string
	Index     int
	OffsetTop float64
	Height    float64
	Element   *dom.Element
}

// Item is a node of the table of contents hierarchy.
type Item struct {
	Text     string
	Level    int
	Index    int
	ID       string
	Children []*Item
}

// ErrNoRegion is returned when selector matches nothing.
var ErrNoRegion = errors.New("content region not found")

// TOC is mounted table of contents tracker. All methods must be called from
// the scheduler goroutine.
type TOC struct {
	log      *zap.Logger
	cfg      config.TOCConfig
	sched    clock.Scheduler
	page     dom.Page
	vp       dom.Viewport
	selector string

	region   *dom.Element
	headings []Heading
	items    []*Item
	active   int

	state      State
	direction  Direction
	lastScroll float64
	lockTarget float64
	throttle   clock.Timer
	unlock     clock.Timer

	key      string
	removers []func()
	onChange func(index int)
	mounted  bool
}

// Mount scans region matched by selector and starts tracking scroll
// position.
func Mount(page dom.Page, selector string, cfg config.TOCConfig, sched clock.Scheduler, log *zap.Logger) (*TOC, error) {
	if log == nil {
		log = zap.NewNop()
	}
	t := &TOC{
		log:      log.Named("toc"),
		cfg:      cfg,
		sched:    sched,
		page:     page,
		vp:       page.Viewport(),
		selector: selector,
		active:   -1,
	}
	if err := t.scan(); err != nil {
		return nil, err
	}
	t.lastScroll = t.vp.ScrollY()
	t.removers = append(t.removers,
		t.vp.OnScroll(t.handleScroll),
		t.vp.OnResize(t.handleResize),
	)
	t.mounted = true
	return t, nil
}

// OnChange registers callback invoked when active heading changes.
func (t *TOC) OnChange(f func(index int)) {
	t.onChange = f
}

func (t *TOC) Items() []*Item       { return t.items }
func (t *TOC) Headings() []Heading  { return t.headings }
func (t *TOC) State() State         { return t.state }
func (t *TOC) Direction() Direction { return t.direction }

// Active returns index of active heading, -1 when there are no headings.
func (t *TOC) Active() int {
	return t.active
}

// SetContentKey rescans headings when content identity changes. Returns
// true when rescan happened.
func (t *TOC) SetContentKey(key string) (bool, error) {
	if !t.mounted || key == t.key {
		return false, nil
	}
	t.key = key
	return true, t.scan()
}

// Navigate scrolls to heading with index and suspends tracking until the
// scroll settles or lock window expires.
func (t *TOC) Navigate(index int) error {
	if !t.mounted {
		return nil
	}
	i := slices.IndexFunc(t.headings, func(h Heading) bool { return h.Index == index })
	if i < 0 {
		return fmt.Errorf("no heading with index %d", index)
	}
	target := t.headings[i].OffsetTop

	t.throttle = clock.Stop(t.throttle)
	t.unlock = clock.Stop(t.unlock)
	t.state = Locked
	t.lockTarget = target
	t.unlock = t.sched.AfterFunc(t.cfg.LockWindow, func() {
		t.unlock = nil
		t.release("timeout")
	})
	t.setActive(index)
	t.vp.ScrollTo(target, true)
	t.log.Debug("Navigating", zap.Int("index", index), zap.Float64("target", target))
	return nil
}

// Unmount removes listeners and cancels pending timers.
func (t *TOC) Unmount() {
	if !t.mounted {
		return
	}
	for _, remove := range t.removers {
		remove()
	}
	t.removers = nil
	t.throttle = clock.Stop(t.throttle)
	t.unlock = clock.Stop(t.unlock)
	t.mounted = false
}

func (t *TOC) scan() error {
	t.state = Scanning
	t.throttle = clock.Stop(t.throttle)
	t.unlock = clock.Stop(t.unlock)

	region, err := t.page.Query(t.selector)
	if err != nil {
		return fmt.Errorf("unable to mount table of contents: %w", err)
	}
	if region == nil {
		return fmt.Errorf("unable to mount table of contents on %q: %w", t.selector, ErrNoRegion)
	}
	t.region = region

	elems, err := region.QueryAll(headingSelector)
	if err != nil {
		return fmt.Errorf("unable to collect headings: %w", err)
	}

	anchors := render.NewAnchors()
	for _, e := range elems {
		anchors.Reserve(e.ID())
	}
	headings := make([]Heading, 0, len(elems))
	for i, e := range elems {
		text := strings.Join(strings.Fields(e.TextContent()), " ")
		id := e.ID()
		if id == "" {
			id = anchors.Make(text)
			e.SetAttr("id", id)
		}
		box := e.Box()
		headings = append(headings, Heading{
			Text:      text,
			Level:     schema.HeadingLevel(e.Tag()),
			ID:        id,
			Index:     i,
			OffsetTop: box.Y,
			Height:    box.Height,
			Element:   e,
		})
	}
	slices.SortStableFunc(headings, func(a, b Heading) int {
		return cmp.Compare(a.OffsetTop, b.OffsetTop)
	})
	for i := 1; i < len(headings); i++ {
		if headings[i].Index < headings[i-1].Index {
			t.log.Warn("Heading geometry does not follow document order",
				zap.String("heading", headings[i].Text), zap.Float64("offset", headings[i].OffsetTop))
			break
		}
	}

	t.headings = headings
	t.items = Nest(headings)
	t.active = -1
	if len(headings) > 0 {
		t.setActive(headings[0].Index)
	}
	t.state = Tracking
	t.log.Debug("Headings scanned", zap.Int("count", len(headings)))
	return nil
}

// Nest builds hierarchy from headings ordered by offset. Heading nests
// under nearest preceding heading of smaller level.
func Nest(headings []Heading) []*Item {
	var (
		roots []*Item
		stack []*Item
	)
	for _, h := range headings {
		item := &Item{Text: h.Text, Level: h.Level, Index: h.Index, ID: h.ID}
		for len(stack) > 0 && stack[len(stack)-1].Level >= h.Level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, item)
		} else {
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, item)
		}
		stack = append(stack, item)
	}
	return roots
}

func (t *TOC) handleScroll() {
	y := t.vp.ScrollY()
	if y > t.lastScroll {
		t.direction = Down
	} else {
		t.direction = Up
	}
	t.lastScroll = y

	if t.state == Locked {
		if math.Abs(y-t.lockTarget) <= t.cfg.SettleTolerance {
			t.unlock = clock.Stop(t.unlock)
			t.release("settled")
		}
		return
	}
	t.schedule()
}

func (t *TOC) handleResize() {
	for i := range t.headings {
		box := t.headings[i].Element.Box()
		t.headings[i].OffsetTop, t.headings[i].Height = box.Y, box.Height
	}
	if t.state == Tracking {
		t.schedule()
	}
}

// schedule arms trailing throttle timer, calls within window coalesce.
func (t *TOC) schedule() {
	if t.throttle != nil {
		return
	}
	t.throttle = t.sched.AfterFunc(t.cfg.Throttle, func() {
		t.throttle = nil
		if t.state == Tracking {
			t.recompute()
		}
	})
}

func (t *TOC) release(reason string) {
	if t.state != Locked {
		return
	}
	t.state = Tracking
	t.log.Debug("Lock released", zap.String("reason", reason))
}

func (t *TOC) recompute() {
	if i, ok := Pick(t.headings, t.vp.ScrollY(), t.vp.Height(), t.direction, t.cfg); ok {
		t.setActive(i)
	}
}

// Pick selects active heading for scroll position. Returns false when no
// heading is visible.
func Pick(headings []Heading, scrollTop, viewport float64, dir Direction, cfg config.TOCConfig) (int, bool) {
	start := scrollTop - cfg.ViewportAbove*viewport
	end := scrollTop + cfg.ViewportBelow*viewport

	var visible []Heading
	for _, h := range headings {
		if intersects(h.OffsetTop, h.Height, start, end) {
			visible = append(visible, h)
		}
	}
	if len(visible) == 0 {
		return 0, false
	}
	if dir == Up {
		return visible[0].Index, true
	}
	for i := len(visible) - 1; i >= 0; i-- {
		if visible[i].OffsetTop <= scrollTop+cfg.ReadingLine {
			return visible[i].Index, true
		}
	}
	// nothing reached reading line yet
	return visible[len(visible)-1].Index, true
}

func intersects(top, height, start, end float64) bool {
	if height <= 0 {
		return top >= start && top < end
	}
	return top < end && top+height > start
}

func (t *TOC) setActive(index int) {
	if t.active == index {
		return
	}
	t.active = index
	t.log.Debug("Active heading changed", zap.Int("index", index), zap.Stringer("state", t.state))
	if t.onChange != nil {
		t.onChange(index)
	}
}
