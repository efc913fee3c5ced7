package toc

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"tripdoc/clock"
	"tripdoc/config"
	"tripdoc/dom"
)

type heading struct {
	tag  string
	text string
	top  int
}

func setup(t *testing.T, hs ...heading) (*TOC, *dom.Window, *clock.Virtual) {
	t.Helper()

	var sb strings.Builder
	sb.WriteString(`<html><body data-height="5000"><article class="prose">`)
	for _, h := range hs {
		fmt.Fprintf(&sb, `<%s data-top="%d" data-height="40">%s</%s>`, h.tag, h.top, h.text, h.tag)
		fmt.Fprintf(&sb, `<p data-top="%d" data-height="300">text</p>`, h.top+50)
	}
	sb.WriteString(`</article></body></html>`)

	page, err := dom.Parse(strings.NewReader(sb.String()), dom.AttrLayout{}, dom.Size{Width: 1200, Height: 800}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	v := clock.NewVirtual(time.Unix(0, 0))
	toc, err := Mount(page, "article.prose", config.Default().TOC, v, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	t.Cleanup(toc.Unmount)
	return toc, page.Window(), v
}

func TestNest(t *testing.T) {
	toc, _, _ := setup(t,
		heading{"h1", "A", 0},
		heading{"h2", "B", 400},
		heading{"h3", "C", 800},
		heading{"h2", "D", 1200},
	)

	items := toc.Items()
	if len(items) != 1 || items[0].Text != "A" {
		t.Fatalf("got %d roots, want single A", len(items))
	}
	a := items[0]
	if len(a.Children) != 2 || a.Children[0].Text != "B" || a.Children[1].Text != "D" {
		t.Fatalf("A children: %+v", a.Children)
	}
	b := a.Children[0]
	if len(b.Children) != 1 || b.Children[0].Text != "C" || b.Children[0].Index != 2 {
		t.Fatalf("B children: %+v", b.Children)
	}
	if toc.Active() != 0 || toc.State() != Tracking {
		t.Errorf("got active %d in %s, want 0 in tracking", toc.Active(), toc.State())
	}
}

func TestNest_Siblings(t *testing.T) {
	items := Nest([]Heading{
		{Text: "x", Level: 2, Index: 0},
		{Text: "y", Level: 3, Index: 1},
		{Text: "z", Level: 1, Index: 2},
		{Text: "w", Level: 2, Index: 3},
	})
	if len(items) != 2 || items[0].Text != "x" || items[1].Text != "z" {
		t.Fatalf("unexpected roots %+v", items)
	}
	if len(items[0].Children) != 1 || len(items[1].Children) != 1 || items[1].Children[0].Text != "w" {
		t.Errorf("unexpected children")
	}
}

func TestScanAssignsIDs(t *testing.T) {
	toc, _, _ := setup(t,
		heading{"h2", "Day 1", 0},
		heading{"h2", "Day 1", 500},
		heading{"h2", "", 1000},
	)
	var got []string
	for _, h := range toc.Headings() {
		got = append(got, h.ID)
		if id, _ := h.Element.Attr("id"); id != h.ID {
			t.Errorf("element id %q, want %q", id, h.ID)
		}
	}
	want := []string{"day-1", "day-1-1", "section"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("heading %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTieBreak(t *testing.T) {
	hs := []heading{{"h2", "zero", 0}, {"h2", "five", 500}, {"h2", "ten", 1000}}

	t.Run("down", func(t *testing.T) {
		toc, win, v := setup(t, hs...)
		win.Scroll(600)
		v.Advance(100 * time.Millisecond)
		if toc.Direction() != Down || toc.Active() != 1 {
			t.Errorf("got %d moving %s, want 1", toc.Active(), toc.Direction())
		}
	})

	t.Run("up", func(t *testing.T) {
		toc, win, v := setup(t, hs...)
		win.Scroll(1000)
		v.Advance(100 * time.Millisecond)
		if toc.Active() != 2 {
			t.Fatalf("got %d at 1000, want 2", toc.Active())
		}
		win.Scroll(600)
		v.Advance(100 * time.Millisecond)
		if toc.Direction() != Up || toc.Active() != 1 {
			t.Errorf("got %d moving %s, want 1", toc.Active(), toc.Direction())
		}
	})
}

func TestPick(t *testing.T) {
	cfg := config.Default().TOC
	hs := []Heading{
		{Index: 0, OffsetTop: 300, Height: 40},
		{Index: 1, OffsetTop: 600, Height: 40},
		{Index: 2, OffsetTop: 1500, Height: 40},
	}

	tests := []struct {
		name string
		st   float64
		dir  Direction
		want int
		ok   bool
	}{
		{name: "down before reading line", st: 100, dir: Down, want: 1, ok: true},
		{name: "down past reading line", st: 560, dir: Down, want: 1, ok: true},
		{name: "down first reached", st: 260, dir: Down, want: 0, ok: true},
		{name: "up", st: 100, dir: Up, want: 0, ok: true},
		{name: "nothing visible", st: 2500, dir: Down, ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Pick(hs, tt.st, 800, tt.dir, cfg)
			if ok != tt.ok || (ok && got != tt.want) {
				t.Errorf("got %d (%v), want %d (%v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestThrottle(t *testing.T) {
	toc, win, v := setup(t, heading{"h2", "a", 0}, heading{"h2", "b", 1000}, heading{"h2", "c", 2000})
	var changes []int
	toc.OnChange(func(i int) { changes = append(changes, i) })

	win.Scroll(1000)
	v.Advance(50 * time.Millisecond)
	win.Scroll(2000)
	if len(changes) != 0 {
		t.Fatalf("recomputed before throttle window ended: %v", changes)
	}
	v.Advance(50 * time.Millisecond)
	if len(changes) != 1 || changes[0] != 2 {
		t.Errorf("got %v, want [2]", changes)
	}

	win.Scroll(3500)
	v.Advance(100 * time.Millisecond)
	if toc.Active() != 2 {
		t.Errorf("selection changed with nothing visible: %d", toc.Active())
	}
}

func TestLockWindow(t *testing.T) {
	hs := []heading{{"h2", "start", 0}, {"h2", "far", 2000}}

	t.Run("settles early", func(t *testing.T) {
		toc, win, v := setup(t, hs...)
		if err := toc.Navigate(1); err != nil {
			t.Fatal(err)
		}
		if toc.State() != Locked || toc.Active() != 1 {
			t.Fatalf("got %d in %s, want 1 locked", toc.Active(), toc.State())
		}
		if y, ok := win.Pending(); !ok || y != 2000 {
			t.Errorf("smooth scroll target %v, %v", y, ok)
		}

		win.Scroll(1000)
		if toc.State() != Locked {
			t.Fatal("unlocked far from target")
		}
		v.Advance(200 * time.Millisecond)
		if toc.Active() != 1 {
			t.Errorf("recomputed while locked, active %d", toc.Active())
		}

		win.Scroll(1975)
		if toc.State() != Tracking {
			t.Errorf("still %s at 1975", toc.State())
		}
		if v.Pending() != 0 {
			t.Errorf("unlock timer left pending")
		}
	})

	t.Run("times out", func(t *testing.T) {
		toc, _, v := setup(t, hs...)
		if err := toc.Navigate(1); err != nil {
			t.Fatal(err)
		}
		v.Advance(999 * time.Millisecond)
		if toc.State() != Locked {
			t.Fatalf("unlocked after 999ms")
		}
		v.Advance(time.Millisecond)
		if toc.State() != Tracking {
			t.Errorf("still %s after 1000ms", toc.State())
		}
	})

	t.Run("unknown index", func(t *testing.T) {
		toc, _, _ := setup(t, hs...)
		if err := toc.Navigate(7); err == nil {
			t.Error("expected error")
		}
	})
}

func TestContentKey(t *testing.T) {
	toc, win, v := setup(t, heading{"h2", "a", 0}, heading{"h2", "b", 1000})
	if ok, err := toc.SetContentKey("post-1"); !ok || err != nil {
		t.Fatalf("SetContentKey() = %v, %v", ok, err)
	}
	win.Scroll(1000)
	v.Advance(100 * time.Millisecond)
	if ok, _ := toc.SetContentKey("post-1"); ok {
		t.Error("rescanned for unchanged key")
	}
	if toc.Active() != 1 {
		t.Fatalf("got %d, want 1", toc.Active())
	}
	if ok, _ := toc.SetContentKey("post-2"); !ok || toc.Active() != 0 {
		t.Errorf("rescan did not reset selection, active %d", toc.Active())
	}
}

func TestUnmount(t *testing.T) {
	toc, win, v := setup(t, heading{"h2", "a", 0}, heading{"h2", "b", 1000})
	win.Scroll(1000)
	_ = toc.Navigate(0)
	toc.Unmount()

	if win.Listeners() != 0 {
		t.Errorf("%d listeners left", win.Listeners())
	}
	if v.Pending() != 0 {
		t.Errorf("%d timers left", v.Pending())
	}
	toc.Unmount()
}

func TestMountErrors(t *testing.T) {
	page := dom.FromView(nil, nil, dom.Size{Width: 100, Height: 100}, zaptest.NewLogger(t))
	v := clock.NewVirtual(time.Unix(0, 0))
	cfg := config.Default().TOC

	if _, err := Mount(page, "article", cfg, v, nil); !errors.Is(err, ErrNoRegion) {
		t.Errorf("got %v, want ErrNoRegion", err)
	}
	if _, err := Mount(page, "[[", cfg, v, nil); err == nil {
		t.Error("expected selector error")
	}
}
