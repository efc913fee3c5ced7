package gallery

import (
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"tripdoc/clock"
	"tripdoc/config"
	"tripdoc/dom"
)

const page = `<html><body data-height="5000"><article class="prose">
<p><img src="a.jpg" alt="a" data-left="300" data-top="100" data-width="600" data-height="300"></p>
<figure><img src="b.jpg" data-left="300" data-top="700" data-width="600" data-height="300"></figure>
<img src="logo.svg" data-gallery-ignore>
<img src="c.jpg" data-left="300" data-top="2000" data-width="400" data-height="400">
</article></body></html>`

type fixture struct {
	g   *Gallery
	doc *dom.Document
	v   *clock.Virtual
}

func setup(t *testing.T) fixture {
	t.Helper()
	d, err := dom.Parse(strings.NewReader(page), dom.AttrLayout{}, dom.Size{Width: 1200, Height: 800}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	v := clock.NewVirtual(time.Unix(0, 0))
	g, err := Mount(d, "article.prose", config.Default().Gallery, v, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	t.Cleanup(g.Unmount)
	return fixture{g: g, doc: d, v: v}
}

func (f fixture) img(t *testing.T, src string) *dom.Element {
	t.Helper()
	e, err := f.doc.Query(`img[src="` + src + `"]`)
	if err != nil || e == nil {
		t.Fatalf("image %s not found", src)
	}
	return e
}

// opened clicks image and waits for zoom to finish.
func (f fixture) opened(t *testing.T, src string) {
	t.Helper()
	f.img(t, src).Click()
	f.v.Advance(clock.FrameInterval + 300*time.Millisecond)
	if f.g.State() != Open {
		t.Fatalf("got %s, want open", f.g.State())
	}
}

func TestDiscovery(t *testing.T) {
	f := setup(t)

	images := f.g.Images()
	if len(images) != 3 {
		t.Fatalf("got %d images, want 3", len(images))
	}
	for i, src := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		if images[i].Src != src {
			t.Errorf("image %d: got %s, want %s", i, images[i].Src, src)
		}
		if idx, _ := images[i].Element.Attr(IndexAttr); idx != string(rune('0'+i)) {
			t.Errorf("image %d: index attr %q", i, idx)
		}
		if c, _ := images[i].Element.Style().Get("cursor"); c.Keyword != "zoom-in" {
			t.Errorf("image %d: cursor %q", i, c.Raw)
		}
	}
	if logo := f.img(t, "logo.svg"); logo.HasAttr(IndexAttr) || logo.Listeners(dom.EventClick) != 0 {
		t.Error("ignored image was discovered")
	}
	if f.g.Visible() || f.g.State() != Closed {
		t.Error("overlay visible after mount")
	}
}

func TestOpen(t *testing.T) {
	f := setup(t)
	f.img(t, "a.jpg").Click()

	if f.g.State() != Zooming || f.g.Index() != 0 || !f.g.Visible() {
		t.Fatalf("got %s at %d", f.g.State(), f.g.Index())
	}
	if got := f.g.Box(); got != (dom.Rect{X: 300, Y: 100, Width: 600, Height: 300}) {
		t.Errorf("overlay does not start at origin: %+v", got)
	}

	f.v.Advance(clock.FrameInterval)
	want := dom.Rect{X: 60, Y: 130, Width: 1080, Height: 540}
	if got := f.g.Box(); got != want {
		t.Errorf("zoomed box %+v, want %+v", got, want)
	}
	if tr, _ := f.g.frame.Style().Get("transition"); !strings.HasPrefix(tr.Raw, "transform 300ms cubic-bezier(") {
		t.Errorf("transition %q", tr.Raw)
	}

	f.v.Advance(299 * time.Millisecond)
	if f.g.State() != Zooming {
		t.Errorf("zoom finished early")
	}
	f.v.Advance(time.Millisecond)
	if f.g.State() != Open {
		t.Errorf("got %s, want open", f.g.State())
	}
	if src, _ := f.g.frame.Attr("src"); src != "a.jpg" {
		t.Errorf("overlay shows %q", src)
	}
}

func TestWraparound(t *testing.T) {
	f := setup(t)
	f.opened(t, "a.jpg")

	if !f.g.SwitchImage(-1) || f.g.State() != Transitioning {
		t.Fatalf("switch refused in %s", f.g.State())
	}
	if f.g.SwitchImage(1) {
		t.Error("switch accepted while transitioning")
	}
	f.v.Advance(150 * time.Millisecond)
	if f.g.Index() != 2 {
		t.Errorf("got index %d, want 2", f.g.Index())
	}
	f.v.Advance(150 * time.Millisecond)
	if f.g.State() != Open {
		t.Fatalf("got %s after fade, want open", f.g.State())
	}

	f.doc.Window().Press("ArrowRight")
	f.doc.Window().Press("Escape")
	f.v.Advance(300 * time.Millisecond)
	if f.g.Index() != 0 || f.g.State() != Open {
		t.Errorf("got %d in %s, want 0 open", f.g.Index(), f.g.State())
	}

	f.doc.Window().Press("ArrowLeft")
	f.v.Advance(300 * time.Millisecond)
	if f.g.Index() != 2 {
		t.Errorf("got %d, want 2", f.g.Index())
	}
}

func TestSelect(t *testing.T) {
	f := setup(t)
	if !f.g.Select(1) || f.g.State() != Zooming {
		t.Fatalf("thumbnail did not open gallery")
	}
	f.v.Advance(clock.FrameInterval + 300*time.Millisecond)
	if f.g.Select(1) {
		t.Error("selecting displayed image started transition")
	}
	if !f.g.Select(0) {
		t.Fatal("thumbnail switch refused")
	}
	f.v.Advance(300 * time.Millisecond)
	if f.g.Index() != 0 || f.g.State() != Open {
		t.Errorf("got %d in %s", f.g.Index(), f.g.State())
	}
	if f.g.Select(5) {
		t.Error("out of range selection accepted")
	}
}

func TestRezoom(t *testing.T) {
	f := setup(t)
	f.opened(t, "a.jpg")

	f.img(t, "b.jpg").Click()
	if f.g.State() != Transitioning {
		t.Fatalf("got %s, want transitioning", f.g.State())
	}
	if got := f.g.Box(); got.Y != 700 {
		t.Errorf("not shrinking toward new origin: %+v", got)
	}
	f.v.Advance(300 * time.Millisecond)
	if f.g.State() != Zooming || f.g.Index() != 1 {
		t.Errorf("got %s at %d, want zooming at 1", f.g.State(), f.g.Index())
	}
	f.v.Advance(clock.FrameInterval + 300*time.Millisecond)
	if f.g.State() != Open {
		t.Errorf("got %s, want open", f.g.State())
	}
}

func TestClose(t *testing.T) {
	t.Run("fallback", func(t *testing.T) {
		f := setup(t)
		f.opened(t, "a.jpg")

		if !f.g.Close() || f.g.State() != Closing {
			t.Fatalf("close refused")
		}
		if f.g.Close() {
			t.Error("second close accepted")
		}
		f.v.Advance(349 * time.Millisecond)
		if !f.g.Visible() {
			t.Fatal("overlay hidden before fallback")
		}
		f.v.Advance(time.Millisecond)
		if f.g.Visible() || f.g.State() != Closed || f.g.Index() != -1 {
			t.Errorf("got %s visible=%v", f.g.State(), f.g.Visible())
		}
	})

	t.Run("transition end", func(t *testing.T) {
		f := setup(t)
		f.opened(t, "a.jpg")
		f.doc.Window().Press("Escape")
		f.g.Overlay().Dispatch(dom.EventTransitionEnd)
		if f.g.State() != Closed || f.v.Pending() != 0 {
			t.Errorf("got %s with %d timers", f.g.State(), f.v.Pending())
		}
		f.g.Overlay().Dispatch(dom.EventTransitionEnd)
	})

	t.Run("origin off screen", func(t *testing.T) {
		f := setup(t)
		f.opened(t, "c.jpg")
		f.doc.Window().Scroll(0)
		f.g.Close()
		f.g.Overlay().Dispatch(dom.EventTransitionEnd)

		if f.g.Visible() || f.g.State() != Closing {
			t.Fatalf("got %s visible=%v", f.g.State(), f.g.Visible())
		}
		if y, ok := f.doc.Window().Pending(); !ok || y != 1800 {
			t.Errorf("scroll target %v, %v, want 1800", y, ok)
		}
		f.v.Advance(499 * time.Millisecond)
		if f.g.State() != Closing {
			t.Error("state cleared before scroll settled")
		}
		f.v.Advance(time.Millisecond)
		if f.g.State() != Closed {
			t.Errorf("got %s, want closed", f.g.State())
		}
	})

	t.Run("refused", func(t *testing.T) {
		f := setup(t)
		if f.g.Close() {
			t.Error("close accepted while closed")
		}
		f.img(t, "a.jpg").Click()
		if f.g.Close() {
			t.Error("close accepted while zooming")
		}
	})
}

func TestImageFailed(t *testing.T) {
	f := setup(t)
	f.img(t, "b.jpg").Dispatch(dom.EventError)
	if !f.g.Images()[1].Failed || !f.g.Images()[1].Element.HasAttr(ErrorAttr) {
		t.Fatal("failure not recorded")
	}
	f.g.Select(1)
	if !f.g.frame.HasAttr(ErrorAttr) {
		t.Error("overlay does not show error state")
	}
}

func TestUnmount(t *testing.T) {
	f := setup(t)
	f.img(t, "a.jpg").Click()
	f.g.Unmount()

	if f.v.Pending() != 0 {
		t.Errorf("%d timers left", f.v.Pending())
	}
	if f.doc.Window().Listeners() != 0 {
		t.Errorf("%d window listeners left", f.doc.Window().Listeners())
	}
	if f.img(t, "a.jpg").Listeners(dom.EventClick) != 0 {
		t.Error("click listener left")
	}
	if f.doc.Body().Contains(f.g.Overlay()) {
		t.Error("overlay left in page")
	}
	for _, src := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		e := f.img(t, src)
		if e.HasAttr(IndexAttr) || e.Style().Has("cursor") {
			t.Errorf("%s: markers left: %v", src, e.Node().Attr)
		}
	}
}

func TestSetContentKey(t *testing.T) {
	f := setup(t)
	if ok, _ := f.g.SetContentKey(""); ok {
		t.Error("rescan on unchanged key")
	}

	f.opened(t, "b.jpg")
	f.img(t, "c.jpg").Dispatch(dom.EventError)

	region, err := f.doc.Query("article.prose")
	if err != nil || region == nil {
		t.Fatal("region not found")
	}
	a := f.img(t, "a.jpg")
	a.Remove()
	d := f.doc.CreateElement("img")
	d.SetAttr("src", "d.jpg")
	d.SetAttr("data-top", "3000")
	d.SetAttr("data-width", "300")
	d.SetAttr("data-height", "200")
	region.AppendChild(d)

	if ok, err := f.g.SetContentKey("post-2"); !ok || err != nil {
		t.Fatalf("SetContentKey() = %v, %v", ok, err)
	}
	if f.g.State() != Closed || f.g.Index() != -1 || f.g.Visible() {
		t.Errorf("got %s index %d visible %v, want closed", f.g.State(), f.g.Index(), f.g.Visible())
	}
	if f.v.Pending() != 0 {
		t.Errorf("%d timers left", f.v.Pending())
	}

	images := f.g.Images()
	var got []string
	for _, img := range images {
		got = append(got, img.Src)
	}
	if strings.Join(got, ",") != "b.jpg,c.jpg,d.jpg" {
		t.Fatalf("got %v, want [b.jpg c.jpg d.jpg]", got)
	}
	for i, img := range images {
		if n := img.Element.Listeners(dom.EventClick); n != 1 {
			t.Errorf("%s: got %d click listeners, want 1", img.Src, n)
		}
		if idx, _ := img.Element.Attr(IndexAttr); idx != string(rune('0'+i)) {
			t.Errorf("%s: index attr %q", img.Src, idx)
		}
	}
	if images[1].Failed || images[1].Element.HasAttr(ErrorAttr) {
		t.Error("error state survived rescan")
	}
	if a.Listeners(dom.EventClick) != 0 || a.HasAttr(IndexAttr) {
		t.Error("removed image still wired")
	}

	d.Click()
	f.v.Advance(clock.FrameInterval + 300*time.Millisecond)
	if f.g.State() != Open || f.g.Index() != 2 {
		t.Errorf("got %s index %d, want open 2", f.g.State(), f.g.Index())
	}
}

func TestMountErrors(t *testing.T) {
	d := dom.FromView(nil, nil, dom.Size{Width: 100, Height: 100}, zaptest.NewLogger(t))
	v := clock.NewVirtual(time.Unix(0, 0))
	if _, err := Mount(d, ".prose", config.Default().Gallery, v, nil); !errors.Is(err, ErrNoRegion) {
		t.Errorf("got %v, want ErrNoRegion", err)
	}
}
