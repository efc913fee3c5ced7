package render

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"tripdoc/doc"
	"tripdoc/schema"
	"tripdoc/view"
)

func renderHTML(t *testing.T, tree *doc.Node) string {
	t.Helper()
	out, err := New(schema.Default(), zaptest.NewLogger(t)).Render(tree).HTML()
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	return out
}

func para(children ...*doc.Node) *doc.Node {
	return doc.New(doc.TypeParagraph, nil, children...)
}

func TestRenderMarks_Order(t *testing.T) {
	bold := doc.Mark{Type: doc.MarkBold}
	italic := doc.Mark{Type: doc.MarkItalic}

	tests := []struct {
		name  string
		marks []doc.Mark
		want  string
	}{
		{"first mark innermost", []doc.Mark{bold, italic}, "<p><em><strong>x</strong></em></p>"},
		{"reordered", []doc.Mark{italic, bold}, "<p><strong><em>x</em></strong></p>"},
		{"unknown passes through", []doc.Mark{{Type: "highlight"}, bold}, "<p><strong>x</strong></p>"},
		{"only unknown", []doc.Mark{{Type: "highlight", Attrs: doc.Attrs{"color": "yellow"}}}, "<p>x</p>"},
		{"link outside underline", []doc.Mark{
			{Type: doc.MarkUnderline, Attrs: doc.Attrs{"style": "dotted"}},
			{Type: doc.MarkLink, Attrs: doc.Attrs{"href": "/ru"}},
		}, `<p><a href="/ru" target="_blank" rel="noopener noreferrer nofollow"><u style="text-decoration-style: dotted">x</u></a></p>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderHTML(t, doc.NewDoc(para(doc.NewText("x", tt.marks...))))
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRenderMarks_Direct(t *testing.T) {
	r := New(nil, zaptest.NewLogger(t))
	inner := view.Text("x")
	if got := r.RenderMarks(nil, inner); got != inner {
		t.Error("no marks must return inner view")
	}
	if got := r.RenderMarks([]doc.Mark{{Type: "unknown"}}, inner); got != inner {
		t.Error("unknown mark must return accumulator unchanged")
	}
}

func TestRenderNode_UnknownOmitted(t *testing.T) {
	r := New(nil, zaptest.NewLogger(t))
	if got := r.RenderNode(doc.New("mapEmbed", nil)); got != nil {
		t.Errorf("got %v, want nil", got)
	}

	tree := doc.NewDoc(
		para(doc.NewText("a")),
		doc.New("mapEmbed", doc.Attrs{"lat": 46.05}, para(doc.NewText("hidden"))),
		para(doc.NewText("b"), doc.New("emoji", nil)),
	)
	if got, want := renderHTML(t, tree), "<p>a</p><p>b</p>"; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestRender_Headings(t *testing.T) {
	tree := doc.NewDoc(
		doc.New(doc.TypeHeading, doc.Attrs{"level": 2}, doc.NewText("Day 1")),
		doc.New(doc.TypeHeading, doc.Attrs{"level": 2, "id": "day-1"}, doc.NewText("Day 1")),
		doc.New(doc.TypeHeading, doc.Attrs{"level": 3}, doc.NewText("Day "), doc.NewText("1", doc.Mark{Type: doc.MarkBold})),
		doc.New(doc.TypeHeading, doc.Attrs{"level": 3, "textAlign": "center"}, doc.NewText("!!!")),
	)
	want := `<h2 id="day-1-1">Day 1</h2>` +
		`<h2 id="day-1">Day 1</h2>` +
		`<h3 id="day-1-2">Day <strong>1</strong></h3>` +
		`<h3 id="section" style="text-align: center">!!!</h3>`
	if got := renderHTML(t, tree); got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}
}

func TestRender_Blocks(t *testing.T) {
	tree := doc.NewDoc(
		doc.New(doc.TypeOrderedList, doc.Attrs{"start": 3},
			doc.New(doc.TypeListItem, nil, para(doc.NewText("one"))),
		),
		doc.New(doc.TypeBulletList, nil, doc.New(doc.TypeListItem, nil, para(doc.NewText("two")))),
		doc.New(doc.TypeBlockquote, nil, para(doc.NewText("q"), doc.New(doc.TypeHardBreak, nil), doc.NewText("r"))),
		doc.New(doc.TypeHorizontalRule, nil),
		doc.New(doc.TypeImage, doc.Attrs{"src": "/a.jpg", "alt": "A"}),
		doc.New(doc.TypeCallout, doc.Attrs{"variant": "bogus"}, para(doc.NewText("c"))),
	)
	want := `<ol start="3"><li><p>one</p></li></ol>` +
		`<ul><li><p>two</p></li></ul>` +
		`<blockquote><p>q<br/>r</p></blockquote>` +
		`<hr/>` +
		`<img src="/a.jpg" alt="A" loading="lazy"/>` +
		`<div data-type="callout" data-variant="info" role="note" class="callout callout-info"><p>c</p></div>`
	if got := renderHTML(t, tree); got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}
}

func TestRender_EnhancedImage(t *testing.T) {
	tests := []struct {
		name  string
		attrs doc.Attrs
		want  string
	}{
		{
			name:  "defaults",
			attrs: doc.Attrs{"src": "/b.jpg"},
			want: `<figure data-type="enhanced-image" data-size="medium" data-alignment="center" class="enhanced-image w-2/3 mx-auto">` +
				`<img src="/b.jpg" loading="lazy" class="w-full rounded"/></figure>`,
		},
		{
			name:  "small right with caption",
			attrs: doc.Attrs{"src": "/b.jpg", "title": "Bled", "size": "small", "alignment": "right", "caption": "Lake"},
			want: `<figure data-type="enhanced-image" data-size="small" data-alignment="right" class="enhanced-image w-1/3 ml-auto">` +
				`<img src="/b.jpg" title="Bled" loading="lazy" class="w-full rounded"/><figcaption>Lake</figcaption></figure>`,
		},
		{
			name:  "large left",
			attrs: doc.Attrs{"src": "/b.jpg", "size": "large", "alignment": "left"},
			want: `<figure data-type="enhanced-image" data-size="large" data-alignment="left" class="enhanced-image w-full mr-auto">` +
				`<img src="/b.jpg" loading="lazy" class="w-full rounded"/></figure>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderHTML(t, doc.NewDoc(doc.New(doc.TypeEnhancedImage, tt.attrs))); got != tt.want {
				t.Errorf("got %s\nwant %s", got, tt.want)
			}
		})
	}
}

func TestRender_TextStyles(t *testing.T) {
	leaf := doc.NewText("x",
		doc.Mark{Type: doc.MarkTextStyle, Attrs: doc.Attrs{"color": "red", "fontSize": "small"}},
		doc.Mark{Type: doc.MarkFontWeight, Attrs: doc.Attrs{"index": 5}},
		doc.Mark{Type: doc.MarkTextStyle},
	)
	want := `<p><span class="font-semibold"><span style="color: red; font-size: 14px; line-height: 20px">x</span></span></p>`
	if got := renderHTML(t, doc.NewDoc(para(leaf))); got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}
}

func TestAnchors(t *testing.T) {
	a := NewAnchors()
	a.Reserve("kyoto")
	got := []string{a.Make("Kyoto"), a.Make("Kyoto"), a.Make("Озеро Блед"), a.Make("")}
	want := []string{"kyoto-1", "kyoto-2", "ozero-bled", "section"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d]: got %q, want %q", i, got[i], want[i])
		}
	}
}
