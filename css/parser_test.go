package css_test

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"tripdoc/css"
)

func TestParser_ParseInline(t *testing.T) {
	p := css.NewParser(zaptest.NewLogger(t))

	decls := p.ParseInline("font-size: 20px; line-height: 28px; color: #FF0000; text-decoration: underline dashed")
	if len(decls) != 4 {
		t.Fatalf("expected 4 declarations, got %d: %+v", len(decls), decls)
	}

	fs, ok := decls.Get("font-size")
	if !ok {
		t.Fatal("font-size not found")
	}
	if px, ok := fs.Pixels(); !ok || px != 20 {
		t.Errorf("font-size pixels = %v (%v), want 20", px, ok)
	}

	color, _ := decls.Get("color")
	if color.Keyword != "#ff0000" {
		t.Errorf("color keyword = %q, want #ff0000", color.Keyword)
	}

	td, _ := decls.Get("TEXT-DECORATION")
	if !td.HasKeyword("underline") || td.HasKeyword("line-through") {
		t.Errorf("text-decoration keywords wrong: %+v", td)
	}
}

func TestParser_ParseInlineEdgeCases(t *testing.T) {
	p := css.NewParser(nil)

	tests := []struct {
		name  string
		style string
		prop  string
		want  string
		found bool
	}{
		{name: "empty", style: "", prop: "color", found: false},
		{name: "last wins", style: "color: red; color: blue", prop: "color", want: "blue", found: true},
		{name: "important dropped", style: "text-align: center !important", prop: "text-align", want: "center", found: true},
		{name: "no trailing semicolon", style: "text-align:right", prop: "text-align", want: "right", found: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := p.ParseInline(tt.style).Get(tt.prop)
			if ok != tt.found {
				t.Fatalf("found = %v, want %v", ok, tt.found)
			}
			if ok && v.Keyword != tt.want {
				t.Errorf("keyword = %q, want %q", v.Keyword, tt.want)
			}
		})
	}
}

func TestParser_ParseInlineRaw(t *testing.T) {
	p := css.NewParser(zaptest.NewLogger(t))

	tests := []struct {
		name  string
		style string
		prop  string
		want  string
	}{
		{name: "function spacing kept", style: "text-decoration: underline wavy rgb(1, 2, 3)", prop: "text-decoration", want: "underline wavy rgb(1, 2, 3)"},
		{name: "compact function kept", style: "color: rgb(1,2,3)", prop: "color", want: "rgb(1,2,3)"},
		{name: "whitespace collapsed", style: "text-decoration:\n  underline\t dotted ;", prop: "text-decoration", want: "underline dotted"},
		{name: "semicolon in url", style: "background: url('a;b.png') no-repeat; color: red", prop: "background", want: "url('a;b.png') no-repeat"},
		{name: "after custom property", style: "--accent: blue; color: red", prop: "color", want: "red"},
		{name: "after garbage", style: "!!; color: red", prop: "color", want: "red"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := p.ParseInline(tt.style).Get(tt.prop)
			if !ok {
				t.Fatalf("%s not found", tt.prop)
			}
			if v.Raw != tt.want {
				t.Errorf("raw = %q, want %q", v.Raw, tt.want)
			}
		})
	}

	if decls := p.ParseInline("--accent: blue"); len(decls) != 0 {
		t.Errorf("custom property kept: %+v", decls)
	}
}

func TestJoin(t *testing.T) {
	got := css.Join([2]string{"text-decoration-color", "red"}, [2]string{"text-decoration-thickness", "2px"})
	if want := "text-decoration-color: red; text-decoration-thickness: 2px"; got != want {
		t.Errorf("Join() = %q, want %q", got, want)
	}
	if got := css.Join(); got != "" {
		t.Errorf("Join() of nothing = %q, want empty", got)
	}
}
