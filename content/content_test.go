package content

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"tripdoc/config"
	"tripdoc/doc"
	"tripdoc/state"
)

func setupContext(t *testing.T) context.Context {
	t.Helper()
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Cfg = config.Default()
	env.Log = zaptest.NewLogger(t)
	return ctx
}

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func TestComputeStats_ReadTime(t *testing.T) {
	tests := []struct {
		name  string
		input string
		wpm   int
		want  int
	}{
		{"empty", "", 200, 1},
		{"150 words", words(150), 200, 1},
		{"200 words", words(200), 200, 1},
		{"201 words", words(201), 200, 2},
		{"201 words in markup", "<p>" + words(201) + "</p>", 200, 2},
		{"default wpm", words(401), 0, 3},
		{"custom wpm", words(100), 50, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeStats(tt.input, tt.wpm).ReadTime; got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestComputeStats_Counts(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		words      int
		characters int
	}{
		{"empty", "", 0, 0},
		{"literal keeps spacing", "  two  words ", 2, 13},
		{"tags stripped", "<p>Hello   <b>big</b>\n world</p>", 3, 15},
		{"blocks separate words", "<h2>Day</h2><p>one</p>", 2, 7},
		{"inline tags do not", "<p>wo<b>r</b>d</p>", 1, 4},
		{"entities decoded", "<p>fish &amp; chips</p>", 3, 12},
		{"script ignored", "<p>a</p><script>var x = 1;</script>", 1, 1},
		{"runes counted", "<p>Любляна</p>", 1, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeStats(tt.input, 200)
			if got.Words != tt.words {
				t.Errorf("words: got %d, want %d", got.Words, tt.words)
			}
			if got.Characters != tt.characters {
				t.Errorf("characters: got %d, want %d", got.Characters, tt.characters)
			}
		})
	}
}

func TestComputeStats_Sentences(t *testing.T) {
	got := ComputeStats("<p>We arrived in Bled. The lake was calm.</p><p>Dinner was great!</p>", 200)
	if got.Sentences != 3 {
		t.Errorf("got %d sentences, want 3", got.Sentences)
	}
}

func TestSave_Tree(t *testing.T) {
	ctx := setupContext(t)
	tree := doc.NewDoc(
		doc.New(doc.TypeHeading, doc.Attrs{"level": 1}, doc.NewText("Ljubljana")),
		doc.New(doc.TypeParagraph, nil, doc.NewText("Dragons", doc.Mark{Type: doc.MarkBold})),
		doc.New("mapEmbed", doc.Attrs{"lat": 46.05}),
	)

	s, err := Save(ctx, Authored{Tree: tree, Lang: "ru"}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if want := "<h1>Ljubljana</h1><p><strong>Dragons</strong></p>"; s.Markup != want {
		t.Errorf("markup: got %s, want %s", s.Markup, want)
	}
	if s.Tree == tree {
		t.Error("snapshot shares authored tree")
	}
	if len(s.Tree.Children) != 3 {
		t.Errorf("tree is authoritative, unknown node must be kept: got %d children", len(s.Tree.Children))
	}
	if got := s.Tree.Children[0].Attrs; got["textAlign"] != nil || got["id"] != nil {
		t.Errorf("heading not normalized: %v", got)
	}
	if s.ID.Version() != 7 {
		t.Errorf("id version: got %d, want 7", s.ID.Version())
	}
	if s.Lang != "ru" {
		t.Errorf("lang: got %q, want ru", s.Lang)
	}
	if s.Stats.Words != 2 || s.Stats.ReadTime != 1 {
		t.Errorf("stats: got %+v", s.Stats)
	}
}

func TestSave_MarkupAndMarkdown(t *testing.T) {
	ctx := setupContext(t)

	fromMarkup, err := Save(ctx, Authored{Markup: `<div><p>Hi <i>there</i></p></div>`}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Save(markup) error = %v", err)
	}
	if want := "<p>Hi <em>there</em></p>"; fromMarkup.Markup != want {
		t.Errorf("got %s, want %s", fromMarkup.Markup, want)
	}
	if fromMarkup.Lang != "en" {
		t.Errorf("default lang: got %q, want en", fromMarkup.Lang)
	}

	fromMD, err := Save(ctx, Authored{Markdown: []byte("Hi *there*\n")}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Save(markdown) error = %v", err)
	}
	if fromMD.Markup != fromMarkup.Markup {
		t.Errorf("markdown: got %s, want %s", fromMD.Markup, fromMarkup.Markup)
	}
}

func TestSave_Errors(t *testing.T) {
	ctx := setupContext(t)
	log := zaptest.NewLogger(t)

	if _, err := Save(ctx, Authored{}, log); !errors.Is(err, ErrNoContent) {
		t.Errorf("empty: got %v, want ErrNoContent", err)
	}
	if _, err := Save(ctx, Authored{Markup: "<p>x</p>", Lang: "de"}, log); err == nil {
		t.Error("unsupported language accepted")
	}
	if _, err := Save(ctx, Authored{Markup: "<p>x</p>", Lang: "not a tag!"}, log); err == nil {
		t.Error("malformed language accepted")
	}
	shared := doc.NewText("x")
	bad := doc.NewDoc(doc.New(doc.TypeParagraph, nil, shared), doc.New(doc.TypeParagraph, nil, shared))
	if _, err := Save(ctx, Authored{Tree: bad}, log); err == nil {
		t.Error("shared child accepted")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := Save(cancelled, Authored{Markup: "<p>x</p>"}, log); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled: got %v", err)
	}
}

func TestSnapshot_WriteLoad(t *testing.T) {
	ctx := setupContext(t)
	s, err := Save(ctx, Authored{Markup: `<h2>Day 2</h2><ol start="4"><li><p>a &amp; b</p></li></ol>`}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	data, err := s.Write()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `<h2>Day 2</h2>`) {
		t.Errorf("markup escaped in JSON: %s", data)
	}

	got, err := Load(data, state.EnvFromContext(ctx).Schema)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.ID != s.ID || got.Markup != s.Markup || got.Stats != s.Stats {
		t.Errorf("got %+v, want %+v", got, s)
	}
	if !doc.Equal(got.Tree, s.Tree) {
		t.Errorf("tree mismatch:\n%s\n%s", got.Tree, s.Tree)
	}
	if start, ok := got.Tree.Children[1].Attrs["start"].(int); !ok || start != 4 {
		t.Errorf("start not normalized back to int: %#v", got.Tree.Children[1].Attrs["start"])
	}

	if _, err := Load([]byte(`{"id":"0190d0a6-0000-7000-8000-000000000000"}`), nil); err == nil {
		t.Error("snapshot without tree accepted")
	}
}
