package content

import (
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/language"

	"tripdoc/content/text"
)

// DefaultWordsPerMinute is reading speed used when none is configured.
const DefaultWordsPerMinute = 200

// Stats are derived content statistics stored along with snapshot.
type Stats struct {
	Words      int `json:"words"`
	Characters int `json:"characters"`
	// ReadTime is estimated reading time in whole minutes, never below 1.
	ReadTime  int `json:"read_time"`
	Sentences int `json:"sentences"`
}

var splitter = sync.OnceValue(func() *text.Splitter {
	return text.NewSplitter(language.English, nil)
})

// ComputeStats derives statistics from markup. Empty input and input without
// tags is measured literally, otherwise tags are stripped and whitespace runs
// collapsed first.
func ComputeStats(markup string, wpm int) Stats {
	if wpm <= 0 {
		wpm = DefaultWordsPerMinute
	}
	plain := markup
	if markup != "" && hasTags(markup) {
		plain = stripTags(markup)
	}

	sp := splitter()
	words := sp.CountWords(plain)
	return Stats{
		Words:      words,
		Characters: utf8.RuneCountInString(plain),
		ReadTime:   max(1, (words+wpm-1)/wpm),
		Sentences:  sp.CountSentences(plain),
	}
}

func hasTags(markup string) bool {
	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return false
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			return true
		}
	}
}

// elements separating words even when written without whitespace around
var wordBreaks = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Li: true, atom.Ul: true, atom.Ol: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Blockquote: true, atom.Figure: true, atom.Figcaption: true, atom.Hr: true, atom.Img: true,
	atom.Td: true, atom.Th: true, atom.Tr: true, atom.Section: true, atom.Article: true, atom.Aside: true,
}

func stripTags(markup string) string {
	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(markup))
	skip := 0
loop:
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			break loop
		case html.TextToken:
			if skip == 0 {
				sb.Write(z.Text())
			}
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if a == atom.Script || a == atom.Style {
				switch tt {
				case html.StartTagToken:
					skip++
				case html.EndTagToken:
					skip = max(0, skip-1)
				}
				continue
			}
			if wordBreaks[a] {
				sb.WriteByte(' ')
			}
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}
