// Package text splits plain text into sentences and words.
package text

import (
	"iter"
	"strings"
	"unicode"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Splitter wraps punkt sentence tokenizer. Nil splitter treats whole input
// as a single sentence.
type Splitter struct {
	*sentences.DefaultSentenceTokenizer
}

// NewSplitter returns splitter for the language. Only English punctuation
// model is bundled, it is used for every language since both site languages
// share sentence terminators.
func NewSplitter(lang language.Tag, log *zap.Logger) *Splitter {
	if log == nil {
		log = zap.NewNop()
	}
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		log.Warn("Unable to load sentences tokenizer data, turning off sentence splitting", zap.Stringer("tag", lang), zap.Error(err))
		return nil
	}
	if base, _ := lang.Base(); base.String() != "en" {
		log.Debug("Using English punctuation model", zap.String("language", display.English.Languages().Name(lang)))
	}
	return &Splitter{tokenizer}
}

// Sentences returns an iterator over non-blank sentences. Trailing spaces
// are moved from the beginning of the next sentence to the end of the
// current one.
func (s *Splitter) Sentences(in string) iter.Seq[string] {
	return func(yield func(string) bool) {
		if s == nil {
			if strings.TrimSpace(in) != "" {
				yield(in)
			}
			return
		}

		tokens := s.Tokenize(in)
		for i := range tokens {
			text := tokens[i].Text
			if i+1 < len(tokens) {
				next := tokens[i+1].Text
				for idx, sym := range next {
					if !unicode.IsSpace(sym) {
						text += next[:idx]
						tokens[i+1].Text = next[idx:]
						break
					}
				}
			}
			if strings.TrimSpace(text) == "" {
				continue
			}
			if !yield(text) {
				return
			}
		}
	}
}

// Words returns an iterator over words. Consecutive separators produce empty
// words, callers counting words skip them. ignoreNBSP makes NBSP a separator.
func (*Splitter) Words(in string, ignoreNBSP bool) iter.Seq[string] {
	return func(yield func(string) bool) {
		var word strings.Builder
		for _, sym := range in {
			if isSeparator(sym, ignoreNBSP) {
				if !yield(word.String()) {
					return
				}
				word.Reset()
				continue
			}
			word.WriteRune(sym)
		}
		yield(word.String())
	}
}

// CountWords counts non-empty whitespace delimited tokens.
func (s *Splitter) CountWords(in string) int {
	n := 0
	for w := range s.Words(in, true) {
		if w != "" {
			n++
		}
	}
	return n
}

// CountSentences counts non-blank sentences.
func (s *Splitter) CountSentences(in string) int {
	n := 0
	for range s.Sentences(in) {
		n++
	}
	return n
}

func isSeparator(r rune, ignoreNBSP bool) bool {
	if uint32(r) <= unicode.MaxLatin1 {
		switch r {
		// NBSP is not a separator unless requested
		case '\t', '\n', '\v', '\f', '\r', ' ', 0x85:
			return true
		case 0xA0:
			return ignoreNBSP
		}
		return false
	}
	return unicode.IsSpace(r)
}
