package css

import (
	"bytes"
	"io"
	"strconv"
	"strings"
	"unicode"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser parses inline style attributes into declarations.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new inline style parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

const (
	expectProperty = iota
	expectColon
	inValue
	skipDeclaration
)

// ParseInline parses value of a style attribute. Malformed input never
// fails, whatever could be recognized is returned. Values are collected from
// lexer tokens so whitespace inside functions ("rgb(1, 2, 3)") survives in
// Value.Raw.
func (p *Parser) ParseInline(style string) Declarations {
	var decls Declarations
	if strings.TrimSpace(style) == "" {
		return decls
	}

	var (
		prop   string
		tokens []css.Token
		state  = expectProperty
		depth  int
	)
	flush := func() {
		if state == inValue && prop != "" && !strings.HasPrefix(prop, "--") && significant(tokens) {
			decls = append(decls, Declaration{Property: prop, Value: parsePropertyValue(tokens)})
		}
		prop, tokens, state, depth = "", nil, expectProperty, 0
	}

	lexer := css.NewLexer(parse.NewInputString(style))
	for {
		tt, data := lexer.Next()
		switch tt {
		case css.ErrorToken:
			if err := lexer.Err(); err != nil && err != io.EOF {
				p.log.Debug("Inline style parse error", zap.String("style", style), zap.Error(err))
			}
			flush()
			return decls
		case css.CommentToken:
			continue
		}

		switch state {
		case expectProperty:
			switch tt {
			case css.WhitespaceToken, css.SemicolonToken:
			case css.IdentToken:
				prop, state = strings.ToLower(string(data)), expectColon
			default:
				// custom properties (--var) have no meaning for content
				state = skipDeclaration
			}
		case expectColon:
			switch tt {
			case css.WhitespaceToken:
			case css.ColonToken:
				state = inValue
			case css.SemicolonToken:
				flush()
			default:
				state = skipDeclaration
			}
		case inValue:
			switch tt {
			case css.SemicolonToken:
				if depth == 0 {
					flush()
					continue
				}
			case css.FunctionToken, css.LeftParenthesisToken, css.LeftBracketToken, css.LeftBraceToken:
				depth++
			case css.RightParenthesisToken, css.RightBracketToken, css.RightBraceToken:
				if depth > 0 {
					depth--
				}
			}
			tokens = append(tokens, css.Token{TokenType: tt, Data: bytes.Clone(data)})
		case skipDeclaration:
			if tt == css.SemicolonToken {
				flush()
			}
		}
	}
}

func significant(tokens []css.Token) bool {
	for _, t := range tokens {
		if t.TokenType != css.WhitespaceToken {
			return true
		}
	}
	return false
}

// parsePropertyValue converts CSS tokens to a Value.
func parsePropertyValue(tokens []css.Token) Value {
	var rawParts []string
	for _, t := range tokens {
		if t.TokenType != css.WhitespaceToken {
			rawParts = append(rawParts, string(t.Data))
		} else if len(rawParts) > 0 {
			rawParts = append(rawParts, " ")
		}
	}
	raw := strings.TrimSpace(strings.Join(rawParts, ""))
	// drop !important, it does not change meaning of inline content styles
	raw = strings.TrimSpace(strings.TrimSuffix(raw, "!important"))

	val := Value{Raw: raw}

	significant := tokens[:0:0]
	for i, t := range tokens {
		switch {
		case t.TokenType == css.WhitespaceToken:
		case t.TokenType == css.DelimToken && string(t.Data) == "!":
		case t.TokenType == css.IdentToken && i > 0 && strings.EqualFold(string(t.Data), "important"):
		default:
			significant = append(significant, t)
		}
	}
	if len(significant) != 1 {
		val.Keyword = strings.ToLower(raw)
		return val
	}

	t := significant[0]
	switch t.TokenType {
	case css.DimensionToken:
		val.Value, val.Unit = parseDimension(string(t.Data))
	case css.PercentageToken:
		val.Value, _ = strconv.ParseFloat(strings.TrimSuffix(string(t.Data), "%"), 64)
		val.Unit = "%"
	case css.NumberToken:
		val.Value, _ = strconv.ParseFloat(string(t.Data), 64)
	case css.IdentToken:
		val.Keyword = strings.ToLower(string(t.Data))
	case css.StringToken:
		val.Keyword = unquote(string(t.Data))
	case css.HashToken:
		val.Keyword = strings.ToLower(string(t.Data))
	default:
		val.Keyword = raw
	}
	return val
}

// parseDimension extracts numeric value and unit from dimension token.
func parseDimension(s string) (float64, string) {
	numEnd := 0
	for i, r := range s {
		if unicode.IsDigit(r) || r == '.' || r == '-' || r == '+' {
			numEnd = i + 1
		} else {
			break
		}
	}
	if numEnd == 0 {
		return 0, ""
	}
	num, _ := strconv.ParseFloat(s[:numEnd], 64)
	return num, strings.ToLower(s[numEnd:])
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') ||
		(s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
