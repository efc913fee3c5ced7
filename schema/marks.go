package schema

import (
	"slices"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"tripdoc/css"
	"tripdoc/doc"
)

func builtinMarks() []*MarkSpec {
	return []*MarkSpec{
		boldSpec(),
		italicSpec(),
		decorationSpec(doc.MarkUnderline, "underline", []string{"u"}, true),
		decorationSpec(doc.MarkStrike, "line-through", []string{"s", "del", "strike"}, false),
		verticalSpec(doc.MarkSubscript, "sub"),
		verticalSpec(doc.MarkSuperscript, "sup"),
		linkSpec(),
		textStyleSpec(),
		fontWeightSpec(),
		textDecorationSpec(),
	}
}

func emitTag(tag string) func(doc.Attrs) *etree.Element {
	return func(doc.Attrs) *etree.Element { return etree.NewElement(tag) }
}

func boldSpec() *MarkSpec {
	return &MarkSpec{
		Type: doc.MarkBold,
		Recover: func(e *Element) (doc.Attrs, bool) {
			v, declared := e.Style("font-weight")
			if e.Is("strong", "b") {
				// editors produce <b style="font-weight: normal"> wrappers
				return nil, !declared || boldWeight(v)
			}
			return nil, declared && boldWeight(v)
		},
		Emit: emitTag("strong"),
	}
}

func boldWeight(v css.Value) bool {
	switch v.Keyword {
	case "bold", "bolder":
		return true
	}
	return v.IsNumeric() && v.Unit == "" && v.Value >= 500
}

func italicSpec() *MarkSpec {
	return &MarkSpec{
		Type: doc.MarkItalic,
		Recover: func(e *Element) (doc.Attrs, bool) {
			v, declared := e.Style("font-style")
			if e.Is("em", "i") {
				return nil, !declared || v.Keyword != "normal"
			}
			return nil, declared && v.Keyword == "italic"
		},
		Emit: emitTag("em"),
	}
}

func verticalSpec(t doc.MarkType, tag string) *MarkSpec {
	keyword := map[string]string{"sub": "sub", "sup": "super"}[tag]
	return &MarkSpec{
		Type: t,
		Recover: func(e *Element) (doc.Attrs, bool) {
			if e.Is(tag) {
				return nil, true
			}
			v, ok := e.Style("vertical-align")
			return nil, ok && v.Keyword == keyword
		},
		Emit: emitTag(tag),
	}
}

func linkSpec() *MarkSpec {
	return &MarkSpec{
		Type: doc.MarkLink,
		Attrs: []AttrSpec{
			{Name: "href", Kind: KindString, Default: ""},
			{Name: "target", Kind: KindString, Default: "_blank"},
			{Name: "rel", Kind: KindString, Default: "noopener noreferrer nofollow"},
			{Name: "class", Kind: KindString},
		},
		Recover: func(e *Element) (doc.Attrs, bool) {
			href, ok := e.Attr("href")
			if !e.Is("a") || !ok {
				return nil, false
			}
			return doc.Attrs{
				"href":   href,
				"target": e.AttrOrNil("target"),
				"rel":    e.AttrOrNil("rel"),
				"class":  e.AttrOrNil("class"),
			}, true
		},
		Emit: func(attrs doc.Attrs) *etree.Element {
			el := etree.NewElement("a")
			for _, name := range []string{"href", "target", "rel", "class"} {
				if v := attrs.StringPtr(name); v != nil {
					el.CreateAttr(name, *v)
				}
			}
			return el
		},
	}
}

// decoration describes underline and strike marks which share the same
// attribute set, except offset which only underline has.
type decoration struct {
	prefix  string // data attribute prefix
	keyword string // decoration line keyword
	offset  bool
}

func (d decoration) fields() []string {
	if d.offset {
		return []string{"color", "style", "thickness", "offset"}
	}
	return []string{"color", "style", "thickness"}
}

var decorationStyleProps = map[string]string{
	"color":     "text-decoration-color",
	"style":     "text-decoration-style",
	"thickness": "text-decoration-thickness",
	"offset":    "text-underline-offset",
}

func decorationSpec(t doc.MarkType, keyword string, tags []string, offset bool) *MarkSpec {
	d := decoration{prefix: "data-" + string(t) + "-", keyword: keyword, offset: offset}
	attrs := []AttrSpec{
		{Name: "color", Kind: KindString},
		{Name: "style", Kind: KindString, Default: "solid", OneOf: DecorationStyles},
		{Name: "thickness", Kind: KindString},
	}
	if offset {
		attrs = append(attrs, AttrSpec{Name: "offset", Kind: KindString})
	}
	return &MarkSpec{
		Type:  t,
		Attrs: attrs,
		Recover: func(e *Element) (doc.Attrs, bool) {
			// owned by textDecoration
			if _, ok := e.Attr("data-text-decoration"); ok {
				return nil, false
			}
			short, hasShort := e.Style("text-decoration")
			line, hasLine := e.Style("text-decoration-line")
			claimed := e.Is(tags...) ||
				(hasLine && line.HasKeyword(keyword)) ||
				(hasShort && short.HasKeyword(keyword))
			if !claimed {
				for _, f := range d.fields() {
					if _, ok := e.Attr(d.prefix + f); ok {
						claimed = true
						break
					}
				}
			}
			if !claimed {
				return nil, false
			}
			var fromShort doc.Attrs
			if hasShort {
				fromShort = decorationShorthand(short)
			}
			out := doc.Attrs{}
			for _, f := range d.fields() {
				if v, ok := e.Attr(d.prefix + f); ok {
					out[f] = v
				} else if v := e.StyleOrNil(decorationStyleProps[f]); v != nil {
					out[f] = v
				} else if v, ok := fromShort[f]; ok {
					out[f] = v
				}
			}
			return out, true
		},
		Emit: func(attrs doc.Attrs) *etree.Element {
			el := etree.NewElement(tags[0])
			var style [][2]string
			for _, f := range d.fields() {
				v := attrs.StringPtr(f)
				if v == nil || (f == "style" && *v == "solid") {
					continue
				}
				el.CreateAttr(d.prefix+f, *v)
				style = append(style, [2]string{decorationStyleProps[f], *v})
			}
			if len(style) > 0 {
				el.CreateAttr("style", css.Join(style...))
			}
			return el
		},
	}
}

// decorationShorthand picks color, style and thickness out of
// "text-decoration" shorthand value.
func decorationShorthand(v css.Value) doc.Attrs {
	out := doc.Attrs{}
	for _, part := range splitValue(v.Raw) {
		lp := strings.ToLower(part)
		switch {
		case lp == "underline" || lp == "overline" || lp == "line-through" || lp == "none" || lp == "blink":
		case slices.Contains(DecorationStyles, lp):
			out["style"] = lp
		case lp == "auto" || lp == "from-font" || isLength(lp):
			out["thickness"] = part
		default:
			out["color"] = part
		}
	}
	return out
}

func isLength(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	return (c >= '0' && c <= '9') || c == '.'
}

// splitValue splits value on spaces outside of parentheses, keeping
// "rgb(1, 2, 3)" as one part.
func splitValue(raw string) []string {
	var parts []string
	var cur strings.Builder
	depth := 0
	for _, r := range raw {
		switch {
		case r == '(':
			depth++
		case r == ')' && depth > 0:
			depth--
		case r == ' ' && depth == 0:
			if cur.Len() > 0 {
				parts = append(parts, cur.String())
				cur.Reset()
			}
			continue
		}
		cur.WriteRune(r)
	}
	if cur.Len() > 0 {
		parts = append(parts, cur.String())
	}
	return parts
}

func textStyleSpec() *MarkSpec {
	return &MarkSpec{
		Type: doc.MarkTextStyle,
		Attrs: []AttrSpec{
			{Name: "color", Kind: KindString},
			{Name: "fontSize", Kind: KindString, OneOf: fontSizeNames()},
		},
		Recover: func(e *Element) (doc.Attrs, bool) {
			_, marker := e.Attr("data-text-style")
			color := e.StyleOrNil("color")
			size, hasSize := e.Style("font-size")
			if !e.Is("span") || (!marker && color == nil && !hasSize) {
				return nil, false
			}
			attrs := doc.Attrs{"color": color, "fontSize": nil}
			if hasSize {
				if _, ok := FontSizeByName(size.Keyword); ok {
					attrs["fontSize"] = size.Keyword
				} else if px, ok := size.Pixels(); ok {
					attrs["fontSize"] = ClosestFontSize(px)
				}
			}
			return attrs, true
		},
		Emit: func(attrs doc.Attrs) *etree.Element {
			el := etree.NewElement("span")
			el.CreateAttr("data-text-style", "")
			var style [][2]string
			if c := attrs.StringPtr("color"); c != nil {
				style = append(style, [2]string{"color", *c})
			}
			if fs, ok := FontSizeByName(attrs.String("fontSize")); ok {
				style = append(style, [2]string{"font-size", px(fs.Size)}, [2]string{"line-height", px(fs.LineHeight)})
			}
			if len(style) > 0 {
				el.CreateAttr("style", css.Join(style...))
			}
			return el
		},
	}
}

func fontWeightSpec() *MarkSpec {
	return &MarkSpec{
		Type: doc.MarkFontWeight,
		Attrs: []AttrSpec{
			{Name: "weight", Kind: KindString},
			{Name: "index", Kind: KindInt},
		},
		Recover: func(e *Element) (doc.Attrs, bool) {
			if v, ok := e.Attr("data-font-weight-index"); ok {
				return doc.Attrs{"index": v, "weight": e.AttrOrNil("data-font-weight")}, true
			}
			for _, c := range e.Classes() {
				if i, ok := FontWeightByClass(c); ok {
					return doc.Attrs{"index": i}, true
				}
			}
			return nil, false
		},
		Emit: func(attrs doc.Attrs) *etree.Element {
			i, _ := attrs.Int("index")
			w := FontWeights[i]
			el := etree.NewElement("span")
			el.CreateAttr("class", w.Class)
			el.CreateAttr("data-font-weight", w.Name)
			el.CreateAttr("data-font-weight-index", strconv.Itoa(i))
			return el
		},
		Fix: fixFontWeight,
	}
}

// fixFontWeight makes index authoritative and refreshes cached label. Index
// outside of the table falls back to label lookup and then to default.
func fixFontWeight(attrs doc.Attrs) {
	i, ok := attrs.Int("index")
	if !ok || i < 0 || i >= len(FontWeights) {
		i = slices.IndexFunc(FontWeights, func(w FontWeightOption) bool { return w.Name == attrs.String("weight") })
		if i < 0 {
			i = DefaultFontWeight
		}
	}
	attrs["index"] = i
	attrs["weight"] = FontWeights[i].Name
}

func textDecorationSpec() *MarkSpec {
	return &MarkSpec{
		Type: doc.MarkTextDecoration,
		Attrs: []AttrSpec{
			{Name: "line", Kind: KindString, Default: "underline"},
			{Name: "color", Kind: KindString},
		},
		Recover: func(e *Element) (doc.Attrs, bool) {
			line, ok := e.Attr("data-text-decoration")
			if !ok {
				return nil, false
			}
			attrs := doc.Attrs{"line": nil, "color": e.AttrOrNil("data-text-decoration-color")}
			if line != "" {
				attrs["line"] = line
			} else {
				attrs["line"] = e.StyleOrNil("text-decoration-line")
			}
			if attrs["color"] == nil {
				attrs["color"] = e.StyleOrNil("text-decoration-color")
			}
			return attrs, true
		},
		Emit: func(attrs doc.Attrs) *etree.Element {
			el := etree.NewElement("span")
			line := attrs.String("line")
			el.CreateAttr("data-text-decoration", line)
			style := [][2]string{{"text-decoration-line", line}}
			if c := attrs.StringPtr("color"); c != nil {
				el.CreateAttr("data-text-decoration-color", *c)
				style = append(style, [2]string{"text-decoration-color", *c})
			}
			el.CreateAttr("style", css.Join(style...))
			return el
		},
	}
}
