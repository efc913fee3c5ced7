package render

import (
	"strconv"

	"tripdoc/css"
	"tripdoc/doc"
	"tripdoc/schema"
	"tripdoc/view"
)

func heading(r *Renderer, n *doc.Node, attrs doc.Attrs) *view.Node {
	level, _ := attrs.Int("level")
	id := attrs.String("id")
	if id == "" {
		id = r.anchors.Make(n.PlainText())
	}
	el := view.Element("h"+strconv.Itoa(level), []view.Attr{{Key: "id", Val: id}}, r.children(n)...)
	alignStyle(el, attrs)
	return el
}

func img(attrs doc.Attrs) *view.Node {
	el := view.Element("img", []view.Attr{{Key: "src", Val: attrs.String("src")}})
	for _, name := range []string{"alt", "title"} {
		if v := attrs.StringPtr(name); v != nil {
			el.SetAttr(name, *v)
		}
	}
	return el.SetAttr("loading", "lazy")
}

// enhancedImage resolves size and alignment through layout class tables.
func enhancedImage(_ *Renderer, _ *doc.Node, attrs doc.Attrs) *view.Node {
	size, align := attrs.String("size"), attrs.String("alignment")
	fig := view.Element("figure", []view.Attr{
		{Key: "data-type", Val: "enhanced-image"},
		{Key: "data-size", Val: size},
		{Key: "data-alignment", Val: align},
	})
	fig.AddClass("enhanced-image", schema.ImageSizeClasses[size], schema.ImageAlignmentClasses[align])
	fig.Append(img(attrs).AddClass("w-full", "rounded"))
	if c := attrs.String("caption"); c != "" {
		fig.Append(view.Element("figcaption", nil, view.Text(c)))
	}
	return fig
}

func callout(r *Renderer, n *doc.Node, attrs doc.Attrs) *view.Node {
	variant := attrs.String("variant")
	return view.Element("div", []view.Attr{
		{Key: "data-type", Val: "callout"},
		{Key: "data-variant", Val: variant},
		{Key: "role", Val: "note"},
		{Key: "class", Val: "callout callout-" + variant},
	}, r.children(n)...)
}

var markViews = map[doc.MarkType]markView{
	doc.MarkBold:        wrap("strong"),
	doc.MarkItalic:      wrap("em"),
	doc.MarkSubscript:   wrap("sub"),
	doc.MarkSuperscript: wrap("sup"),
	doc.MarkUnderline:   decorated("u", true),
	doc.MarkStrike:      decorated("s", false),
	doc.MarkLink: func(attrs doc.Attrs, inner *view.Node) *view.Node {
		el := view.Element("a", nil, inner)
		for _, name := range []string{"href", "target", "rel", "class"} {
			if v := attrs.StringPtr(name); v != nil {
				el.SetAttr(name, *v)
			}
		}
		return el
	},
	doc.MarkTextStyle: func(attrs doc.Attrs, inner *view.Node) *view.Node {
		var style [][2]string
		if c := attrs.StringPtr("color"); c != nil {
			style = append(style, [2]string{"color", *c})
		}
		if fs, ok := schema.FontSizeByName(attrs.String("fontSize")); ok {
			style = append(style, [2]string{"font-size", px(fs.Size)}, [2]string{"line-height", px(fs.LineHeight)})
		}
		if len(style) == 0 {
			return inner
		}
		return view.Element("span", []view.Attr{{Key: "style", Val: css.Join(style...)}}, inner)
	},
	doc.MarkFontWeight: func(attrs doc.Attrs, inner *view.Node) *view.Node {
		i, _ := attrs.Int("index")
		return view.Element("span", []view.Attr{{Key: "class", Val: schema.FontWeights[i].Class}}, inner)
	},
	doc.MarkTextDecoration: func(attrs doc.Attrs, inner *view.Node) *view.Node {
		style := [][2]string{{"text-decoration-line", attrs.String("line")}}
		if c := attrs.StringPtr("color"); c != nil {
			style = append(style, [2]string{"text-decoration-color", *c})
		}
		return view.Element("span", []view.Attr{{Key: "style", Val: css.Join(style...)}}, inner)
	},
}

func wrap(tag string) markView {
	return func(_ doc.Attrs, inner *view.Node) *view.Node {
		return view.Element(tag, nil, inner)
	}
}

func decorated(tag string, offset bool) markView {
	return func(attrs doc.Attrs, inner *view.Node) *view.Node {
		var style [][2]string
		if c := attrs.StringPtr("color"); c != nil {
			style = append(style, [2]string{"text-decoration-color", *c})
		}
		if s := attrs.String("style"); s != "" && s != "solid" {
			style = append(style, [2]string{"text-decoration-style", s})
		}
		if t := attrs.StringPtr("thickness"); t != nil {
			style = append(style, [2]string{"text-decoration-thickness", *t})
		}
		if o := attrs.StringPtr("offset"); offset && o != nil {
			style = append(style, [2]string{"text-underline-offset", *o})
		}
		el := view.Element(tag, nil, inner)
		if len(style) > 0 {
			el.SetAttr("style", css.Join(style...))
		}
		return el
	}
}

func px(v int) string {
	return strconv.Itoa(v) + "px"
}
