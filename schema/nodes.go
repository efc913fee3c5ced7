package schema

import (
	"slices"
	"strconv"

	"github.com/beevik/etree"

	"tripdoc/css"
	"tripdoc/doc"
)

func builtinNodes() []*NodeSpec {
	return []*NodeSpec{
		{Type: doc.TypeDoc},
		{Type: doc.TypeText, Inline: true},
		paragraphSpec(),
		headingSpec(),
		simpleNode(doc.TypeBulletList, "ul"),
		orderedListSpec(),
		simpleNode(doc.TypeListItem, "li"),
		simpleNode(doc.TypeBlockquote, "blockquote"),
		{
			Type:  doc.TypeHorizontalRule,
			Atom:  true,
			Match: func(e *Element) bool { return e.Is("hr") },
			Emit:  func(doc.Attrs) (*etree.Element, *etree.Element) { return etree.NewElement("hr"), nil },
		},
		{
			Type:   doc.TypeHardBreak,
			Atom:   true,
			Inline: true,
			Match:  func(e *Element) bool { return e.Is("br") },
			Emit:   func(doc.Attrs) (*etree.Element, *etree.Element) { return etree.NewElement("br"), nil },
		},
		enhancedImageSpec(),
		imageSpec(),
		calloutSpec(),
	}
}

func simpleNode(t doc.NodeType, tag string) *NodeSpec {
	return &NodeSpec{
		Type:  t,
		Match: func(e *Element) bool { return e.Is(tag) },
		Emit: func(doc.Attrs) (*etree.Element, *etree.Element) {
			el := etree.NewElement(tag)
			return el, el
		},
	}
}

func recoverTextAlign(e *Element) any {
	if v, ok := e.Style("text-align"); ok && v.Keyword != "" {
		return v.Keyword
	}
	return nil
}

func emitTextAlign(el *etree.Element, attrs doc.Attrs) {
	if a := attrs.String("textAlign"); a != "" {
		el.CreateAttr("style", css.Join([2]string{"text-align", a}))
	}
}

func paragraphSpec() *NodeSpec {
	return &NodeSpec{
		Type:      doc.TypeParagraph,
		Attrs:     []AttrSpec{textAlignAttr},
		Textblock: true,
		Match: func(e *Element) bool { return e.Is("p") },
		Recover: func(e *Element) doc.Attrs {
			return doc.Attrs{"textAlign": recoverTextAlign(e)}
		},
		Emit: func(attrs doc.Attrs) (*etree.Element, *etree.Element) {
			el := etree.NewElement("p")
			emitTextAlign(el, attrs)
			return el, el
		},
	}
}

var headingTags = []string{"h1", "h2", "h3", "h4", "h5", "h6"}

// HeadingLevel returns level of heading tag name, 0 for other names.
func HeadingLevel(tag string) int {
	return slices.Index(headingTags, tag) + 1
}

func headingSpec() *NodeSpec {
	return &NodeSpec{
		Type:      doc.TypeHeading,
		Textblock: true,
		Attrs: []AttrSpec{
			{Name: "level", Kind: KindInt, Default: 1},
			textAlignAttr,
			{Name: "id", Kind: KindString},
		},
		Match: func(e *Element) bool { return e.Is(headingTags...) },
		Recover: func(e *Element) doc.Attrs {
			return doc.Attrs{
				"level":     HeadingLevel(e.Tag()),
				"textAlign": recoverTextAlign(e),
				"id":        e.AttrOrNil("id"),
			}
		},
		Emit: func(attrs doc.Attrs) (*etree.Element, *etree.Element) {
			level, _ := attrs.Int("level")
			el := etree.NewElement(headingTags[level-1])
			if id := attrs.StringPtr("id"); id != nil {
				el.CreateAttr("id", *id)
			}
			emitTextAlign(el, attrs)
			return el, el
		},
		Fix: func(attrs doc.Attrs) {
			level, _ := attrs.Int("level")
			attrs["level"] = min(max(level, 1), len(headingTags))
		},
	}
}

func orderedListSpec() *NodeSpec {
	return &NodeSpec{
		Type:  doc.TypeOrderedList,
		Attrs: []AttrSpec{{Name: "start", Kind: KindInt, Default: 1}},
		Match: func(e *Element) bool { return e.Is("ol") },
		Recover: func(e *Element) doc.Attrs {
			return doc.Attrs{"start": e.AttrOrNil("start")}
		},
		Emit: func(attrs doc.Attrs) (*etree.Element, *etree.Element) {
			el := etree.NewElement("ol")
			if start, _ := attrs.Int("start"); start != 1 {
				el.CreateAttr("start", strconv.Itoa(start))
			}
			return el, el
		},
	}
}

var imageAttrs = []AttrSpec{
	{Name: "src", Kind: KindString, Default: ""},
	{Name: "alt", Kind: KindString},
	{Name: "title", Kind: KindString},
}

func emitImg(attrs doc.Attrs) *etree.Element {
	el := etree.NewElement("img")
	el.CreateAttr("src", attrs.String("src"))
	for _, name := range []string{"alt", "title"} {
		if v := attrs.StringPtr(name); v != nil {
			el.CreateAttr(name, *v)
		}
	}
	return el
}

func imageSpec() *NodeSpec {
	return &NodeSpec{
		Type:   doc.TypeImage,
		Attrs:  imageAttrs,
		Atom:   true,
		Inline: true,
		Match:  func(e *Element) bool { return e.Is("img") },
		Recover: func(e *Element) doc.Attrs {
			return doc.Attrs{
				"src":   e.AttrOrNil("src"),
				"alt":   e.AttrOrNil("alt"),
				"title": e.AttrOrNil("title"),
			}
		},
		Emit: func(attrs doc.Attrs) (*etree.Element, *etree.Element) {
			return emitImg(attrs), nil
		},
	}
}

func enhancedImageSpec() *NodeSpec {
	return &NodeSpec{
		Type: doc.TypeEnhancedImage,
		Attrs: append(slices.Clone(imageAttrs),
			AttrSpec{Name: "size", Kind: KindString, Default: "medium", OneOf: ImageSizes},
			AttrSpec{Name: "alignment", Kind: KindString, Default: "center", OneOf: ImageAlignments},
			AttrSpec{Name: "caption", Kind: KindString, Default: ""},
		),
		Atom: true,
		Match: func(e *Element) bool {
			if !e.Is("figure") {
				return false
			}
			if t, _ := e.Attr("data-type"); t == "enhanced-image" {
				return true
			}
			return e.Child("img") != nil
		},
		Recover: func(e *Element) doc.Attrs {
			img := e.Child("img")
			attrs := doc.Attrs{
				"src":       nil,
				"alt":       nil,
				"title":     nil,
				"size":      e.AttrOrNil("data-size"),
				"alignment": e.AttrOrNil("data-alignment"),
				"caption":   nil,
			}
			for _, name := range []string{"src", "alt", "title"} {
				if v, ok := attrOf(img, name); ok {
					attrs[name] = v
				}
			}
			if fc := e.Child("figcaption"); fc != nil {
				attrs["caption"] = TextContent(fc)
			}
			// layout classes written by interactive views
			for _, c := range e.Classes() {
				for size, class := range ImageSizeClasses {
					if c == class && attrs["size"] == nil {
						attrs["size"] = size
					}
				}
				for align, class := range ImageAlignmentClasses {
					if c == class && attrs["alignment"] == nil {
						attrs["alignment"] = align
					}
				}
			}
			return attrs
		},
		Emit: func(attrs doc.Attrs) (*etree.Element, *etree.Element) {
			fig := etree.NewElement("figure")
			fig.CreateAttr("data-type", "enhanced-image")
			fig.CreateAttr("data-size", attrs.String("size"))
			fig.CreateAttr("data-alignment", attrs.String("alignment"))
			fig.AddChild(emitImg(attrs))
			if c := attrs.String("caption"); c != "" {
				fig.CreateElement("figcaption").SetText(c)
			}
			return fig, nil
		},
	}
}

func calloutSpec() *NodeSpec {
	return &NodeSpec{
		Type:  doc.TypeCallout,
		Attrs: []AttrSpec{{Name: "variant", Kind: KindString, Default: "info", OneOf: CalloutVariants}},
		Match: func(e *Element) bool {
			t, _ := e.Attr("data-type")
			return e.Is("div", "aside") && (t == "callout" || t == "info")
		},
		Recover: func(e *Element) doc.Attrs {
			return doc.Attrs{"variant": e.AttrOrNil("data-variant")}
		},
		Emit: func(attrs doc.Attrs) (*etree.Element, *etree.Element) {
			el := etree.NewElement("div")
			el.CreateAttr("data-type", "callout")
			el.CreateAttr("data-variant", attrs.String("variant"))
			return el, el
		},
	}
}
