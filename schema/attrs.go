package schema

import (
	"fmt"
	"slices"

	"tripdoc/doc"
)

// AttrKind is the primitive kind of an attribute value.
type AttrKind int

const (
	KindString AttrKind = iota
	KindInt
	KindBool
)

// AttrSpec declares a single attribute. Nil Default means attribute is
// nullable and absent values stay null.
type AttrSpec struct {
	Name    string
	Kind    AttrKind
	Default any
	OneOf   []string // allowed values for enumerated string attributes
}

func (a AttrSpec) coerce(v any) any {
	if v == nil {
		return a.Default
	}
	switch a.Kind {
	case KindString:
		s, ok := v.(string)
		if !ok {
			s = fmt.Sprint(v)
		}
		if len(a.OneOf) > 0 && !slices.Contains(a.OneOf, s) {
			return a.Default
		}
		return s
	case KindInt:
		if i, ok := doc.ToInt(v); ok {
			return i
		}
		return a.Default
	case KindBool:
		if b, ok := v.(bool); ok {
			return b
		}
		return a.Default
	}
	return a.Default
}

// normalizeAttrs returns new map containing exactly declared attributes with
// values coerced to declared kinds. Missing or malformed values fall back to
// defaults.
func normalizeAttrs(specs []AttrSpec, attrs doc.Attrs) doc.Attrs {
	if len(specs) == 0 {
		return nil
	}
	out := make(doc.Attrs, len(specs))
	for _, s := range specs {
		out[s.Name] = s.coerce(attrs[s.Name])
	}
	return out
}

func defaultAttrs(specs []AttrSpec) doc.Attrs {
	return normalizeAttrs(specs, nil)
}

// textAlignAttr is shared by textblocks.
var textAlignAttr = AttrSpec{Name: "textAlign", Kind: KindString, OneOf: []string{"left", "center", "right", "justify"}}
