package schema

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"go.uber.org/zap"

	"tripdoc/doc"
)

// SetMark applies mark to a leaf. When leaf already carries mark of that type
// provided attributes are merged into it in place, so mark keeps its position
// and nesting. Otherwise mark is appended and becomes outermost.
func (r *Registry) SetMark(leaf *doc.Node, t doc.MarkType, attrs doc.Attrs) error {
	if err := r.checkLeaf(leaf, t); err != nil {
		return err
	}
	if i := leaf.MarkIndex(t); i >= 0 {
		merged := leaf.Marks[i].Attrs.Clone()
		if merged == nil {
			merged = doc.Attrs{}
		}
		maps.Copy(merged, attrs)
		leaf.Marks[i].Attrs = r.MarkAttrs(t, merged)
		return nil
	}
	leaf.Marks = append(leaf.Marks, doc.Mark{Type: t, Attrs: r.MarkAttrs(t, attrs)})
	return nil
}

// UnsetMark removes every mark of type from a leaf. Removing font weight also
// prunes text style mark left without attributes.
func (r *Registry) UnsetMark(leaf *doc.Node, t doc.MarkType) error {
	if err := r.checkLeaf(leaf, t); err != nil {
		return err
	}
	leaf.Marks = slices.DeleteFunc(leaf.Marks, func(m doc.Mark) bool { return m.Type == t })
	if t == doc.MarkFontWeight {
		r.pruneTextStyle(leaf)
	}
	return nil
}

// ToggleMark removes mark when leaf has it and sets it otherwise.
func (r *Registry) ToggleMark(leaf *doc.Node, t doc.MarkType, attrs doc.Attrs) error {
	if leaf != nil && leaf.HasMark(t) {
		return r.UnsetMark(leaf, t)
	}
	return r.SetMark(leaf, t, attrs)
}

// SetFontWeight sets weight by index into FontWeights.
func (r *Registry) SetFontWeight(leaf *doc.Node, index int) error {
	if index < 0 || index >= len(FontWeights) {
		return fmt.Errorf("font weight index %d out of range [0, %d)", index, len(FontWeights))
	}
	return r.SetMark(leaf, doc.MarkFontWeight, doc.Attrs{"index": index, "weight": FontWeights[index].Name})
}

// SetFontSize sets symbolic font size on leaf text style.
func (r *Registry) SetFontSize(leaf *doc.Node, name string) error {
	if _, ok := FontSizeByName(name); !ok {
		return fmt.Errorf("unknown font size %q", name)
	}
	return r.SetMark(leaf, doc.MarkTextStyle, doc.Attrs{"fontSize": name})
}

// UnsetFontSize clears font size and prunes text style if nothing else is
// left in it.
func (r *Registry) UnsetFontSize(leaf *doc.Node) error {
	if err := r.checkLeaf(leaf, doc.MarkTextStyle); err != nil {
		return err
	}
	if i := leaf.MarkIndex(doc.MarkTextStyle); i >= 0 {
		leaf.Marks[i].Attrs = r.MarkAttrs(doc.MarkTextStyle, leaf.Marks[i].Attrs)
		leaf.Marks[i].Attrs["fontSize"] = nil
	}
	r.pruneTextStyle(leaf)
	return nil
}

func (r *Registry) pruneTextStyle(leaf *doc.Node) {
	before := len(leaf.Marks)
	leaf.Marks = slices.DeleteFunc(leaf.Marks, func(m doc.Mark) bool {
		if m.Type != doc.MarkTextStyle {
			return false
		}
		for _, v := range m.Attrs {
			if v != nil {
				return false
			}
		}
		return true
	})
	if len(leaf.Marks) != before {
		r.log.Debug("Pruned empty text style", zap.Int("removed", before-len(leaf.Marks)))
	}
}

func (r *Registry) checkLeaf(leaf *doc.Node, t doc.MarkType) error {
	if leaf == nil || !leaf.IsLeaf() {
		return errors.New("marks only apply to leaf nodes")
	}
	if _, ok := r.markIdx[t]; !ok {
		return fmt.Errorf("undeclared mark type %q", t)
	}
	return nil
}
