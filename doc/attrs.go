package doc

import (
	"maps"
	"math"
	"strconv"
)

// Attrs maps attribute names to primitive values: string, int, bool or nil.
type Attrs map[string]any

func (a Attrs) Clone() Attrs {
	if a == nil {
		return nil
	}
	return maps.Clone(a)
}

// String returns string value of the attribute, empty string when attribute is
// absent, null or of another kind.
func (a Attrs) String(name string) string {
	s, _ := a[name].(string)
	return s
}

// StringPtr distinguishes null from empty string.
func (a Attrs) StringPtr(name string) *string {
	if s, ok := a[name].(string); ok {
		return &s
	}
	return nil
}

// Int returns integer value of the attribute. Numbers coming from decoded JSON
// and numeric strings are accepted.
func (a Attrs) Int(name string) (int, bool) {
	return ToInt(a[name])
}

func (a Attrs) Bool(name string) bool {
	b, _ := a[name].(bool)
	return b
}

// Equal compares attribute maps treating numeric representations as equal.
func (a Attrs) Equal(b Attrs) bool {
	if len(a) != len(b) {
		return false
	}
	for k, va := range a {
		vb, ok := b[k]
		if !ok || !valueEqual(va, vb) {
			return false
		}
	}
	return true
}

func valueEqual(a, b any) bool {
	if ia, ok := ToInt(a); ok {
		if _, isString := a.(string); !isString {
			ib, ok := ToInt(b)
			_, bString := b.(string)
			return ok && !bString && ia == ib
		}
	}
	return a == b
}

// ToInt converts numeric attribute representation to int.
func ToInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

// MarksEqual compares two mark lists including order.
func MarksEqual(a, b []Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Type != b[i].Type || !a[i].Attrs.Equal(b[i].Attrs) {
			return false
		}
	}
	return true
}
