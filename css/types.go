// Package css parses inline style declarations found in authored markup.
package css

import (
	"strings"
	"unicode"
)

// Value represents a parsed CSS property value.
type Value struct {
	Raw     string  // Original CSS value string (e.g., "1.2em", "underline dashed", "#ff0000")
	Value   float64 // Numeric value if applicable
	Unit    string  // Unit if applicable: "em", "px", "%", etc.
	Keyword string  // Lower-cased keyword or raw multi-token value
}

// IsNumeric returns true if the value has a numeric component.
// This includes explicit zero values like "0" or "0px".
func (v Value) IsNumeric() bool {
	if v.Unit != "" {
		return true
	}
	if v.Value != 0 && v.Keyword == "" {
		return true
	}
	if v.Raw != "" && v.Keyword == "" {
		firstChar := rune(v.Raw[0])
		if unicode.IsDigit(firstChar) || firstChar == '.' || firstChar == '-' || firstChar == '+' {
			return true
		}
	}
	return false
}

// Pixels returns value in pixels for absolute px values and unit-less numbers.
func (v Value) Pixels() (float64, bool) {
	if !v.IsNumeric() {
		return 0, false
	}
	switch v.Unit {
	case "px", "":
		return v.Value, true
	}
	return 0, false
}

// HasKeyword reports whether space separated value contains keyword, case
// insensitive. "underline dashed red" has "underline".
func (v Value) HasKeyword(kw string) bool {
	for _, f := range strings.Fields(strings.ToLower(v.Raw)) {
		if f == kw {
			return true
		}
	}
	return false
}

// Declaration is a single "property: value" pair.
type Declaration struct {
	Property string
	Value    Value
}

// Declarations keeps declarations in source order. When property is repeated
// last one wins, as in browsers.
type Declarations []Declaration

// Get returns value of the last declaration of property.
func (d Declarations) Get(property string) (Value, bool) {
	property = strings.ToLower(property)
	for i := len(d) - 1; i >= 0; i-- {
		if d[i].Property == property {
			return d[i].Value, true
		}
	}
	return Value{}, false
}

// Has reports whether property is declared.
func (d Declarations) Has(property string) bool {
	_, ok := d.Get(property)
	return ok
}

// Join formats declarations back into inline style. Empty list produces
// empty string.
func Join(pairs ...[2]string) string {
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, p[0]+": "+p[1])
	}
	return strings.Join(parts, "; ")
}
