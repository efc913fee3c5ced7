package schema

import (
	"math"
	"strconv"
)

// FontWeightOption is an entry of the ordered font weight table. Marks keep
// index into this table, name is a cached label.
type FontWeightOption struct {
	Name  string
	Class string
	Value int
}

var FontWeights = []FontWeightOption{
	{Name: "thin", Class: "font-thin", Value: 100},
	{Name: "extralight", Class: "font-extralight", Value: 200},
	{Name: "light", Class: "font-light", Value: 300},
	{Name: "normal", Class: "font-normal", Value: 400},
	{Name: "medium", Class: "font-medium", Value: 500},
	{Name: "semibold", Class: "font-semibold", Value: 600},
	{Name: "bold", Class: "font-bold", Value: 700},
	{Name: "extrabold", Class: "font-extrabold", Value: 800},
	{Name: "black", Class: "font-black", Value: 900},
}

// DefaultFontWeight is index of "normal".
const DefaultFontWeight = 3

// FontWeightByClass finds table index by style class.
func FontWeightByClass(class string) (int, bool) {
	for i, w := range FontWeights {
		if w.Class == class {
			return i, true
		}
	}
	return -1, false
}

// FontSizeOption pairs font size with line height, both in px.
type FontSizeOption struct {
	Name       string
	Size       int
	LineHeight int
}

var FontSizes = []FontSizeOption{
	{Name: "x-small", Size: 12, LineHeight: 16},
	{Name: "small", Size: 14, LineHeight: 20},
	{Name: "medium", Size: 16, LineHeight: 24},
	{Name: "large", Size: 18, LineHeight: 28},
	{Name: "x-large", Size: 20, LineHeight: 28},
	{Name: "2x-large", Size: 24, LineHeight: 32},
	{Name: "3x-large", Size: 30, LineHeight: 36},
}

// FontSizeByName returns table entry for symbolic size.
func FontSizeByName(name string) (FontSizeOption, bool) {
	for _, s := range FontSizes {
		if s.Name == name {
			return s, true
		}
	}
	return FontSizeOption{}, false
}

// ClosestFontSize maps pixel size to the symbolic name of the closest table
// entry. Ties go to the smaller size.
func ClosestFontSize(px float64) string {
	best, dist := "", math.Inf(1)
	for _, s := range FontSizes {
		if d := math.Abs(float64(s.Size) - px); d < dist {
			best, dist = s.Name, d
		}
	}
	return best
}

func fontSizeNames() []string {
	names := make([]string, len(FontSizes))
	for i, s := range FontSizes {
		names[i] = s.Name
	}
	return names
}

func px(v int) string {
	return strconv.Itoa(v) + "px"
}

// Image presentation tables used by interactive image views.
var (
	ImageSizes      = []string{"small", "medium", "large"}
	ImageAlignments = []string{"left", "center", "right"}

	ImageSizeClasses = map[string]string{
		"small":  "w-1/3",
		"medium": "w-2/3",
		"large":  "w-full",
	}
	ImageAlignmentClasses = map[string]string{
		"left":   "mr-auto",
		"center": "mx-auto",
		"right":  "ml-auto",
	}
)

// CalloutVariants lists supported callout flavors.
var CalloutVariants = []string{"info", "tip", "warning", "success"}

// DecorationStyles are valid text-decoration-style keywords.
var DecorationStyles = []string{"solid", "double", "dotted", "dashed", "wavy"}
