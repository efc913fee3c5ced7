// Package debug contains helpers producing human readable dumps of trees for
// troubleshooting and debug reports.
package debug

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/maruel/natural"
)

type TreeWriter struct {
	w *strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{
		w: &strings.Builder{},
	}
}

func (tw TreeWriter) String() string {
	return tw.w.String()
}

func (tw TreeWriter) indent(depth int) {
	for range depth {
		tw.w.WriteString("  ")
	}
}

func (tw TreeWriter) Line(depth int, format string, args ...any) {
	tw.indent(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

func (tw TreeWriter) TextBlock(depth int, label, value string) {
	tw.indent(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	tw.w.WriteString(encodeText(value))
	tw.w.WriteByte('\n')
}

// Attrs writes a single line with all key/value pairs in natural key order,
// so dumps are stable between runs. Empty maps produce no output.
func (tw TreeWriter) Attrs(depth int, label string, attrs map[string]any) {
	if len(attrs) == 0 {
		return
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Sort(natural.StringSlice(keys))

	tw.indent(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(":")
	for _, k := range keys {
		tw.w.WriteByte(' ')
		tw.w.WriteString(k)
		tw.w.WriteByte('=')
		switch v := attrs[k].(type) {
		case nil:
			tw.w.WriteString("null")
		case string:
			tw.w.WriteString(encodeText(v))
			if v == "" {
				tw.w.WriteString(`""`)
			}
		default:
			fmt.Fprintf(tw.w, "%v", v)
		}
	}
	tw.w.WriteByte('\n')
}

func encodeText(raw string) string {
	if raw == "" {
		return raw
	}
	return strconv.Quote(raw)
}
