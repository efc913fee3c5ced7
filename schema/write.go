package schema

import (
	"bytes"
	"io"

	"github.com/beevik/etree"
)

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true, "hr": true,
	"img": true, "input": true, "link": true, "meta": true, "source": true,
	"track": true, "wbr": true,
}

// NewFragment creates container for emitted elements.
func NewFragment() *etree.Document {
	d := etree.NewDocument()
	d.WriteSettings = etree.WriteSettings{
		CanonicalText:    true,
		CanonicalAttrVal: true,
	}
	return d
}

// WriteHTML writes fragment so that it parses back identically as HTML:
// void elements are self-closed, all others get explicit end tag even when
// empty.
func WriteHTML(w io.Writer, d *etree.Document) error {
	closeEmpty(&d.Element)
	_, err := d.WriteTo(w)
	return err
}

// HTMLString is WriteHTML into a string.
func HTMLString(d *etree.Document) (string, error) {
	var buf bytes.Buffer
	if err := WriteHTML(&buf, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func closeEmpty(e *etree.Element) {
	for _, c := range e.ChildElements() {
		if len(c.Child) == 0 && !voidElements[c.Tag] {
			c.CreateText("")
			continue
		}
		closeEmpty(c)
	}
}
