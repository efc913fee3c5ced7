package render

import (
	"strconv"

	"github.com/gosimple/slug"
)

// Anchors hands out unique element ids derived from heading text.
type Anchors struct {
	used map[string]int
}

func NewAnchors() *Anchors {
	return &Anchors{used: make(map[string]int)}
}

// Reserve marks id as taken, ids stored in the document keep priority.
func (a *Anchors) Reserve(id string) {
	if id != "" {
		a.used[id]++
	}
}

// Make returns unique slug for text. Repeated titles get numeric suffix.
func (a *Anchors) Make(text string) string {
	base := slug.Make(text)
	if base == "" {
		base = "section"
	}
	id := base
	for n := 1; a.used[id] > 0; n++ {
		id = base + "-" + strconv.Itoa(n)
	}
	a.used[id]++
	return id
}
