package publish

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tripdoc/content"
	"tripdoc/doc"
	"tripdoc/schema"
)

// InputKind is recognized authored input format.
type InputKind int

const (
	InputMarkdown InputKind = iota
	InputMarkup
	InputTree
	InputSnapshot
)

func (k InputKind) String() string {
	switch k {
	case InputMarkdown:
		return "markdown"
	case InputMarkup:
		return "markup"
	case InputTree:
		return "tree"
	case InputSnapshot:
		return "snapshot"
	default:
		return "unknown"
	}
}

// detectInput decides input format by file extension, falling back to
// content sniffing.
func detectInput(name string, data []byte) InputKind {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return InputMarkdown
	case ".html", ".htm", ".xhtml":
		return InputMarkup
	}
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.HasPrefix(trimmed, []byte("{")):
		if bytes.Contains(trimmed, []byte(`"tree"`)) && bytes.Contains(trimmed, []byte(`"markup"`)) {
			return InputSnapshot
		}
		return InputTree
	case bytes.HasPrefix(trimmed, []byte("<")):
		return InputMarkup
	}
	return InputMarkdown
}

// readAuthored loads source file as authored state.
func readAuthored(src, lang string) (content.Authored, InputKind, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return content.Authored{}, 0, fmt.Errorf("unable to read source: %w", err)
	}
	a := content.Authored{Lang: lang}
	kind := detectInput(src, data)
	switch kind {
	case InputMarkdown:
		a.Markdown = data
	case InputMarkup:
		a.Markup = string(data)
	case InputTree:
		if a.Tree, err = doc.Decode(bytes.NewReader(data)); err != nil {
			return a, kind, fmt.Errorf("unable to decode document tree (%s): %w", src, err)
		}
	case InputSnapshot:
		s, err := content.Load(data, nil)
		if err != nil {
			return a, kind, err
		}
		a.Tree = s.Tree
		if a.Lang == "" {
			a.Lang = s.Lang
		}
	}
	return a, kind, nil
}

// readSnapshot loads snapshot written by save command.
func readSnapshot(src string, reg *schema.Registry) (*content.Snapshot, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("unable to read snapshot: %w", err)
	}
	s, err := content.Load(data, reg)
	if err != nil {
		return nil, fmt.Errorf("unable to load snapshot (%s): %w", src, err)
	}
	return s, nil
}
