package markup

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	ghtml "github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"

	"tripdoc/config"
	"tripdoc/doc"
	"tripdoc/schema"
)

// Codec converts between canonical trees and markup according to registry
// rules.
type Codec struct {
	reg *schema.Registry
	log *zap.Logger
	md  goldmark.Markdown
}

// New creates codec. Nil registry means default one.
func New(reg *schema.Registry, cfg *config.MarkdownConfig, log *zap.Logger) *Codec {
	if reg == nil {
		reg = schema.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}
	exts := []goldmark.Extender{extension.GFM}
	var rendererOpts []goldmark.Option
	if cfg != nil {
		if cfg.Typographer {
			exts = append(exts, extension.Typographer)
		}
		if cfg.Unsafe {
			rendererOpts = append(rendererOpts, goldmark.WithRendererOptions(ghtml.WithUnsafe()))
		}
	}
	return &Codec{
		reg: reg,
		log: log.Named("markup"),
		md:  goldmark.New(append([]goldmark.Option{goldmark.WithExtensions(exts...)}, rendererOpts...)...),
	}
}

// Registry returns schema codec works with.
func (c *Codec) Registry() *schema.Registry {
	return c.reg
}

// FromMarkdown renders Markdown source to markup and recovers tree from it.
func (c *Codec) FromMarkdown(src []byte) (*doc.Node, error) {
	var buf bytes.Buffer
	if err := c.md.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("unable to convert markdown: %w", err)
	}
	return c.Decode(buf.String())
}
