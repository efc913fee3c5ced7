package publish

import (
	"go.uber.org/zap"

	"tripdoc/content"
	"tripdoc/dom"
	"tripdoc/render"
	"tripdoc/schema"
	"tripdoc/view"
)

// article wraps rendered post body the way site layout does, so configured
// content selectors match.
func article(s *content.Snapshot, reg *schema.Registry, log *zap.Logger) *view.Node {
	body := render.New(reg, log).Render(s.Tree)
	prose := view.Element("div", []view.Attr{{Key: "class", Val: "prose"}, {Key: "lang", Val: s.Lang}}, body)
	return view.Element("article", []view.Attr{{Key: "data-post", Val: s.ID.String()}}, prose)
}

// headlessPage lays out rendered post for viewport of given size.
func headlessPage(s *content.Snapshot, reg *schema.Registry, size dom.Size, log *zap.Logger) *dom.Document {
	return dom.FromView(article(s, reg, log), dom.NewFlowLayout(size.Width), size, log)
}
