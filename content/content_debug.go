package content

import (
	"tripdoc/utils/debug"
)

// String returns readable dump of the snapshot. It exists solely for manual
// inspection during debugging.
func (s *Snapshot) String() string {
	if s == nil {
		return "<nil Snapshot>"
	}
	tw := debug.NewTreeWriter()
	tw.Line(0, "Snapshot %s lang[%s] saved[%s]", s.ID, s.Lang, s.SavedAt.Format("2006-01-02T15:04:05Z07:00"))
	tw.Line(1, "Stats words[%d] characters[%d] sentences[%d] read_time[%dm]",
		s.Stats.Words, s.Stats.Characters, s.Stats.Sentences, s.Stats.ReadTime)
	tw.TextBlock(1, "Markup", s.Markup)
	return tw.String() + s.Tree.String()
}
