// Package content turns authored state into the persisted pair of canonical
// tree and co-derived markup.
package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"tripdoc/doc"
	"tripdoc/markup"
	"tripdoc/schema"
	"tripdoc/state"
)

// Authored is what editing surface hands over on save. Tree is authoritative
// when present, otherwise Markup and then Markdown are recovered into a tree.
type Authored struct {
	Tree     *doc.Node
	Markup   string
	Markdown []byte
	Lang     string
}

// Snapshot is the persisted form of a post body. Tree is used for re-rendering,
// Markup is a convenience copy for display and indexing.
type Snapshot struct {
	ID      uuid.UUID `json:"id"`
	Lang    string    `json:"lang"`
	Markup  string    `json:"markup"`
	Tree    *doc.Node `json:"tree"`
	Stats   Stats     `json:"stats"`
	SavedAt time.Time `json:"saved_at"`
}

// ErrNoContent is returned when authored state carries nothing to save.
var ErrNoContent = errors.New("authored state is empty")

// Save produces snapshot from authored state. Markup is always re-emitted from
// the final tree so both halves of the pair agree.
func Save(ctx context.Context, a Authored, log *zap.Logger) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	env := state.EnvFromContext(ctx)
	log = log.Named("content")

	lang, err := matchLanguage(a.Lang, env.Cfg.Document.DefaultLanguage, env.Cfg.Document.Languages)
	if err != nil {
		return nil, err
	}

	codec := markup.New(env.Schema, &env.Cfg.Document.Markdown, log)

	var tree *doc.Node
	switch {
	case a.Tree != nil:
		if err := doc.Validate(a.Tree); err != nil {
			return nil, fmt.Errorf("invalid document tree: %w", err)
		}
		tree = a.Tree.Clone()
		env.Schema.Normalize(tree)
	case a.Markup != "":
		if tree, err = codec.Decode(a.Markup); err != nil {
			return nil, err
		}
	case len(a.Markdown) > 0:
		if tree, err = codec.FromMarkdown(a.Markdown); err != nil {
			return nil, err
		}
	default:
		return nil, ErrNoContent
	}

	out, err := codec.Encode(tree)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("unable to generate snapshot id: %w", err)
	}

	s := &Snapshot{
		ID:      id,
		Lang:    lang.String(),
		Markup:  out,
		Tree:    tree,
		Stats:   ComputeStats(out, env.Cfg.Document.WordsPerMinute),
		SavedAt: time.Now().UTC(),
	}

	if env.Rpt != nil {
		env.Rpt.StoreData(fmt.Sprintf("snapshot-%s.txt", id), []byte(s.String()))
	}

	log.Debug("Snapshot prepared",
		zap.Stringer("id", s.ID),
		zap.String("lang", s.Lang),
		zap.Int("words", s.Stats.Words),
		zap.Int("read_time", s.Stats.ReadTime))
	return s, nil
}

// matchLanguage validates post language against configured site languages.
// Empty value means site default.
func matchLanguage(value, def string, supported []string) (language.Tag, error) {
	if value == "" {
		value = def
	}
	tag, err := language.Parse(value)
	if err != nil {
		return language.Und, fmt.Errorf("invalid language %q: %w", value, err)
	}
	tags := make([]language.Tag, 0, len(supported))
	for _, s := range supported {
		t, err := language.Parse(s)
		if err != nil {
			return language.Und, fmt.Errorf("invalid configured language %q: %w", s, err)
		}
		tags = append(tags, t)
	}
	if len(tags) == 0 {
		return tag, nil
	}
	_, idx, conf := language.NewMatcher(tags).Match(tag)
	if conf == language.No {
		return language.Und, fmt.Errorf("language %q is not one of site languages %v", value, supported)
	}
	return tags[idx], nil
}

// Load reads snapshot previously written by Write and normalizes its tree
// against registry.
func Load(data []byte, reg *schema.Registry) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unable to decode snapshot: %w", err)
	}
	if s.Tree == nil {
		return nil, errors.New("snapshot has no tree")
	}
	if err := doc.Validate(s.Tree); err != nil {
		return nil, fmt.Errorf("invalid snapshot tree: %w", err)
	}
	if reg != nil {
		reg.Normalize(s.Tree)
	}
	return &s, nil
}

// Write serializes snapshot.
func (s *Snapshot) Write() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("unable to encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}
