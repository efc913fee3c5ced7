package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"tripdoc/clock"
	"tripdoc/dom"
	"tripdoc/gallery"
	"tripdoc/state"
	"tripdoc/toc"
)

// Outline prints table of contents of the post laid out in headless page.
func Outline(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("outline")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no snapshot has been specified")
	}
	s, err := readSnapshot(src, env.Schema)
	if err != nil {
		return err
	}

	page := headlessPage(s, env.Schema, viewportSize(cmd), log)
	sched := clock.NewVirtual(time.Now())
	t, err := toc.Mount(page, env.Cfg.Gallery.ContentSelector, env.Cfg.TOC, sched, log)
	if err != nil {
		return err
	}
	defer t.Unmount()

	if at := cmd.Float("at"); at > 0 {
		page.Window().Scroll(at)
		sched.Advance(env.Cfg.TOC.Throttle)
	}
	return writeOutline(output(cmd), t.Items(), t.Active())
}

func writeOutline(w io.Writer, items []*toc.Item, active int) error {
	var walk func(items []*toc.Item, depth int) error
	walk = func(items []*toc.Item, depth int) error {
		for _, it := range items {
			marker := "-"
			if it.Index == active {
				marker = "*"
			}
			if _, err := fmt.Fprintf(w, "%s%s %s (#%s)\n", strings.Repeat("  ", depth), marker, it.Text, it.ID); err != nil {
				return err
			}
			if err := walk(it.Children, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(items, 0)
}

// Gallery lists images discovered in the post and optionally plays opening
// of one of them.
func Gallery(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("gallery")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no snapshot has been specified")
	}
	s, err := readSnapshot(src, env.Schema)
	if err != nil {
		return err
	}

	page := headlessPage(s, env.Schema, viewportSize(cmd), log)
	sched := clock.NewVirtual(time.Now())
	g, err := gallery.Mount(page, env.Cfg.Gallery.ContentSelector, env.Cfg.Gallery, sched, log)
	if err != nil {
		return err
	}
	defer g.Unmount()

	out := output(cmd)
	for i, img := range g.Images() {
		b := img.Element.Box()
		if _, err := fmt.Fprintf(out, "%d\t%s\t%q\t%gx%g@%g,%g\n", i, img.Src, img.Alt, b.Width, b.Height, b.X, b.Y); err != nil {
			return err
		}
	}

	if !cmd.IsSet("open") {
		return nil
	}
	index := int(cmd.Int("open"))
	if !g.Select(index) {
		return fmt.Errorf("unable to open image %d of %d", index, len(g.Images()))
	}
	sched.Flush(100)
	box := g.Box()
	log.Debug("Gallery opened", zap.Int("index", g.Index()), zap.Stringer("state", g.State()))
	_, err = fmt.Fprintf(out, "open %d: %gx%g@%g,%g\n", g.Index(), box.Width, box.Height, box.X, box.Y)
	return err
}

func viewportSize(cmd *cli.Command) dom.Size {
	return dom.Size{Width: cmd.Float("width"), Height: cmd.Float("height")}
}
