// Package publish implements command line actions driving the document
// pipeline: saving authored input, rendering and headless inspection.
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"tripdoc/clock"
	"tripdoc/content"
	"tripdoc/state"
	"tripdoc/viewcount"
)

// Save converts authored input into snapshot file.
func Save(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("save")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return err
	}
	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	env.Overwrite, env.Lang = cmd.Bool("overwrite"), cmd.String("lang")

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	_, err = saveFile(ctx, src, dst, log)
	return err
}

// saveFile handles single source independently of CLI framework and returns
// name of written snapshot.
func saveFile(ctx context.Context, src, dst string, log *zap.Logger) (string, error) {
	env := state.EnvFromContext(ctx)

	a, kind, err := readAuthored(src, env.Lang)
	if err != nil {
		return "", err
	}
	log.Debug("Source recognized", zap.String("file", src), zap.Stringer("kind", kind))

	s, err := content.Save(ctx, a, log)
	if err != nil {
		return "", fmt.Errorf("unable to save %s: %w", src, err)
	}
	data, err := s.Write()
	if err != nil {
		return "", err
	}

	name := buildOutputPath(src, dst)
	if err := writeOutput(name, data, env.Overwrite, log); err != nil {
		return "", err
	}
	if env.Rpt != nil {
		env.Rpt.Store(fmt.Sprintf("result-%s%s", s.ID, snapshotExt), name)
	}
	log.Info("Snapshot written", zap.String("to", name), zap.Stringer("id", s.ID),
		zap.Int("words", s.Stats.Words), zap.Int("read_time", s.Stats.ReadTime))
	return name, nil
}

// Render writes HTML of the post stored in snapshot.
func Render(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("render")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no snapshot has been specified")
	}
	s, err := readSnapshot(src, env.Schema)
	if err != nil {
		return err
	}

	html, err := article(s, env.Schema, log).HTML()
	if err != nil {
		return err
	}

	if dst := cmd.Args().Get(1); len(dst) > 0 {
		if err := writeOutput(dst, []byte(html), cmd.Bool("overwrite"), log); err != nil {
			return err
		}
		log.Info("Post rendered", zap.String("to", dst))
	} else if _, err := io.WriteString(output(cmd), html+"\n"); err != nil {
		return err
	}

	if cmd.Bool("count-view") {
		countView(ctx, env, s.ID.String(), log)
	}
	return nil
}

// countView reports single view through live event loop and waits for the
// final outcome. Failure is only logged.
func countView(ctx context.Context, env *state.LocalEnv, postID string, log *zap.Logger) {
	cfg := env.Cfg.ViewCount
	if cfg.Endpoint == "" {
		log.Warn("View counter endpoint is not configured, skipping")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Attempts)*(cfg.Spacing+10*time.Second))
	defer cancel()

	loop := clock.NewLoop(16, log)
	sender := viewcount.NewHTTPSender(cfg.Endpoint, cfg.Token, 10*time.Second)
	reporter := viewcount.NewReporter(cfg, sender, loop, log)

	finished := make(chan error, 1)
	reporter.OnResult(func(_ viewcount.Event, err error) {
		finished <- err
		cancel()
	})
	loop.Do(func() { reporter.Report(ctx, postID) })

	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Debug("Event loop stopped", zap.Error(err))
	}
	reporter.Stop()

	var err error
	select {
	case err = <-finished:
	default:
		err = context.DeadlineExceeded
	}
	switch {
	case err == nil:
		log.Info("View counted", zap.String("post", postID))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		log.Warn("View was not counted before deadline", zap.String("post", postID))
	}
}

// Stats prints content statistics of source.
func Stats(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("stats")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	stats, err := computeStats(ctx, src, cmd.String("lang"), log)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(output(cmd))
	enc.SetIndent("", "  ")
	return enc.Encode(stats)
}

// computeStats counts markup sources literally, other kinds go through save
// pipeline first.
func computeStats(ctx context.Context, src, lang string, log *zap.Logger) (content.Stats, error) {
	env := state.EnvFromContext(ctx)
	wpm := env.Cfg.Document.WordsPerMinute

	a, kind, err := readAuthored(src, lang)
	if err != nil {
		return content.Stats{}, err
	}
	if kind == InputMarkup {
		return content.ComputeStats(a.Markup, wpm), nil
	}
	s, err := content.Save(ctx, a, log)
	if err != nil {
		return content.Stats{}, fmt.Errorf("unable to process %s: %w", src, err)
	}
	return s.Stats, nil
}

func output(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}
