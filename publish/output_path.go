package publish

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"tripdoc/config"
)

const snapshotExt = ".snapshot.json"

// buildOutputPath returns snapshot file name for source. Destination ending
// with ".json" is used as is, otherwise it is a directory and file name is
// derived from transliterated source name.
func buildOutputPath(src, dst string) string {
	if strings.EqualFold(filepath.Ext(dst), ".json") {
		return dst
	}
	return filepath.Join(dst, snapshotName(src))
}

func snapshotName(src string) string {
	base := strings.TrimSuffix(filepath.Base(src), snapshotExt)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	name := slug.Make(base)
	if name == "" {
		name = "post"
	}
	return config.CleanFileName(name) + snapshotExt
}

// writeOutput writes data refusing to replace existing file unless
// overwrite is requested.
func writeOutput(name string, data []byte, overwrite bool, log *zap.Logger) error {
	if _, err := os.Stat(name); err == nil {
		if !overwrite {
			return fmt.Errorf("output file already exists: %s", name)
		}
		log.Warn("Overwriting existing file", zap.String("file", name))
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	if err := os.WriteFile(name, data, 0644); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}
	return nil
}
