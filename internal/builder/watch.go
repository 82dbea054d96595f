package builder

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watch waits for changes to settle.
const DefaultDebounce = 300 * time.Millisecond

// Watch rebuilds the guide whenever a file under the source directory
// changes. It returns when ctx is cancelled. Build failures are logged
// and do not stop watching.
func (b *Builder) Watch(ctx context.Context, outDir string, debounce time.Duration) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	outAbs, err := filepath.Abs(outDir)
	if err != nil {
		return err
	}
	if err := b.watchTree(w, b.project.SourceDir, outAbs); err != nil {
		return err
	}
	b.logger.Info("watching for changes", "dir", b.project.SourceDir)

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if isWithin(ev.Name, outAbs) || ev.Has(fsnotify.Chmod) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = b.watchTree(w, ev.Name, outAbs)
				}
			}
			b.logger.Debug("source changed", "path", ev.Name, "op", ev.Op.String())
			pending = time.After(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			b.logger.Warn("watch error", "error", err)
		case <-pending:
			pending = nil
			if _, err := b.Build(ctx, outDir); err != nil {
				b.logger.Error("rebuild failed", "error", err)
			}
		}
	}
}

// watchTree adds root and every directory below it, except the output
// directory.
func (b *Builder) watchTree(w *fsnotify.Watcher, root, skip string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if isWithin(path, skip) {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func isWithin(path, dir string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return abs == dir || strings.HasPrefix(abs, dir+string(filepath.Separator))
}
