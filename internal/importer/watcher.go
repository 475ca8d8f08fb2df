package importer

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports image files created under a folder tree after the
// initial scan. It only emits paths; the receiver runs them through
// Scanner.ImportFile on the owner event loop so queue mutation stays
// single-threaded.
type Watcher struct {
	fsw   *fsnotify.Watcher
	paths chan string
	log   *slog.Logger
}

// Watch starts watching root and its (non-hidden, non-package)
// subdirectories. It terminates when ctx is cancelled.
func Watch(ctx context.Context, root string, log *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	w := &Watcher{fsw: fsw, paths: make(chan string, 64), log: log}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != root && (strings.HasPrefix(name, ".") || filepath.Ext(name) != "") {
			return fs.SkipDir
		}
		return fsw.Add(path)
	})
	if err != nil {
		fsw.Close()
		return nil, err
	}

	go w.run(ctx)
	return w, nil
}

// Paths delivers image files as they appear. Closed when the watcher stops.
func (w *Watcher) Paths() <-chan string { return w.paths }

func (w *Watcher) run(ctx context.Context) {
	defer w.fsw.Close()
	defer close(w.paths)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) {
				continue
			}
			name := filepath.Base(ev.Name)
			if strings.HasPrefix(name, ".") {
				continue
			}
			if !IsImagePath(ev.Name) {
				// A new directory extends the watch set.
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() && filepath.Ext(name) == "" {
					_ = w.fsw.Add(ev.Name)
				}
				continue
			}
			select {
			case w.paths <- ev.Name:
			case <-ctx.Done():
				return
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch: filesystem error", "error", err)
		}
	}
}
