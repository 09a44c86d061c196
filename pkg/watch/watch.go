// SPDX-License-Identifier: Apache-2.0

// Package watch reloads the project catalog when CSV exports or the
// projects manifest change on disk.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jllopis/gedboard/pkg/errors"
	"github.com/jllopis/gedboard/pkg/telemetry"
)

// Reloader is refreshed after a burst of changes. *ged.Catalog implements it.
type Reloader interface {
	Reload() error
}

// DefaultDebounce is the quiet period before a reload.
const DefaultDebounce = 500 * time.Millisecond

var watchedExt = map[string]bool{".csv": true, ".yaml": true, ".yml": true}

// Watcher watches a data directory tree and, optionally, a few more
// directories such as the one holding the projects manifest.
type Watcher struct {
	dir      string
	extra    []string
	reloader Reloader
	debounce time.Duration
	logger   *slog.Logger
	onReload []func(error)
	fsw      *fsnotify.Watcher
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a reload.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the watcher logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithDir also watches dir, without its subdirectories. Empty values are
// ignored.
func WithDir(dir string) Option {
	return func(w *Watcher) {
		if dir != "" {
			w.extra = append(w.extra, dir)
		}
	}
}

// OnReload registers fn, called after every reload with its result.
func OnReload(fn func(error)) Option {
	return func(w *Watcher) { w.onReload = append(w.onReload, fn) }
}

// New watches dir and every directory below it, plus the directories
// given with WithDir. dir may be empty when WithDir names something to
// watch.
func New(dir string, r Reloader, opts ...Option) (*Watcher, error) {
	w := &Watcher{
		dir:      dir,
		reloader: r,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if dir == "" && len(w.extra) == 0 {
		return nil, errors.New(errors.CodeInvalidInput, "nothing to watch: no data directory and no manifest", nil)
	}
	for _, d := range append([]string{dir}, w.extra...) {
		if d == "" {
			continue
		}
		if err := checkDir(d); err != nil {
			return nil, err
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.New(errors.CodeInternal, "create file watcher", err)
	}
	w.fsw = fsw
	w.logger = telemetry.Component(w.logger, "watch")

	if dir != "" {
		if err := w.addTree(dir); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	for _, d := range w.extra {
		if err := fsw.Add(d); err != nil {
			_ = fsw.Close()
			return nil, errors.New(errors.CodeInternal, "watch directory", err).WithContext("dir", d)
		}
	}
	return w, nil
}

func checkDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return errors.New(errors.CodeNotFound, "data directory not found", err).WithContext("dir", dir)
	}
	if !info.IsDir() {
		return errors.Newf(errors.CodeInvalidInput, "%s is not a directory", dir).WithContext("dir", dir)
	}
	return nil
}

// Run processes events until ctx is done, then releases the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	w.logger.Info("watching data directory", "dir", w.dir, "also", w.extra, "debounce", w.debounce)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("data change", "path", ev.Name, "op", ev.Op.String())
			if pending && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)
			pending = true

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)

		case <-timer.C:
			pending = false
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	err := w.reloader.Reload()
	if err != nil {
		w.logger.Error("catalog reload failed", "error", err)
	} else {
		w.logger.Info("catalog reloaded", "dir", w.dir)
	}
	for _, fn := range w.onReload {
		fn(err)
	}
}

// relevant reports whether ev touches a watched file. New directories are
// added to the watch list and count as a change.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Has(fsnotify.Create) && w.inTree(ev.Name) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(ev.Name); err != nil {
				w.logger.Warn("cannot watch directory", "dir", ev.Name, "error", err)
			}
			return true
		}
	}
	if ev.Op == fsnotify.Chmod {
		return false
	}
	if strings.HasPrefix(filepath.Base(ev.Name), ".") {
		return false
	}
	return watchedExt[strings.ToLower(filepath.Ext(ev.Name))]
}

// inTree reports whether path lies below the recursively watched data
// directory.
func (w *Watcher) inTree(path string) bool {
	if w.dir == "" {
		return false
	}
	rel, err := filepath.Rel(w.dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if base := d.Name(); path != root && strings.HasPrefix(base, ".") {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return errors.New(errors.CodeInternal, "watch directory", err).WithContext("dir", path)
		}
		return nil
	})
}
