// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Watcher polls the configuration file and its profile variant and
// reloads them when either changes. Overrides given with WithWatchArgs are
// replayed on every reload so that --set values survive file edits.
type Watcher struct {
	mu        sync.RWMutex
	path      string
	profile   string
	overrides map[string]any
	interval  time.Duration
	stamps    map[string]fileStamp
	config    *Config
	listeners []func(*Config)
	stopCh    chan struct{}
	doneCh    chan struct{}
	stopOnce  sync.Once
	logger    *slog.Logger
	argsErr   error
}

// fileStamp identifies a file version. Size catches rewrites within the
// filesystem's mtime resolution.
type fileStamp struct {
	modTime time.Time
	size    int64
}

// WatcherOption configures the watcher.
type WatcherOption func(*Watcher)

// WithWatchInterval sets the polling interval for file changes.
func WithWatchInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithWatchLogger sets the logger for the watcher.
func WithWatchLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithWatchProfile reloads the given profile on top of the main file.
func WithWatchProfile(profile string) WatcherOption {
	return func(w *Watcher) {
		w.profile = profile
	}
}

// WithWatchArgs replays the --set overrides of a LoadWithCLI argument list
// on every load. --config and --profile in args are ignored.
func WithWatchArgs(args []string) WatcherOption {
	return func(w *Watcher) {
		_, overrides, err := parseCLIOverrides(args)
		w.overrides, w.argsErr = overrides, err
	}
}

// NewWatcher creates a watcher over path (and its profile file, if any) and
// loads the initial configuration.
func NewWatcher(path string, opts ...WatcherOption) (*Watcher, error) {
	w := &Watcher{
		path:     path,
		interval: time.Second,
		stamps:   make(map[string]fileStamp),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.argsErr != nil {
		return nil, w.argsErr
	}
	for _, p := range w.files() {
		if st, ok := stampOf(p); ok {
			w.stamps[p] = st
		}
	}

	cfg, err := w.loadConfig()
	if err != nil {
		return nil, err
	}
	w.config = cfg
	return w, nil
}

// OnChange registers fn, called with the new configuration after a reload
// that changed at least one section.
func (w *Watcher) OnChange(fn func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, fn)
}

// Config returns the current configuration.
func (w *Watcher) Config() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.config
}

// Start begins watching for configuration changes.
func (w *Watcher) Start(ctx context.Context) {
	go w.watch(ctx)
}

// Stop stops the watcher and waits for the polling goroutine to exit.
// Stop must only be called after Start.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	<-w.doneCh
}

func (w *Watcher) watch(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			if w.checkForChanges() {
				w.reload()
			}
		}
	}
}

func (w *Watcher) files() []string {
	if w.path == "" {
		return nil
	}
	if w.profile == "" {
		return []string{w.path}
	}
	return []string{w.path, ProfilePath(w.path, w.profile)}
}

func stampOf(path string) (fileStamp, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return fileStamp{}, false
	}
	return fileStamp{modTime: info.ModTime(), size: info.Size()}, true
}

func (w *Watcher) checkForChanges() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	changed := false
	for _, path := range w.files() {
		st, ok := stampOf(path)
		if !ok {
			continue
		}
		if prev, seen := w.stamps[path]; !seen || prev != st {
			w.stamps[path] = st
			changed = true
		}
	}
	return changed
}

func (w *Watcher) reload() {
	cfg, err := w.loadConfig()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		w.logger.Error("failed to reload config, keeping previous", "path", w.path, "error", err)
		return
	}

	w.mu.Lock()
	sections := ChangedSections(w.config, cfg)
	if len(sections) == 0 {
		w.mu.Unlock()
		w.logger.Debug("config file touched, nothing changed", "path", w.path)
		return
	}
	w.config = cfg
	listeners := make([]func(*Config), len(w.listeners))
	copy(listeners, w.listeners)
	w.mu.Unlock()

	w.logger.Info("config reloaded", "path", w.path, "sections", sections)
	for _, fn := range listeners {
		fn(cfg)
	}
}

func (w *Watcher) loadConfig() (*Config, error) {
	return load(w.path, w.profile, w.overrides)
}

// ChangedSections lists the top-level sections that differ between a and
// b, in file order.
func ChangedSections(a, b *Config) []string {
	if a == nil || b == nil {
		return []string{"log", "telemetry", "data", "csv", "columns", "alerts", "analysis", "web"}
	}
	var out []string
	add := func(name string, changed bool) {
		if changed {
			out = append(out, name)
		}
	}
	add("log", a.Log != b.Log)
	add("telemetry", a.Telemetry != b.Telemetry)
	add("data", a.Data != b.Data)
	add("csv", a.CSV != b.CSV)
	add("columns", a.Columns != b.Columns)
	add("alerts", a.Alerts != b.Alerts)
	add("analysis", a.Analysis != b.Analysis)
	add("web", a.Web != b.Web)
	return out
}

// ReloadableConfig provides a thread-safe wrapper around Config
// that can be atomically updated.
type ReloadableConfig struct {
	mu     sync.RWMutex
	config *Config
}

// NewReloadableConfig creates a new reloadable config wrapper.
func NewReloadableConfig(cfg *Config) *ReloadableConfig {
	return &ReloadableConfig{config: cfg}
}

// Get returns the current configuration.
func (r *ReloadableConfig) Get() *Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.config
}

// Update atomically replaces the configuration.
func (r *ReloadableConfig) Update(cfg *Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.config = cfg
}
