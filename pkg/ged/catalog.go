// SPDX-License-Identifier: Apache-2.0

package ged

import (
	"context"
	stderrors "errors"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/jllopis/gedboard/pkg/config"
	"github.com/jllopis/gedboard/pkg/errors"
	"github.com/jllopis/gedboard/pkg/telemetry"
)

// DefaultPattern matches every CSV export below the data directory.
const DefaultPattern = "**/*.csv"

// Project is a named export known to the catalog.
type Project struct {
	Name string `yaml:"name" json:"name"`
	Path string `yaml:"path" json:"path"`
}

type manifest struct {
	Projects []Project `yaml:"projects"`
}

// Catalog resolves project names to exports. Datasets are loaded on demand.
type Catalog struct {
	dir      string
	pattern  string
	manifest string
	opts     Options
	logger   *slog.Logger
	metrics  *telemetry.PipelineMetrics

	mu       sync.RWMutex
	projects []Project
	byName   map[string]Project
}

// CatalogOption configures a Catalog.
type CatalogOption func(*Catalog)

// WithPattern sets the doublestar pattern, relative to the data directory.
func WithPattern(pattern string) CatalogOption {
	return func(c *Catalog) {
		if pattern != "" {
			c.pattern = pattern
		}
	}
}

// WithManifest sets a projects manifest. Its entries come first and win
// over globbed files with the same name.
func WithManifest(path string) CatalogOption {
	return func(c *Catalog) { c.manifest = path }
}

// WithLoadOptions sets the decoding options used for every project.
func WithLoadOptions(opts Options) CatalogOption {
	return func(c *Catalog) { c.opts = opts }
}

// WithLogger sets the catalog logger.
func WithLogger(logger *slog.Logger) CatalogOption {
	return func(c *Catalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records loads on the given pipeline metrics.
func WithMetrics(m *telemetry.PipelineMetrics) CatalogOption {
	return func(c *Catalog) { c.metrics = m }
}

// NewCatalog scans dir (may be empty when only a manifest is used).
func NewCatalog(dir string, opts ...CatalogOption) (*Catalog, error) {
	c := &Catalog{
		dir:     dir,
		pattern: DefaultPattern,
		opts:    DefaultOptions(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = telemetry.Component(c.logger, "catalog")
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// CatalogFromConfig builds a catalog from the data, csv and columns sections.
func CatalogFromConfig(cfg *config.Config, opts ...CatalogOption) (*Catalog, error) {
	base := []CatalogOption{
		WithPattern(cfg.Data.Pattern),
		WithManifest(cfg.Data.Manifest),
		WithLoadOptions(OptionsFromConfig(cfg)),
	}
	return NewCatalog(cfg.Data.Dir, append(base, opts...)...)
}

// Dir returns the scanned data directory.
func (c *Catalog) Dir() string {
	return c.dir
}

// Manifest returns the projects manifest path, empty when none is set.
func (c *Catalog) Manifest() string {
	return c.manifest
}

// Reload rescans the manifest and the data directory.
func (c *Catalog) Reload() error {
	var projects []Project
	byName := make(map[string]Project)
	add := func(p Project, source string) {
		if _, dup := byName[p.Name]; dup {
			c.logger.Debug("duplicate project ignored", "project", p.Name, "path", p.Path, "source", source)
			return
		}
		byName[p.Name] = p
		projects = append(projects, p)
	}

	if c.manifest != "" {
		entries, err := readManifest(c.manifest)
		if err != nil {
			return err
		}
		for _, p := range entries {
			add(p, "manifest")
		}
	}

	if c.dir != "" {
		found, err := globProjects(c.dir, c.pattern)
		if err != nil {
			return err
		}
		for _, p := range found {
			add(p, "glob")
		}
	}

	c.mu.Lock()
	c.projects = projects
	c.byName = byName
	c.mu.Unlock()

	c.metrics.RecordCatalogSize(context.Background(), len(projects))
	c.logger.Debug("catalog scanned", "projects", len(projects), "dir", c.dir, "manifest", c.manifest)
	return nil
}

// Projects returns the known projects, manifest entries first then globbed
// files sorted by path.
func (c *Catalog) Projects() []Project {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Project, len(c.projects))
	copy(out, c.projects)
	return out
}

// Names returns the project names in catalog order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, len(c.projects))
	for i, p := range c.projects {
		names[i] = p.Name
	}
	return names
}

// Len returns the number of projects.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.projects)
}

// Project looks up a project by name.
func (c *Catalog) Project(name string) (Project, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.byName[name]
	return p, ok
}

// Dataset loads the export of the named project.
func (c *Catalog) Dataset(ctx context.Context, name string) (*Dataset, error) {
	p, ok := c.Project(name)
	if !ok {
		err := errors.Newf(errors.CodeNotFound, "unknown project %q", name).WithContext("project", name)
		c.metrics.RecordError(ctx, err, "catalog")
		return nil, err
	}
	ds, err := Load(ctx, p.Name, p.Path, c.opts)
	if err != nil {
		c.metrics.RecordError(ctx, err, "loader")
		c.logger.WarnContext(ctx, "load failed", "project", name, "path", p.Path, "error", err)
		return nil, err
	}
	c.metrics.RecordLoad(ctx, name, len(ds.Records), ds.Skipped)
	if ds.Skipped > 0 {
		c.logger.InfoContext(ctx, "records without a valid date", "project", name, "skipped", ds.Skipped)
	}
	return ds, nil
}

// Datasets loads several projects in order. An empty names list loads all.
func (c *Catalog) Datasets(ctx context.Context, names ...string) ([]*Dataset, error) {
	if len(names) == 0 {
		names = c.Names()
	}
	out := make([]*Dataset, 0, len(names))
	for _, name := range names {
		ds, err := c.Dataset(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, ds)
	}
	return out, nil
}

func readManifest(file string) ([]Project, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		code := errors.CodeInternal
		if stderrors.Is(err, os.ErrNotExist) {
			code = errors.CodeNotFound
		}
		return nil, errors.New(code, "cannot read project manifest", err).WithContext("path", file)
	}
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.New(errors.CodeParse, "invalid project manifest", err).WithContext("path", file)
	}
	base := filepath.Dir(file)
	out := make([]Project, 0, len(m.Projects))
	for i, p := range m.Projects {
		p.Name = strings.TrimSpace(p.Name)
		p.Path = strings.TrimSpace(p.Path)
		if p.Path == "" {
			return nil, errors.Newf(errors.CodeInvalidInput, "manifest entry %d has no path", i+1).
				WithContext("path", file)
		}
		if !filepath.IsAbs(p.Path) {
			p.Path = filepath.Join(base, p.Path)
		}
		if p.Name == "" {
			p.Name = projectName(p.Path)
		}
		out = append(out, p)
	}
	return out, nil
}

func globProjects(dir, pattern string) ([]Project, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.New(errors.CodeNotFound, "data directory not found", err).WithContext("dir", dir)
		}
		return nil, errors.New(errors.CodeInternal, "cannot stat data directory", err).WithContext("dir", dir)
	}
	if !info.IsDir() {
		return nil, errors.Newf(errors.CodeInvalidInput, "data path is not a directory: %s", dir)
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, errors.Newf(errors.CodeInvalidInput, "invalid glob pattern %q", pattern)
	}

	matches, err := doublestar.Glob(os.DirFS(dir), pattern, doublestar.WithFilesOnly())
	if err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return nil, errors.New(errors.CodeInternal, "glob failed", err).WithContext("pattern", pattern)
	}
	sort.Strings(matches)

	out := make([]Project, 0, len(matches))
	for _, m := range matches {
		out = append(out, Project{
			Name: projectName(m),
			Path: filepath.Join(dir, filepath.FromSlash(m)),
		})
	}
	return out, nil
}

func projectName(p string) string {
	base := path.Base(filepath.ToSlash(p))
	return strings.TrimSuffix(base, path.Ext(base))
}
