// SPDX-License-Identifier: Apache-2.0

package report

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/jllopis/gedboard/pkg/alert"
	"github.com/jllopis/gedboard/pkg/analysis"
	"github.com/jllopis/gedboard/pkg/config"
	"github.com/jllopis/gedboard/pkg/errors"
	"github.com/jllopis/gedboard/pkg/ged"
	"github.com/jllopis/gedboard/pkg/telemetry"
)

// Source provides project datasets. *ged.Catalog implements it.
type Source interface {
	Names() []string
	Dataset(ctx context.Context, name string) (*ged.Dataset, error)
}

// Settings are the tunables shared by every dashboard.
type Settings struct {
	Thresholds    alert.Thresholds
	Clusters      int
	Contamination float64
}

// DefaultSettings returns the settings used without configuration.
func DefaultSettings() Settings {
	return Settings{
		Thresholds:    alert.DefaultThresholds(),
		Clusters:      3,
		Contamination: analysis.DefaultContamination,
	}
}

// SettingsFromConfig reads the alerts and analysis sections.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Thresholds:    alert.FromConfig(cfg.Alerts),
		Clusters:      cfg.Analysis.Clusters,
		Contamination: cfg.Analysis.Contamination,
	}
}

// Generator builds dashboards from a source.
type Generator struct {
	source   Source
	settings func() Settings
	metrics  *telemetry.PipelineMetrics
	logger   *slog.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithSettings sets a settings provider, called on every build so that
// reloaded thresholds apply to the next request.
func WithSettings(fn func() Settings) GeneratorOption {
	return func(g *Generator) {
		if fn != nil {
			g.settings = fn
		}
	}
}

// WithMetrics records builds on the pipeline metrics.
func WithMetrics(m *telemetry.PipelineMetrics) GeneratorOption {
	return func(g *Generator) { g.metrics = m }
}

// WithLogger sets the generator logger.
func WithLogger(logger *slog.Logger) GeneratorOption {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGenerator returns a generator reading datasets from source.
func NewGenerator(source Source, opts ...GeneratorOption) *Generator {
	g := &Generator{
		source:   source,
		settings: DefaultSettings,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = telemetry.Component(g.logger, "report")
	return g
}

// Source returns the dataset source.
func (g *Generator) Source() Source {
	return g.source
}

// Build builds dashboard id for the query.
func (g *Generator) Build(ctx context.Context, id string, q Query) (*Report, error) {
	ctx, span := otel.Tracer("gedboard/report").Start(ctx, "report.Build")
	defer span.End()
	span.SetAttributes(telemetry.DashboardAttributes(id, q.Project)...)
	category := ""
	if q.Category != 0 {
		category = q.Category.String()
	}
	span.SetAttributes(telemetry.QueryAttributes(category, string(q.Stat), string(q.Period))...)

	start := time.Now()
	r, err := g.build(ctx, id, q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		g.metrics.RecordError(ctx, err, "report")
		g.logger.DebugContext(ctx, "dashboard failed", "dashboard", id, "project", q.Project, "error", err)
		return nil, err
	}
	g.metrics.RecordDashboard(ctx, id, r.Project, time.Since(start))
	g.logger.DebugContext(ctx, "dashboard built", "dashboard", id, "project", r.Project,
		"tables", len(r.Tables), "charts", len(r.Charts), "elapsed", time.Since(start))
	return r, nil
}

func (g *Generator) build(ctx context.Context, id string, q Query) (*Report, error) {
	d, err := Lookup(id)
	if err != nil {
		return nil, err
	}
	in := Input{Source: g.source, Query: q, Settings: g.settings()}
	if d.PerProject {
		name, err := g.resolveProject(q.Project)
		if err != nil {
			return nil, err
		}
		ds, err := g.source.Dataset(ctx, name)
		if err != nil {
			return nil, err
		}
		if ds.Len() == 0 {
			return nil, errors.Newf(errors.CodeEmptyDataset, "project %q has no records", name).
				WithContext("project", name)
		}
		in.Dataset = ds
		in.Query.Project = name
	}

	r, err := d.build(ctx, in)
	if err != nil {
		return nil, err
	}
	r.ID = uuid.NewString()
	r.Dashboard = d.ID
	if r.Title == "" {
		r.Title = d.Title
	}
	r.Project = in.Query.Project
	r.Query = in.Query
	r.GeneratedAt = time.Now()
	return r, nil
}

func (g *Generator) resolveProject(name string) (string, error) {
	if name != "" {
		return name, nil
	}
	names := g.source.Names()
	if len(names) == 0 {
		return "", errors.New(errors.CodeNotFound, "no project available", nil)
	}
	return names[0], nil
}
