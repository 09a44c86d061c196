// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	stderrors "errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/jllopis/gedboard/pkg/errors"
)

// PipelineMetrics counts what flows through the load and aggregation
// pipeline. All methods are safe on a nil receiver.
type PipelineMetrics struct {
	recordsLoaded     metric.Int64Counter
	recordsSkipped    metric.Int64Counter
	dashboardsBuilt   metric.Int64Counter
	dashboardDuration metric.Float64Histogram
	errorCounter      metric.Int64Counter
	datasetsGauge     metric.Int64Gauge
}

// NewPipelineMetrics registers the gedboard instruments on the global meter provider.
func NewPipelineMetrics() (*PipelineMetrics, error) {
	meter := otel.Meter("gedboard/pipeline")

	recordsLoaded, err := meter.Int64Counter(
		"gedboard.records.loaded",
		metric.WithDescription("GED records loaded per project"),
	)
	if err != nil {
		return nil, err
	}

	recordsSkipped, err := meter.Int64Counter(
		"gedboard.records.skipped",
		metric.WithDescription("GED records with an unparseable deposit date"),
	)
	if err != nil {
		return nil, err
	}

	dashboardsBuilt, err := meter.Int64Counter(
		"gedboard.dashboards.built",
		metric.WithDescription("Dashboards built by id"),
	)
	if err != nil {
		return nil, err
	}

	dashboardDuration, err := meter.Float64Histogram(
		"gedboard.dashboards.duration",
		metric.WithDescription("Dashboard build time"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	errorCounter, err := meter.Int64Counter(
		"gedboard.errors.total",
		metric.WithDescription("Errors by code and component"),
	)
	if err != nil {
		return nil, err
	}

	datasetsGauge, err := meter.Int64Gauge(
		"gedboard.catalog.datasets",
		metric.WithDescription("Projects known to the catalog"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		recordsLoaded:     recordsLoaded,
		recordsSkipped:    recordsSkipped,
		dashboardsBuilt:   dashboardsBuilt,
		dashboardDuration: dashboardDuration,
		errorCounter:      errorCounter,
		datasetsGauge:     datasetsGauge,
	}, nil
}

// RecordLoad records a finished dataset load.
func (pm *PipelineMetrics) RecordLoad(ctx context.Context, project string, rows, skipped int) {
	if pm == nil {
		return
	}
	attrs := metric.WithAttributes(ProjectAttributes(project)...)
	pm.recordsLoaded.Add(ctx, int64(rows), attrs)
	if skipped > 0 {
		pm.recordsSkipped.Add(ctx, int64(skipped), attrs)
	}
}

// RecordDashboard records one dashboard build and how long it took.
func (pm *PipelineMetrics) RecordDashboard(ctx context.Context, dashboard, project string, elapsed time.Duration) {
	if pm == nil {
		return
	}
	attrs := metric.WithAttributes(DashboardAttributes(dashboard, project)...)
	pm.dashboardsBuilt.Add(ctx, 1, attrs)
	pm.dashboardDuration.Record(ctx, float64(elapsed)/float64(time.Millisecond), attrs)
}

// RecordError increments the error counter. Errors that are not a
// GedError are counted under UNKNOWN.
func (pm *PipelineMetrics) RecordError(ctx context.Context, err error, component string) {
	if pm == nil || err == nil {
		return
	}
	code, recoverable := "UNKNOWN", "unknown"
	var ge *errors.GedError
	if stderrors.As(err, &ge) {
		code = string(ge.Code)
		recoverable = ge.RecoverableString()
	}
	pm.errorCounter.Add(ctx, 1, metric.WithAttributes(ErrorAttributes(code, component, recoverable)...))
}

// RecordCatalogSize records how many projects the catalog currently holds.
func (pm *PipelineMetrics) RecordCatalogSize(ctx context.Context, n int) {
	if pm == nil {
		return
	}
	pm.datasetsGauge.Record(ctx, int64(n))
}
