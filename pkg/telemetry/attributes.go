// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys for gedboard spans and metrics.
const (
	// Dataset attributes
	AttrProject  = "gedboard.project"
	AttrFile     = "gedboard.file"
	AttrRows     = "gedboard.rows"
	AttrSkipped  = "gedboard.skipped"
	AttrDatasets = "gedboard.datasets"

	// Dashboard attributes
	AttrDashboard = "gedboard.dashboard"
	AttrCategory  = "gedboard.category"
	AttrStat      = "gedboard.stat"
	AttrPeriod    = "gedboard.period"
	AttrFormat    = "gedboard.format"
	AttrGroups    = "gedboard.groups"

	// Error attributes
	AttrErrorCode   = "error.code"
	AttrComponent   = "component"
	AttrRecoverable = "recoverable"
)

// ProjectAttributes returns the attributes identifying a project.
func ProjectAttributes(project string) []attribute.KeyValue {
	if project == "" {
		return nil
	}
	return []attribute.KeyValue{attribute.String(AttrProject, project)}
}

// LoadAttributes describes a dataset load.
func LoadAttributes(project, file string, rows, skipped int) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrFile, file),
		attribute.Int(AttrRows, rows),
		attribute.Int(AttrSkipped, skipped),
	}
	return append(ProjectAttributes(project), attrs...)
}

// DashboardAttributes identifies a dashboard build.
func DashboardAttributes(dashboard, project string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.String(AttrDashboard, dashboard)}
	return append(attrs, ProjectAttributes(project)...)
}

// QueryAttributes describes the optional dashboard parameters; empty ones are left out.
func QueryAttributes(category, stat, period string) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	if category != "" {
		attrs = append(attrs, attribute.String(AttrCategory, category))
	}
	if stat != "" {
		attrs = append(attrs, attribute.String(AttrStat, stat))
	}
	if period != "" {
		attrs = append(attrs, attribute.String(AttrPeriod, period))
	}
	return attrs
}

// ErrorAttributes labels an error count.
func ErrorAttributes(code, component, recoverable string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrErrorCode, code),
		attribute.String(AttrComponent, component),
		attribute.String(AttrRecoverable, recoverable),
	}
}
