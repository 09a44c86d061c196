// SPDX-License-Identifier: Apache-2.0

// Package report turns analysis results into renderable dashboards made
// of tables and charts.
package report

import (
	"strconv"
	"time"

	"github.com/jllopis/gedboard/pkg/alert"
	"github.com/jllopis/gedboard/pkg/analysis"
)

// DateLayout formats dates in tables.
const DateLayout = "02/01/2006"

// Table is a titled grid of formatted cells.
type Table struct {
	Title   string     `json:"title"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
	// Alerts marks the columns holding alert labels and which alert they show.
	Alerts map[int]alert.Kind `json:"-"`
}

// AddRow appends a row of cells.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// ChartKind names how a chart is drawn.
type ChartKind string

const (
	ChartBar     ChartKind = "bar"
	ChartBarH    ChartKind = "barh"
	ChartPie     ChartKind = "pie"
	ChartLine    ChartKind = "line"
	ChartSankey  ChartKind = "sankey"
	ChartTreemap ChartKind = "treemap"
	ChartGantt   ChartKind = "gantt"
	ChartScatter ChartKind = "scatter"
	ChartBox     ChartKind = "box"
)

// Series is one named sequence of values aligned on Chart.Labels.
type Series struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
	Colors []string  `json:"colors,omitempty"`
}

// Span is a Gantt bar.
type Span struct {
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Info  string    `json:"info,omitempty"`
}

// Chart is the data behind one figure. Only the fields matching Kind are set.
type Chart struct {
	Kind    ChartKind               `json:"kind"`
	Title   string                  `json:"title"`
	XLabel  string                  `json:"x_label,omitempty"`
	YLabel  string                  `json:"y_label,omitempty"`
	Labels  []string                `json:"labels,omitempty"`
	Series  []Series                `json:"series,omitempty"`
	Parents []string                `json:"parents,omitempty"` // treemap
	Links   []analysis.FlowLink     `json:"links,omitempty"`   // sankey
	Spans   []Span                  `json:"spans,omitempty"`   // gantt
	Boxes   map[string]analysis.Box `json:"boxes,omitempty"`
}

// Max returns the largest value across all series, 0 when empty.
func (c Chart) Max() float64 {
	var m float64
	for _, s := range c.Series {
		for _, v := range s.Values {
			if v > m {
				m = v
			}
		}
	}
	return m
}

// Report is a built dashboard.
type Report struct {
	ID          string         `json:"id"`
	Dashboard   string         `json:"dashboard"`
	Title       string         `json:"title"`
	Project     string         `json:"project,omitempty"`
	GeneratedAt time.Time      `json:"generated_at"`
	Query       Query          `json:"query"`
	Tables      []Table        `json:"tables"`
	Charts      []Chart        `json:"charts"`
	Meta        map[string]any `json:"meta,omitempty"`
}

func (r *Report) addMeta(key string, value any) {
	if r.Meta == nil {
		r.Meta = make(map[string]any)
	}
	r.Meta[key] = value
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(analysis.Round(v, 2), 'f', -1, 64)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
