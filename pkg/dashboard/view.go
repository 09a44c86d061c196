// SPDX-License-Identifier: Apache-2.0

package dashboard

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jllopis/gedboard/pkg/alert"
	"github.com/jllopis/gedboard/pkg/report"
)

// cssColors maps alert colors to page colors.
var cssColors = map[string]string{
	"lightgreen": "#c5e1a5",
	"yellow":     "#fff59d",
	"orange":     "#ffcc80",
	"red":        "#ef9a9a",
}

type cellView struct {
	Text  string
	Color string
}

type tableView struct {
	Title   string
	Headers []string
	Rows    [][]cellView
}

type barView struct {
	Label string
	Value string
	Width float64 // percent of the largest value
	Color string
}

type spanView struct {
	Label string
	Start string
	End   string
	Info  string
	Left  float64 // percent of the chart range
	Width float64
}

type linkView struct {
	Source string
	Target string
	Value  int
}

type chartView struct {
	Title  string
	Kind   string
	Bars   []barView
	Spans  []spanView
	Links  []linkView
	Matrix *tableView
}

type metaView struct {
	Key   string
	Value string
}

type reportView struct {
	Title     string
	Project   string
	Generated string
	Tables    []tableView
	Charts    []chartView
	Meta      []metaView
}

func newReportView(r *report.Report) reportView {
	v := reportView{
		Title:     r.Title,
		Project:   r.Project,
		Generated: humanize.Time(r.GeneratedAt),
		Meta:      metaViews(r.Meta),
	}
	for _, t := range r.Tables {
		v.Tables = append(v.Tables, newTableView(t))
	}
	for _, c := range r.Charts {
		v.Charts = append(v.Charts, newChartView(c))
	}
	return v
}

func newTableView(t report.Table) tableView {
	v := tableView{Title: t.Title, Headers: t.Headers}
	for _, row := range t.Rows {
		cells := make([]cellView, len(row))
		for i, text := range row {
			cells[i] = cellView{Text: text}
			if kind, ok := t.Alerts[i]; ok {
				if lvl, err := alert.ParseLevel(text); err == nil {
					cells[i].Color = cssColors[lvl.Color(kind)]
				}
			}
		}
		v.Rows = append(v.Rows, cells)
	}
	return v
}

func newChartView(c report.Chart) chartView {
	v := chartView{Title: c.Title, Kind: string(c.Kind)}
	switch {
	case c.Kind == report.ChartGantt:
		v.Spans = spanViews(c.Spans)
	case c.Kind == report.ChartSankey:
		for _, l := range c.Links {
			v.Links = append(v.Links, linkView{Source: label(c.Labels, l.Source), Target: label(c.Labels, l.Target), Value: l.Value})
		}
	case c.Kind == report.ChartBox:
		m := tableView{Headers: []string{"", "min", "q1", "médiane", "q3", "max"}}
		for _, g := range c.Labels {
			b := c.Boxes[g]
			m.Rows = append(m.Rows, textCells(g, ftoa(b.Min), ftoa(b.Q1), ftoa(b.Median), ftoa(b.Q3), ftoa(b.Max)))
		}
		v.Matrix = &m
	case len(c.Series) > 1:
		m := tableView{Headers: append([]string{""}, c.Labels...)}
		for _, s := range c.Series {
			cells := []string{s.Name}
			for _, x := range s.Values {
				cells = append(cells, ftoa(x))
			}
			m.Rows = append(m.Rows, textCells(cells...))
		}
		v.Matrix = &m
	case len(c.Series) == 1:
		top := c.Max()
		s := c.Series[0]
		for i, l := range c.Labels {
			if i >= len(s.Values) {
				break
			}
			b := barView{Label: l, Value: ftoa(s.Values[i])}
			if top > 0 {
				b.Width = math.Round(s.Values[i]/top*1000) / 10
			}
			if i < len(s.Colors) {
				if css, ok := cssColors[s.Colors[i]]; ok {
					b.Color = css
				} else {
					b.Color = s.Colors[i]
				}
			}
			v.Bars = append(v.Bars, b)
		}
	}
	return v
}

func spanViews(spans []report.Span) []spanView {
	if len(spans) == 0 {
		return nil
	}
	first, last := spans[0].Start, spans[0].End
	for _, s := range spans {
		if s.Start.Before(first) {
			first = s.Start
		}
		if s.End.After(last) {
			last = s.End
		}
	}
	total := last.Sub(first)
	out := make([]spanView, 0, len(spans))
	for _, s := range spans {
		v := spanView{
			Label: s.Label,
			Start: s.Start.Format(report.DateLayout),
			End:   s.End.Format(report.DateLayout),
			Info:  s.Info,
			Width: 100,
		}
		if total > 0 {
			v.Left = pct(s.Start.Sub(first), total)
			v.Width = math.Max(pct(s.End.Sub(s.Start), total), 0.5)
		}
		out = append(out, v)
	}
	return out
}

func pct(d, total time.Duration) float64 {
	return math.Round(float64(d)/float64(total)*1000) / 10
}

func label(labels []string, i int) string {
	if i >= 0 && i < len(labels) {
		return labels[i]
	}
	return fmt.Sprint(i)
}

func textCells(texts ...string) []cellView {
	cells := make([]cellView, len(texts))
	for i, t := range texts {
		cells[i] = cellView{Text: t}
	}
	return cells
}

func ftoa(v float64) string {
	return humanize.FtoaWithDigits(v, 2)
}

// optionKeys are meta entries feeding the filter form rather than the summary.
var optionKeys = map[string]bool{"groups": true, "types": true, "indices": true, "lots": true, "projects": true}

func metaViews(meta map[string]any) []metaView {
	keys := make([]string, 0, len(meta))
	for k := range meta {
		if !optionKeys[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := make([]metaView, 0, len(keys))
	for _, k := range keys {
		var v string
		switch x := meta[k].(type) {
		case nil:
			v = "n/a"
		case int:
			v = humanize.Comma(int64(x))
		case float64:
			v = humanize.CommafWithDigits(x, 2)
		default:
			v = fmt.Sprint(x)
		}
		out = append(out, metaView{Key: k, Value: v})
	}
	return out
}
