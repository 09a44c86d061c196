// SPDX-License-Identifier: Apache-2.0

package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/jllopis/gedboard/pkg/alert"
	"github.com/jllopis/gedboard/pkg/errors"
)

// Format selects a renderer.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat validates an output format name. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatCSV:
		return f, nil
	}
	return "", errors.Newf(errors.CodeInvalidInput, "unknown output format %q (want text, json or csv)", s).
		WithContext("format", s)
}

// Render writes r to w in the given format.
func Render(w io.Writer, r *Report, f Format) error {
	switch f {
	case FormatJSON:
		return RenderJSON(w, r)
	case FormatCSV:
		return RenderCSV(w, r)
	case FormatText, "":
		return RenderText(w, r)
	}
	return errors.Newf(errors.CodeInvalidInput, "unknown output format %q", f)
}

// RenderJSON writes the report as indented JSON.
func RenderJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// RenderCSV writes every table of the report, each preceded by its title
// and followed by an empty line. Cells are separated by ';' like GED
// exports.
func RenderCSV(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	for i, t := range r.Tables {
		if i > 0 {
			if err := cw.Write(nil); err != nil {
				return err
			}
		}
		if err := cw.Write([]string{t.Title}); err != nil {
			return err
		}
		if err := cw.Write(t.Headers); err != nil {
			return err
		}
		if err := cw.WriteAll(t.Rows); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2196F3"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	barStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#4db6ac"))
)

// alertColors maps alert colors to terminal colors.
var alertColors = map[string]lipgloss.Color{
	"lightgreen": lipgloss.Color("#8BC34A"),
	"yellow":     lipgloss.Color("#FFC107"),
	"orange":     lipgloss.Color("#FF9800"),
	"red":        lipgloss.Color("#E53935"),
}

const barWidth = 40

// RenderText writes the report for a terminal: bordered tables with
// colored alert cells, and charts as horizontal bars.
func RenderText(w io.Writer, r *Report) error {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(r.Title))
	sb.WriteString("\n")
	info := []string{}
	if r.Project != "" {
		info = append(info, "projet "+r.Project)
	}
	if !r.GeneratedAt.IsZero() {
		info = append(info, "généré "+humanize.Time(r.GeneratedAt))
	}
	if len(info) > 0 {
		sb.WriteString(mutedStyle.Render(strings.Join(info, ", ")))
		sb.WriteString("\n")
	}
	for _, line := range metaLines(r.Meta) {
		sb.WriteString(mutedStyle.Render(line))
		sb.WriteString("\n")
	}

	for _, t := range r.Tables {
		sb.WriteString("\n")
		sb.WriteString(sectionStyle.Render(t.Title))
		sb.WriteString("\n")
		if len(t.Rows) == 0 {
			sb.WriteString(mutedStyle.Render("aucune donnée"))
			sb.WriteString("\n")
			continue
		}
		sb.WriteString(textTable(t))
		sb.WriteString("\n")
	}
	for _, c := range r.Charts {
		if s := textChart(c); s != "" {
			sb.WriteString("\n")
			sb.WriteString(sectionStyle.Render(c.Title))
			sb.WriteString("\n")
			sb.WriteString(s)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func textTable(t Table) string {
	rows := t.Rows
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(t.Headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			kind, ok := t.Alerts[col]
			if !ok || row < 0 || row >= len(rows) || col >= len(rows[row]) {
				return cellStyle
			}
			lvl, err := alert.ParseLevel(rows[row][col])
			if err != nil {
				return cellStyle
			}
			return cellStyle.Foreground(alertColors[lvl.Color(kind)])
		}).
		String()
}

// textChart draws the first series of a chart as bars. Chart kinds without
// a bar rendering produce an empty string.
func textChart(c Chart) string {
	var sb strings.Builder
	switch c.Kind {
	case ChartBar, ChartBarH, ChartPie, ChartLine, ChartTreemap:
		if len(c.Series) == 0 {
			return ""
		}
		s := c.Series[0]
		top := c.Max()
		width := labelWidth(c.Labels)
		for i, label := range c.Labels {
			if i >= len(s.Values) {
				break
			}
			v := s.Values[i]
			n := 0
			if top > 0 {
				n = int(math.Round(v / top * barWidth))
			}
			fmt.Fprintf(&sb, "%-*s %s %s\n", width, label, barStyle.Render(strings.Repeat("█", n)), humanize.Ftoa(v))
		}
	case ChartGantt:
		labels := make([]string, len(c.Spans))
		for i, sp := range c.Spans {
			labels[i] = sp.Label
		}
		width := labelWidth(labels)
		for _, sp := range c.Spans {
			fmt.Fprintf(&sb, "%-*s %s → %s  %s\n", width, sp.Label,
				formatDate(sp.Start), formatDate(sp.End), mutedStyle.Render(sp.Info))
		}
	case ChartBox:
		width := labelWidth(c.Labels)
		for _, label := range c.Labels {
			b := c.Boxes[label]
			fmt.Fprintf(&sb, "%-*s min %s  q1 %s  médiane %s  q3 %s  max %s\n", width, label,
				formatFloat(b.Min), formatFloat(b.Q1), formatFloat(b.Median), formatFloat(b.Q3), formatFloat(b.Max))
		}
	}
	return sb.String()
}

func labelWidth(labels []string) int {
	w := 0
	for _, l := range labels {
		if n := lipgloss.Width(l); n > w {
			w = n
		}
	}
	return w
}

func metaLines(meta map[string]any) []string {
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		var v string
		switch x := meta[k].(type) {
		case nil:
			v = "n/a"
		case int:
			v = humanize.Comma(int64(x))
		case float64:
			v = humanize.CommafWithDigits(x, 2)
		case []string:
			if len(x) > 8 {
				v = strings.Join(x[:8], ", ") + fmt.Sprintf(" (+%d)", len(x)-8)
			} else {
				v = strings.Join(x, ", ")
			}
		default:
			v = fmt.Sprint(x)
		}
		lines = append(lines, k+": "+v)
	}
	return lines
}
