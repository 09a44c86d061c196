// SPDX-License-Identifier: Apache-2.0

package analysis

import (
	"sort"
	"strconv"
	"strings"

	"github.com/jllopis/gedboard/pkg/alert"
	"github.com/jllopis/gedboard/pkg/ged"
)

// IndexShare is the weight of one index inside a group.
type IndexShare struct {
	Index   string  `json:"index"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// IndexAlertRow is the index health of one lot or document type.
type IndexAlertRow struct {
	Group    string       `json:"group"`
	Total    int          `json:"total"`
	Distinct int          `json:"distinct"`
	Last     string       `json:"last"`
	Shares   []IndexShare `json:"shares"` // by percent descending
	TopShare int          `json:"top_share"`
	Alert1   alert.Level  `json:"alert1"`
	Alert2   alert.Level  `json:"alert2"`
}

// TopShareLabel formats the top share as "NN%".
func (r IndexAlertRow) TopShareLabel() string {
	return strconv.Itoa(r.TopShare) + "%"
}

// IndexAlerts grades every value of field by the spread of its indices.
// Groups without any indexed record are omitted. Rows are sorted by group.
func IndexAlerts(ds *ged.Dataset, field ged.Field, th alert.Thresholds) []IndexAlertRow {
	if ds == nil {
		return nil
	}
	type agg struct {
		total  int
		counts map[string]int
	}
	groups := make(map[string]*agg)
	for _, r := range ds.Records {
		g := r.Value(field)
		if g == "" {
			continue
		}
		a, ok := groups[g]
		if !ok {
			a = &agg{counts: make(map[string]int)}
			groups[g] = a
		}
		a.total++
		if r.Index != "" {
			a.counts[r.Index]++
		}
	}

	topN := th.TopN
	if topN < 1 {
		topN = 1
	}

	out := make([]IndexAlertRow, 0, len(groups))
	for g, a := range groups {
		if len(a.counts) == 0 {
			continue
		}
		row := IndexAlertRow{Group: g, Total: a.total, Distinct: len(a.counts)}
		for idx, n := range a.counts {
			row.Shares = append(row.Shares, IndexShare{Index: idx, Count: n, Percent: Percent(n, a.total)})
			if idx > row.Last {
				row.Last = idx
			}
		}
		sort.Slice(row.Shares, func(i, j int) bool {
			if row.Shares[i].Percent != row.Shares[j].Percent {
				return row.Shares[i].Percent > row.Shares[j].Percent
			}
			return row.Shares[i].Index < row.Shares[j].Index
		})
		var top float64
		for i := 0; i < topN && i < len(row.Shares); i++ {
			top += row.Shares[i].Percent
		}
		row.TopShare = int(Round(top, 0))
		row.Alert1 = th.ClassifyIndexCount(row.Distinct)
		row.Alert2 = th.ClassifyTopShare(float64(row.TopShare))
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Group < out[j].Group })
	return out
}

// AlertFilter narrows index alert rows. Zero values match everything.
type AlertFilter struct {
	Group         string
	GroupContains string
	Alert1        *alert.Level
	Alert2        *alert.Level
}

// FilterIndexAlerts keeps the rows matching every set criterion.
func FilterIndexAlerts(rows []IndexAlertRow, f AlertFilter) []IndexAlertRow {
	needle := strings.ToLower(f.GroupContains)
	out := make([]IndexAlertRow, 0, len(rows))
	for _, r := range rows {
		if f.Group != "" && r.Group != f.Group {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(r.Group), needle) {
			continue
		}
		if f.Alert1 != nil && r.Alert1 != *f.Alert1 {
			continue
		}
		if f.Alert2 != nil && r.Alert2 != *f.Alert2 {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Slice is one sector of an alert pie chart.
type Slice struct {
	Level   alert.Level `json:"level"`
	Label   string      `json:"label"`
	Count   int         `json:"count"`
	Percent float64     `json:"percent"`
	Color   string      `json:"color"`
}

// AlertDistribution counts rows per level of the given alert. Levels
// without rows are left out.
func AlertDistribution(rows []IndexAlertRow, kind alert.Kind) []Slice {
	counts := make(map[alert.Level]int)
	for _, r := range rows {
		lvl := r.Alert1
		if kind == alert.TopShare {
			lvl = r.Alert2
		}
		counts[lvl]++
	}
	var out []Slice
	for _, lvl := range []alert.Level{alert.OK, alert.Watch, alert.Critical} {
		n := counts[lvl]
		if n == 0 {
			continue
		}
		out = append(out, Slice{
			Level:   lvl,
			Label:   lvl.Label(kind),
			Count:   n,
			Percent: Percent(n, len(rows)),
			Color:   lvl.Color(kind),
		})
	}
	return out
}
