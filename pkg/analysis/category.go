// SPDX-License-Identifier: Apache-2.0

package analysis

import (
	"sort"
	"time"

	"github.com/jllopis/gedboard/pkg/ged"
)

// GroupStat is a statistic computed over the rows of one group.
type GroupStat struct {
	Group string  `json:"group"`
	Value float64 `json:"value"`
	Count int     `json:"count"` // values the statistic was computed from
}

// IndexCountStats aggregates the distinct index count of documents per group.
func IndexCountStats(rows []Row, field ged.Field, stat Stat) []GroupStat {
	return groupStats(rows, field, stat, func(r Row) (float64, bool) {
		return float64(r.IndexCount), r.Grouped
	})
}

// GapStats aggregates the days between consecutive versions per group.
// First versions count as 0. Groups without any dated labelled row are
// omitted.
func GapStats(rows []Row, field ged.Field, stat Stat) []GroupStat {
	return groupStats(rows, field, stat, func(r Row) (float64, bool) {
		return float64(r.GapDays), r.HasGap
	})
}

// SpanStats aggregates the first-to-last version span of documents per group.
func SpanStats(rows []Row, field ged.Field, stat Stat) []GroupStat {
	return groupStats(rows, field, stat, func(r Row) (float64, bool) {
		return float64(r.SpanDays), r.Grouped && !r.FirstVersion.IsZero()
	})
}

// groupStats sorts by value descending, then group ascending.
func groupStats(rows []Row, field ged.Field, stat Stat, value func(Row) (float64, bool)) []GroupStat {
	values := make(map[string][]float64)
	var order []string
	for _, r := range rows {
		g := r.Value(field)
		if g == "" {
			continue
		}
		v, ok := value(r)
		if !ok {
			continue
		}
		if _, seen := values[g]; !seen {
			order = append(order, g)
		}
		values[g] = append(values[g], v)
	}
	out := make([]GroupStat, 0, len(order))
	for _, g := range order {
		vs := values[g]
		out = append(out, GroupStat{Group: g, Value: stat.Apply(vs), Count: len(vs)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Group < out[j].Group
	})
	return out
}

// GroupValues collects the raw values behind GapStats per group, for box plots.
func GroupValues(rows []Row, field ged.Field) map[string][]float64 {
	out := make(map[string][]float64)
	for _, r := range rows {
		if g := r.Value(field); g != "" && r.HasGap {
			out[g] = append(out[g], float64(r.GapDays))
		}
	}
	return out
}

// TransitionStep is one index change of a document.
type TransitionStep struct {
	Label   string    `json:"label"`
	From    string    `json:"from"`
	To      string    `json:"to"`
	Date    time.Time `json:"date"`
	GapDays int       `json:"gap_days"`
}

// Name returns "From à To".
func (s TransitionStep) Name() string {
	return s.From + " à " + s.To
}

// TypeTransitions lists the index transitions of one document type.
type TypeTransitions struct {
	DocumentType string           `json:"document_type"`
	Steps        []TransitionStep `json:"steps"`
}

// Transitions lists the index changes of each document, grouped by type.
// A document is a (type, label) pair whose dated versions are taken in
// index order; a change deposited before its predecessor is dropped.
// Types are sorted by name, steps by label then index order.
func Transitions(rows []Row) []TypeTransitions {
	type chainKey struct{ docType, label string }
	chains := make(map[chainKey][]Row)
	for _, r := range rows {
		if r.DocumentType == "" || r.Label == "" || !r.HasDate() {
			continue
		}
		k := chainKey{r.DocumentType, r.Label}
		chains[k] = append(chains[k], r)
	}

	byType := make(map[string][]TransitionStep)
	for k, chain := range chains {
		sort.SliceStable(chain, func(i, j int) bool { return chain[i].Index < chain[j].Index })
		for j := 1; j < len(chain); j++ {
			prev, cur := chain[j-1], chain[j]
			gap := daysBetween(prev.DepositDate, cur.DepositDate)
			if gap < 0 {
				continue
			}
			byType[k.docType] = append(byType[k.docType], TransitionStep{
				Label:   k.label,
				From:    prev.Index,
				To:      cur.Index,
				Date:    cur.DepositDate,
				GapDays: gap,
			})
		}
	}
	out := make([]TypeTransitions, 0, len(byType))
	for t, steps := range byType {
		sort.SliceStable(steps, func(i, j int) bool { return steps[i].Label < steps[j].Label })
		out = append(out, TypeTransitions{DocumentType: t, Steps: steps})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DocumentType < out[j].DocumentType })
	return out
}
