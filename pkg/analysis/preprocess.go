// SPDX-License-Identifier: Apache-2.0

// Package analysis derives revision metrics, aggregates and alerts from
// GED datasets. Every function is a pure computation over in-memory records.
package analysis

import (
	"sort"
	"strings"
	"time"

	"github.com/jllopis/gedboard/pkg/ged"
)

const day = 24 * time.Hour

// Row is a record enriched with the metrics of its document and lot.
type Row struct {
	ged.Record

	// Grouped is true when type, lot and label are all present; the
	// per-document metrics below are only set in that case.
	Grouped      bool
	FirstVersion time.Time
	LastVersion  time.Time
	SpanDays     int
	IndexCount   int
	IndicesUsed  string

	LotStart time.Time
	LotEnd   time.Time

	// GapDays is the number of days since the previous deposit of the same
	// label, 0 for its first dated version. HasGap is false for rows without
	// a label or a deposit date, which stay out of duration aggregates.
	GapDays int
	HasGap  bool
}

type docKey struct {
	docType, lot, label string
}

type docAgg struct {
	first, last time.Time
	indices     map[string]struct{}
}

func (a *docAgg) addDate(t time.Time) {
	if t.IsZero() {
		return
	}
	if a.first.IsZero() || t.Before(a.first) {
		a.first = t
	}
	if a.last.IsZero() || t.After(a.last) {
		a.last = t
	}
}

// Preprocess computes the per-document, per-lot and per-label metrics of
// every record. Rows keep file order.
func Preprocess(ds *ged.Dataset) []Row {
	if ds == nil {
		return nil
	}
	docs := make(map[docKey]*docAgg)
	lots := make(map[string]*docAgg)
	chains := make(map[string][]int)

	for i, r := range ds.Records {
		if r.DocumentType != "" && r.Lot != "" && r.Label != "" {
			k := docKey{r.DocumentType, r.Lot, r.Label}
			a, ok := docs[k]
			if !ok {
				a = &docAgg{indices: make(map[string]struct{})}
				docs[k] = a
			}
			a.addDate(r.DepositDate)
			if r.Index != "" {
				a.indices[r.Index] = struct{}{}
			}
		}
		if r.Lot != "" {
			a, ok := lots[r.Lot]
			if !ok {
				a = &docAgg{}
				lots[r.Lot] = a
			}
			a.addDate(r.DepositDate)
		}
		if r.Label != "" && r.HasDate() {
			chains[r.Label] = append(chains[r.Label], i)
		}
	}

	rows := make([]Row, len(ds.Records))
	for i, r := range ds.Records {
		row := Row{Record: r}
		if a, ok := docs[docKey{r.DocumentType, r.Lot, r.Label}]; ok && r.DocumentType != "" && r.Lot != "" && r.Label != "" {
			row.Grouped = true
			row.FirstVersion = a.first
			row.LastVersion = a.last
			if !a.first.IsZero() {
				row.SpanDays = daysBetween(a.first, a.last)
			}
			row.IndexCount = len(a.indices)
			row.IndicesUsed = joinSorted(a.indices)
		}
		if a, ok := lots[r.Lot]; ok {
			row.LotStart = a.first
			row.LotEnd = a.last
		}
		rows[i] = row
	}

	for _, chain := range chains {
		sort.SliceStable(chain, func(a, b int) bool {
			return ds.Records[chain[a]].DepositDate.Before(ds.Records[chain[b]].DepositDate)
		})
		rows[chain[0]].HasGap = true
		for j := 1; j < len(chain); j++ {
			prev, cur := &rows[chain[j-1]], &rows[chain[j]]
			cur.HasGap = true
			cur.GapDays = daysBetween(prev.DepositDate, cur.DepositDate)
		}
	}
	return rows
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from) / day)
}

func joinSorted(set map[string]struct{}) string {
	vals := make([]string, 0, len(set))
	for v := range set {
		vals = append(vals, v)
	}
	sort.Strings(vals)
	return strings.Join(vals, ", ")
}
