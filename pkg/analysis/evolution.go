// SPDX-License-Identifier: Apache-2.0

package analysis

import (
	"sort"
	"time"

	"github.com/jllopis/gedboard/pkg/ged"
)

// MonthPoint is the deposit count of one calendar month.
type MonthPoint struct {
	Month      time.Time `json:"month"` // first day of the month, UTC
	Count      int       `json:"count"`
	Cumulative int       `json:"cumulative"`
}

// TypeSeries is the monthly evolution of one document type.
type TypeSeries struct {
	DocumentType string       `json:"document_type"`
	Points       []MonthPoint `json:"points"`
}

// Total returns the number of deposits in the series.
func (s TypeSeries) Total() int {
	if len(s.Points) == 0 {
		return 0
	}
	return s.Points[len(s.Points)-1].Cumulative
}

// MonthlyEvolution counts deposits per month for each selected document
// type, all types when types is empty. Only months with deposits appear.
func MonthlyEvolution(ds *ged.Dataset, types []string) []TypeSeries {
	if ds == nil {
		return nil
	}
	keep := ged.In(ged.FieldDocumentType, types...)
	counts := make(map[string]map[time.Time]int)
	for _, r := range ds.Records {
		if !r.HasDate() || r.DocumentType == "" || !keep(r) {
			continue
		}
		m, ok := counts[r.DocumentType]
		if !ok {
			m = make(map[time.Time]int)
			counts[r.DocumentType] = m
		}
		m[monthOf(r.DepositDate)]++
	}

	out := make([]TypeSeries, 0, len(counts))
	for t, months := range counts {
		s := TypeSeries{DocumentType: t}
		for m, n := range months {
			s.Points = append(s.Points, MonthPoint{Month: m, Count: n})
		}
		sort.Slice(s.Points, func(i, j int) bool { return s.Points[i].Month.Before(s.Points[j].Month) })
		total := 0
		for i := range s.Points {
			total += s.Points[i].Count
			s.Points[i].Cumulative = total
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DocumentType < out[j].DocumentType })
	return out
}

func monthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
