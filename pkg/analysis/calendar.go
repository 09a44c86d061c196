// SPDX-License-Identifier: Apache-2.0

package analysis

import (
	"sort"
	"strings"
	"time"

	"github.com/jllopis/gedboard/pkg/ged"
)

// CalendarRow is one bar of a Gantt chart.
type CalendarRow struct {
	Group        string    `json:"group"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	DisplayEnd   time.Time `json:"display_end"` // one day after Start for same-day groups
	Documents    int       `json:"documents"`
	DurationDays int       `json:"duration_days"`
	Types        []string  `json:"types"` // in first-deposit order
}

// TypesJoined joins Types with ", ".
func (c CalendarRow) TypesJoined() string {
	return strings.Join(c.Types, ", ")
}

// Calendar spans every value of field from its first to its last deposit.
// Groups without any valid date are omitted. Rows are sorted by start.
func Calendar(ds *ged.Dataset, field ged.Field) []CalendarRow {
	if ds == nil {
		return nil
	}
	records := make([]ged.Record, len(ds.Records))
	copy(records, ds.Records)
	// Undated records go last so they never decide the type order.
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.HasDate() != b.HasDate() {
			return a.HasDate()
		}
		return a.DepositDate.Before(b.DepositDate)
	})

	rows := make(map[string]*CalendarRow)
	seenTypes := make(map[string]map[string]struct{})
	var order []string
	for _, r := range records {
		g := r.Value(field)
		if g == "" {
			continue
		}
		row, ok := rows[g]
		if !ok {
			row = &CalendarRow{Group: g}
			rows[g] = row
			seenTypes[g] = make(map[string]struct{})
			order = append(order, g)
		}
		if r.Label != "" {
			row.Documents++
		}
		if r.HasDate() {
			if row.Start.IsZero() || r.DepositDate.Before(row.Start) {
				row.Start = r.DepositDate
			}
			if r.DepositDate.After(row.End) {
				row.End = r.DepositDate
			}
		}
		if t := r.DocumentType; t != "" {
			if _, dup := seenTypes[g][t]; !dup {
				seenTypes[g][t] = struct{}{}
				row.Types = append(row.Types, t)
			}
		}
	}

	out := make([]CalendarRow, 0, len(order))
	for _, g := range order {
		row := rows[g]
		if row.Start.IsZero() {
			continue
		}
		row.DurationDays = daysBetween(row.Start, row.End)
		row.DisplayEnd = row.End
		if row.DurationDays == 0 {
			row.DisplayEnd = row.Start.Add(day)
		}
		out = append(out, *row)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

// LotCalendar is the calendar of one lot, one bar per document type.
func LotCalendar(ds *ged.Dataset, lot string) []CalendarRow {
	if ds == nil {
		return nil
	}
	return Calendar(ds.Filter(ged.In(ged.FieldLot, lot)), ged.FieldDocumentType)
}
