// SPDX-License-Identifier: Apache-2.0

package analysis

import (
	"sort"
	"time"

	"github.com/jllopis/gedboard/pkg/ged"
)

// MassRow is the number of deposits of one project within a period.
type MassRow struct {
	Project string    `json:"project"`
	Mass    int       `json:"mass"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

// MassComparison compares projects over the same relative period.
type MassComparison struct {
	Period Period    `json:"period"`
	Rows   []MassRow `json:"rows"`
	Median float64   `json:"median"`
}

// CompareMass counts, for each project, the deposits between its first
// deposit and the end of the period. Rows are sorted by mass descending.
func CompareMass(datasets []*ged.Dataset, p Period) MassComparison {
	mc := MassComparison{Period: p}
	masses := make([]float64, 0, len(datasets))
	for _, ds := range datasets {
		if ds == nil {
			continue
		}
		row := MassRow{Project: ds.Name}
		if first, last, ok := ds.DateRange(); ok {
			row.Start = first
			row.End = p.Window(first, last)
			for _, r := range ds.Records {
				if r.HasDate() && !r.DepositDate.Before(row.Start) && !r.DepositDate.After(row.End) {
					row.Mass++
				}
			}
		}
		mc.Rows = append(mc.Rows, row)
		masses = append(masses, float64(row.Mass))
	}
	sort.SliceStable(mc.Rows, func(i, j int) bool {
		if mc.Rows[i].Mass != mc.Rows[j].Mass {
			return mc.Rows[i].Mass > mc.Rows[j].Mass
		}
		return mc.Rows[i].Project < mc.Rows[j].Project
	})
	if len(masses) > 0 {
		mc.Median = Median(masses)
	}
	return mc
}
