// SPDX-License-Identifier: Apache-2.0

package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jllopis/gedboard/pkg/errors"
	"github.com/jllopis/gedboard/pkg/ged"
)

func bigProject() *ged.Dataset {
	return &ged.Dataset{Name: "BIG", Records: []ged.Record{
		{DepositDate: d(time.January, 1), DocumentType: "PLAN"},
		{DepositDate: d(time.March, 1), DocumentType: "PLAN"},
		{DepositDate: d(time.August, 1), DocumentType: "NOTE"},
		{DepositDate: time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), DocumentType: "NOTE"},
	}}
}

func TestCompareMass(t *testing.T) {
	empty := &ged.Dataset{Name: "EMPTY", Records: []ged.Record{{DocumentType: "PLAN"}}}
	datasets := []*ged.Dataset{bigProject(), empty, fixture()}

	tests := []struct {
		period Period
		masses map[string]int
		median float64
	}{
		{Period6M, map[string]int{"P17": 7, "BIG": 2, "EMPTY": 0}, 2},
		{Period12M, map[string]int{"P17": 7, "BIG": 3, "EMPTY": 0}, 3},
		{PeriodAll, map[string]int{"P17": 7, "BIG": 4, "EMPTY": 0}, 4},
	}
	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			mc := CompareMass(datasets, tt.period)
			require.Len(t, mc.Rows, 3)
			assert.Equal(t, "P17", mc.Rows[0].Project)
			assert.Equal(t, "EMPTY", mc.Rows[2].Project)
			for _, r := range mc.Rows {
				assert.Equal(t, tt.masses[r.Project], r.Mass, r.Project)
			}
			assert.Equal(t, tt.median, mc.Median)
		})
	}

	mc := CompareMass(datasets, Period6M)
	assert.Equal(t, d(time.June, 30), mc.Rows[1].End)
}

func TestParsePeriod(t *testing.T) {
	for in, want := range map[string]Period{
		"6m":               Period6M,
		"6 mois":           Period6M,
		"1 an":             Period12M,
		"12m":              Period12M,
		"":                 PeriodAll,
		"Toute la période": PeriodAll,
	} {
		got, err := ParsePeriod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParsePeriod("3 semaines")
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}

func TestFilterPeriod(t *testing.T) {
	assert.Equal(t, 2, FilterPeriod(bigProject(), Period6M).Len())
	assert.Equal(t, 3, FilterPeriod(bigProject(), Period12M).Len())
	assert.Equal(t, 4, FilterPeriod(bigProject(), PeriodAll).Len())
	assert.Equal(t, 7, FilterPeriod(fixture(), Period6M).Len(), "undated records fall outside any window")

	undated := &ged.Dataset{Records: []ged.Record{{Lot: "GO"}}}
	assert.Equal(t, 0, FilterPeriod(undated, Period6M).Len())
}
