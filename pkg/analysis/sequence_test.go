// SPDX-License-Identifier: Apache-2.0

package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jllopis/gedboard/pkg/errors"
	"github.com/jllopis/gedboard/pkg/ged"
)

func dayRow(offset int) Row {
	return Row{Record: ged.Record{DepositDate: d(time.January, 1).AddDate(0, 0, offset), DocumentType: "PLAN"}}
}

func TestMeanDepositDates(t *testing.T) {
	got := MeanDepositDates(fixture())
	assert.Equal(t, []TypeDate{
		{DocumentType: "PLAN", Date: d(time.January, 19)},
		{DocumentType: "NOTICE", Date: d(time.January, 20)},
		{DocumentType: "NOTE", Date: d(time.February, 4)},
	}, got)
}

func TestCluster(t *testing.T) {
	rows := []Row{dayRow(100), dayRow(0), dayRow(50), {}, dayRow(1), dayRow(101), dayRow(51), dayRow(2)}

	ids, err := Cluster(rows, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0, 1, -1, 0, 2, 1, 0}, ids)

	again, err := Cluster(rows, 3)
	require.NoError(t, err)
	assert.Equal(t, ids, again, "clustering is deterministic")

	one, err := Cluster(rows[:2], 5)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, one, "k is capped by the number of dated rows")

	_, err = Cluster(rows, 0)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}

func TestAnomalies(t *testing.T) {
	var rows []Row
	for i := 0; i < 9; i++ {
		rows = append(rows, dayRow(100+i))
	}
	rows = append(rows, dayRow(400), Row{})

	flags, err := Anomalies(rows, DefaultContamination)
	require.NoError(t, err)
	require.Len(t, flags, 11)
	for i, f := range flags {
		assert.Equal(t, i == 9, f, "row %d", i)
	}

	flags, err = Anomalies(rows, 0.2)
	require.NoError(t, err)
	assert.True(t, flags[9])
	assert.True(t, flags[0], "day 100 is the farthest of the regular rows")

	for _, c := range []float64{0, -0.1, 0.6} {
		_, err := Anomalies(rows, c)
		assert.True(t, errors.HasCode(err, errors.CodeInvalidInput), "contamination %v", c)
	}
}

func TestCorrelation(t *testing.T) {
	withGap := func(offset, gap int) Row {
		r := dayRow(offset)
		r.HasGap = true
		r.GapDays = gap
		return r
	}

	assert.InDelta(t, 1.0, Correlation([]Row{withGap(10, 1), withGap(20, 2), withGap(30, 3)}), 1e-9)
	assert.InDelta(t, -1.0, Correlation([]Row{withGap(10, 3), withGap(20, 2), withGap(30, 1)}), 1e-9)
	assert.True(t, math.IsNaN(Correlation([]Row{withGap(10, 5), withGap(20, 5)})))
	assert.True(t, math.IsNaN(Correlation([]Row{withGap(10, 5)})))
	assert.True(t, math.IsNaN(Correlation(nil)))
}

func TestSummary(t *testing.T) {
	got := Summary(Preprocess(fixture()))
	assert.Equal(t, []TypeSummary{
		{DocumentType: "NOTE", Documents: 3, First: d(time.January, 5), Last: d(time.March, 6), MeanGapDays: 30, Gaps: 2},
		{DocumentType: "NOTICE", Documents: 1, First: d(time.January, 20), Last: d(time.January, 20), Gaps: 1},
		{DocumentType: "PLAN", Documents: 4, First: d(time.January, 2), Last: d(time.February, 11), MeanGapDays: 10, Gaps: 4},
	}, got)
}
