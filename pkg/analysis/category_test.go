// SPDX-License-Identifier: Apache-2.0

package analysis

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jllopis/gedboard/pkg/ged"
)

func TestIndexCountStats(t *testing.T) {
	rows := Preprocess(fixture())

	got := IndexCountStats(rows, ged.FieldDocumentType, StatMean)
	want := []GroupStat{
		{Group: "NOTE", Value: 3, Count: 3},
		{Group: "PLAN", Value: 2.5, Count: 4},
		{Group: "NOTICE", Value: 0, Count: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mean mismatch (-want +got):\n%s", diff)
	}

	got = IndexCountStats(rows, ged.FieldDocumentType, StatMax)
	assert.Equal(t, "NOTE", got[0].Group, "ties sort by group")
	assert.Equal(t, "PLAN", got[1].Group)
	assert.Equal(t, 3.0, got[1].Value)
}

func TestGapStats(t *testing.T) {
	rows := Preprocess(fixture())

	mean := GapStats(rows, ged.FieldLot, StatMean)
	if diff := cmp.Diff([]GroupStat{
		{Group: "CVC", Value: 20, Count: 3},
		{Group: "GO", Value: 10, Count: 4},
	}, mean); diff != "" {
		t.Errorf("mean gap mismatch (-want +got):\n%s", diff)
	}

	maxGap := GapStats(rows, ged.FieldLot, StatMax)
	assert.Equal(t, 30.0, maxGap[1].Value)

	byType := GapStats(rows, ged.FieldDocumentType, StatMean)
	if diff := cmp.Diff([]GroupStat{
		{Group: "NOTE", Value: 30, Count: 2},
		{Group: "PLAN", Value: 10, Count: 4},
		{Group: "NOTICE", Value: 0, Count: 1},
	}, byType); diff != "" {
		t.Errorf("type gap mismatch (-want +got):\n%s", diff)
	}
}

func TestSpanStats(t *testing.T) {
	got := SpanStats(Preprocess(fixture()), ged.FieldDocumentType, StatMax)
	require.Len(t, got, 3)
	assert.Equal(t, GroupStat{Group: "NOTE", Value: 60, Count: 3}, got[0])
	assert.Equal(t, GroupStat{Group: "PLAN", Value: 40, Count: 4}, got[1])
	assert.Equal(t, GroupStat{Group: "NOTICE", Value: 0, Count: 1}, got[2])
}

func TestGroupValues(t *testing.T) {
	got := GroupValues(Preprocess(fixture()), ged.FieldLot)
	assert.Equal(t, map[string][]float64{"GO": {0, 10, 30, 0}, "CVC": {0, 60, 0}}, got)
}

func TestTransitions(t *testing.T) {
	got := Transitions(Preprocess(fixture()))
	want := []TypeTransitions{
		{DocumentType: "NOTE", Steps: []TransitionStep{
			{Label: "Note calcul", From: "A", To: "B", Date: d(time.March, 6), GapDays: 60},
		}},
		{DocumentType: "PLAN", Steps: []TransitionStep{
			{Label: "Plan RDC", From: "A", To: "B", Date: d(time.January, 12), GapDays: 10},
			{Label: "Plan RDC", From: "B", To: "C", Date: d(time.February, 11), GapDays: 30},
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("transitions mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "B à C", got[1].Steps[1].Name())
}

func TestTransitions_IndexOrder(t *testing.T) {
	ds := &ged.Dataset{Records: []ged.Record{
		rec(d(time.March, 1), "PLAN", "ARCHI", "GO", "B", "Coupe", "Dupont"),
		rec(d(time.February, 1), "PLAN", "ARCHI", "GO", "C", "Coupe", "Dupont"),
		rec(d(time.January, 1), "PLAN", "ARCHI", "GO", "A", "Coupe", "Dupont"),
		rec(d(time.January, 10), "NOTE", "BET", "GO", "A", "Coupe", "Martin"),
		rec(d(time.January, 20), "NOTE", "BET", "GO", "B", "Coupe", "Martin"),
	}}
	got := Transitions(Preprocess(ds))
	want := []TypeTransitions{
		{DocumentType: "NOTE", Steps: []TransitionStep{
			{Label: "Coupe", From: "A", To: "B", Date: d(time.January, 20), GapDays: 10},
		}},
		{DocumentType: "PLAN", Steps: []TransitionStep{
			{Label: "Coupe", From: "A", To: "B", Date: d(time.March, 1), GapDays: 59},
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("B to C goes back in time and is dropped; types do not share a chain (-want +got):\n%s", diff)
	}
}
