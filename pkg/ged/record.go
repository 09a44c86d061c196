// SPDX-License-Identifier: Apache-2.0

// Package ged loads document-management (GED) CSV exports of construction
// projects and exposes them as datasets of deposit records.
package ged

import (
	"time"
)

// Record is one document deposit.
type Record struct {
	DepositDate  time.Time // zero when the cell could not be parsed
	DocumentType string
	Project      string
	Issuer       string
	Lot          string
	Index        string
	Label        string
	AddedBy      string
	Line         int
}

// HasDate reports whether the deposit date was parsed.
func (r Record) HasDate() bool {
	return !r.DepositDate.IsZero()
}

// Value returns the value of a categorical field.
func (r Record) Value(f Field) string {
	switch f {
	case FieldLot:
		return r.Lot
	case FieldDocumentType:
		return r.DocumentType
	case FieldIssuer:
		return r.Issuer
	case FieldIndex:
		return r.Index
	case FieldProject:
		return r.Project
	case FieldLabel:
		return r.Label
	case FieldAddedBy:
		return r.AddedBy
	}
	return ""
}

// Dataset is the content of one project export.
type Dataset struct {
	Name     string
	Path     string
	Records  []Record
	Skipped  int // records without a valid deposit date
	LoadedAt time.Time
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// Filter returns a dataset holding the records for which keep returns true.
func (d *Dataset) Filter(keep func(Record) bool) *Dataset {
	out := &Dataset{Name: d.Name, Path: d.Path, LoadedAt: d.LoadedAt}
	for _, r := range d.Records {
		if !keep(r) {
			continue
		}
		out.Records = append(out.Records, r)
		if !r.HasDate() {
			out.Skipped++
		}
	}
	return out
}

// Values returns the distinct non-empty values of a field in first-seen order.
func (d *Dataset) Values(f Field) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range d.Records {
		v := r.Value(f)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// DateRange returns the earliest and latest valid deposit dates.
// ok is false when no record has a valid date.
func (d *Dataset) DateRange() (first, last time.Time, ok bool) {
	for _, r := range d.Records {
		if !r.HasDate() {
			continue
		}
		if !ok || r.DepositDate.Before(first) {
			first = r.DepositDate
		}
		if !ok || r.DepositDate.After(last) {
			last = r.DepositDate
		}
		ok = true
	}
	return first, last, ok
}

// In returns a predicate matching records whose field value is in values.
// An empty values list matches everything.
func In(f Field, values ...string) func(Record) bool {
	if len(values) == 0 {
		return func(Record) bool { return true }
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return func(r Record) bool {
		_, ok := set[r.Value(f)]
		return ok
	}
}
