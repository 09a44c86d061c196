// SPDX-License-Identifier: Apache-2.0

package report

import (
	"context"
	"time"

	"github.com/jllopis/gedboard/pkg/errors"
	"github.com/jllopis/gedboard/pkg/ged"
)

type memSource struct {
	names    []string
	datasets map[string]*ged.Dataset
}

func newMemSource(datasets ...*ged.Dataset) *memSource {
	s := &memSource{datasets: make(map[string]*ged.Dataset)}
	for _, ds := range datasets {
		s.names = append(s.names, ds.Name)
		s.datasets[ds.Name] = ds
	}
	return s
}

func (s *memSource) Names() []string { return s.names }

func (s *memSource) Dataset(_ context.Context, name string) (*ged.Dataset, error) {
	ds, ok := s.datasets[name]
	if !ok {
		return nil, errors.Newf(errors.CodeNotFound, "project %q not found", name)
	}
	return ds, nil
}

func d(m time.Month, day int) time.Time {
	return time.Date(2023, m, day, 0, 0, 0, 0, time.UTC)
}

func rec(project string, date time.Time, docType, issuer, lot, index, label, addedBy string) ged.Record {
	return ged.Record{
		DepositDate:  date,
		DocumentType: docType,
		Project:      project,
		Issuer:       issuer,
		Lot:          lot,
		Index:        index,
		Label:        label,
		AddedBy:      addedBy,
	}
}

func p17() *ged.Dataset {
	return &ged.Dataset{
		Name: "P17",
		Records: []ged.Record{
			rec("P17", d(time.January, 2), "PLAN", "ARCHI", "GO", "A", "Plan RDC", "Dupont"),
			rec("P17", d(time.January, 12), "PLAN", "ARCHI", "GO", "B", "Plan RDC", "Dupont"),
			rec("P17", d(time.February, 11), "PLAN", "ARCHI", "GO", "C", "Plan RDC", "Durand"),
			rec("P17", d(time.January, 5), "NOTE", "BET", "CVC", "A", "Note calcul", "Martin"),
			rec("P17", d(time.March, 6), "NOTE", "BET", "CVC", "B", "Note calcul", "Martin"),
			rec("P17", time.Time{}, "NOTE", "BET", "CVC", "C", "Note calcul", "Martin"),
			rec("P17", d(time.January, 20), "PLAN", "ARCHI", "CVC", "A", "Plan R+1", "Dupont"),
			rec("P17", d(time.January, 20), "NOTICE", "", "GO", "", "Notice", "Durand"),
		},
	}
}

func p18() *ged.Dataset {
	return &ged.Dataset{
		Name: "P18",
		Records: []ged.Record{
			rec("P18", d(time.May, 2), "PLAN", "ARCHI", "ELEC", "A", "Schéma", "Leroy"),
			rec("P18", d(time.May, 30), "PLAN", "ARCHI", "ELEC", "B", "Schéma", "Leroy"),
		},
	}
}

func testGenerator() *Generator {
	return NewGenerator(newMemSource(p17(), p18(), &ged.Dataset{Name: "EMPTY"}))
}
