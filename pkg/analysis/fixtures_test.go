// SPDX-License-Identifier: Apache-2.0

package analysis

import (
	"time"

	"github.com/jllopis/gedboard/pkg/ged"
)

func d(m time.Month, day int) time.Time {
	return time.Date(2023, m, day, 0, 0, 0, 0, time.UTC)
}

func rec(date time.Time, docType, issuer, lot, index, label, addedBy string) ged.Record {
	return ged.Record{
		DepositDate:  date,
		DocumentType: docType,
		Project:      "P17",
		Issuer:       issuer,
		Lot:          lot,
		Index:        index,
		Label:        label,
		AddedBy:      addedBy,
	}
}

// fixture is a small project:
//
//	0 02/01 PLAN   ARCHI GO  A Plan RDC    Dupont
//	1 12/01 PLAN   ARCHI GO  B Plan RDC    Dupont
//	2 11/02 PLAN   ARCHI GO  C Plan RDC    Durand
//	3 05/01 NOTE   BET   CVC A Note calcul Martin
//	4 06/03 NOTE   BET   CVC B Note calcul Martin
//	5 ----- NOTE   BET   CVC C Note calcul Martin
//	6 20/01 PLAN   ARCHI CVC A Plan R+1    Dupont
//	7 20/01 NOTICE       GO    Notice      Durand
func fixture() *ged.Dataset {
	return &ged.Dataset{
		Name: "P17",
		Records: []ged.Record{
			rec(d(time.January, 2), "PLAN", "ARCHI", "GO", "A", "Plan RDC", "Dupont"),
			rec(d(time.January, 12), "PLAN", "ARCHI", "GO", "B", "Plan RDC", "Dupont"),
			rec(d(time.February, 11), "PLAN", "ARCHI", "GO", "C", "Plan RDC", "Durand"),
			rec(d(time.January, 5), "NOTE", "BET", "CVC", "A", "Note calcul", "Martin"),
			rec(d(time.March, 6), "NOTE", "BET", "CVC", "B", "Note calcul", "Martin"),
			rec(time.Time{}, "NOTE", "BET", "CVC", "C", "Note calcul", "Martin"),
			rec(d(time.January, 20), "PLAN", "ARCHI", "CVC", "A", "Plan R+1", "Dupont"),
			rec(d(time.January, 20), "NOTICE", "", "GO", "", "Notice", "Durand"),
		},
		Skipped: 1,
	}
}
