// SPDX-License-Identifier: Apache-2.0

package analysis

import (
	"strings"
	"time"

	"github.com/jllopis/gedboard/pkg/errors"
	"github.com/jllopis/gedboard/pkg/ged"
)

// Period is an analysis window measured from a project's first deposit.
type Period string

const (
	Period6M  Period = "6m"
	Period12M Period = "12m"
	PeriodAll Period = "all"
)

// ParsePeriod accepts 6m, 12m and all, and the French "6 mois", "1 an"
// and "toute la période".
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "6m", "6", "6 mois":
		return Period6M, nil
	case "12m", "12", "1y", "1 an", "12 mois":
		return Period12M, nil
	case "", "all", "toute la période", "toute la periode":
		return PeriodAll, nil
	}
	return "", errors.Newf(errors.CodeInvalidInput, "unknown period %q", s).WithContext("period", s)
}

// Label returns the French label of the period.
func (p Period) Label() string {
	switch p {
	case Period6M:
		return "6 premiers mois"
	case Period12M:
		return "12 premiers mois"
	default:
		return "toute la période"
	}
}

// Window returns the end of the period starting at first. last is the
// latest deposit, used by PeriodAll.
func (p Period) Window(first, last time.Time) time.Time {
	switch p {
	case Period6M:
		return first.AddDate(0, 0, 180)
	case Period12M:
		return first.AddDate(0, 0, 365)
	default:
		return last
	}
}

// FilterPeriod keeps the records deposited inside the period. PeriodAll
// returns the dataset unchanged.
func FilterPeriod(ds *ged.Dataset, p Period) *ged.Dataset {
	if ds == nil || p == PeriodAll || p == "" {
		return ds
	}
	first, last, ok := ds.DateRange()
	if !ok {
		return ds.Filter(func(ged.Record) bool { return false })
	}
	end := p.Window(first, last)
	return ds.Filter(func(r ged.Record) bool {
		return r.HasDate() && !r.DepositDate.Before(first) && !r.DepositDate.After(end)
	})
}
