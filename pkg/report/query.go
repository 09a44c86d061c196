// SPDX-License-Identifier: Apache-2.0

package report

import (
	"net/url"
	"strings"

	"github.com/jllopis/gedboard/pkg/alert"
	"github.com/jllopis/gedboard/pkg/analysis"
	"github.com/jllopis/gedboard/pkg/ged"
)

// Query holds the user-selected filters of a dashboard. Zero values mean
// "all" or the dashboard default.
type Query struct {
	Project  string          `json:"project,omitempty"`
	Projects []string        `json:"projects,omitempty"`
	Category ged.Field       `json:"category,omitempty"`
	Group    string          `json:"group,omitempty"`
	Search   string          `json:"search,omitempty"`
	Alert1   *alert.Level    `json:"alert1,omitempty"`
	Alert2   *alert.Level    `json:"alert2,omitempty"`
	Stat     analysis.Stat   `json:"stat,omitempty"`
	Period   analysis.Period `json:"period,omitempty"`
	Types    []string        `json:"types,omitempty"`
	Indices  []string        `json:"indices,omitempty"`
	Lot      string          `json:"lot,omitempty"`
}

// ParseQuery reads a Query from URL parameters. List parameters accept
// repeated keys and comma-separated values. "Tous" and "all" clear an
// alert filter.
func ParseQuery(v url.Values) (Query, error) {
	q := Query{
		Project:  strings.TrimSpace(v.Get("project")),
		Projects: list(v, "projects"),
		Group:    strings.TrimSpace(v.Get("group")),
		Search:   strings.TrimSpace(v.Get("search")),
		Types:    list(v, "types"),
		Indices:  list(v, "indices"),
		Lot:      strings.TrimSpace(v.Get("lot")),
	}
	if q.Group == "Tous" {
		q.Group = ""
	}

	if c := strings.TrimSpace(v.Get("category")); c != "" {
		f, err := ged.ParseField(c)
		if err != nil {
			return q, err
		}
		q.Category = f
	}
	var err error
	if q.Alert1, err = levelParam(v.Get("alert1")); err != nil {
		return q, err
	}
	if q.Alert2, err = levelParam(v.Get("alert2")); err != nil {
		return q, err
	}
	if s := strings.TrimSpace(v.Get("stat")); s != "" {
		if q.Stat, err = analysis.ParseStat(s); err != nil {
			return q, err
		}
	}
	if p := strings.TrimSpace(v.Get("period")); p != "" {
		if q.Period, err = analysis.ParsePeriod(p); err != nil {
			return q, err
		}
	}
	return q, nil
}

// Values encodes the query back into URL parameters.
func (q Query) Values() url.Values {
	v := url.Values{}
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	set("project", q.Project)
	set("projects", strings.Join(q.Projects, ","))
	if q.Category != 0 {
		set("category", q.Category.String())
	}
	set("group", q.Group)
	set("search", q.Search)
	if q.Alert1 != nil {
		set("alert1", q.Alert1.String())
	}
	if q.Alert2 != nil {
		set("alert2", q.Alert2.String())
	}
	set("stat", string(q.Stat))
	set("period", string(q.Period))
	set("types", strings.Join(q.Types, ","))
	set("indices", strings.Join(q.Indices, ","))
	set("lot", q.Lot)
	return v
}

func (q Query) categoryOr(def ged.Field) ged.Field {
	if q.Category == 0 {
		return def
	}
	return q.Category
}

func (q Query) statOr(def analysis.Stat) analysis.Stat {
	if q.Stat == "" {
		return def
	}
	return q.Stat
}

func (q Query) periodOr(def analysis.Period) analysis.Period {
	if q.Period == "" {
		return def
	}
	return q.Period
}

func levelParam(s string) (*alert.Level, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "tous", "all":
		return nil, nil
	}
	lvl, err := alert.ParseLevel(s)
	if err != nil {
		return nil, err
	}
	return &lvl, nil
}

func list(v url.Values, key string) []string {
	var out []string
	for _, raw := range v[key] {
		for _, part := range strings.Split(raw, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
