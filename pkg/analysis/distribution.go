// SPDX-License-Identifier: Apache-2.0

package analysis

import (
	"sort"
	"strings"

	"github.com/jllopis/gedboard/pkg/ged"
)

// Count is the number of records sharing a combination of keys.
type Count struct {
	Keys  []string `json:"keys"`
	Count int      `json:"count"`
}

// Key joins the keys with " / ".
func (c Count) Key() string {
	return strings.Join(c.Keys, " / ")
}

// Counts counts records per combination of fields, sorted by keys. Records
// with an empty value in any field are left out.
func Counts(ds *ged.Dataset, fields ...ged.Field) []Count {
	if ds == nil || len(fields) == 0 {
		return nil
	}
	counts := make(map[string]*Count)
	for _, r := range ds.Records {
		keys := make([]string, len(fields))
		skip := false
		for i, f := range fields {
			keys[i] = r.Value(f)
			if keys[i] == "" {
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		id := strings.Join(keys, "\x00")
		if c, ok := counts[id]; ok {
			c.Count++
			continue
		}
		counts[id] = &Count{Keys: keys, Count: 1}
	}
	out := make([]Count, 0, len(counts))
	for _, c := range counts {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return lessKeys(out[i].Keys, out[j].Keys) })
	return out
}

// CountBy counts records per value of field, sorted by count ascending.
func CountBy(ds *ged.Dataset, field ged.Field) []Count {
	out := Counts(ds, field)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count < out[j].Count })
	return out
}

// FilterIndices restricts a dataset to the given indices; none means all.
func FilterIndices(ds *ged.Dataset, indices []string) *ged.Dataset {
	if ds == nil {
		return nil
	}
	return ds.Filter(ged.In(ged.FieldIndex, indices...))
}

// ActorCounts holds the contribution of issuers and uploaders per type.
type ActorCounts struct {
	ByIssuer  []Count `json:"by_issuer"`
	ByAddedBy []Count `json:"by_added_by"`
}

// Actors counts records per (issuer, type) and per (uploader, type).
func Actors(ds *ged.Dataset) ActorCounts {
	return ActorCounts{
		ByIssuer:  Counts(ds, ged.FieldIssuer, ged.FieldDocumentType),
		ByAddedBy: Counts(ds, ged.FieldAddedBy, ged.FieldDocumentType),
	}
}

func lessKeys(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
