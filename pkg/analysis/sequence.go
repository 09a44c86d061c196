// SPDX-License-Identifier: Apache-2.0

package analysis

import (
	"math"
	"sort"
	"time"

	"github.com/jllopis/gedboard/pkg/errors"
	"github.com/jllopis/gedboard/pkg/ged"
)

// MaxKMeansIterations bounds Cluster.
const MaxKMeansIterations = 100

// DefaultContamination is the share of rows Anomalies flags by default.
const DefaultContamination = 0.05

// TypeDate is a date attached to a document type.
type TypeDate struct {
	DocumentType string    `json:"document_type"`
	Date         time.Time `json:"date"`
}

// MeanDepositDates returns the mean deposit day of each document type,
// sorted by date then type.
func MeanDepositDates(ds *ged.Dataset) []TypeDate {
	if ds == nil {
		return nil
	}
	days := make(map[string][]float64)
	for _, r := range ds.Records {
		if r.HasDate() && r.DocumentType != "" {
			days[r.DocumentType] = append(days[r.DocumentType], dayNumber(r.DepositDate))
		}
	}
	out := make([]TypeDate, 0, len(days))
	for t, vals := range days {
		out = append(out, TypeDate{DocumentType: t, Date: fromDayNumber(math.RoundToEven(Mean(vals)))})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].DocumentType < out[j].DocumentType
	})
	return out
}

// Cluster groups rows by deposit date with a one-dimensional k-means.
// Centroids are seeded on evenly spaced quantiles so results are
// reproducible. Cluster ids are ordered by centroid; rows without a
// date get -1.
func Cluster(rows []Row, k int) ([]int, error) {
	if k < 1 {
		return nil, errors.Newf(errors.CodeInvalidInput, "cluster count must be at least 1, got %d", k)
	}
	ids := make([]int, len(rows))
	var points []float64
	var pos []int
	for i, r := range rows {
		ids[i] = -1
		if r.HasDate() {
			points = append(points, dayNumber(r.DepositDate))
			pos = append(pos, i)
		}
	}
	if len(points) == 0 {
		return ids, nil
	}
	if k > len(points) {
		k = len(points)
	}

	sorted := make([]float64, len(points))
	copy(sorted, points)
	sort.Float64s(sorted)
	centroids := make([]float64, k)
	for c := range centroids {
		centroids[c] = quantileSorted(sorted, (float64(c)+0.5)/float64(k))
	}

	assign := make([]int, len(points))
	for i := range assign {
		assign[i] = -1
	}
	for iter := 0; iter < MaxKMeansIterations; iter++ {
		changed := false
		for i, p := range points {
			best := nearest(centroids, p)
			if best != assign[i] {
				assign[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}
		sums := make([]float64, k)
		counts := make([]int, k)
		for i, p := range points {
			sums[assign[i]] += p
			counts[assign[i]]++
		}
		for c := range centroids {
			if counts[c] > 0 {
				centroids[c] = sums[c] / float64(counts[c])
			}
		}
	}

	rank := make([]int, k)
	order := make([]int, k)
	for c := range order {
		order[c] = c
	}
	sort.SliceStable(order, func(i, j int) bool { return centroids[order[i]] < centroids[order[j]] })
	for r, c := range order {
		rank[c] = r
	}
	for i, p := range pos {
		ids[p] = rank[assign[i]]
	}
	return ids, nil
}

func nearest(centroids []float64, p float64) int {
	best, bestDist := 0, math.Inf(1)
	for c, v := range centroids {
		if d := math.Abs(p - v); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// Anomalies flags the ceil(n*contamination) dated rows whose deposit day
// lies farthest from the median day. Ties keep file order.
func Anomalies(rows []Row, contamination float64) ([]bool, error) {
	if contamination <= 0 || contamination > 0.5 {
		return nil, errors.Newf(errors.CodeInvalidInput, "contamination must be in (0, 0.5], got %v", contamination)
	}
	flags := make([]bool, len(rows))
	var days []float64
	var pos []int
	for i, r := range rows {
		if r.HasDate() {
			days = append(days, dayNumber(r.DepositDate))
			pos = append(pos, i)
		}
	}
	if len(days) == 0 {
		return flags, nil
	}
	med := Median(days)
	order := make([]int, len(days))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return math.Abs(days[order[a]]-med) > math.Abs(days[order[b]]-med)
	})
	n := int(math.Ceil(float64(len(days)) * contamination))
	for _, i := range order[:n] {
		flags[pos[i]] = true
	}
	return flags, nil
}

// Correlation returns the Pearson coefficient between the deposit day and
// the gap since the previous version. It is NaN with fewer than two gaps
// or when either variable is constant.
func Correlation(rows []Row) float64 {
	var xs, ys []float64
	for _, r := range rows {
		if r.HasGap && r.HasDate() {
			xs = append(xs, dayNumber(r.DepositDate))
			ys = append(ys, float64(r.GapDays))
		}
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	mx, my := Mean(xs), Mean(ys)
	var sxy, sxx, syy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return math.NaN()
	}
	return sxy / math.Sqrt(sxx*syy)
}

// TypeSummary summarizes the deposits of one document type.
type TypeSummary struct {
	DocumentType string    `json:"document_type"`
	Documents    int       `json:"documents"`
	First        time.Time `json:"first"`
	Last         time.Time `json:"last"`
	MeanGapDays  float64   `json:"mean_gap_days"`
	Gaps         int       `json:"gaps"` // MeanGapDays is meaningless when zero
}

// Summary returns first and last deposit and the mean gap per type,
// sorted by type.
func Summary(rows []Row) []TypeSummary {
	byType := make(map[string]*TypeSummary)
	gaps := make(map[string][]float64)
	for _, r := range rows {
		if r.DocumentType == "" {
			continue
		}
		s, ok := byType[r.DocumentType]
		if !ok {
			s = &TypeSummary{DocumentType: r.DocumentType}
			byType[r.DocumentType] = s
		}
		s.Documents++
		if r.HasDate() {
			if s.First.IsZero() || r.DepositDate.Before(s.First) {
				s.First = r.DepositDate
			}
			if r.DepositDate.After(s.Last) {
				s.Last = r.DepositDate
			}
		}
		if r.HasGap {
			gaps[r.DocumentType] = append(gaps[r.DocumentType], float64(r.GapDays))
		}
	}
	out := make([]TypeSummary, 0, len(byType))
	for t, s := range byType {
		if g := gaps[t]; len(g) > 0 {
			s.Gaps = len(g)
			s.MeanGapDays = Round(Mean(g), 2)
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DocumentType < out[j].DocumentType })
	return out
}

func dayNumber(t time.Time) float64 {
	return math.Floor(float64(t.Unix()) / 86400)
}

func fromDayNumber(d float64) time.Time {
	return time.Unix(int64(d)*86400, 0).UTC()
}
