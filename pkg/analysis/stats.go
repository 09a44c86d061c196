// SPDX-License-Identifier: Apache-2.0

package analysis

import (
	"math"
	"sort"
	"strings"

	"github.com/jllopis/gedboard/pkg/errors"
)

// Stat is the aggregate applied to a group of values.
type Stat string

const (
	StatMean   Stat = "mean"
	StatMax    Stat = "max"
	StatMedian Stat = "median"
	StatMin    Stat = "min"
)

// ParseStat accepts mean, max, median and min plus the French labels
// moyenne, maximum, médiane and minimum.
func ParseStat(s string) (Stat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mean", "avg", "moyenne":
		return StatMean, nil
	case "max", "maximum":
		return StatMax, nil
	case "median", "médiane", "mediane":
		return StatMedian, nil
	case "min", "minimum":
		return StatMin, nil
	}
	return "", errors.Newf(errors.CodeInvalidInput, "unknown statistic %q", s).WithContext("stat", s)
}

// Label returns the French column label of the statistic.
func (s Stat) Label() string {
	switch s {
	case StatMax:
		return "maximum"
	case StatMedian:
		return "médiane"
	case StatMin:
		return "minimum"
	default:
		return "moyenne"
	}
}

// Apply computes the statistic. It returns NaN for an empty slice.
func (s Stat) Apply(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	switch s {
	case StatMax:
		m := values[0]
		for _, v := range values[1:] {
			m = math.Max(m, v)
		}
		return m
	case StatMin:
		m := values[0]
		for _, v := range values[1:] {
			m = math.Min(m, v)
		}
		return m
	case StatMedian:
		return Median(values)
	default:
		return Mean(values)
	}
}

// Mean returns the arithmetic mean, NaN when values is empty.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Median returns the median, averaging the two middle values of an even set.
func Median(values []float64) float64 {
	return Quantile(values, 0.5)
}

// Quantile returns the q-quantile with linear interpolation between
// closest ranks. values is not modified.
func Quantile(values []float64, q float64) float64 {
	n := len(values)
	if n == 0 {
		return math.NaN()
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	return quantileSorted(sorted, q)
}

func quantileSorted(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Box summarizes a distribution for a box plot.
type Box struct {
	N      int     `json:"n"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// BoxStats returns the five-number summary of values. ok is false for an empty set.
func BoxStats(values []float64) (Box, bool) {
	if len(values) == 0 {
		return Box{}, false
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return Box{
		N:      len(sorted),
		Min:    sorted[0],
		Q1:     quantileSorted(sorted, 0.25),
		Median: quantileSorted(sorted, 0.5),
		Q3:     quantileSorted(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
	}, true
}

// Round rounds x to the given number of decimals, halves to even.
func Round(x float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.RoundToEven(x*p) / p
}

// Percent returns part/total*100 rounded to two decimals.
func Percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return Round(float64(part)/float64(total)*100, 2)
}
