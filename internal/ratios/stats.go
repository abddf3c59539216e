package ratios

import (
	"math"
	"sort"

	"occratios/pkg/contracts/domain"
)

// Summary row labels, in report order.
const (
	StatMean   = "Mean"
	StatMedian = "Median"
	StatP10    = "10th percentile"
	StatP90    = "90th percentile"
)

// StatisticLabels lists the summary rows in report order.
var StatisticLabels = []string{StatMean, StatMedian, StatP10, StatP90}

// ColumnStats describes the distribution of one ratio.
type ColumnStats struct {
	Name   string           `json:"name"`
	Count  int              `json:"count"`
	Mean   domain.NullFloat `json:"mean"`
	Median domain.NullFloat `json:"median"`
	P10    domain.NullFloat `json:"p10"`
	P90    domain.NullFloat `json:"p90"`
}

// Values returns the statistics in StatisticLabels order
func (s ColumnStats) Values() []domain.NullFloat {
	return []domain.NullFloat{s.Mean, s.Median, s.P10, s.P90}
}

// Summary is the four-row statistics table, one column per ratio.
type Summary struct {
	Columns []ColumnStats `json:"columns"`
}

// Column looks up the statistics for a ratio
func (s Summary) Column(name string) (ColumnStats, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnStats{}, false
}

// Cell returns the statistic for label and ratio name.
func (s Summary) Cell(label, name string) domain.NullFloat {
	c, ok := s.Column(name)
	if !ok {
		return domain.NullFloat{}
	}
	for i, l := range StatisticLabels {
		if l == label {
			return c.Values()[i]
		}
	}
	return domain.NullFloat{}
}

// Summarize computes statistics for every ratio in RatioNames.
func Summarize(frame *Frame) Summary {
	summary := Summary{Columns: make([]ColumnStats, 0, len(RatioNames))}
	for _, name := range RatioNames {
		stats := Describe(frame.Column(name))
		stats.Name = name
		summary.Columns = append(summary.Columns, stats)
	}
	return summary
}

// Describe computes mean, median, p10 and p90 over the non-missing values,
// each rounded to four decimals. With no values every statistic is missing.
func Describe(values []domain.NullFloat) ColumnStats {
	sorted := SortedValues(values)
	stats := ColumnStats{Count: len(sorted)}
	if len(sorted) == 0 {
		return stats
	}

	var sum float64
	for _, v := range sorted {
		sum += v
	}

	stats.Mean = domain.Float(Round4(sum / float64(len(sorted))))
	stats.Median = domain.Float(Round4(Quantile(sorted, 0.5)))
	stats.P10 = domain.Float(Round4(Quantile(sorted, 0.1)))
	stats.P90 = domain.Float(Round4(Quantile(sorted, 0.9)))
	return stats
}

// SortedValues returns the present values in ascending order.
func SortedValues(values []domain.NullFloat) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v.Valid {
			out = append(out, v.Value)
		}
	}
	sort.Float64s(out)
	return out
}

// Quantile interpolates linearly between the closest ranks at (n-1)·q.
// sorted must be ascending. An empty slice yields NaN.
func Quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[n-1]
	}

	h := q * float64(n-1)
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	t := h - float64(lo)
	a, b := sorted[lo], sorted[lo+1]
	diff := b - a
	// evaluate from the nearer end to keep the result monotone in t
	if t >= 0.5 {
		return b - diff*(1-t)
	}
	return a + diff*t
}

// Round4 rounds half to even at four decimal places.
func Round4(x float64) float64 {
	return math.RoundToEven(x*1e4) / 1e4
}
