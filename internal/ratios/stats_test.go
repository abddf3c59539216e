package ratios

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"occratios/pkg/contracts/domain"
)

func floats(vs ...float64) []domain.NullFloat {
	out := make([]domain.NullFloat, len(vs))
	for i, v := range vs {
		out[i] = domain.Float(v)
	}
	return out
}

func TestDescribe_OneToTen(t *testing.T) {
	stats := Describe(floats(10, 9, 8, 7, 6, 5, 4, 3, 2, 1))

	assert.Equal(t, 10, stats.Count)
	assert.InDelta(t, 5.5, stats.Mean.Value, 1e-12)
	assert.InDelta(t, 5.5, stats.Median.Value, 1e-12)
	assert.InDelta(t, 1.9, stats.P10.Value, 1e-12)
	assert.InDelta(t, 9.1, stats.P90.Value, 1e-12)
}

func TestDescribe_IgnoresMissing(t *testing.T) {
	values := append(floats(1, 2, 3), domain.NullFloat{}, domain.Float(math.NaN()))
	stats := Describe(values)

	assert.Equal(t, 3, stats.Count)
	assert.InDelta(t, 2, stats.Mean.Value, 1e-12)
	assert.InDelta(t, 2, stats.Median.Value, 1e-12)
}

func TestDescribe_Empty(t *testing.T) {
	stats := Describe([]domain.NullFloat{{}, {}})

	assert.Zero(t, stats.Count)
	for _, v := range stats.Values() {
		assert.True(t, v.Missing())
	}
}

func TestDescribe_Rounding(t *testing.T) {
	stats := Describe(floats(1.23456))

	assert.InDelta(t, 1.2346, stats.Mean.Value, 1e-12)
	assert.InDelta(t, 1.2346, stats.P90.Value, 1e-12)
}

func TestQuantile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		q      float64
		want   float64
	}{
		{"single value", []float64{4}, 0.3, 4},
		{"lower end", []float64{1, 2, 3}, 0, 1},
		{"upper end", []float64{1, 2, 3}, 1, 3},
		{"exact rank", []float64{1, 2, 3}, 0.5, 2},
		{"interpolated", []float64{0, 10}, 0.25, 2.5},
		{"near upper", []float64{0, 10}, 0.95, 9.5},
		{"ties", []float64{2, 2, 2, 2}, 0.9, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Quantile(tt.sorted, tt.q), 1e-12)
		})
	}

	assert.True(t, math.IsNaN(Quantile(nil, 0.5)))
}

func TestQuantile_Monotone(t *testing.T) {
	sorted := []float64{-3, 0.1, 0.2, 7, 7, 40}
	prev := math.Inf(-1)
	for q := 0.0; q <= 1.0; q += 0.01 {
		v := Quantile(sorted, q)
		require.GreaterOrEqual(t, v, prev, "q=%v", q)
		prev = v
	}
}

func TestRound4(t *testing.T) {
	assert.InDelta(t, 0.1235, Round4(0.12351), 1e-12)
	assert.InDelta(t, -0.1235, Round4(-0.12351), 1e-12)
	assert.Equal(t, 2.0, Round4(2))
}

func TestSummarize(t *testing.T) {
	frame := frameOf(
		RatioSet{DepositToAsset: domain.Float(0.2), LoanToDeposit: domain.Float(1)},
		RatioSet{DepositToAsset: domain.Float(0.4), LoanToDeposit: domain.Float(2)},
		RatioSet{DepositToAsset: domain.Float(0.6)},
	)
	summary := Summarize(frame)

	require.Len(t, summary.Columns, len(RatioNames))
	for i, name := range RatioNames {
		assert.Equal(t, name, summary.Columns[i].Name)
	}

	assert.InDelta(t, 0.4, summary.Cell(StatMean, DepositToAsset).Value, 1e-12)
	assert.InDelta(t, 1.5, summary.Cell(StatMedian, LoanToDeposit).Value, 1e-12)
	assert.True(t, summary.Cell(StatMean, EquityToAsset).Missing())
	assert.True(t, summary.Cell("Std", DepositToAsset).Missing())
	assert.True(t, summary.Cell(StatMean, "unknown").Missing())

	stats, ok := summary.Column(DepositToAsset)
	require.True(t, ok)
	assert.Equal(t, 3, stats.Count)
}
