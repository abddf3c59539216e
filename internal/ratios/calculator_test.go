package ratios

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"occratios/pkg/contracts/domain"
)

func newTestCalculator(t *testing.T, opts Options) *Calculator {
	t.Helper()
	calc, err := NewCalculator(opts, slog.New(slog.NewJSONHandler(io.Discard, nil)), nil)
	require.NoError(t, err)
	return calc
}

func bankYear(bank string, year int, assets float64) domain.BalanceSheetRecord {
	return domain.BalanceSheetRecord{BankID: bank, Year: domain.Int(year), Assets: domain.Float(assets)}
}

func TestCalculator_AssetRatios(t *testing.T) {
	rec := domain.BalanceSheetRecord{
		BankID:   "B",
		Year:     domain.Int(1900),
		Assets:   domain.Float(200),
		Deposits: domain.Float(100),
		Loans:    domain.Float(50),
		Capital:  domain.Float(20),
		Currency: domain.Float(30),
	}

	frame, _, err := newTestCalculator(t, DefaultOptions()).Calculate(context.Background(), domain.NewTable("", []domain.BalanceSheetRecord{rec}))
	require.NoError(t, err)
	require.Equal(t, 1, frame.Len())

	r := frame.At(0).Ratios
	assert.Equal(t, domain.Float(0.5), r.DepositToAsset)
	assert.Equal(t, domain.Float(0.5), r.LoanToDeposit)
	assert.Equal(t, domain.Float(0.15), r.LiquidAssetRatio)
	assert.Equal(t, domain.Float(0.1), r.EquityToAsset)
	assert.True(t, r.NominalAssetGrowth.Missing())
	assert.Equal(t, 100.0, frame.At(0).Accounts.TotalDeposits)
}

func TestCalculator_NonPositiveAssets(t *testing.T) {
	for _, assets := range []domain.NullFloat{domain.Float(0), domain.Float(-10), {}} {
		rec := domain.BalanceSheetRecord{
			BankID:   "B",
			Assets:   assets,
			Deposits: domain.Float(100),
			Capital:  domain.Float(5),
			Currency: domain.Float(5),
		}
		frame, report, err := newTestCalculator(t, DefaultOptions()).Calculate(context.Background(), domain.NewTable("", []domain.BalanceSheetRecord{rec}))
		require.NoError(t, err)

		r := frame.At(0).Ratios
		assert.True(t, r.DepositToAsset.Missing(), "assets=%v", assets)
		assert.True(t, r.LiquidAssetRatio.Missing())
		assert.True(t, r.EquityToAsset.Missing())
		assert.Equal(t, 1, report.Suppressed[EquityToAsset][ReasonNonPositiveAssets])
	}
}

func TestCalculator_DepositCutoff(t *testing.T) {
	tiny := domain.BalanceSheetRecord{BankID: "B", Assets: domain.Float(1), Deposits: domain.Float(1e-6), Loans: domain.Float(100)}
	zero := domain.BalanceSheetRecord{BankID: "C", Assets: domain.Float(1), Loans: domain.Float(100)}
	atCutoff := domain.BalanceSheetRecord{BankID: "D", Assets: domain.Float(1), Deposits: domain.Float(1e-5), Loans: domain.Float(1e-5)}
	table := domain.NewTable("", []domain.BalanceSheetRecord{tiny, zero, atCutoff})

	t.Run("cutoff on", func(t *testing.T) {
		frame, report, err := newTestCalculator(t, DefaultOptions()).Calculate(context.Background(), table)
		require.NoError(t, err)
		assert.True(t, frame.At(0).Ratios.LoanToDeposit.Missing(), "1e-6 deposits suppressed, not 1e8")
		assert.True(t, frame.At(1).Ratios.LoanToDeposit.Missing())
		assert.Equal(t, domain.Float(1), frame.At(2).Ratios.LoanToDeposit)
		assert.Equal(t, 2, report.Suppressed[LoanToDeposit][ReasonDepositCutoff])
	})

	t.Run("cutoff off", func(t *testing.T) {
		opts := DefaultOptions()
		opts.ApplyDepositCutoff = false
		frame, report, err := newTestCalculator(t, opts).Calculate(context.Background(), table)
		require.NoError(t, err)

		raw := frame.At(0).Ratios.LoanToDeposit
		require.True(t, raw.Valid)
		assert.InDelta(t, 1e8, raw.Value, 1e-3)
		assert.True(t, frame.At(1).Ratios.LoanToDeposit.Missing(), "division by zero is missing")
		assert.Equal(t, 1, report.Suppressed[LoanToDeposit][ReasonUndefined])

		cleaned, _ := NewCleaner(DefaultBounds()).Clean(frame)
		assert.Equal(t, domain.Float(3), cleaned.At(0).Ratios.LoanToDeposit)
	})
}

func TestAssetGrowth(t *testing.T) {
	t.Run("year on year change", func(t *testing.T) {
		table := domain.NewTable("", []domain.BalanceSheetRecord{
			bankYear("X", 1900, 100),
			bankYear("X", 1901, 150),
			bankYear("X", 1902, 120),
		})
		growth := AssetGrowth(table, nil)

		assert.True(t, growth[0].Missing())
		assert.InDelta(t, 0.5, growth[1].Value, 1e-12)
		assert.InDelta(t, -0.2, growth[2].Value, 1e-12)
	})

	t.Run("unsorted input matches sorted", func(t *testing.T) {
		sorted := domain.NewTable("", []domain.BalanceSheetRecord{
			bankYear("A", 1900, 10), bankYear("A", 1901, 20),
			bankYear("B", 1900, 5), bankYear("B", 1901, 4),
		})
		shuffled := domain.NewTable("", []domain.BalanceSheetRecord{
			sorted.At(3), sorted.At(1), sorted.At(2), sorted.At(0),
		})

		want := AssetGrowth(sorted, nil)
		got := AssetGrowth(shuffled, nil)
		assert.Equal(t, want[3], got[0])
		assert.Equal(t, want[1], got[1])
		assert.Equal(t, want[2], got[2])
		assert.Equal(t, want[0], got[3])
	})

	t.Run("no fill forward", func(t *testing.T) {
		gap := domain.BalanceSheetRecord{BankID: "X", Year: domain.Int(1901)}
		table := domain.NewTable("", []domain.BalanceSheetRecord{
			bankYear("X", 1900, 100), gap, bankYear("X", 1902, 120),
		})
		report := &CalculationReport{Suppressed: map[string]map[string]int{}}
		growth := AssetGrowth(table, report)

		assert.True(t, growth[1].Missing())
		assert.True(t, growth[2].Missing(), "missing prior is not replaced by 1900")
		assert.Equal(t, 2, report.Suppressed[NominalAssetGrowth][ReasonMissingAssets])
	})

	t.Run("zero prior assets", func(t *testing.T) {
		table := domain.NewTable("", []domain.BalanceSheetRecord{
			bankYear("X", 1900, 0), bankYear("X", 1901, 50),
		})
		growth := AssetGrowth(table, nil)
		assert.True(t, growth[1].Missing())
	})

	t.Run("banks never share history", func(t *testing.T) {
		table := domain.NewTable("", []domain.BalanceSheetRecord{
			bankYear("A", 1900, 100), bankYear("B", 1901, 200),
		})
		growth := AssetGrowth(table, nil)
		assert.True(t, growth[0].Missing())
		assert.True(t, growth[1].Missing())
	})

	t.Run("empty bank id", func(t *testing.T) {
		table := domain.NewTable("", []domain.BalanceSheetRecord{
			bankYear("", 1900, 100), bankYear("", 1901, 200),
		})
		growth := AssetGrowth(table, nil)
		assert.True(t, growth[0].Missing())
		assert.True(t, growth[1].Missing())
	})
}

func TestCalculator_Idempotent(t *testing.T) {
	table := domain.NewTable("", []domain.BalanceSheetRecord{
		bankYear("A", 1900, 100), bankYear("A", 1901, 110),
	})
	calc := newTestCalculator(t, DefaultOptions())

	first, _, err := calc.Calculate(context.Background(), table)
	require.NoError(t, err)
	second, _, err := calc.Calculate(context.Background(), table)
	require.NoError(t, err)
	assert.Equal(t, first.Rows(), second.Rows())
}

func TestCalculator_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	table := domain.NewTable("", []domain.BalanceSheetRecord{bankYear("A", 1900, 1)})
	_, _, err := newTestCalculator(t, DefaultOptions()).Calculate(ctx, table)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewCalculator_InvalidOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.DepositCutoff = 0
	_, err := NewCalculator(opts, nil, nil)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "DepositCutoff", ve.Field)
}

func TestSafeDiv(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name   string
		num    float64
		den    float64
		want   float64
		wantOK bool
	}{
		{"ordinary", 1, 4, 0.25, true},
		{"zero denominator", 1, 0, 0, false},
		{"zero over zero", 0, 0, 0, false},
		{"nan numerator", nan, 1, 0, false},
		{"nan denominator", 1, nan, 0, false},
		{"overflow", 1e308, 1e-308, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := safeDiv(tt.num, tt.den)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
