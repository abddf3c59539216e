package ratios

import (
	"context"
	"log/slog"
	"math"

	"occratios/internal/infrastructure"
	"occratios/pkg/contracts/domain"
)

// Reasons a ratio value is suppressed.
const (
	ReasonNonPositiveAssets = "non_positive_assets"
	ReasonDepositCutoff     = "deposit_cutoff"
	ReasonUndefined         = "undefined"
	ReasonFirstYear         = "first_year"
	ReasonMissingAssets     = "missing_assets"
	ReasonMissingBankID     = "missing_bank_id"
)

// CalculationReport counts suppressed values per ratio and reason.
type CalculationReport struct {
	Rows       int                       `json:"rows"`
	Suppressed map[string]map[string]int `json:"suppressed"`
}

func (r *CalculationReport) suppress(ratio, reason string) {
	if r.Suppressed[ratio] == nil {
		r.Suppressed[ratio] = make(map[string]int)
	}
	r.Suppressed[ratio][reason]++
}

// Total returns the number of suppressed values for ratio
func (r CalculationReport) Total(ratio string) int {
	n := 0
	for _, c := range r.Suppressed[ratio] {
		n += c
	}
	return n
}

// Calculator derives raw (unclamped) ratios from a table.
type Calculator struct {
	opts    Options
	logger  *slog.Logger
	metrics *infrastructure.PipelineMetrics
}

// NewCalculator validates opts and creates a calculator. logger and metrics
// may be nil.
func NewCalculator(opts Options, logger *slog.Logger, metrics *infrastructure.PipelineMetrics) (*Calculator, error) {
	if err := ValidateOptions(opts); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Calculator{
		opts:    opts,
		logger:  logger.With(slog.String("component", "ratio_calculator")),
		metrics: metrics,
	}, nil
}

// Options returns the calculator configuration
func (c *Calculator) Options() Options {
	return c.opts
}

// Calculate derives consolidated accounts and ratios for every record, in
// input order. Growth follows each bank's year order regardless of input
// order.
func (c *Calculator) Calculate(ctx context.Context, table *domain.Table) (*Frame, CalculationReport, error) {
	report := CalculationReport{Rows: table.Len(), Suppressed: make(map[string]map[string]int)}
	rows := make([]Row, table.Len())

	for i := 0; i < table.Len(); i++ {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, report, err
			}
		}
		rec := table.At(i)
		acc := Consolidate(rec)
		rows[i] = Row{
			BankID:   rec.BankID,
			Year:     rec.Year,
			Accounts: acc,
			Ratios:   c.levelRatios(rec, acc, &report),
		}
	}

	growth := AssetGrowth(table, &report)
	for i := range rows {
		rows[i].Ratios.NominalAssetGrowth = growth[i]
	}

	for ratio, reasons := range report.Suppressed {
		for reason, n := range reasons {
			c.metrics.RecordSuppressed(ctx, ratio, reason, n)
		}
	}

	c.logger.InfoContext(ctx, "Calculated ratios",
		slog.Int("rows", report.Rows),
		slog.Bool("deposit_cutoff", c.opts.ApplyDepositCutoff),
		slog.Int("suppressed_loan_to_deposit", report.Total(LoanToDeposit)),
		slog.Int("suppressed_growth", report.Total(NominalAssetGrowth)))

	return NewFrame(rows), report, nil
}

func (c *Calculator) levelRatios(rec domain.BalanceSheetRecord, acc ConsolidatedAccounts, report *CalculationReport) RatioSet {
	var set RatioSet
	assets := rec.Assets.OrNaN()

	// NaN assets fail the comparison and are suppressed with the guard
	if assets > 0 {
		set.DepositToAsset = divide(acc.TotalDeposits, assets, DepositToAsset, report)
		set.LiquidAssetRatio = divide(acc.LiquidAssets, assets, LiquidAssetRatio, report)
		set.EquityToAsset = divide(acc.TotalEquity, assets, EquityToAsset, report)
	} else {
		for _, name := range []string{DepositToAsset, LiquidAssetRatio, EquityToAsset} {
			report.suppress(name, ReasonNonPositiveAssets)
		}
	}

	if c.opts.ApplyDepositCutoff && acc.TotalDeposits < c.opts.DepositCutoff {
		report.suppress(LoanToDeposit, ReasonDepositCutoff)
	} else {
		set.LoanToDeposit = divide(acc.TotalLoans, acc.TotalDeposits, LoanToDeposit, report)
	}

	return set
}

func divide(num, den float64, ratio string, report *CalculationReport) domain.NullFloat {
	v, ok := safeDiv(num, den)
	if !ok {
		report.suppress(ratio, ReasonUndefined)
		return domain.NullFloat{}
	}
	return domain.Float(v)
}

// safeDiv returns num/den, or false when den is zero, an operand is NaN or
// the result is not finite.
func safeDiv(num, den float64) (float64, bool) {
	if den == 0 || math.IsNaN(num) || math.IsNaN(den) {
		return 0, false
	}
	v := num / den
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// AssetGrowth returns the year-on-year fractional change in assets for each
// record, positioned like the table. Only the immediately preceding row of
// the same bank in year order counts as prior; missing values are never
// carried forward. report may be nil.
func AssetGrowth(table *domain.Table, report *CalculationReport) []domain.NullFloat {
	if report == nil {
		report = &CalculationReport{Suppressed: make(map[string]map[string]int)}
	}

	out := make([]domain.NullFloat, table.Len())
	order := table.SortedIndex()

	for k, i := range order {
		cur := table.At(i)
		if cur.BankID == "" {
			report.suppress(NominalAssetGrowth, ReasonMissingBankID)
			continue
		}
		if k == 0 || table.At(order[k-1]).BankID != cur.BankID {
			report.suppress(NominalAssetGrowth, ReasonFirstYear)
			continue
		}

		prev := table.At(order[k-1])
		if prev.Assets.Missing() || cur.Assets.Missing() {
			report.suppress(NominalAssetGrowth, ReasonMissingAssets)
			continue
		}

		v, ok := safeDiv(cur.Assets.Value, prev.Assets.Value)
		if !ok {
			report.suppress(NominalAssetGrowth, ReasonUndefined)
			continue
		}
		out[i] = domain.Float(v - 1)
	}

	return out
}
