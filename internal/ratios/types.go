package ratios

import (
	"math"

	"occratios/pkg/contracts/domain"
)

// Ratio column names, in report order.
const (
	DepositToAsset     = "deposit_to_asset"
	LoanToDeposit      = "loan_to_deposit"
	LiquidAssetRatio   = "liquid_asset_ratio"
	EquityToAsset      = "equity_to_asset"
	NominalAssetGrowth = "nominal_asset_growth"
)

// RatioNames lists every ratio in report order.
var RatioNames = []string{
	DepositToAsset,
	LoanToDeposit,
	LiquidAssetRatio,
	EquityToAsset,
	NominalAssetGrowth,
}

// DefaultDepositCutoff is the smallest total deposit base for which
// loan_to_deposit is reported.
const DefaultDepositCutoff = 1e-5

// ConsolidatedAccounts are the aggregate totals derived from one record.
type ConsolidatedAccounts struct {
	TotalDeposits float64 `json:"total_deposits"`
	TotalLoans    float64 `json:"total_loans"`
	LiquidAssets  float64 `json:"liquid_assets"`
	TotalEquity   float64 `json:"total_equity"`
}

// RatioSet holds the five ratios for one bank-year.
type RatioSet struct {
	DepositToAsset     domain.NullFloat `json:"deposit_to_asset"`
	LoanToDeposit      domain.NullFloat `json:"loan_to_deposit"`
	LiquidAssetRatio   domain.NullFloat `json:"liquid_asset_ratio"`
	EquityToAsset      domain.NullFloat `json:"equity_to_asset"`
	NominalAssetGrowth domain.NullFloat `json:"nominal_asset_growth"`
}

func (s *RatioSet) field(name string) *domain.NullFloat {
	switch name {
	case DepositToAsset:
		return &s.DepositToAsset
	case LoanToDeposit:
		return &s.LoanToDeposit
	case LiquidAssetRatio:
		return &s.LiquidAssetRatio
	case EquityToAsset:
		return &s.EquityToAsset
	case NominalAssetGrowth:
		return &s.NominalAssetGrowth
	default:
		return nil
	}
}

// Get returns the named ratio; unknown names read as missing.
func (s RatioSet) Get(name string) domain.NullFloat {
	if f := s.field(name); f != nil {
		return *f
	}
	return domain.NullFloat{}
}

// With returns a copy with the named ratio replaced.
func (s RatioSet) With(name string, v domain.NullFloat) RatioSet {
	if f := s.field(name); f != nil {
		*f = v
	}
	return s
}

// Row is one bank-year of derived values.
type Row struct {
	BankID   string               `json:"bank_id"`
	Year     domain.NullInt       `json:"year"`
	Accounts ConsolidatedAccounts `json:"accounts"`
	Ratios   RatioSet             `json:"ratios"`
}

// Frame holds derived rows in input order. It is never modified after
// construction.
type Frame struct {
	rows []Row
}

// NewFrame copies rows into a new frame.
func NewFrame(rows []Row) *Frame {
	cp := make([]Row, len(rows))
	copy(cp, rows)
	return &Frame{rows: cp}
}

// Len returns the number of rows
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.rows)
}

// At returns the i-th row
func (f *Frame) At(i int) Row {
	return f.rows[i]
}

// Rows returns a copy of all rows
func (f *Frame) Rows() []Row {
	cp := make([]Row, len(f.rows))
	copy(cp, f.rows)
	return cp
}

// Column returns the named ratio for every row.
func (f *Frame) Column(name string) []domain.NullFloat {
	out := make([]domain.NullFloat, len(f.rows))
	for i, r := range f.rows {
		out[i] = r.Ratios.Get(name)
	}
	return out
}

// Bound is an inclusive clamp interval.
type Bound struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// IsValid checks the bound is finite and ordered
func (b Bound) IsValid() bool {
	return !math.IsNaN(b.Lower) && !math.IsNaN(b.Upper) &&
		!math.IsInf(b.Lower, 0) && !math.IsInf(b.Upper, 0) &&
		b.Lower <= b.Upper
}

// Clamp moves v onto the nearest bound when outside the interval
func (b Bound) Clamp(v float64) float64 {
	return math.Min(math.Max(v, b.Lower), b.Upper)
}

// Contains reports whether v lies in the interval
func (b Bound) Contains(v float64) bool {
	return v >= b.Lower && v <= b.Upper
}

// Bounds maps ratio names to their clamp intervals. Ratios without an entry
// are left unclamped.
type Bounds map[string]Bound

// DefaultBounds returns the economic bounds for each ratio.
func DefaultBounds() Bounds {
	return Bounds{
		DepositToAsset:     {Lower: 0, Upper: 1},
		LiquidAssetRatio:   {Lower: 0, Upper: 1},
		EquityToAsset:      {Lower: 0, Upper: 1},
		LoanToDeposit:      {Lower: 0, Upper: 3},
		NominalAssetGrowth: {Lower: -1, Upper: 2},
	}
}

// Options parameterises the calculator and cleaner.
type Options struct {
	// ApplyDepositCutoff suppresses loan_to_deposit below DepositCutoff.
	// When false only a zero deposit base suppresses it.
	ApplyDepositCutoff bool    `json:"apply_deposit_cutoff"`
	DepositCutoff      float64 `json:"deposit_cutoff"`
	// Bounds used by the cleaner; nil disables clamping.
	Bounds Bounds `json:"bounds,omitempty"`
}

// DefaultOptions enables the deposit cutoff and the default bounds.
func DefaultOptions() Options {
	return Options{
		ApplyDepositCutoff: true,
		DepositCutoff:      DefaultDepositCutoff,
		Bounds:             DefaultBounds(),
	}
}
