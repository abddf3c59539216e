package risk

import (
	"occratios/internal/ratios"
	"occratios/pkg/contracts/domain"
)

// Proxies are the two risk ratios for one record.
type Proxies struct {
	Solvency domain.NullFloat `json:"solvency_proxy"`
	Funding  domain.NullFloat `json:"funding_vulnerability"`
}

// ComputeProxies derives the proxies straight from raw line items.
//
// Equity is zero-filled, but a missing undivided_profits leaves the solvency
// proxy missing. Funding numerators are zero-filled; assets are not.
func ComputeProxies(r domain.BalanceSheetRecord) Proxies {
	var p Proxies

	equity := r.Capital.OrZero() + r.SurplusFund.OrZero() + r.UndividedProfits.OrZero()
	if equity > 0 && r.UndividedProfits.Valid {
		p.Solvency = domain.Float(r.UndividedProfits.Value / equity)
	}

	if r.Assets.Valid && r.Assets.Value > 0 {
		borrowed := r.BillsPayable.OrZero() + r.Rediscounts.OrZero()
		p.Funding = domain.Float(borrowed / r.Assets.Value)
	}

	return p
}

// Thresholds are the quantile cut points for both proxies. A proxy with no
// values has NaN thresholds.
type Thresholds struct {
	SolvencyP50 float64 `json:"solvency_p50"`
	SolvencyP05 float64 `json:"solvency_p05"`
	FundingP50  float64 `json:"funding_p50"`
	FundingP95  float64 `json:"funding_p95"`
}

// ComputeThresholds takes quantiles over every present proxy value,
// zeros included.
func ComputeThresholds(proxies []Proxies) Thresholds {
	solvency := make([]domain.NullFloat, len(proxies))
	funding := make([]domain.NullFloat, len(proxies))
	for i, p := range proxies {
		solvency[i] = p.Solvency
		funding[i] = p.Funding
	}

	s := ratios.SortedValues(solvency)
	f := ratios.SortedValues(funding)
	return Thresholds{
		SolvencyP50: ratios.Quantile(s, 0.5),
		SolvencyP05: ratios.Quantile(s, 0.05),
		FundingP50:  ratios.Quantile(f, 0.5),
		FundingP95:  ratios.Quantile(f, 0.95),
	}
}
