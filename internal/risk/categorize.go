package risk

// Solvency categories, best first.
const (
	SolvencyHigh = ">p50"
	SolvencyMid  = "p50-p05"
	SolvencyLow  = "<p5"
)

// Funding vulnerability categories, least vulnerable first.
const (
	FundingLow  = "<p50"
	FundingMid  = "p50-p95"
	FundingHigh = ">p95"
)

// SolvencyOrder is the row order of the cross-tab.
var SolvencyOrder = []string{SolvencyHigh, SolvencyMid, SolvencyLow}

// FundingOrder is the column order of the cross-tab.
var FundingOrder = []string{FundingLow, FundingMid, FundingHigh}

// CategorizeSolvency buckets a solvency proxy. Missing and zero values have
// no category and return "". With NaN thresholds every value falls to the
// lowest bucket.
func CategorizeSolvency(p Proxies, th Thresholds) string {
	if !p.Solvency.Valid || p.Solvency.Value == 0 {
		return ""
	}
	x := p.Solvency.Value
	switch {
	case x > th.SolvencyP50:
		return SolvencyHigh
	case x > th.SolvencyP05:
		return SolvencyMid
	default:
		return SolvencyLow
	}
}

// CategorizeFunding buckets a funding vulnerability proxy. A missing value
// returns ""; zero always lands in the lowest bucket.
func CategorizeFunding(p Proxies, th Thresholds) string {
	if !p.Funding.Valid {
		return ""
	}
	x := p.Funding.Value
	switch {
	case x == 0 || x <= th.FundingP50:
		return FundingLow
	case x <= th.FundingP95:
		return FundingMid
	default:
		return FundingHigh
	}
}

func indexOf(order []string, label string) int {
	for i, l := range order {
		if l == label {
			return i
		}
	}
	return -1
}
