package risk

import (
	"context"
	"log/slog"

	"occratios/internal/infrastructure"
	"occratios/pkg/contracts/domain"
)

// Cell is one solvency × funding bucket.
type Cell struct {
	// Rows is the number of records in the bucket.
	Rows int `json:"rows"`
	// Observations counts the rows with a numeric is_rec.
	Observations int `json:"observations"`
	// Rate is the mean is_rec, missing when Observations is zero.
	Rate domain.NullFloat `json:"rate"`
}

// CrossTab is the fixed 3×3 grid of receivership rates. Cells[i][j] pairs
// SolvencyOrder[i] with FundingOrder[j].
type CrossTab struct {
	Rows       []string   `json:"rows"`
	Columns    []string   `json:"columns"`
	Cells      [][]Cell   `json:"cells"`
	Thresholds Thresholds `json:"thresholds"`
	// Categorized counts records placed on both axes.
	Categorized int `json:"categorized"`
	Total       int `json:"total"`
}

// Rate returns the mean is_rec for a pair of category labels. Unknown
// labels read as missing.
func (c CrossTab) Rate(solvency, funding string) domain.NullFloat {
	i, j := indexOf(c.Rows, solvency), indexOf(c.Columns, funding)
	if i < 0 || j < 0 {
		return domain.NullFloat{}
	}
	return c.Cells[i][j].Rate
}

// Categorizer builds the cross-tab for a table.
type Categorizer struct {
	logger  *slog.Logger
	metrics *infrastructure.PipelineMetrics
}

// NewCategorizer creates a categorizer; both arguments may be nil.
func NewCategorizer(logger *slog.Logger, metrics *infrastructure.PipelineMetrics) *Categorizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Categorizer{
		logger:  logger.With(slog.String("component", "risk_categorizer")),
		metrics: metrics,
	}
}

// Build computes proxies and thresholds over the whole table and returns
// the cross-tab.
func (c *Categorizer) Build(ctx context.Context, table *domain.Table) (CrossTab, error) {
	proxies := make([]Proxies, table.Len())
	for i := range proxies {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return CrossTab{}, err
			}
		}
		proxies[i] = ComputeProxies(table.At(i))
	}
	th := ComputeThresholds(proxies)

	tab := Tabulate(table, proxies, th)

	c.metrics.RecordRiskRows(ctx, tab.Categorized)
	c.logger.InfoContext(ctx, "Built risk cross-tab",
		slog.Int("rows", tab.Total),
		slog.Int("categorized", tab.Categorized),
		slog.Float64("solvency_p50", th.SolvencyP50),
		slog.Float64("solvency_p05", th.SolvencyP05),
		slog.Float64("funding_p50", th.FundingP50),
		slog.Float64("funding_p95", th.FundingP95))

	return tab, nil
}

// Tabulate buckets each record with th and averages is_rec per cell.
// proxies must be positioned like the table.
func Tabulate(table *domain.Table, proxies []Proxies, th Thresholds) CrossTab {
	tab := CrossTab{
		Rows:       append([]string(nil), SolvencyOrder...),
		Columns:    append([]string(nil), FundingOrder...),
		Cells:      make([][]Cell, len(SolvencyOrder)),
		Thresholds: th,
		Total:      table.Len(),
	}
	sums := make([][]float64, len(SolvencyOrder))
	for i := range tab.Cells {
		tab.Cells[i] = make([]Cell, len(FundingOrder))
		sums[i] = make([]float64, len(FundingOrder))
	}

	for k, p := range proxies {
		i := indexOf(SolvencyOrder, CategorizeSolvency(p, th))
		j := indexOf(FundingOrder, CategorizeFunding(p, th))
		if i < 0 || j < 0 {
			continue
		}
		tab.Categorized++
		tab.Cells[i][j].Rows++

		if rec := table.At(k).IsRec; rec.Valid {
			tab.Cells[i][j].Observations++
			sums[i][j] += rec.Value
		}
	}

	for i := range tab.Cells {
		for j := range tab.Cells[i] {
			if n := tab.Cells[i][j].Observations; n > 0 {
				tab.Cells[i][j].Rate = domain.Float(sums[i][j] / float64(n))
			}
		}
	}
	return tab
}
