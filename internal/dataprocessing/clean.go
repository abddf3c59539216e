package dataprocessing

import (
	"sort"

	"occratios/pkg/contracts/domain"
)

// EssentialColumns must all be present for a row to survive cleaning.
var EssentialColumns = []string{
	domain.ColAssets,
	domain.ColDeposits,
	domain.ColLoans,
	domain.ColODraft,
	domain.ColCapital,
	domain.ColSurplusFund,
	domain.ColUndividedProfits,
}

// CleanOptions configures Clean.
type CleanOptions struct {
	// Fields are checked for presence and then winsorized.
	Fields []string
	// WinsorLower and WinsorUpper are the fractions trimmed at each end.
	WinsorLower float64
	WinsorUpper float64
}

// DefaultCleanOptions trims 1% at each end of every essential field.
func DefaultCleanOptions() CleanOptions {
	return CleanOptions{
		Fields:      EssentialColumns,
		WinsorLower: 0.01,
		WinsorUpper: 0.01,
	}
}

// CleanReport summarises what Clean removed or changed.
type CleanReport struct {
	RowsIn                   int
	DroppedMissing           int
	DroppedNonPositiveAssets int
	RowsOut                  int
	// Clamped counts winsorized values per field.
	Clamped map[string]int
}

// Clean drops rows missing any of opts.Fields, keeps rows with assets > 0,
// then winsorizes each field. The input table is not modified.
func Clean(table *domain.Table, opts CleanOptions) (*domain.Table, CleanReport) {
	report := CleanReport{RowsIn: table.Len(), Clamped: make(map[string]int)}

	complete := table.Filter(func(r domain.BalanceSheetRecord) bool {
		for _, f := range opts.Fields {
			if r.Value(f).Missing() {
				return false
			}
		}
		return true
	})
	report.DroppedMissing = table.Len() - complete.Len()

	positive := complete.Filter(func(r domain.BalanceSheetRecord) bool {
		return r.Assets.Valid && r.Assets.Value > 0
	})
	report.DroppedNonPositiveAssets = complete.Len() - positive.Len()

	records := positive.Records()
	for _, f := range opts.Fields {
		report.Clamped[f] = winsorizeField(records, f, opts.WinsorLower, opts.WinsorUpper)
	}

	report.RowsOut = len(records)
	return domain.NewTable(table.Source(), records), report
}

// winsorizeField clamps the non-missing values of field in place and
// returns how many changed.
func winsorizeField(records []domain.BalanceSheetRecord, field string, lower, upper float64) int {
	var idx []int
	var vals []float64
	for i, r := range records {
		if v := r.Value(field); v.Valid {
			idx = append(idx, i)
			vals = append(vals, v.Value)
		}
	}

	out := Winsorize(vals, lower, upper)
	changed := 0
	for k, i := range idx {
		if out[k] != vals[k] {
			records[i] = records[i].WithValue(field, domain.Float(out[k]))
			changed++
		}
	}
	return changed
}

// Winsorize returns a copy of values with the int(lower·n) smallest set to
// the next-smallest kept value and the int(upper·n) largest set to the
// next-largest kept value. Count-based, so ties at a cut are not special.
func Winsorize(values []float64, lower, upper float64) []float64 {
	n := len(values)
	out := make([]float64, n)
	copy(out, values)
	if n == 0 {
		return out
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] < values[order[b]]
	})

	lowIdx := int(lower * float64(n))
	upIdx := n - int(float64(n)*upper)

	if lowIdx > 0 && lowIdx < n {
		floor := values[order[lowIdx]]
		for _, i := range order[:lowIdx] {
			out[i] = floor
		}
	}
	if upIdx < n && upIdx > 0 {
		ceil := values[order[upIdx-1]]
		for _, i := range order[upIdx:] {
			out[i] = ceil
		}
	}
	return out
}
