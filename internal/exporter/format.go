package exporter

import (
	"strconv"

	"occratios/pkg/contracts/domain"
)

// formatFloat formats a value for CSV output; missing values are empty cells
func formatFloat(v domain.NullFloat) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Value, 'f', -1, 64)
}

// formatTableFloat formats a value for terminal tables with a fixed number
// of decimals; missing values print as NaN
func formatTableFloat(v domain.NullFloat, decimals int) string {
	if !v.Valid {
		return "NaN"
	}
	return strconv.FormatFloat(v.Value, 'f', decimals, 64)
}
