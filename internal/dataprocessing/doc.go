// Package dataprocessing reads OCC balance-sheet tables and prepares them
// for analysis.
//
// The Loader accepts CSV (any single-rune delimiter) or XLSX input and maps
// header cells onto the column catalogue in the domain package, matching
// case-insensitively. Unknown columns are ignored. Cells that are empty or
// hold an NA token read as missing; malformed numbers also read as missing
// but are counted per column in the LoadReport.
//
// Clean is the optional input cleaning pass: it drops rows missing any
// essential field or with non-positive assets, then winsorizes each
// essential field.
//
//	table, report, err := dataprocessing.NewLoader(logger, nil).
//		LoadWithReport(ctx, "occ.csv", dataprocessing.LoadOptions{Required: dataprocessing.RatioColumns})
//	cleaned, _ := dataprocessing.Clean(table, dataprocessing.DefaultCleanOptions())
package dataprocessing
