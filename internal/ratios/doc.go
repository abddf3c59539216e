// Package ratios derives balance-sheet ratios for OCC national banks and
// summarises their distributions.
//
// # Pipeline
//
// Each stage takes the previous value and returns a new one:
//
//  1. Consolidate: raw line items folded into total deposits, total loans,
//     liquid assets and total equity (missing items count as zero)
//  2. Calculator: deposit_to_asset, loan_to_deposit, liquid_asset_ratio,
//     equity_to_asset and nominal_asset_growth, with every division guarded
//  3. Cleaner: ratios clamped to economic bounds
//  4. Summarize: mean, median, 10th and 90th percentile per ratio
//
// # Files
//
//   - types.go: ratio names, Row, Frame, Bounds and Options
//   - consolidate.go: account consolidation
//   - calculator.go: ratio derivation and asset growth
//   - clean.go: bounds clamping
//   - stats.go: quantiles and summary statistics
//   - validate.go: option and output validation
//
// # Usage Example
//
//	calc, err := ratios.NewCalculator(ratios.DefaultOptions(), logger, nil)
//	if err != nil {
//	    return err
//	}
//	raw, _, err := calc.Calculate(ctx, table)
//	if err != nil {
//	    return err
//	}
//	cleaned, _ := ratios.NewCleaner(ratios.DefaultBounds()).Clean(raw)
//	summary := ratios.Summarize(cleaned)
//
// # Missing Values
//
// Ratios are domain.NullFloat. Division by zero, a NaN operand or a
// non-finite result yields a missing value and is never an error.
package ratios
