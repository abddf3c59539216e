// Package operations runs the ratio and risk pipelines as ordered steps.
//
// A Registry holds the steps of one pipeline and orders them by their
// declared dependencies. The Manager executes them against an
// OperationState, which carries step status and the values steps hand to
// each other (the loaded table, the ratio frame, the summary, the
// cross-tab). Each run gets a RunManifest recording the options, input
// digest, step timings and written artifacts.
//
// Steps:
//
//	load     read the balance-sheet table (CSV or XLSX)
//	clean    optional: drop incomplete rows and winsorize essential fields
//	ratios   derive and clamp the five balance-sheet ratios
//	summary  mean, median, 10th and 90th percentile per ratio
//	risk     solvency × funding cross-tab of failure rates
//	export   write CSV and XLSX artifacts
//
// Run wires these together for a Request and writes run_manifest.json and
// metrics.prom next to the artifacts.
package operations
