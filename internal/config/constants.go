package config

// Application constants for the OCC ratio tools
const (
	// Application Info
	AppName = "occratios"

	// Configuration sources
	EnvPrefix      = "OCC"
	ConfigFileName = "occratios.yaml"

	// File Paths (relative to the base directory)
	DefaultInputFile = "data/raw/occ-balance-sheets.csv"
	DefaultOutputDir = "output"
	DefaultLogsDir   = "logs"

	// Analysis defaults
	DefaultDepositCutoff = 1e-5
	DefaultWinsorLimit   = 0.01

	// Report file names
	RatioSummaryCSV   = "ratio_summary.csv"
	RatioSummaryXLSX  = "ratio_summary.xlsx"
	RiskCrossTabCSV   = "failure_probabilities.csv"
	RiskHeatmapXLSX   = "failure_probabilities_heatmap.xlsx"
	RunManifestJSON   = "run_manifest.json"
	MetricsTextfile   = "metrics.prom"
	TraceFile         = "traces.json"
	RatioSummarySheet = "Summary"
	RiskCrossTabSheet = "Failure Probabilities"
)
