package operations

// Pipeline identifiers
const (
	PipelineRatios = "ratio-report"
	PipelineRisk   = "risk-report"
)

// Step identifiers
const (
	StepIDLoad    = "load"
	StepIDClean   = "clean"
	StepIDRatios  = "ratios"
	StepIDSummary = "summary"
	StepIDRisk    = "risk"
	StepIDExport  = "export"
)

// Step names
const (
	StepNameLoad    = "Load Balance Sheets"
	StepNameClean   = "Clean Input"
	StepNameRatios  = "Calculate Ratios"
	StepNameSummary = "Summary Statistics"
	StepNameRisk    = "Risk Categories"
	StepNameExport  = "Export Artifacts"
)

// Context keys for values passed between steps
const (
	ContextKeyTable       = "table"
	ContextKeyLoadReport  = "load_report"
	ContextKeyCleanReport = "clean_report"
	ContextKeyRawFrame    = "raw_frame"
	ContextKeyFrame       = "frame"
	ContextKeyCalcReport  = "calculation_report"
	ContextKeyRatioClean  = "ratio_clean_report"
	ContextKeySummary     = "summary"
	ContextKeyCrossTab    = "cross_tab"
	ContextKeyArtifacts   = "artifacts"
)
