// Package config provides centralized configuration management for the OCC
// ratio analysis tools. It handles loading configuration from multiple
// sources, validation, and path resolution for inputs and report artifacts.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern OCC_<SECTION>_<FIELD>:
//
//	OCC_LOGGING_LEVEL=debug
//	OCC_PATHS_INPUT_FILE=data/raw/occ-balance-sheets.csv
//	OCC_ANALYSIS_DEPOSIT_CUTOFF=0.00001
//	OCC_ANALYSIS_CLEAN_INPUT=true
//	OCC_TELEMETRY_TRACE_EXPORTER=file
//
// # Configuration File
//
// When no explicit path is given, the loader looks for occratios.yaml and
// configs/occratios.yaml relative to the working directory:
//
//	analysis:
//	  apply_deposit_cutoff: true
//	  deposit_cutoff: 0.00001
//	  clip_ratios: true
//	paths:
//	  output_dir: output
//
// # Validation
//
// The merged configuration is validated with struct tags
// (github.com/go-playground/validator). Every failing field is reported in a
// single CONFIG error.
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	paths, err := cfg.ResolvePaths()
package config
