package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "occratios/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Analysis  AnalysisConfig  `yaml:"analysis" envconfig:"ANALYSIS"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"eq=json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	BaseDir   string `yaml:"base_dir" envconfig:"BASE_DIR"`
	InputFile string `yaml:"input_file" envconfig:"INPUT_FILE"`
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	LogsDir   string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`
}

// AnalysisConfig parameterizes the ratio pipeline.
type AnalysisConfig struct {
	ApplyDepositCutoff bool    `yaml:"apply_deposit_cutoff" envconfig:"APPLY_DEPOSIT_CUTOFF"`
	DepositCutoff      float64 `yaml:"deposit_cutoff" envconfig:"DEPOSIT_CUTOFF" validate:"gt=0"`
	ClipRatios         bool    `yaml:"clip_ratios" envconfig:"CLIP_RATIOS"`
	CleanInput         bool    `yaml:"clean_input" envconfig:"CLEAN_INPUT"`
	WinsorLower        float64 `yaml:"winsor_lower" envconfig:"WINSOR_LOWER" validate:"gte=0,lt=0.5"`
	WinsorUpper        float64 `yaml:"winsor_upper" envconfig:"WINSOR_UPPER" validate:"gte=0,lt=0.5"`
	Delimiter          string  `yaml:"delimiter" envconfig:"DELIMITER" validate:"len=1"`
}

// TelemetryConfig controls tracing and metrics output.
type TelemetryConfig struct {
	Tracing       bool   `yaml:"tracing" envconfig:"TRACING"`
	TraceExporter string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout file none"`
	Metrics       bool   `yaml:"metrics" envconfig:"METRICS"`
}

// Load builds the configuration from defaults, then the YAML file at path
// (or a well-known location when path is empty), then OCC_* environment
// variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	configFile := path
	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, apperrors.NewConfigError(fmt.Sprintf("failed to load config file %s", configFile), err)
		}
	}

	// No default tags on the struct: envconfig only overwrites fields whose
	// variable is set, so file values survive.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile overlays YAML onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks every field tag and returns one CONFIG error listing all failures.
func (c *Config) Validate() error {
	v := validator.New()
	err := v.Struct(c)
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.NewConfigError("config validation failed", err)
	}

	fields := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		fields = append(fields, fmt.Sprintf("%s (%s=%s, got %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
	}
	return apperrors.NewConfigError("config validation failed: "+strings.Join(fields, "; "), err).
		WithContext("fields", fields)
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		ConfigFileName,
		"configs/" + ConfigFileName,
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/occratios.log",
		},
		Paths: PathsConfig{
			InputFile: DefaultInputFile,
			OutputDir: DefaultOutputDir,
			LogsDir:   DefaultLogsDir,
		},
		Analysis: AnalysisConfig{
			ApplyDepositCutoff: true,
			DepositCutoff:      DefaultDepositCutoff,
			ClipRatios:         true,
			CleanInput:         false,
			WinsorLower:        DefaultWinsorLimit,
			WinsorUpper:        DefaultWinsorLimit,
			Delimiter:          ",",
		},
		Telemetry: TelemetryConfig{
			Tracing:       true,
			TraceExporter: "file",
			Metrics:       true,
		},
	}
}
