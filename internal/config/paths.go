package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the resolved locations for one run.
// Relative config values are resolved against BaseDir.
type Paths struct {
	BaseDir   string
	InputFile string
	OutputDir string
	LogsDir   string
}

// ResolvePaths turns the configured paths into absolute locations. An empty
// BaseDir means the current working directory.
func (c *Config) ResolvePaths() (*Paths, error) {
	base := c.Paths.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %v", err)
		}
		base = wd
	}

	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory %s: %v", base, err)
	}

	return &Paths{
		BaseDir:   abs,
		InputFile: resolve(abs, c.Paths.InputFile),
		OutputDir: resolve(abs, c.Paths.OutputDir),
		LogsDir:   resolve(abs, c.Paths.LogsDir),
	}, nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// EnsureDirectories creates the output and log directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	logger := slog.Default()

	for _, dir := range []string{p.OutputDir, p.LogsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
		logger.Debug("Ensured directory exists",
			slog.String("directory", dir))
	}

	return nil
}

// GetReportPath returns the full path for a report artifact
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.OutputDir, filename)
}

// GetLogPath returns the full path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LogPathResolution logs the resolved locations at debug level
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("Path resolution summary",
		slog.String("base", p.BaseDir),
		slog.String("input", p.InputFile),
		slog.String("output", p.OutputDir),
		slog.String("logs", p.LogsDir))
}
