package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePaths(t *testing.T) {
	t.Run("relative paths join base dir", func(t *testing.T) {
		base := t.TempDir()
		cfg := Default()
		cfg.Paths.BaseDir = base

		paths, err := cfg.ResolvePaths()
		require.NoError(t, err)

		assert.Equal(t, base, paths.BaseDir)
		assert.Equal(t, filepath.Join(base, DefaultInputFile), paths.InputFile)
		assert.Equal(t, filepath.Join(base, DefaultOutputDir), paths.OutputDir)
		assert.Equal(t, filepath.Join(base, DefaultLogsDir), paths.LogsDir)
	})

	t.Run("absolute paths kept", func(t *testing.T) {
		abs := filepath.Join(t.TempDir(), "in.csv")
		cfg := Default()
		cfg.Paths.InputFile = abs

		paths, err := cfg.ResolvePaths()
		require.NoError(t, err)
		assert.Equal(t, abs, paths.InputFile)
	})

	t.Run("empty base uses working directory", func(t *testing.T) {
		dir := chdirTemp(t)
		cfg := Default()

		paths, err := cfg.ResolvePaths()
		require.NoError(t, err)

		// macOS temp dirs are symlinked
		want, _ := filepath.EvalSymlinks(dir)
		got, _ := filepath.EvalSymlinks(paths.BaseDir)
		assert.Equal(t, want, got)
	})
}

func TestPaths_EnsureDirectories(t *testing.T) {
	base := t.TempDir()
	paths := &Paths{
		BaseDir:   base,
		OutputDir: filepath.Join(base, "out", "nested"),
		LogsDir:   filepath.Join(base, "logs"),
	}

	require.NoError(t, paths.EnsureDirectories())
	// idempotent
	require.NoError(t, paths.EnsureDirectories())

	for _, dir := range []string{paths.OutputDir, paths.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestPaths_Helpers(t *testing.T) {
	paths := &Paths{OutputDir: "/tmp/out", LogsDir: "/tmp/logs"}

	assert.Equal(t, filepath.Join("/tmp/out", RatioSummaryCSV), paths.GetReportPath(RatioSummaryCSV))
	assert.Equal(t, filepath.Join("/tmp/logs", "run.log"), paths.GetLogPath("run.log"))
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "present.csv")
	require.NoError(t, os.WriteFile(file, []byte("bank_id\n"), 0644))

	assert.True(t, FileExists(file))
	assert.False(t, FileExists(filepath.Join(dir, "absent.csv")))
}
