package operations

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"

	"occratios/internal/exporter"
	"occratios/pkg/contracts"
)

func TestRunManifest_Lifecycle(t *testing.T) {
	m := NewRunManifest("run-1", PipelineRatios)
	assert.Equal(t, contracts.Version, m.Version)
	assert.Equal(t, "pending", m.Status)

	m.SetOption("clip_ratios", true)
	m.RecordStageStart(StepIDLoad, StepNameLoad)
	assert.Equal(t, "running", m.Status)
	assert.False(t, m.IsStageCompleted(StepIDLoad))

	m.RecordStageCompletion(StepIDLoad, map[string]interface{}{"rows": 6})
	assert.True(t, m.IsStageCompleted(StepIDLoad))

	m.AddArtifacts(exporter.Artifact{Name: "ratio_summary.csv", Path: "/tmp/ratio_summary.csv", Bytes: 10})
	m.Finish(nil)

	assert.Equal(t, "completed", m.Status)
	assert.False(t, m.EndTime.IsZero())
	assert.Len(t, m.Artifacts, 1)
	assert.Equal(t, 6, m.Steps[0].Metadata["rows"])
}

func TestRunManifest_Failure(t *testing.T) {
	m := NewRunManifest("run-2", PipelineRisk)
	m.RecordStageStart(StepIDRisk, StepNameRisk)

	err := NewExecutionError(StepIDRisk, errors.New("no rows"))
	m.RecordStageFailure(StepIDRisk, err)
	m.Finish(err)

	assert.Equal(t, "failed", m.Status)
	assert.Equal(t, "failed", m.Steps[0].Status)
	assert.Contains(t, m.Error, "step risk failed")
}

func TestRunManifest_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run_manifest.json")

	m := NewRunManifest("run-3", PipelineRatios)
	m.SetInput(&InputInfo{Path: "in.csv", Format: "csv", Bytes: 12, Blake2b256: "ab", Rows: 2})
	m.RecordStageStart(StepIDLoad, StepNameLoad)
	m.RecordStageCompletion(StepIDLoad, nil)
	m.Finish(nil)
	require.NoError(t, m.SaveToFile(path))

	loaded, err := LoadManifestFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "run-3", loaded.RunID)
	assert.Equal(t, PipelineRatios, loaded.Pipeline)
	assert.Equal(t, "completed", loaded.Status)
	require.NotNil(t, loaded.Input)
	assert.Equal(t, 2, loaded.Input.Rows)
	assert.True(t, loaded.IsStageCompleted(StepIDLoad))

	_, err = LoadManifestFromFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestDigestFile(t *testing.T) {
	content := []byte("bank_id,year,assets\n1,1900,100\n")
	path := filepath.Join(t.TempDir(), "in.csv")
	require.NoError(t, os.WriteFile(path, content, 0644))

	digest, size, err := DigestFile(path)
	require.NoError(t, err)

	want := blake2b.Sum256(content)
	assert.Equal(t, hex.EncodeToString(want[:]), digest)
	assert.Equal(t, int64(len(content)), size)

	_, _, err = DigestFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
