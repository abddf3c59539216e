package operations

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"

	"occratios/internal/exporter"
	"occratios/pkg/contracts"
)

// RunManifest records what a run read, did and wrote
type RunManifest struct {
	mu sync.RWMutex

	// Identity
	RunID             string    `json:"run_id"`
	Pipeline          string    `json:"pipeline"`
	Version           string    `json:"version"`
	DataFormatVersion string    `json:"data_format_version"`
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time,omitempty"`

	// Configuration
	Options map[string]interface{} `json:"options,omitempty"`

	Input *InputInfo `json:"input,omitempty"`

	// Execution tracking
	Steps     []StageExecution    `json:"steps"`
	Artifacts []exporter.Artifact `json:"artifacts"`

	Status      string    `json:"status"` // "pending", "running", "completed", "failed", "cancelled"
	LastUpdated time.Time `json:"last_updated"`
	Error       string    `json:"error,omitempty"`
}

// InputInfo identifies the input table
type InputInfo struct {
	Path          string         `json:"path"`
	Format        string         `json:"format,omitempty"`
	Bytes         int64          `json:"bytes"`
	Blake2b256    string         `json:"blake2b_256"`
	Rows          int            `json:"rows"`
	ParseWarnings map[string]int `json:"parse_warnings,omitempty"`
}

// StageExecution tracks the execution of a single step
type StageExecution struct {
	StepID    string                 `json:"step_id"`
	StepName  string                 `json:"step_name"`
	StartTime time.Time              `json:"start_time"`
	EndTime   time.Time              `json:"end_time,omitempty"`
	Duration  string                 `json:"duration,omitempty"`
	Status    string                 `json:"status"` // "running", "completed", "failed"
	Error     string                 `json:"error,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewRunManifest creates a new run manifest
func NewRunManifest(runID, pipeline string) *RunManifest {
	now := time.Now()
	return &RunManifest{
		RunID:             runID,
		Pipeline:          pipeline,
		Version:           contracts.Version,
		DataFormatVersion: contracts.DataFormatVersion,
		StartTime:         now,
		Options:           make(map[string]interface{}),
		Steps:             []StageExecution{},
		Artifacts:         []exporter.Artifact{},
		Status:            "pending",
		LastUpdated:       now,
	}
}

// SetOption records a run option
func (m *RunManifest) SetOption(key string, value interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Options[key] = value
}

// SetInput records the input identity
func (m *RunManifest) SetInput(info *InputInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Input = info
	m.LastUpdated = time.Now()
}

// AddArtifacts records written files
func (m *RunManifest) AddArtifacts(artifacts ...exporter.Artifact) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Artifacts = append(m.Artifacts, artifacts...)
	m.LastUpdated = time.Now()
}

// RecordStageStart records the start of a step execution
func (m *RunManifest) RecordStageStart(stepID, stepName string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Status = "running"
	m.Steps = append(m.Steps, StageExecution{
		StepID:    stepID,
		StepName:  stepName,
		StartTime: time.Now(),
		Status:    "running",
	})
	m.LastUpdated = time.Now()
}

// RecordStageCompletion records the completion of a step
func (m *RunManifest) RecordStageCompletion(stepID string, metadata map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i := m.lastIndex(stepID); i >= 0 {
		m.Steps[i].EndTime = time.Now()
		m.Steps[i].Duration = m.Steps[i].EndTime.Sub(m.Steps[i].StartTime).String()
		m.Steps[i].Status = "completed"
		if len(metadata) > 0 {
			m.Steps[i].Metadata = metadata
		}
	}
	m.LastUpdated = time.Now()
}

// RecordStageFailure records a step failure and fails the run
func (m *RunManifest) RecordStageFailure(stepID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i := m.lastIndex(stepID); i >= 0 {
		m.Steps[i].EndTime = time.Now()
		m.Steps[i].Duration = m.Steps[i].EndTime.Sub(m.Steps[i].StartTime).String()
		m.Steps[i].Status = "failed"
		m.Steps[i].Error = err.Error()
	}
	m.Status = "failed"
	m.Error = fmt.Sprintf("step %s failed: %v", stepID, err)
	m.LastUpdated = time.Now()
}

// Finish closes the manifest with the run outcome
func (m *RunManifest) Finish(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.EndTime = time.Now()
	m.LastUpdated = m.EndTime
	if err != nil {
		m.Status = "failed"
		if GetErrorType(err) == ErrorTypeCancellation {
			m.Status = "cancelled"
		}
		if m.Error == "" {
			m.Error = err.Error()
		}
		return
	}
	m.Status = "completed"
}

// IsStageCompleted checks if a step has been completed
func (m *RunManifest) IsStageCompleted(stepID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.lastIndex(stepID)
	return i >= 0 && m.Steps[i].Status == "completed"
}

func (m *RunManifest) lastIndex(stepID string) int {
	for i := len(m.Steps) - 1; i >= 0; i-- {
		if m.Steps[i].StepID == stepID {
			return i
		}
	}
	return -1
}

// SaveToFile saves the manifest to a JSON file
func (m *RunManifest) SaveToFile(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest file: %w", err)
	}

	return nil
}

// LoadManifestFromFile loads a manifest from a JSON file
func LoadManifestFromFile(path string) (*RunManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	var manifest RunManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}

	return &manifest, nil
}

// DigestFile returns the hex BLAKE2b-256 digest and size of a file
func DigestFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", 0, err
	}
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}
