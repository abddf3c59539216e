package testutil

import (
	"context"
	"sync"

	"occratios/internal/operations"
)

// MockStage is a configurable step for manager and registry tests
type MockStage struct {
	IDValue           string
	NameValue         string
	DependenciesValue []string

	ExecuteFunc  func(ctx context.Context, state *operations.OperationState) error
	ValidateFunc func(state *operations.OperationState) error

	mu            sync.Mutex
	executeCalls  int
	validateCalls int
}

// NewMockStage creates a step that succeeds unless configured otherwise
func NewMockStage(id string, deps ...string) *MockStage {
	return &MockStage{IDValue: id, NameValue: id, DependenciesValue: deps}
}

// ID returns the step ID
func (m *MockStage) ID() string {
	return m.IDValue
}

// Name returns the step name
func (m *MockStage) Name() string {
	return m.NameValue
}

// GetDependencies returns the step dependencies
func (m *MockStage) GetDependencies() []string {
	if m.DependenciesValue == nil {
		return []string{}
	}
	return m.DependenciesValue
}

// Execute runs ExecuteFunc if set
func (m *MockStage) Execute(ctx context.Context, state *operations.OperationState) error {
	m.mu.Lock()
	m.executeCalls++
	m.mu.Unlock()

	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, state)
	}
	return nil
}

// Validate runs ValidateFunc if set
func (m *MockStage) Validate(state *operations.OperationState) error {
	m.mu.Lock()
	m.validateCalls++
	m.mu.Unlock()

	if m.ValidateFunc != nil {
		return m.ValidateFunc(state)
	}
	return nil
}

// ExecuteCalls returns the number of Execute calls
func (m *MockStage) ExecuteCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.executeCalls
}

// ValidateCalls returns the number of Validate calls
func (m *MockStage) ValidateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.validateCalls
}
