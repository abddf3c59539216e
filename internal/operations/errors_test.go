package operations

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *OperationError
		want string
	}{
		{
			name: "with step and cause",
			err:  NewExecutionError(StepIDLoad, errors.New("file not found")),
			want: "[execution] load: step execution failed: file not found",
		},
		{
			name: "without step",
			err:  &OperationError{Type: ErrorTypeDependency, Message: "dependency cycle detected"},
			want: "[dependency] dependency cycle detected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestWrapError(t *testing.T) {
	plain := errors.New("plain")

	tests := []struct {
		name     string
		err      error
		wantType ErrorType
	}{
		{"plain error", plain, ErrorTypeExecution},
		{"cancelled", context.Canceled, ErrorTypeCancellation},
		{"deadline", fmt.Errorf("read: %w", context.DeadlineExceeded), ErrorTypeCancellation},
		{"already typed", NewValidationError("", plain), ErrorTypeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := WrapError(tt.err, StepIDRatios)
			require.Error(t, wrapped)
			assert.Equal(t, tt.wantType, GetErrorType(wrapped))
			assert.ErrorIs(t, wrapped, tt.err)

			var opErr *OperationError
			require.True(t, errors.As(wrapped, &opErr))
			assert.Equal(t, StepIDRatios, opErr.Step)
		})
	}

	assert.NoError(t, WrapError(nil, StepIDRatios))
}

func TestGetErrorType(t *testing.T) {
	assert.Equal(t, ErrorType(""), GetErrorType(nil))
	assert.Equal(t, ErrorTypeExecution, GetErrorType(errors.New("x")))
	assert.Equal(t, ErrorTypeDependency, GetErrorType(fmt.Errorf("outer: %w", NewDependencyError("b", "a", "missing"))))
}
