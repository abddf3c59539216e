package validation

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "occratios/internal/errors"
)

func quietValidator() *FileValidator {
	return NewFileValidator(slog.New(slog.NewJSONHandler(io.Discard, nil)))
}

func TestFileValidator_ValidateInputTable(t *testing.T) {
	tests := []struct {
		name          string
		setupFunc     func(t *testing.T) string
		wantErr       bool
		errorContains string
		wantCause     apperrors.ErrorType
	}{
		{
			name: "csv file",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "occ.csv")
				require.NoError(t, os.WriteFile(path, []byte("bank_id,year\n"), 0644))
				return path
			},
		},
		{
			name: "upper-case xlsx extension",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "OCC.XLSX")
				require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
				return path
			},
		},
		{
			name: "macro-enabled workbook",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "occ.xlsm")
				require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
				return path
			},
		},
		{
			name: "delimited file with another extension",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "occ.tsv")
				require.NoError(t, os.WriteFile(path, []byte("bank_id\tyear\n"), 0644))
				return path
			},
		},
		{
			name: "missing file",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "absent.csv")
			},
			wantErr:       true,
			errorContains: "absent.csv not found",
			wantCause:     apperrors.ErrTypeNotFound,
		},
		{
			name: "directory",
			setupFunc: func(t *testing.T) string {
				return t.TempDir()
			},
			wantErr:       true,
			errorContains: "is a directory",
			wantCause:     apperrors.ErrTypeValidation,
		},
		{
			name: "excel lock file",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "~$occ.xlsx")
				require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
				return path
			},
			wantErr:       true,
			errorContains: "temporary Excel file",
			wantCause:     apperrors.ErrTypeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := quietValidator().ValidateInputTable(tt.setupFunc(t))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeLoad))

			var loadErr *apperrors.AppError
			require.True(t, errors.As(err, &loadErr))
			assert.True(t, apperrors.IsType(loadErr.Cause, tt.wantCause))
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	t.Run("creates nested directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "a", "b")
		require.NoError(t, quietValidator().ValidateOutputDirectory(dir))
		assert.DirExists(t, dir)
		assert.NoFileExists(t, filepath.Join(dir, ".write_test"))
	})

	t.Run("path blocked by file", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "blocker")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
		err := quietValidator().ValidateOutputDirectory(filepath.Join(blocker, "out"))
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
	})
}

func TestNewFileValidator_NilLogger(t *testing.T) {
	v := NewFileValidator(nil)
	require.NotNil(t, v)
	assert.NotNil(t, v.logger)
}
