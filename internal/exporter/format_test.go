package exporter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"occratios/pkg/contracts/domain"
)

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		name     string
		input    domain.NullFloat
		expected string
	}{
		{
			name:     "zero value",
			input:    domain.Float(0),
			expected: "0",
		},
		{
			name:     "rounded statistic",
			input:    domain.Float(0.1235),
			expected: "0.1235",
		},
		{
			name:     "negative growth",
			input:    domain.Float(-0.2),
			expected: "-0.2",
		},
		{
			name:     "large ratio without exponent",
			input:    domain.Float(1e8),
			expected: "100000000",
		},
		{
			name:     "missing",
			input:    domain.NullFloat{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatFloat(tt.input))
		})
	}
}

func TestFormatTableFloat(t *testing.T) {
	assert.Equal(t, "0.5000", formatTableFloat(domain.Float(0.5), 4))
	assert.Equal(t, "0.333333", formatTableFloat(domain.Float(1.0/3), 6))
	assert.Equal(t, "NaN", formatTableFloat(domain.NullFloat{}, 4))
}
