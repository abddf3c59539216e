package ratios

import (
	"fmt"
	"math"
)

// ValidationError represents validation errors
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Error implements the error interface
func (ve *ValidationError) Error() string {
	return ve.Message
}

// ValidateOptions checks calculator options
func ValidateOptions(opts Options) error {
	if opts.ApplyDepositCutoff {
		if math.IsNaN(opts.DepositCutoff) || math.IsInf(opts.DepositCutoff, 0) || opts.DepositCutoff <= 0 {
			return &ValidationError{
				Field:   "DepositCutoff",
				Message: "deposit cutoff must be a positive finite number",
				Value:   opts.DepositCutoff,
			}
		}
	}

	for name, b := range opts.Bounds {
		if !isRatioName(name) {
			return &ValidationError{
				Field:   "Bounds",
				Message: fmt.Sprintf("bounds given for unknown ratio %q", name),
				Value:   name,
			}
		}
		if !b.IsValid() {
			return &ValidationError{
				Field:   "Bounds",
				Message: fmt.Sprintf("bounds for %s must be finite with lower <= upper", name),
				Value:   b,
			}
		}
	}

	return nil
}

func isRatioName(name string) bool {
	for _, n := range RatioNames {
		if n == name {
			return true
		}
	}
	return false
}

// ValidateCleaned checks that every present ratio in frame lies within its
// bound. It returns the first violation found.
func ValidateCleaned(frame *Frame, bounds Bounds) error {
	for i := 0; i < frame.Len(); i++ {
		row := frame.At(i)
		for _, name := range RatioNames {
			v := row.Ratios.Get(name)
			if !v.Valid {
				continue
			}
			if math.IsInf(v.Value, 0) || math.IsNaN(v.Value) {
				return &ValidationError{
					Field:   name,
					Message: fmt.Sprintf("row %d: %s is not finite", i, name),
					Value:   v.Value,
				}
			}
			if b, ok := bounds[name]; ok && !b.Contains(v.Value) {
				return &ValidationError{
					Field:   name,
					Message: fmt.Sprintf("row %d: %s=%g outside [%g, %g]", i, name, v.Value, b.Lower, b.Upper),
					Value:   v.Value,
				}
			}
		}
	}
	return nil
}
