package domain

import (
	"encoding/json"
	"math"
	"strconv"
)

// NullFloat is a float64 that may be absent.
type NullFloat struct {
	Value float64
	Valid bool
}

// Float returns a present NullFloat. NaN and infinities are stored as missing.
func Float(v float64) NullFloat {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NullFloat{}
	}
	return NullFloat{Value: v, Valid: true}
}

// Missing reports whether the value is absent.
func (n NullFloat) Missing() bool {
	return !n.Valid
}

// OrZero folds a missing value to zero (consolidation rule).
func (n NullFloat) OrZero() float64 {
	if !n.Valid {
		return 0
	}
	return n.Value
}

// OrNaN folds a missing value to NaN so it propagates through arithmetic.
func (n NullFloat) OrNaN() float64 {
	if !n.Valid {
		return math.NaN()
	}
	return n.Value
}

// IsZero reports whether the value is present and exactly zero.
func (n NullFloat) IsZero() bool {
	return n.Valid && n.Value == 0
}

// String renders missing values as "NaN" to match the printed tables.
func (n NullFloat) String() string {
	if !n.Valid {
		return "NaN"
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

// MarshalJSON encodes missing values as null.
func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// UnmarshalJSON decodes null as missing.
func (n *NullFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = NullFloat{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Float(v)
	return nil
}

// NullInt is an int that may be absent.
type NullInt struct {
	Value int
	Valid bool
}

// Int returns a present NullInt.
func Int(v int) NullInt {
	return NullInt{Value: v, Valid: true}
}

// String renders missing values as an empty string.
func (n NullInt) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.Itoa(n.Value)
}

// MarshalJSON encodes missing values as null.
func (n NullInt) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}
