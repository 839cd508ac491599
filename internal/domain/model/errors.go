package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidInput is the sentinel kind for out-of-bounds patient metrics.
var ErrInvalidInput = errors.New("invalid input")

// Violation describes one field that fell outside its inclusive bounds.
type Violation struct {
	Field string  `json:"field"`
	Value float64 `json:"value"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s=%s outside [%s, %s]",
		v.Field, formatNumber(v.Value), formatNumber(v.Min), formatNumber(v.Max))
}

// InvalidInputError is returned by NewMetrics. It lists every violated bound.
type InvalidInputError struct {
	Violations []Violation
}

func (e *InvalidInputError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return ErrInvalidInput.Error() + ": " + strings.Join(parts, "; ")
}

// Is reports whether target is ErrInvalidInput.
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Fields returns the names of the violated fields in validation order.
func (e *InvalidInputError) Fields() []string {
	out := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		out[i] = v.Field
	}
	return out
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
