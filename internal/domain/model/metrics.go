// Package model contains domain models passed between layers.
package model

import "math"

// Domain bounds for patient metrics. All bounds are inclusive.
const (
	MinAge        = 0
	MaxAge        = 120
	MinBMI        = 10.0
	MaxBMI        = 60.0
	MinSystolicBP = 60
	MaxSystolicBP = 250
)

// Field names used in validation errors and log fields.
const (
	FieldAge        = "age"
	FieldBMI        = "bmi"
	FieldSystolicBP = "blood_pressure"
)

// Metrics is a single patient's validated input. The zero value is not a
// valid instance; use NewMetrics.
type Metrics struct {
	age        int     // years
	bmi        float64 // kg/m^2
	systolicBP int     // mmHg
}

// NewMetrics validates all three values and returns a Metrics only when every
// bound holds. Every violated field is reported in the returned
// *InvalidInputError.
func NewMetrics(age int, bmi float64, systolicBP int) (Metrics, error) {
	var violations []Violation

	if age < MinAge || age > MaxAge {
		violations = append(violations, Violation{Field: FieldAge, Value: float64(age), Min: MinAge, Max: MaxAge})
	}
	// NaN fails every comparison, so it is checked explicitly.
	if math.IsNaN(bmi) || bmi < MinBMI || bmi > MaxBMI {
		violations = append(violations, Violation{Field: FieldBMI, Value: bmi, Min: MinBMI, Max: MaxBMI})
	}
	if systolicBP < MinSystolicBP || systolicBP > MaxSystolicBP {
		violations = append(violations, Violation{Field: FieldSystolicBP, Value: float64(systolicBP), Min: MinSystolicBP, Max: MaxSystolicBP})
	}

	if len(violations) > 0 {
		return Metrics{}, &InvalidInputError{Violations: violations}
	}
	return Metrics{age: age, bmi: bmi, systolicBP: systolicBP}, nil
}

// MustMetrics is like NewMetrics but panics on invalid input. Intended for
// tests and static fixtures.
func MustMetrics(age int, bmi float64, systolicBP int) Metrics {
	m, err := NewMetrics(age, bmi, systolicBP)
	if err != nil {
		panic(err)
	}
	return m
}

// Age returns the patient's age in years.
func (m Metrics) Age() int { return m.age }

// BMI returns the body mass index.
func (m Metrics) BMI() float64 { return m.bmi }

// SystolicBP returns the systolic blood pressure in mmHg.
func (m Metrics) SystolicBP() int { return m.systolicBP }
