package scoring

import (
	"fmt"

	"github.com/healthwatch/inference/internal/domain/model"
)

// significanceThreshold is the component weight above which a metric is
// reported as a contributing factor.
const significanceThreshold = 0.5

// obeseBMI separates the overweight and obese wording. It is independent of
// the BMI band weights.
const obeseBMI = 30.0

// HealthySentinel is the only factor reported when no metric is significant.
const HealthySentinel = "All metrics within healthy ranges"

// identifyFactors explains which metrics drive the score, always in the
// order age, BMI, blood pressure.
func identifyFactors(m model.Metrics, c componentRisks) []string {
	factors := make([]string, 0, 3)

	if c.age > significanceThreshold {
		factors = append(factors, fmt.Sprintf("Age (%d years) is a significant risk factor", m.Age()))
	}

	if c.bmi > significanceThreshold {
		category := "overweight"
		if m.BMI() >= obeseBMI {
			category = "obese"
		}
		factors = append(factors, fmt.Sprintf("BMI (%.1f) indicates %s", m.BMI(), category))
	}

	if c.bp > significanceThreshold {
		factors = append(factors, fmt.Sprintf("Blood pressure (%d mmHg) is elevated", m.SystolicBP()))
	}

	if len(factors) == 0 {
		factors = append(factors, HealthySentinel)
	}
	return factors
}
