package scoring

import (
	"fmt"
	"math"
)

const weightSumTolerance = 1e-9

// Weights sets the contribution of each component risk to the final score.
// They must be non-negative and sum to 1.0 so the score stays in [0, 1].
type Weights struct {
	Age        float64
	BMI        float64
	SystolicBP float64
}

// DefaultWeights returns the production weighting. BMI carries the most weight.
func DefaultWeights() Weights {
	return Weights{Age: 0.3, BMI: 0.4, SystolicBP: 0.3}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Age + w.BMI + w.SystolicBP
}

// Validate checks that weights are non-negative and sum to 1.0.
func (w Weights) Validate() error {
	for _, v := range []float64{w.Age, w.BMI, w.SystolicBP} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("%w: negative weight %v", ErrInvalidWeights, v)
		}
	}
	if math.Abs(w.Sum()-1.0) > weightSumTolerance {
		return fmt.Errorf("%w: sum to %.4f, must sum to 1.0", ErrInvalidWeights, w.Sum())
	}
	return nil
}

// combine returns the weighted sum. Operand order is fixed so results are
// reproducible to the last bit.
func (w Weights) combine(c componentRisks) float64 {
	return (c.age * w.Age) + (c.bmi * w.BMI) + (c.bp * w.SystolicBP)
}
