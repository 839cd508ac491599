package scoring

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithWeights sets the component weights. They are validated by NewEngine.
func WithWeights(w Weights) Option {
	return func(e *Engine) {
		e.weights = w
	}
}

// WithConfidence sets the confidence reported on every assessment.
func WithConfidence(c float64) Option {
	return func(e *Engine) {
		e.confidence = c
	}
}

// WithBands replaces the band tables. A nil table keeps the default.
func WithBands(age, bmi, systolicBP BandTable) Option {
	return func(e *Engine) {
		if age != nil {
			e.ageBands = cloneBands(age)
		}
		if bmi != nil {
			e.bmiBands = cloneBands(bmi)
		}
		if systolicBP != nil {
			e.bpBands = cloneBands(systolicBP)
		}
	}
}
