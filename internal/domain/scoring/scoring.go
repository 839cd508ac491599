// Package scoring computes explainable health-risk assessments from validated
// patient metrics.
//
// The engine is a pure function of its input: it performs no I/O, holds no
// mutable state and is safe for concurrent use without synchronization.
package scoring

import (
	"math"

	"github.com/healthwatch/inference/internal/domain/model"
	"github.com/shopspring/decimal"
)

// DefaultConfidence is reported for every assessment until a trained model
// supplies per-prediction confidence.
const DefaultConfidence = 0.85

// scorePrecision is the number of decimal places kept in RiskScore.
const scorePrecision = 3

// Category thresholds, exclusive upper bounds in ascending order.
const (
	lowUpperBound    = 0.25
	mediumUpperBound = 0.50
	highUpperBound   = 0.75
)

// Scorer produces a risk assessment from validated metrics.
type Scorer interface {
	Score(m model.Metrics) model.RiskAssessment
}

// Engine implements Scorer with fixed band tables and weights.
type Engine struct {
	weights    Weights
	confidence float64
	ageBands   BandTable
	bmiBands   BandTable
	bpBands    BandTable
}

// NewEngine builds an engine from the defaults and the given options.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		weights:    DefaultWeights(),
		confidence: DefaultConfidence,
		ageBands:   cloneBands(AgeBands),
		bmiBands:   cloneBands(BMIBands),
		bpBands:    cloneBands(SystolicBPBands),
	}

	// Apply all options
	for _, opt := range opts {
		opt(e)
	}

	if err := e.weights.Validate(); err != nil {
		return nil, err
	}
	if e.confidence < 0 || e.confidence > 1 || math.IsNaN(e.confidence) {
		return nil, ErrConfidence
	}
	for _, t := range []BandTable{e.ageBands, e.bmiBands, e.bpBands} {
		if err := t.Validate(); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// defaultEngine is built from constants only and cannot fail validation.
var defaultEngine = func() *Engine {
	e, err := NewEngine()
	if err != nil {
		panic(err)
	}
	return e
}()

// Default returns the engine configured with production defaults.
func Default() *Engine { return defaultEngine }

// Score assesses m with the default engine.
func Score(m model.Metrics) model.RiskAssessment {
	return defaultEngine.Score(m)
}

// Score computes the assessment for m. It never fails for a valid Metrics.
func (e *Engine) Score(m model.Metrics) model.RiskAssessment {
	c := e.components(m)
	score := Round(e.weights.combine(c))

	return model.RiskAssessment{
		RiskScore:           score,
		RiskLevel:           Categorize(score),
		Confidence:          e.confidence,
		ContributingFactors: identifyFactors(m, c),
		Components: model.ComponentRisks{
			Age:        c.age,
			BMI:        c.bmi,
			SystolicBP: c.bp,
		},
	}
}

type componentRisks struct {
	age float64
	bmi float64
	bp  float64
}

func (e *Engine) components(m model.Metrics) componentRisks {
	return componentRisks{
		age: e.ageBands.Weight(float64(m.Age())),
		bmi: e.bmiBands.Weight(m.BMI()),
		bp:  e.bpBands.Weight(float64(m.SystolicBP())),
	}
}

// Round rounds a raw weighted sum to the score precision, half away from
// zero on its shortest decimal representation.
func Round(raw float64) float64 {
	return decimal.NewFromFloat(raw).Round(scorePrecision).InexactFloat64()
}

// Categorize maps a score to its risk level. Callers pass the rounded score,
// so a raw sum that rounds up to a threshold lands in the higher level.
func Categorize(score float64) model.RiskLevel {
	switch {
	case score < lowUpperBound:
		return model.RiskLow
	case score < mediumUpperBound:
		return model.RiskMedium
	case score < highUpperBound:
		return model.RiskHigh
	default:
		return model.RiskCritical
	}
}

func cloneBands(t BandTable) BandTable {
	out := make(BandTable, len(t))
	copy(out, t)
	return out
}
