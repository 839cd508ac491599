package scoring

import "math"

// Band maps every value strictly below UpperBound (and not claimed by an
// earlier band) to Weight.
type Band struct {
	UpperBound float64
	Weight     float64
	Label      string
}

// BandTable is an ordered ladder of bands. Bands are evaluated in ascending
// order and the first band whose UpperBound exceeds the value wins. The last
// band must have an infinite UpperBound so every value is covered.
type BandTable []Band

// Lookup returns the band that covers v.
func (t BandTable) Lookup(v float64) Band {
	for _, b := range t {
		if v < b.UpperBound {
			return b
		}
	}
	// Unreachable for a validated table; the catch-all band covers the rest.
	return t[len(t)-1]
}

// Weight returns the risk weight for v.
func (t BandTable) Weight(v float64) float64 {
	return t.Lookup(v).Weight
}

// Validate checks that bounds strictly ascend, that the last band is a
// catch-all and that every weight lies in [0, 1].
func (t BandTable) Validate() error {
	if len(t) == 0 {
		return ErrEmptyBandTable
	}
	for i, b := range t {
		if b.Weight < 0 || b.Weight > 1 || math.IsNaN(b.Weight) {
			return wrapBand(ErrBandWeight, i)
		}
		if i > 0 && !(b.UpperBound > t[i-1].UpperBound) {
			return wrapBand(ErrBandOrder, i)
		}
	}
	if !math.IsInf(t[len(t)-1].UpperBound, 1) {
		return ErrBandCoverage
	}
	return nil
}

// Default band tables.
var (
	// AgeBands grades age in years.
	AgeBands = BandTable{
		{UpperBound: 30, Weight: 0.1, Label: "young adult"},
		{UpperBound: 50, Weight: 0.3, Label: "adult"},
		{UpperBound: 65, Weight: 0.6, Label: "older adult"},
		{UpperBound: math.Inf(1), Weight: 0.9, Label: "senior"},
	}

	// BMIBands grades body mass index. Underweight carries more risk than
	// normal weight, so weights are not monotonic in the value.
	BMIBands = BandTable{
		{UpperBound: 18.5, Weight: 0.4, Label: "underweight"},
		{UpperBound: 25, Weight: 0.1, Label: "normal"},
		{UpperBound: 30, Weight: 0.5, Label: "overweight"},
		{UpperBound: math.Inf(1), Weight: 0.8, Label: "obese"},
	}

	// SystolicBPBands grades systolic blood pressure in mmHg.
	SystolicBPBands = BandTable{
		{UpperBound: 120, Weight: 0.1, Label: "normal"},
		{UpperBound: 130, Weight: 0.3, Label: "elevated"},
		{UpperBound: 140, Weight: 0.6, Label: "stage 1 hypertension"},
		{UpperBound: math.Inf(1), Weight: 0.9, Label: "stage 2 hypertension"},
	}
)
