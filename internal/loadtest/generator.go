package loadtest

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"

	"github.com/google/uuid"

	"github.com/healthwatch/inference/internal/domain/model"
	"github.com/healthwatch/inference/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	profileDivisor     = 6
)

// Patient profiles used to spread samples across risk levels.
const (
	profileHealthy = iota
	profileOverweight
	profileHypertensive
	profileSenior
	profileEdge
	profileWide
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// randomInt returns a random int in [lo, hi].
func randomInt(lo, hi int) int {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(hi-lo+1)))
	return lo + int(n.Int64())
}

// randomBMI returns a BMI in [lo, hi] with one decimal.
func randomBMI(lo, hi float64) float64 {
	return math.Round((lo+getRandomFloat()*(hi-lo))*10) / 10
}

// generateSamples creates n samples with unique patient IDs.
func generateSamples(ctx context.Context, n int) ([]Sample, error) {
	logger.Get().Info(ctx, "generating samples", logger.Int("count", n))

	samples := make([]Sample, n)
	for i := range samples {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during sample generation: %w", err)
		}
		samples[i] = generateSample(uuid.NewString())
	}
	return samples, nil
}

// generateSample draws one patient from a random profile. Every value lies
// within the accepted bounds.
func generateSample(patientID string) Sample {
	s := Sample{PatientID: patientID}

	p, _ := rand.Int(rand.Reader, big.NewInt(profileDivisor))
	switch p.Int64() {
	case profileHealthy:
		s.Age, s.BMI, s.BloodPressure = randomInt(18, 40), randomBMI(18.5, 24.9), randomInt(95, 119)
	case profileOverweight:
		s.Age, s.BMI, s.BloodPressure = randomInt(30, 60), randomBMI(25, 38), randomInt(110, 135)
	case profileHypertensive:
		s.Age, s.BMI, s.BloodPressure = randomInt(40, 75), randomBMI(22, 34), randomInt(130, 190)
	case profileSenior:
		s.Age, s.BMI, s.BloodPressure = randomInt(65, model.MaxAge), randomBMI(18, 32), randomInt(110, 170)
	case profileEdge:
		// Band boundaries.
		ages := []int{model.MinAge, 29, 30, 49, 50, 64, 65, model.MaxAge}
		bmis := []float64{model.MinBMI, 18.4, 18.5, 24.9, 25, 29.9, 30, model.MaxBMI}
		bps := []int{model.MinSystolicBP, 119, 120, 129, 130, 139, 140, model.MaxSystolicBP}
		s.Age = ages[randomInt(0, len(ages)-1)]
		s.BMI = bmis[randomInt(0, len(bmis)-1)]
		s.BloodPressure = bps[randomInt(0, len(bps)-1)]
	default:
		s.Age = randomInt(model.MinAge, model.MaxAge)
		s.BMI = randomBMI(model.MinBMI, model.MaxBMI)
		s.BloodPressure = randomInt(model.MinSystolicBP, model.MaxSystolicBP)
	}
	return s
}

func (s Sample) body() predictBody {
	return predictBody{Age: s.Age, BMI: s.BMI, BloodPressure: s.BloodPressure}
}
