package loadtest

import (
	"context"
	"fmt"
	"slices"

	"github.com/healthwatch/inference/internal/domain/model"
	"github.com/healthwatch/inference/internal/domain/scoring"
	"github.com/healthwatch/inference/pkg/logger"
)

// verifyResults rescores every answered sample with the local engine and
// reports any field that differs from the server's answer.
func verifyResults(ctx context.Context, config *Config, scorer scoring.Scorer, results []Result, stats *Stats) ([]Mismatch, error) {
	logger.Get().Info(ctx, "verifying results", logger.Int("results", len(results)))

	stats.LevelCounts = make(map[string]int)
	var mismatches []Mismatch
	for _, r := range results {
		if r.Prediction == nil {
			continue
		}
		m, err := model.NewMetrics(r.Sample.Age, r.Sample.BMI, r.Sample.BloodPressure)
		if err != nil {
			return nil, fmt.Errorf("sample %s: %w", r.Sample.PatientID, err)
		}
		expected := scorer.Score(m)
		stats.Verified++
		stats.LevelCounts[r.Prediction.RiskLevel]++
		mismatches = append(mismatches, compare(r.Sample, expected, *r.Prediction)...)
	}
	stats.Mismatches = len(mismatches)

	for i, mm := range mismatches {
		if !config.Verbose && i >= maxLoggedMismatches {
			break
		}
		logger.Get().Warn(ctx, "parity mismatch",
			logger.String("patientID", mm.Sample.PatientID),
			logger.String("field", mm.Field),
			logger.Any("expected", mm.Expected),
			logger.Any("actual", mm.Actual))
	}

	if len(mismatches) > 0 {
		return mismatches, fmt.Errorf("%w: %d mismatches", ErrParityMismatch, len(mismatches))
	}
	logger.Get().Info(ctx, "all responses match local scoring", logger.Int("verified", stats.Verified))
	return nil, nil
}

// compare lists the fields where actual differs from expected.
func compare(s Sample, expected model.RiskAssessment, actual Prediction) []Mismatch {
	var out []Mismatch
	if expected.RiskScore != actual.RiskScore {
		out = append(out, Mismatch{Sample: s, Field: "risk_score", Expected: expected.RiskScore, Actual: actual.RiskScore})
	}
	if expected.RiskLevel.String() != actual.RiskLevel {
		out = append(out, Mismatch{Sample: s, Field: "risk_level", Expected: expected.RiskLevel.String(), Actual: actual.RiskLevel})
	}
	if expected.Confidence != actual.Confidence {
		out = append(out, Mismatch{Sample: s, Field: "confidence", Expected: expected.Confidence, Actual: actual.Confidence})
	}
	if !slices.Equal(expected.ContributingFactors, actual.ContributingFactors) {
		out = append(out, Mismatch{Sample: s, Field: "contributing_factors", Expected: expected.ContributingFactors, Actual: actual.ContributingFactors})
	}
	return out
}
