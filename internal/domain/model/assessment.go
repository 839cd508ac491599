package model

import (
	"fmt"
	"strings"
)

// RiskLevel is the coarse risk category. Values are ordered by severity.
type RiskLevel int

// Risk levels in ascending order of severity.
const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
	RiskCritical
)

var riskLevelNames = [...]string{
	RiskLow:      "low",
	RiskMedium:   "medium",
	RiskHigh:     "high",
	RiskCritical: "critical",
}

// RiskLevels lists every level in ascending order.
func RiskLevels() []RiskLevel {
	return []RiskLevel{RiskLow, RiskMedium, RiskHigh, RiskCritical}
}

// Valid reports whether l is one of the defined levels.
func (l RiskLevel) Valid() bool {
	return l >= RiskLow && l <= RiskCritical
}

func (l RiskLevel) String() string {
	if !l.Valid() {
		return fmt.Sprintf("RiskLevel(%d)", int(l))
	}
	return riskLevelNames[l]
}

// MarshalText implements encoding.TextMarshaler.
func (l RiskLevel) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("unknown risk level %d", int(l))
	}
	return []byte(riskLevelNames[l]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *RiskLevel) UnmarshalText(b []byte) error {
	parsed, err := ParseRiskLevel(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseRiskLevel converts the serialized name back to a RiskLevel.
// Matching is case-insensitive.
func ParseRiskLevel(s string) (RiskLevel, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range riskLevelNames {
		if n == name {
			return RiskLevel(i), nil
		}
	}
	return 0, fmt.Errorf("unknown risk level %q", s)
}

// ComponentRisks holds the per-metric risk weights that feed the score.
type ComponentRisks struct {
	Age        float64
	BMI        float64
	SystolicBP float64
}

// RiskAssessment is the output of scoring one Metrics value.
type RiskAssessment struct {
	RiskScore           float64
	RiskLevel           RiskLevel
	Confidence          float64
	ContributingFactors []string
	Components          ComponentRisks
}
