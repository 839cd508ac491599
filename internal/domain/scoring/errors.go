package scoring

import (
	"errors"
	"fmt"
)

// Sentinel kinds for engine configuration errors. Scoring itself never fails.
var (
	ErrInvalidWeights = errors.New("invalid weights")
	ErrConfidence     = errors.New("confidence out of range")
	ErrEmptyBandTable = errors.New("empty band table")
	ErrBandWeight     = errors.New("band weight out of range")
	ErrBandOrder      = errors.New("band bounds not ascending")
	ErrBandCoverage   = errors.New("last band must be unbounded")
)

func wrapBand(kind error, index int) error {
	return fmt.Errorf("band %d: %w", index, kind)
}
