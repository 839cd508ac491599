package loadtest

import "time"

// HTTP status code constants.
const (
	StatusOK = 200
)

// Runner configuration constants.
const (
	PercentageMultiplier = 100
	defaultAPIPrefix     = "/api/v1"
	progressInterval     = time.Second
	maxLoggedMismatches  = 20
)
