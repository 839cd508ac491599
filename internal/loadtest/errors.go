package loadtest

import "errors"

// Sentinel kinds for load run errors.
var (
	ErrInvalidConfig      = errors.New("invalid load test config")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrParityMismatch     = errors.New("server responses differ from local scoring")
	ErrRequestsFailed     = errors.New("requests failed")
)
