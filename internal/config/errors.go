package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig marks a setting that fails Validate; ErrLoadConfig marks a
// file or environment source that could not be read.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

// invalid reports a bad value for key.
func invalid(key, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidConfig, key, reason)
}

// loadFailed wraps a source error with the name of the source.
func loadFailed(source string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrLoadConfig, source, err)
}
