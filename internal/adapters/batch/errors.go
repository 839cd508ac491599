package batch

import (
	"errors"
	"fmt"
)

// Sentinel kinds for batch errors.
var (
	ErrEmptyBatch = errors.New("empty batch")
	ErrCanceled   = errors.New("batch canceled")
	ErrPanic      = errors.New("batch item panicked")
)

// ItemError ties a failure to the index of the item that caused it.
type ItemError struct {
	Index int
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }
