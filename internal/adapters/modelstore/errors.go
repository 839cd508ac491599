package modelstore

import "errors"

// Sentinel kinds for model loading errors.
var (
	ErrModelLoad = errors.New("model load failed")
	ErrNotLoaded = errors.New("model not loaded")
	ErrEmptyName = errors.New("model name is empty")
	ErrNotAFile  = errors.New("model path is a directory")
)
