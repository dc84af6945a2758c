package repository

import "errors"

// Sentinel kinds for trend store errors.
var (
	ErrNotFound     = errors.New("entity not found")
	ErrInvalidLimit = errors.New("invalid trends limit")
	ErrClosed       = errors.New("trend store closed")
)
