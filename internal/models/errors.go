package models

import "errors"

// Custom errors
var (
	ErrUnknownMetric    = errors.New("unknown metric")
	ErrUnknownGrouping  = errors.New("unknown grouping column")
	ErrMissingPrecision = errors.New("no display precision configured for metric")
	ErrLengthMismatch   = errors.New("truth and forecast lengths differ")
	ErrEmptyInput       = errors.New("empty input")
	ErrMissingCutoff    = errors.New("cutoff required in cross-validation mode")
	ErrMissingColumn    = errors.New("required column not found")
	ErrNotFound         = errors.New("record not found")
	ErrDuplicateKey     = errors.New("duplicate key violation")
	ErrInvalidID        = errors.New("invalid ID format")
)
