package types

import "errors"

// Domain errors for type validation
var (
	// Airport errors
	ErrInvalidAirportID   = errors.New("airport ID must be positive")
	ErrMissingIdent       = errors.New("airport ident is required")
	ErrInvalidAirportType = errors.New("unknown airport type")

	// Score result errors
	ErrMissingAirport = errors.New("score result has no airport")
	ErrNegativeScore  = errors.New("score cannot be negative")
)
