package ports

import "errors"

// Standard application-level errors.
// Adapters and core stages wrap underlying errors with these standard errors.
var (
	// Data faults (hard failures, propagated to the caller)
	ErrMalformedSeries  = errors.New("bar series timestamps are non-monotonic or duplicated")
	ErrInsufficientData = errors.New("bar series has too few bars for this operation")

	// Plan-construction faults (setup rejected, recorded as "no trade")
	ErrInvalidStopDistance = errors.New("stop distance is not positive")
	ErrUnfundablePlan      = errors.New("risk budget cannot fund a single unit at the configured risk")

	// General
	ErrConfigurationError = errors.New("invalid or missing configuration")
	ErrNotFound           = errors.New("resource not found")

	// Exchange adapter errors
	ErrExchangeUnavailable = errors.New("exchange API is unavailable")
	ErrConnectionFailed    = errors.New("failed to connect to the exchange")
	ErrRateLimited         = errors.New("API rate limit exceeded")

	// Database adapter errors
	ErrDBConnection = errors.New("database connection error")
	ErrQueryFailed  = errors.New("database query failed")
)
