package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")

	// Payment verification
	ErrInvalidSignature = errors.New("payment could not be verified")
	ErrUpstream         = errors.New("payment gateway request failed")
	ErrConfiguration    = errors.New("service is not configured")

	// Access
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("access denied")
	ErrRateLimited     = errors.New("too many requests")

	// Storage
	ErrOperationFailed    = errors.New("database operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid database execution context")
)
