package domain

import "errors"

// Sentinel errors used throughout the application.
// Handlers translate these to HTTP status codes via a single mapError function.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidEventType = errors.New("invalid or missing eventType")
	ErrInvalidUserID    = errors.New("user_id must not be empty")
	ErrPublishFailed    = errors.New("event could not be published to the broker")
)
