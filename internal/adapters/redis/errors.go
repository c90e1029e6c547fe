package redis

import "errors"

var (
	// ErrInvalidOptions is returned when a connect timeout or retry interval is not positive.
	ErrInvalidOptions = errors.New("invalid redis connect options")

	// ErrUnavailable is returned when Redis did not answer a ping before the connect timeout.
	ErrUnavailable = errors.New("redis unavailable")

	// ErrPublishFailed is returned when an observation could not be written.
	ErrPublishFailed = errors.New("failed to publish observation")
)
