package observer

import "errors"

// Errors reported by the collaborator. Implementations of Server and Resolver
// wrap them so the observer can classify failures with errors.Is.
var (
	// ErrAddressResolution is returned when an address is malformed or cannot be resolved.
	ErrAddressResolution = errors.New("address resolution failed")

	// ErrConnectionRefused is returned when nothing accepts the connection.
	ErrConnectionRefused = errors.New("connection refused")

	// ErrProtocolBroken is returned when the connection was accepted but the
	// exchange failed before completing.
	ErrProtocolBroken = errors.New("protocol exchange broken")

	// ErrTimeout is returned when the server did not answer in time.
	ErrTimeout = errors.New("timed out")
)
