package minecraft

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/sund3RRR/crafty-observer/internal/observer"
)

// classifyDial maps a failed connection attempt onto the observer's error kinds.
func classifyDial(address string, err error) error {
	switch {
	case isRefused(err):
		return fmt.Errorf("%w: dial %s: %w", observer.ErrConnectionRefused, address, err)
	case isTimeout(err):
		return fmt.Errorf("%w: dial %s: %w", observer.ErrTimeout, address, err)
	default:
		return fmt.Errorf("dial %s: %w", address, err)
	}
}

// classifyExchange maps a failure that happened after the connection was accepted.
// Anything but a timeout means the server is up but cannot answer yet.
func classifyExchange(step string, err error) error {
	if isTimeout(err) {
		return fmt.Errorf("%w: %s: %w", observer.ErrTimeout, step, err)
	}
	return fmt.Errorf("%w: %s: %w", observer.ErrProtocolBroken, step, err)
}

// classifyQuery maps a failed datagram query. A closed UDP port usually shows up
// as a refusal on the read, which the caller treats like a missing answer.
func classifyQuery(step string, err error) error {
	switch {
	case isTimeout(err):
		return fmt.Errorf("%w: query %s: %w", observer.ErrTimeout, step, err)
	case isRefused(err):
		return fmt.Errorf("%w: query %s: %w", observer.ErrConnectionRefused, step, err)
	default:
		return fmt.Errorf("%w: query %s: %w", observer.ErrProtocolBroken, step, err)
	}
}

// isRefused reports whether err carries the platform's "connection refused" errno.
func isRefused(err error) bool {
	for _, errno := range refusedErrnos {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
