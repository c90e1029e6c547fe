// Package observer infers whether a Minecraft server is online, starting or
// offline from the outcome of a single status probe, and caches successful
// probes so callers can ask as often as they like.
package observer

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	opt "github.com/repeale/fp-go/option"
	"github.com/sasha-s/go-deadlock"
)

// CacheTTL is the minimum interval between two live status probes while the
// server keeps answering.
const CacheTTL = 10 * time.Second

// Logger defines the logging interface used by Observer.
type Logger interface {
	Debug(format string, args ...any)
	Warn(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Server is a resolved Minecraft server that can be probed.
type Server interface {
	// Status performs the status handshake.
	Status(ctx context.Context) (Status, error)
	// Players performs the full player list query over the query protocol.
	Players(ctx context.Context) ([]string, error)
}

// Resolver turns a "host:port" address into a probe-able Server.
type Resolver interface {
	Resolve(ctx context.Context, address string) (Server, error)
}

type cacheEntry struct {
	status    Status
	fetchedAt time.Time
}

// Observer owns the cached status and the assumed starting deadline of one server.
// It is safe for concurrent use.
type Observer struct {
	address string
	server  Server
	now     func() time.Time
	logger  Logger

	mu                   deadlock.Mutex
	cache                *cacheEntry
	assumedStartingUntil time.Time
}

// Option configures an Observer.
type Option func(*Observer)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *Observer) {
		o.now = now
	}
}

// WithLogger sets the logger used to report degraded probes.
func WithLogger(logger Logger) Option {
	return func(o *Observer) {
		o.logger = logger
	}
}

// New resolves address through resolver and returns an Observer with an empty cache.
// Resolution failures are returned as-is wrapped in ErrAddressResolution; they are not retried.
func New(ctx context.Context, address string, resolver Resolver, opts ...Option) (*Observer, error) {
	server, err := resolver.Resolve(ctx, address)
	if err != nil {
		if errors.Is(err, ErrAddressResolution) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrAddressResolution, address, err)
	}

	o := &Observer{
		address: address,
		server:  server,
		now:     time.Now,
		logger:  nopLogger{},
	}
	for _, apply := range opts {
		apply(o)
	}

	return o, nil
}

// Address returns the address the observer was created with.
func (o *Observer) Address() string {
	return o.address
}

// AssumeStarting announces that the server was just started and will refuse
// connections for up to window. The latest call wins, even if it shortens an
// earlier window.
func (o *Observer) AssumeStarting(window time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.assumedStartingUntil = o.now().Add(window)
}

// GetState probes the server (or reuses a fresh cached status) and classifies the outcome.
// It makes at most one network attempt and never retries.
func (o *Observer) GetState(ctx context.Context) Observation {
	status, err := o.fetchStatus(ctx)
	observedAt := o.now()

	switch {
	case err == nil:
		return Observation{State: StateOnline, Status: opt.Some(status), ObservedAt: observedAt}
	case errors.Is(err, ErrConnectionRefused):
		if o.assumedStarting(observedAt) {
			return Observation{State: StateAssumedStarting, Status: opt.None[Status](), ObservedAt: observedAt}
		}
		return Observation{State: StateOffline, Status: opt.None[Status](), ObservedAt: observedAt}
	case errors.Is(err, ErrProtocolBroken):
		return Observation{State: StateProvedStarting, Status: opt.None[Status](), ObservedAt: observedAt}
	default:
		o.logger.Debug("Unclassified status failure for %s: %v", o.address, err)
		return Observation{State: StateUnknown, Status: opt.None[Status](), Err: err, ObservedAt: observedAt}
	}
}

// IsOnline reports whether GetState classifies the server as online.
func (o *Observer) IsOnline(ctx context.Context) bool {
	return o.GetState(ctx).State == StateOnline
}

// GetStateString returns a human-readable description of the current state.
func (o *Observer) GetStateString(ctx context.Context) string {
	return o.GetState(ctx).String()
}

// GetPlayers returns the names of connected players.
//
// The full list needs enable-query=true in server.properties and a reachable
// UDP query port. When the query fails, the sampled names from the status
// response are returned instead and marked approximate.
func (o *Observer) GetPlayers(ctx context.Context) Players {
	observation := o.GetState(ctx)
	if observation.State != StateOnline || opt.IsNone(observation.Status) {
		return Players{}
	}

	names, err := o.server.Players(ctx)
	if err == nil {
		return Players{Online: true, Names: names}
	}

	if errors.Is(err, ErrTimeout) {
		o.logger.Warn("Query to %s failed, query not enabled or UDP port not open?", o.address)
	} else {
		o.logger.Warn("Query to %s failed, falling back to status sample: %v", o.address, err)
	}

	sample := observation.Status.Value.Sample
	return Players{
		Online:      true,
		Names:       append([]string(nil), sample...),
		Approximate: true,
	}
}

// fetchStatus returns the cached status while it is younger than CacheTTL and
// performs a live probe otherwise. A failed probe leaves the cache untouched.
func (o *Observer) fetchStatus(ctx context.Context) (Status, error) {
	o.mu.Lock()
	if o.cache != nil && o.now().Sub(o.cache.fetchedAt) < CacheTTL {
		status := o.cache.status
		o.mu.Unlock()
		status.Sample = slices.Clone(status.Sample)
		return status, nil
	}
	o.mu.Unlock()

	status, err := o.server.Status(ctx)
	if err != nil {
		return Status{}, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	fetchedAt := o.now()
	// a slower concurrent probe must not replace a newer entry
	if o.cache == nil || !fetchedAt.Before(o.cache.fetchedAt) {
		cached := status
		cached.Sample = slices.Clone(status.Sample)
		o.cache = &cacheEntry{status: cached, fetchedAt: fetchedAt}
	}

	return status, nil
}

func (o *Observer) assumedStarting(now time.Time) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.assumedStartingUntil.After(now)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
