// Package redis publishes the latest observation of every server to Redis so
// other processes can read it without probing the Minecraft server themselves.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Logger defines the logging interface used by the connector.
type Logger interface {
	Debug(format string, args ...any)
	Warn(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// ConnectOptions defines Redis connection retry behavior.
type ConnectOptions struct {
	Addr           string        // Redis address (ex: "localhost:6379")
	Password       string        // Optional password
	DB             int           // Redis DB number
	ConnectTimeout time.Duration // Total time allowed for connection attempts
	RetryInterval  time.Duration // Initial wait between retries, doubled after each failure
	MaxWait        time.Duration // Max wait between retries
	PingTimeout    time.Duration // Timeout for each ping attempt
}

// DefaultConnectOptions returns sensible retry settings for addr.
func DefaultConnectOptions(addr, password string, db int) ConnectOptions {
	return ConnectOptions{
		Addr:           addr,
		Password:       password,
		DB:             db,
		ConnectTimeout: 30 * time.Second,
		RetryInterval:  500 * time.Millisecond,
		MaxWait:        5 * time.Second,
		PingTimeout:    2 * time.Second,
	}
}

// Connect creates a Redis client and pings it with exponential backoff until
// it answers or ConnectTimeout runs out.
func Connect(ctx context.Context, opts ConnectOptions, logger Logger) (*redis.Client, error) {
	if opts.ConnectTimeout <= 0 || opts.RetryInterval <= 0 || opts.MaxWait <= 0 || opts.PingTimeout <= 0 {
		return nil, fmt.Errorf("%w: %+v", ErrInvalidOptions, opts)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := connectWithRetry(ctx, client, opts, logger); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// pinger is the part of *redis.Client the retry loop needs.
type pinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

func connectWithRetry(ctx context.Context, client pinger, opts ConnectOptions, logger Logger) error {
	ctx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()

	logger.Info("Connecting to redis at %s (timeout %s)", opts.Addr, opts.ConnectTimeout)
	attempt := 0
	wait := opts.RetryInterval

	for {
		attempt++

		pingCtx, pingCancel := context.WithTimeout(ctx, opts.PingTimeout)
		err := client.Ping(pingCtx).Err()
		pingCancel()

		if err == nil {
			if attempt > 1 {
				logger.Warn("Connected to redis at %s after %d attempts", opts.Addr, attempt)
			} else {
				logger.Info("Connected to redis at %s", opts.Addr)
			}
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			logger.Error("Redis at %s unavailable after %d attempts: %v", opts.Addr, attempt, err)
			return fmt.Errorf("%w at %s after %d attempts: %w", ErrUnavailable, opts.Addr, attempt, err)
		case <-timer.C:
			logger.Warn("Redis connection failed (attempt %d), retrying in %s: %v", attempt, wait, err)
			wait *= 2
			if wait > opts.MaxWait {
				wait = opts.MaxWait
			}
		}
	}
}
