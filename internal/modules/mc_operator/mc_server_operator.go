// Package mc_operator provides the main logic for managing the lifecycle of a Minecraft server instance.
package mc_operator

import (
	"context"
	"errors"
	"time"

	"github.com/sund3RRR/crafty-observer/config"
	"github.com/sund3RRR/crafty-observer/internal/observer"
)

const (
	awaitCooldown = 1 * time.Second
	stopTimeout   = 30 * time.Second
)

var (
	// ErrTimeoutReached is returned when the server fails to start within the given timeout.
	ErrTimeoutReached = errors.New("timeout reached")

	// ErrNotManaged is returned when the server has no Crafty port and cannot be started or stopped.
	ErrNotManaged = errors.New("server is not managed by crafty")
)

// Logger defines the logging interface used by ServerOperator.
type Logger interface {
	Debug(format string, args ...any)
	Warn(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Crafty defines the interface for controlling Minecraft servers via the Crafty API.
type Crafty interface {
	StartMcServer(ctx context.Context, port int) error
	StopMcServer(ctx context.Context, port int) error
}

// Observer is the part of observer.Observer the operator drives.
type Observer interface {
	GetState(ctx context.Context) observer.Observation
	AssumeStarting(window time.Duration)
}

// ServerOperator manages the lifecycle of a Minecraft server instance.
type ServerOperator struct {
	name            string
	craftyPort      int
	startingWindow  time.Duration
	startUpTimeout  time.Duration
	shutDownTimeout time.Duration
	watchInterval   time.Duration
	cooldown        time.Duration

	logger        Logger
	crafty        Crafty
	observer      Observer
	shutDownTimer *Timer
}

// New creates and returns a new ServerOperator instance based on the provided configuration.
func New(cfg config.Config, server config.Server, logger Logger, crafty Crafty, obs Observer) *ServerOperator {
	return &ServerOperator{
		name:            server.Name,
		craftyPort:      server.CraftyPort,
		startingWindow:  cfg.StartingWindow,
		startUpTimeout:  cfg.StartupTimeout,
		shutDownTimeout: cfg.ShutdownDelay,
		watchInterval:   cfg.WatchInterval,
		cooldown:        awaitCooldown,
		logger:          logger,
		crafty:          crafty,
		observer:        obs,
		shutDownTimer:   NewTimer(),
	}
}

// Managed reports whether the server can be started and stopped through Crafty.
func (so *ServerOperator) Managed() bool {
	return so.craftyPort != 0
}

// StartMinecraftServer starts the Minecraft server if it's not already running and
// tells the observer to treat refusals as a boot in progress for the starting window.
func (so *ServerOperator) StartMinecraftServer(ctx context.Context) error {
	if !so.Managed() {
		return ErrNotManaged
	}

	observation := so.observer.GetState(ctx)
	if observation.State >= observer.StateAssumedStarting {
		so.logger.Info("Server %s is already %s, not starting it", so.name, observation.State)
		return nil
	}

	so.logger.Info("Server %s is not running. Starting server with port %d", so.name, so.craftyPort)
	if err := so.crafty.StartMcServer(ctx, so.craftyPort); err != nil {
		return err
	}

	so.observer.AssumeStarting(so.startingWindow)
	return nil
}

// AwaitForServerStart polls the observer until the server is online or the startup timeout expires.
func (so *ServerOperator) AwaitForServerStart(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, so.startUpTimeout)
	defer cancel()

	ticker := time.NewTicker(so.cooldown)
	defer ticker.Stop()

	attempt := 1
	last := observer.StateUnknown
	so.logger.Info("Waiting for server %s to start...", so.name)

	for {
		select {
		case <-ctx.Done():
			return ErrTimeoutReached
		case <-ticker.C:
			observation := so.observer.GetState(ctx)
			if observation.State == observer.StateOnline {
				so.logger.Info("Server %s is up! %s after %d attempts", so.name, observation, attempt)
				return nil
			}
			if observation.State != last {
				so.logger.Debug("Attempt %d: server %s is %s", attempt, so.name, observation.State)
				last = observation.State
			}
			attempt++
		}
	}
}

// Watch stops the server once it has been online and empty for the shutdown timeout.
// It blocks until ctx is done.
func (so *ServerOperator) Watch(ctx context.Context) {
	if !so.Managed() {
		return
	}

	ticker := time.NewTicker(so.watchInterval)
	defer ticker.Stop()
	defer so.StopShuttingDown()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			so.checkIdle(ctx)
		}
	}
}

func (so *ServerOperator) checkIdle(ctx context.Context) {
	observation := so.observer.GetState(ctx)
	if observation.State != observer.StateOnline || observation.Status.Value.Online > 0 {
		if so.shutDownTimer.Scheduled() {
			so.logger.Info("Server %s is %s, cancelling scheduled shutdown", so.name, observation)
		}
		so.StopShuttingDown()
		return
	}

	if !so.shutDownTimer.Scheduled() {
		so.ScheduleShutdown()
	}
}

// ScheduleShutdown sets a timer to shut down the server after a period of inactivity.
func (so *ServerOperator) ScheduleShutdown() {
	so.logger.Info("No players left, scheduling MC server %s shutdown with timeout %s", so.name, so.shutDownTimeout.String())
	so.shutDownTimer.Schedule(so.shutDownTimeout, func() {
		ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()

		so.logger.Info("No players left, shutting down MC server %s with port %d", so.name, so.craftyPort)
		if err := so.crafty.StopMcServer(ctx, so.craftyPort); err != nil {
			so.logger.Error("Failed to stop MC server %s: %v", so.name, err)
		}
	})
}

// StopShuttingDown cancels a scheduled shutdown if the server becomes active again.
func (so *ServerOperator) StopShuttingDown() {
	so.shutDownTimer.Stop()
}
