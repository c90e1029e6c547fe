// Package app wires configuration, observers, operators and the HTTP API together.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sund3RRR/crafty-observer/config"
	"github.com/sund3RRR/crafty-observer/internal/adapters/crafty"
	"github.com/sund3RRR/crafty-observer/internal/adapters/minecraft"
	"github.com/sund3RRR/crafty-observer/internal/adapters/redis"
	"github.com/sund3RRR/crafty-observer/internal/httpapi"
	"github.com/sund3RRR/crafty-observer/internal/modules/mc_operator"
	"github.com/sund3RRR/crafty-observer/internal/observer"
	"github.com/sund3RRR/crafty-observer/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	cfg     config.Config
	logger  *logger.Logger
	crafty  *crafty.Crafty
	version string
}

func NewApp(cfg config.Config, logger *logger.Logger, crafty *crafty.Crafty, version string) *App {
	return &App{
		cfg:     cfg,
		logger:  logger,
		crafty:  crafty,
		version: version,
	}
}

// Run serves the API until ctx is done, then shuts everything down.
func (app *App) Run(ctx context.Context) error {
	deps := httpapi.Deps{
		StartingWindow: app.cfg.StartingWindow,
		StartTime:      time.Now(),
		Version:        app.version,
	}

	if app.cfg.Redis.Addr != "" {
		opts := redis.DefaultConnectOptions(app.cfg.Redis.Addr, app.cfg.Redis.Password, app.cfg.Redis.DB)
		client, err := redis.Connect(ctx, opts, app.logger.Named("redis"))
		if err != nil {
			return err
		}
		defer client.Close()
		deps.Publisher = redis.NewPublisher(client, app.cfg.Redis.KeyPrefix)
	}

	var operators []*mc_operator.ServerOperator
	for _, server := range app.cfg.Servers {
		serverLogger := app.logger.Named(server.Name)

		resolver := minecraft.NewResolver(app.cfg.Timeout, server.QueryPort)
		obs, err := observer.New(ctx, server.Address, resolver, observer.WithLogger(serverLogger))
		if err != nil {
			return fmt.Errorf("server %s: %w", server.Name, err)
		}

		operator := mc_operator.New(app.cfg, server, serverLogger, app.crafty, obs)
		operators = append(operators, operator)

		deps.Targets = append(deps.Targets, httpapi.Target{
			Name:     server.Name,
			Address:  server.Address,
			Observer: obs,
			Operator: operator,
		})
		app.logger.Info("Observing server %s at %s", server.Name, obs.Address())
	}

	var wg sync.WaitGroup
	if app.cfg.AutoShutdown {
		for _, operator := range operators {
			if !operator.Managed() {
				continue
			}
			operator := operator
			wg.Add(1)
			go func() {
				defer wg.Done()
				operator.Watch(ctx)
			}()
		}
	}

	server := httpapi.New(ctx, app.cfg.Listen, app.logger.Named("http"), deps)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	var runErr error
	select {
	case <-ctx.Done():
		app.logger.Info("Shutting down gracefully...")
	case err := <-errCh:
		if err != nil {
			runErr = fmt.Errorf("http server error: %w", err)
		}
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Stop(stopCtx); err != nil {
		app.logger.Warn("HTTP API did not stop cleanly: %v", err)
	}

	wg.Wait()
	return runErr
}
