package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/sund3RRR/crafty-observer/config"
	"github.com/sund3RRR/crafty-observer/internal/adapters/crafty"
	"github.com/sund3RRR/crafty-observer/internal/adapters/minecraft"
	"github.com/sund3RRR/crafty-observer/internal/app"
	"github.com/sund3RRR/crafty-observer/internal/observer"
	"github.com/sund3RRR/crafty-observer/pkg/logger"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

var CLI struct {
	Config  string `help:"Path to the YAML configuration file." short:"c" default:"config.yaml" type:"path"`
	Debug   bool   `help:"Whether to enable debug logging."`
	Version bool   `help:"Print version information and exit." short:"v"`

	Serve struct {
	} `cmd:"" default:"1" help:"Observe the configured servers and serve the HTTP API."`

	Status struct {
		Address string `arg:"" help:"Server address, host or host:port."`
	} `cmd:"" help:"Print the state of a single server."`

	Players struct {
		Address   string `arg:"" help:"Server address, host or host:port."`
		QueryPort int    `help:"UDP query port, defaults to the game port."`
	} `cmd:"" help:"Print the players connected to a single server."`

	Config_ struct {
	} `cmd:"" name:"config" help:"Write the default configuration to standard output."`
}

func writeError(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", err)
	os.Exit(1)
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("crafty-observer"),
		kong.Description("tells whether your Minecraft servers are online, starting or offline"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	if CLI.Version {
		fmt.Printf("crafty-observer %s\n", Version)
		os.Exit(0)
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch ctx.Command() {
	case "serve":
		err = serveCommand(runCtx)
	case "status <address>":
		err = statusCommand(runCtx, CLI.Status.Address)
	case "players <address>":
		err = playersCommand(runCtx, CLI.Players.Address, CLI.Players.QueryPort)
	case "config":
		err = configCommand()
	}
	if err != nil {
		writeError(err)
	}
}

func loadConfig() (config.Config, error) {
	cfg := config.NewConfig()
	if err := cfg.Load(CLI.Config); err != nil {
		return cfg, err
	}
	if CLI.Debug {
		cfg.LogLevel = logger.DEBUG
	}
	return cfg, nil
}

func serveCommand(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logger.New(cfg.LogLevel, cfg.PrettyLog)
	defer func() { _ = log.Sync() }()
	log.Debug("Debug logging enabled")

	return app.NewApp(cfg, log, crafty.New(cfg), Version).Run(ctx)
}

func newObserver(ctx context.Context, address string, queryPort int) (*observer.Observer, error) {
	level := logger.WARN
	if CLI.Debug {
		level = logger.DEBUG
	}
	log := logger.New(level, true)

	resolver := minecraft.NewResolver(config.NewConfig().Timeout, queryPort)
	return observer.New(ctx, address, resolver, observer.WithLogger(log))
}

func statusCommand(ctx context.Context, address string) error {
	obs, err := newObserver(ctx, address, 0)
	if err != nil {
		return err
	}

	observation := obs.GetState(ctx)
	fmt.Println(observation)
	if observation.Err != nil {
		return observation.Err
	}
	return nil
}

func playersCommand(ctx context.Context, address string, queryPort int) error {
	obs, err := newObserver(ctx, address, queryPort)
	if err != nil {
		return err
	}

	fmt.Println(obs.GetPlayers(ctx))
	return nil
}

func configCommand() error {
	data, err := config.Default()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}
