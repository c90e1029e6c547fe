// Package config provides the main configuration for the application.
package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	// ErrNoServers is returned when no server is configured.
	ErrNoServers = errors.New("no servers configured")

	// ErrInvalidServer is returned when a server entry is incomplete or duplicated.
	ErrInvalidServer = errors.New("invalid server entry")

	// ErrInvalidDuration is returned when a timeout or window is not positive.
	ErrInvalidDuration = errors.New("duration must be positive")
)

// Config represents the main configuration for the application.
type Config struct {
	APIURL         string        `yaml:"api_url"`         // Base URL for the Crafty API
	Username       string        `yaml:"username"`        // Username for Crafty API authentication
	Password       string        `yaml:"password"`        // Password for Crafty API authentication
	LogLevel       string        `yaml:"log_level"`       // Logging level (e.g., DEBUG, INFO, ERROR)
	PrettyLog      bool          `yaml:"pretty_log"`      // Colored console logs instead of JSON
	Listen         string        `yaml:"listen"`          // Address the status API listens on
	Timeout        time.Duration `yaml:"timeout"`         // Connect/read timeout of a single probe
	StartingWindow time.Duration `yaml:"starting_window"` // How long a refused server counts as starting after a start request
	StartupTimeout time.Duration `yaml:"startup_timeout"` // How long to wait for a started server to come online
	AutoShutdown   bool          `yaml:"auto_shutdown"`   // Whether to automatically shut down idle servers
	ShutdownDelay  time.Duration `yaml:"shutdown_delay"`  // Idle time before an empty server is stopped
	WatchInterval  time.Duration `yaml:"watch_interval"`  // Poll interval of the idle watcher
	Redis          Redis         `yaml:"redis"`           // Optional publishing of observations
	Servers        []Server      `yaml:"servers"`         // Observed Minecraft servers
}

// Redis configures the optional observation publisher. An empty Addr disables it.
type Redis struct {
	Addr      string `yaml:"addr"`       // ex: "localhost:6379"
	Password  string `yaml:"password"`   // optional
	DB        int    `yaml:"db"`         // Redis DB number
	KeyPrefix string `yaml:"key_prefix"` // prefix of published keys
}

// Server defines one observed Minecraft server and its Crafty counterpart.
type Server struct {
	Name       string `yaml:"name"`        // Identifier used by the API
	Address    string `yaml:"address"`     // host:port or host (SRV lookup)
	QueryPort  int    `yaml:"query_port"`  // UDP query port, 0 = same as game port
	CraftyPort int    `yaml:"crafty_port"` // Port Crafty knows the server by, 0 = no start/stop support
}

// NewConfig returns a Config instance populated with default values.
func NewConfig() Config {
	return Config{
		APIURL:         "https://crafty:8443",
		Username:       "admin",
		Password:       "password",
		LogLevel:       "INFO",
		PrettyLog:      true,
		Listen:         "127.0.0.1:8080",
		Timeout:        5 * time.Second,
		StartingWindow: 2 * time.Minute,
		StartupTimeout: 5 * time.Minute,
		AutoShutdown:   false,
		ShutdownDelay:  10 * time.Minute,
		WatchInterval:  30 * time.Second,
		Redis: Redis{
			KeyPrefix: "crafty-observer",
		},
		Servers: []Server{
			{
				Name:       "survival",
				Address:    "crafty:25565",
				CraftyPort: 25565,
			},
		},
	}
}

// Load reads configuration from the specified file path into the Config struct.
// If the file does not exist, a default configuration is created and saved to the path.
func (c *Config) Load(path string) error {
	file, err := os.Open(path) //nolint
	if err != nil {
		if os.IsNotExist(err) {
			defaultConfig := NewConfig()
			data, marshalErr := yaml.Marshal(defaultConfig)
			if marshalErr != nil {
				return fmt.Errorf("failed to marshal default config: %w", marshalErr)
			}

			writeErr := os.WriteFile(path, data, 0600)
			if writeErr != nil {
				return fmt.Errorf("failed to write default config file: %w", writeErr)
			}

			log.Printf("config file not found, created default at %s\n", path)
			*c = defaultConfig
			return nil
		}

		return fmt.Errorf("could not open config file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("could not read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("could not parse yaml config: %w", err)
	}

	return c.Validate()
}

// Validate checks that durations are usable and server entries are complete and unique.
func (c *Config) Validate() error {
	durations := map[string]time.Duration{
		"timeout":         c.Timeout,
		"starting_window": c.StartingWindow,
		"startup_timeout": c.StartupTimeout,
		"watch_interval":  c.WatchInterval,
	}
	if c.AutoShutdown {
		durations["shutdown_delay"] = c.ShutdownDelay
	}
	for name, d := range durations {
		if d <= 0 {
			return fmt.Errorf("%w: %s = %s", ErrInvalidDuration, name, d)
		}
	}

	if len(c.Servers) == 0 {
		return ErrNoServers
	}

	seen := make(map[string]bool, len(c.Servers))
	for i, server := range c.Servers {
		name := strings.TrimSpace(server.Name)
		switch {
		case name == "":
			return fmt.Errorf("%w: servers[%d] has no name", ErrInvalidServer, i)
		case strings.TrimSpace(server.Address) == "":
			return fmt.Errorf("%w: server %q has no address", ErrInvalidServer, name)
		case seen[name]:
			return fmt.Errorf("%w: duplicate server name %q", ErrInvalidServer, name)
		case server.QueryPort < 0 || server.QueryPort > 65535:
			return fmt.Errorf("%w: server %q query_port %d out of range", ErrInvalidServer, name, server.QueryPort)
		}
		seen[name] = true
	}

	return nil
}

// Default returns the default configuration encoded as YAML.
func Default() ([]byte, error) {
	return yaml.Marshal(NewConfig())
}
