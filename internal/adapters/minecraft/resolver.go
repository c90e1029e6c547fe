// Package minecraft provides a client for the Minecraft Server List Ping and
// query protocols, implementing the observer's Resolver and Server interfaces.
package minecraft

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/sund3RRR/crafty-observer/internal/observer"
)

// DefaultPort is the port Minecraft clients use when an address has none.
const DefaultPort = 25565

const srvService = "minecraft"

// Resolver parses "host[:port]" addresses the way the Minecraft client does:
// without a port, the _minecraft._tcp SRV record of host is consulted.
type Resolver struct {
	timeout   time.Duration
	queryPort int

	lookupSRV  func(ctx context.Context, service, proto, name string) (string, []*net.SRV, error)
	lookupHost func(ctx context.Context, host string) ([]string, error)
}

// NewResolver creates a Resolver whose servers use timeout for every connect
// and read. A zero queryPort means the query protocol shares the game port.
func NewResolver(timeout time.Duration, queryPort int) *Resolver {
	return &Resolver{
		timeout:    timeout,
		queryPort:  queryPort,
		lookupSRV:  net.DefaultResolver.LookupSRV,
		lookupHost: net.DefaultResolver.LookupHost,
	}
}

// Resolve validates address and returns a Server for it.
func (r *Resolver) Resolve(ctx context.Context, address string) (observer.Server, error) {
	return r.resolve(ctx, address)
}

func (r *Resolver) resolve(ctx context.Context, address string) (*Server, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, fmt.Errorf("%w: empty address", observer.ErrAddressResolution)
	}

	host, port, hasPort, err := splitAddress(address)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", observer.ErrAddressResolution, address, err)
	}

	if !hasPort && net.ParseIP(host) == nil {
		if target, srvPort, ok := r.srvTarget(ctx, host); ok {
			host, port = target, srvPort
		}
	}

	if net.ParseIP(host) == nil {
		if _, err := r.lookupHost(ctx, host); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", observer.ErrAddressResolution, host, err)
		}
	}

	queryPort := r.queryPort
	if queryPort == 0 {
		queryPort = port
	}

	return &Server{
		host:      host,
		port:      port,
		queryPort: queryPort,
		timeout:   r.timeout,
	}, nil
}

// srvTarget returns the first SRV target of host, if any.
func (r *Resolver) srvTarget(ctx context.Context, host string) (string, int, bool) {
	_, records, err := r.lookupSRV(ctx, srvService, "tcp", host)
	if err != nil || len(records) == 0 {
		return "", 0, false
	}

	target := strings.TrimSuffix(records[0].Target, ".")
	if target == "" {
		return "", 0, false
	}
	return target, int(records[0].Port), true
}

func splitAddress(address string) (host string, port int, hasPort bool, err error) {
	// bare IPv6 literals and hostnames carry no port
	if ip := net.ParseIP(strings.Trim(address, "[]")); ip != nil {
		return ip.String(), DefaultPort, false, nil
	}
	if !strings.Contains(address, ":") {
		return address, DefaultPort, false, nil
	}

	host, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return "", 0, false, err
	}
	if host == "" {
		return "", 0, false, fmt.Errorf("missing host")
	}

	port, err = strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return "", 0, false, fmt.Errorf("invalid port %q", portStr)
	}
	return host, port, true, nil
}
