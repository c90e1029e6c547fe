// Package crafty provides a client for interacting with the Crafty API,
// a web-based control panel for managing Minecraft servers.
package crafty

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sund3RRR/crafty-observer/config"
)

const (
	actionStart = "start_server"
	actionStop  = "stop_server"
)

// Crafty is a client for the Crafty API. It provides methods to start and stop Minecraft servers by port.
type Crafty struct {
	apiURL   string
	username string
	password string
	client   *http.Client
}

// New creates a new Crafty API client using the provided configuration.
// Crafty ships a self-signed certificate, so TLS verification is disabled for this client only.
func New(cfg config.Config) *Crafty {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec

	return &Crafty{
		apiURL:   cfg.APIURL,
		username: cfg.Username,
		password: cfg.Password,
		client: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
		},
	}
}

// StartMcServer starts a Minecraft server that is configured to listen on the specified port.
// It authenticates with the Crafty API, fetches the list of servers, and sends a start command to the matching one.
func (c *Crafty) StartMcServer(ctx context.Context, port int) error {
	server, bearer, err := c.findServer(ctx, port)
	if err != nil {
		return err
	}

	if err := c.sendAction(ctx, server, bearer, actionStart); err != nil {
		return fmt.Errorf("%w, id %s, port %d: %w", ErrFailedToStartServer, server.ServerID, server.Port, err)
	}
	return nil
}

// StopMcServer stops a Minecraft server that is configured to listen on the specified port.
// It authenticates with the Crafty API, fetches the list of servers, and sends a stop command to the matching one.
func (c *Crafty) StopMcServer(ctx context.Context, port int) error {
	server, bearer, err := c.findServer(ctx, port)
	if err != nil {
		return err
	}

	if err := c.sendAction(ctx, server, bearer, actionStop); err != nil {
		return fmt.Errorf("%w, id %s, port %d: %w", ErrFailedToStopServer, server.ServerID, server.Port, err)
	}
	return nil
}

// findServer authenticates and returns the panel server listening on port.
func (c *Crafty) findServer(ctx context.Context, port int) (Server, string, error) {
	bearer, err := c.getBearer(ctx)
	if err != nil {
		return Server{}, "", fmt.Errorf("%w: %w", ErrAuthorizationFailed, err)
	}

	serverList, err := c.getServers(ctx, bearer)
	if err != nil {
		return Server{}, "", fmt.Errorf("%w: %w", ErrFailedToGetServers, err)
	}

	for _, server := range serverList.Data {
		if server.Port == port {
			return server, bearer, nil
		}
	}

	return Server{}, "", fmt.Errorf("%w: port %d", ErrNoSuchServer, port)
}

// sendAction sends an action command for the specified server using its ID.
// Requires a valid bearer token for authentication.
func (c *Crafty) sendAction(ctx context.Context, server Server, bearer, action string) error {
	actionURL := c.apiURL + "/api/v2/servers/" + server.ServerID + "/action/" + action
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, actionURL, http.NoBody)
	if err != nil {
		return err
	}
	request.Header.Add("Authorization", bearer)

	var response ActionResponse
	if err := c.do(request, &response); err != nil {
		return err
	}
	if response.Status != "" && response.Status != "ok" {
		return fmt.Errorf("%w: %s %s", ErrUnexpectedStatus, response.Status, response.Error)
	}

	return nil
}

// getBearer authenticates with the Crafty API and returns a bearer token to be used for authorized requests.
func (c *Crafty) getBearer(ctx context.Context) (string, error) {
	loginBody := LoginPayload{
		Username: c.username,
		Password: c.password,
	}

	jsonData, err := json.Marshal(loginBody)
	if err != nil {
		return "", err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/api/v2/auth/login", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	request.Header.Set("Content-Type", "application/json")

	var response LoginResponse
	if err := c.do(request, &response); err != nil {
		return "", err
	}
	if response.Data.Token == "" {
		return "", fmt.Errorf("empty token in login response (status %q)", response.Status)
	}

	return fmt.Sprintf("Bearer %s", response.Data.Token), nil
}

// getServers retrieves a list of all servers available in the Crafty panel.
// Requires a valid bearer token for authentication.
func (c *Crafty) getServers(ctx context.Context, bearer string) (ServerList, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/api/v2/servers", http.NoBody)
	if err != nil {
		return ServerList{}, err
	}
	request.Header.Add("Authorization", bearer)

	var serverList ServerList
	if err := c.do(request, &serverList); err != nil {
		return ServerList{}, err
	}

	return serverList, nil
}

// do sends request and decodes a 2xx JSON body into out.
func (c *Crafty) do(request *http.Request, out any) error {
	response, err := c.client.Do(request)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToReadBody, err)
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return fmt.Errorf("%w: %s", ErrUnexpectedStatus, response.Status)
	}

	return json.Unmarshal(body, out)
}
