package crafty

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sund3RRR/crafty-observer/config"
)

type fakePanel struct {
	mu      sync.Mutex
	actions []string
	status  int
}

func (p *fakePanel) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var payload LoginPayload
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		if payload.Username != "admin" || payload.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"status":"error"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok","data":{"token":"abc","user_id":"1"}}`))
	})
	mux.HandleFunc("/api/v2/servers", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"status":"ok","data":[{"server_id":"s1","server_name":"survival","server_port":25565}]}`))
	})
	mux.HandleFunc("/api/v2/servers/s1/action/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		p.mu.Lock()
		p.actions = append(p.actions, r.URL.Path)
		status := p.status
		p.mu.Unlock()
		if status != 0 {
			w.WriteHeader(status)
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	return mux
}

func newTestClient(t *testing.T, panel *fakePanel, password string) *Crafty {
	t.Helper()
	ts := httptest.NewTLSServer(panel.handler(t))
	t.Cleanup(ts.Close)

	cfg := config.NewConfig()
	cfg.APIURL = ts.URL
	cfg.Password = password
	return New(cfg)
}

func TestStartAndStop(t *testing.T) {
	panel := &fakePanel{}
	client := newTestClient(t, panel, "secret")

	require.NoError(t, client.StartMcServer(context.Background(), 25565))
	require.NoError(t, client.StopMcServer(context.Background(), 25565))

	assert.Equal(t, []string{
		"/api/v2/servers/s1/action/start_server",
		"/api/v2/servers/s1/action/stop_server",
	}, panel.actions)
}

func TestStart_NoSuchServer(t *testing.T) {
	client := newTestClient(t, &fakePanel{}, "secret")

	err := client.StartMcServer(context.Background(), 25570)
	assert.ErrorIs(t, err, ErrNoSuchServer)
}

func TestStart_BadCredentials(t *testing.T) {
	client := newTestClient(t, &fakePanel{}, "wrong")

	err := client.StartMcServer(context.Background(), 25565)
	assert.ErrorIs(t, err, ErrAuthorizationFailed)
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
}

func TestStart_ActionRejected(t *testing.T) {
	panel := &fakePanel{status: http.StatusInternalServerError}
	client := newTestClient(t, panel, "secret")

	err := client.StartMcServer(context.Background(), 25565)
	assert.ErrorIs(t, err, ErrFailedToStartServer)
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
}

func TestStart_Unreachable(t *testing.T) {
	cfg := config.NewConfig()
	cfg.APIURL = "http://127.0.0.1:1"

	err := New(cfg).StartMcServer(context.Background(), 25565)
	assert.ErrorIs(t, err, ErrHTTPRequestFailed)
}
