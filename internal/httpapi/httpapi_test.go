package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	opt "github.com/repeale/fp-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sund3RRR/crafty-observer/internal/observer"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

type fakeObserver struct {
	mu          sync.Mutex
	observation observer.Observation
	players     observer.Players
	windows     []time.Duration
}

func (o *fakeObserver) GetState(context.Context) observer.Observation { return o.observation }
func (o *fakeObserver) GetPlayers(context.Context) observer.Players   { return o.players }

func (o *fakeObserver) AssumeStarting(window time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.windows = append(o.windows, window)
}

type fakeOperator struct {
	managed  bool
	startErr error
	started  int
	awaited  chan struct{}
}

func (o *fakeOperator) Managed() bool { return o.managed }

func (o *fakeOperator) StartMinecraftServer(context.Context) error {
	o.started++
	return o.startErr
}

func (o *fakeOperator) AwaitForServerStart(context.Context) error {
	close(o.awaited)
	return nil
}

type fakePublisher struct {
	names []string
}

func (p *fakePublisher) Publish(_ context.Context, name, _ string, _ observer.Observation) error {
	p.names = append(p.names, name)
	return errors.New("redis down")
}

func newTestRouter(t *testing.T, deps Deps) http.Handler {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewRouter(ctx, nopLogger{}, deps)
}

func do(t *testing.T, handler http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(method, path, http.NoBody))
	return rec
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, Deps{Version: "1.2.3"})

	rec := do(t, router, http.MethodGet, "/healthz")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Contains(t, rec.Body.String(), `"version":"1.2.3"`)
}

func TestListServers(t *testing.T) {
	router := newTestRouter(t, Deps{Targets: []Target{
		{Name: "survival", Address: "mc:25565", Observer: &fakeObserver{}, Operator: &fakeOperator{managed: true}},
		{Name: "creative", Address: "mc:25566", Observer: &fakeObserver{}},
	}})

	rec := do(t, router, http.MethodGet, "/servers")

	require.Equal(t, http.StatusOK, rec.Code)
	var servers []serverResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &servers))
	assert.Equal(t, []serverResponse{
		{Name: "survival", Address: "mc:25565", Managed: true},
		{Name: "creative", Address: "mc:25566", Managed: false},
	}, servers)
}

func TestState_Online(t *testing.T) {
	obs := &fakeObserver{observation: observer.Observation{
		State:  observer.StateOnline,
		Status: opt.Some(observer.Status{Online: 3, Max: 20, Latency: 43 * time.Millisecond}),
	}}
	publisher := &fakePublisher{}
	router := newTestRouter(t, Deps{
		Targets:   []Target{{Name: "survival", Observer: obs}},
		Publisher: publisher,
	})

	rec := do(t, router, http.MethodGet, "/servers/survival/state")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "online", body["state"])
	assert.Equal(t, "online with 3/20 players (43ms)", body["text"])
	assert.NotNil(t, body["status"])
	assert.Equal(t, []string{"survival"}, publisher.names, "publish errors must not fail the request")
}

func TestState_AssumedStarting(t *testing.T) {
	obs := &fakeObserver{observation: observer.Observation{State: observer.StateAssumedStarting}}
	router := newTestRouter(t, Deps{Targets: []Target{{Name: "survival", Observer: obs}}})

	rec := do(t, router, http.MethodGet, "/servers/survival/state")

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "assumed_starting", body["state"])
	assert.Equal(t, "assumed to be starting", body["text"])
	assert.NotContains(t, body, "status")
}

func TestState_UnknownServer(t *testing.T) {
	router := newTestRouter(t, Deps{})

	rec := do(t, router, http.MethodGet, "/servers/nope/state")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlayers(t *testing.T) {
	obs := &fakeObserver{players: observer.Players{Online: true, Names: []string{"alice", "bob"}, Approximate: true}}
	router := newTestRouter(t, Deps{Targets: []Target{{Name: "survival", Observer: obs}}})

	rec := do(t, router, http.MethodGet, "/servers/survival/players")

	var body playersResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Approximate)
	assert.Equal(t, "alice, bob, ..?", body.Text)
}

func TestPlayers_Offline(t *testing.T) {
	router := newTestRouter(t, Deps{Targets: []Target{{Name: "survival", Observer: &fakeObserver{}}}})

	rec := do(t, router, http.MethodGet, "/servers/survival/players")

	assert.JSONEq(t, `{"online":false,"names":[],"approximate":false,"text":"unknown, server not online"}`, rec.Body.String())
}

func TestAssumeStarting(t *testing.T) {
	obs := &fakeObserver{}
	router := newTestRouter(t, Deps{
		Targets:        []Target{{Name: "survival", Observer: obs}},
		StartingWindow: 2 * time.Minute,
	})

	assert.Equal(t, http.StatusNoContent, do(t, router, http.MethodPost, "/servers/survival/assume-starting?window=30s").Code)
	assert.Equal(t, http.StatusNoContent, do(t, router, http.MethodPost, "/servers/survival/assume-starting").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodPost, "/servers/survival/assume-starting?window=soon").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodPost, "/servers/survival/assume-starting?window=-5s").Code)

	assert.Equal(t, []time.Duration{30 * time.Second, 2 * time.Minute}, obs.windows)
}

func TestStart(t *testing.T) {
	operator := &fakeOperator{managed: true, awaited: make(chan struct{})}
	router := newTestRouter(t, Deps{Targets: []Target{{Name: "survival", Observer: &fakeObserver{}, Operator: operator}}})

	rec := do(t, router, http.MethodPost, "/servers/survival/start")

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 1, operator.started)
	select {
	case <-operator.awaited:
	case <-time.After(time.Second):
		t.Fatal("start did not wait for the server in the background")
	}
}

func TestStart_Errors(t *testing.T) {
	failing := &fakeOperator{managed: true, startErr: errors.New("panel down")}
	router := newTestRouter(t, Deps{Targets: []Target{
		{Name: "unmanaged", Observer: &fakeObserver{}, Operator: &fakeOperator{}},
		{Name: "bare", Observer: &fakeObserver{}},
		{Name: "failing", Observer: &fakeObserver{}, Operator: failing},
	}})

	assert.Equal(t, http.StatusConflict, do(t, router, http.MethodPost, "/servers/unmanaged/start").Code)
	assert.Equal(t, http.StatusConflict, do(t, router, http.MethodPost, "/servers/bare/start").Code)
	assert.Equal(t, http.StatusBadGateway, do(t, router, http.MethodPost, "/servers/failing/start").Code)
}

func TestMethodNotAllowed(t *testing.T) {
	router := newTestRouter(t, Deps{Targets: []Target{{Name: "survival", Observer: &fakeObserver{}}}})

	rec := do(t, router, http.MethodGet, "/servers/survival/start")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
