package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	opt "github.com/repeale/fp-go/option"

	"github.com/sund3RRR/crafty-observer/internal/observer"
)

type targetKey struct{}

type api struct {
	ctx     context.Context
	logger  Logger
	deps    Deps
	targets map[string]Target
}

func newAPI(ctx context.Context, logger Logger, deps Deps) *api {
	targets := make(map[string]Target, len(deps.Targets))
	for _, target := range deps.Targets {
		targets[target.Name] = target
	}
	if deps.StartTime.IsZero() {
		deps.StartTime = time.Now()
	}
	return &api{ctx: ctx, logger: logger, deps: deps, targets: targets}
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthzResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Version       string  `json:"version,omitempty"`
}

type serverResponse struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Managed bool   `json:"managed"`
}

type stateResponse struct {
	State      observer.State   `json:"state"`
	Text       string           `json:"text"`
	Status     *observer.Status `json:"status,omitempty"`
	Error      string           `json:"error,omitempty"`
	ObservedAt time.Time        `json:"observed_at"`
}

type playersResponse struct {
	Online      bool     `json:"online"`
	Names       []string `json:"names"`
	Approximate bool     `json:"approximate"`
	Text        string   `json:"text"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func (a *api) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthzResponse{
		Status:        "ok",
		UptimeSeconds: time.Since(a.deps.StartTime).Seconds(),
		Version:       a.deps.Version,
	})
}

func (a *api) listServers(w http.ResponseWriter, _ *http.Request) {
	servers := make([]serverResponse, 0, len(a.deps.Targets))
	for _, target := range a.deps.Targets {
		servers = append(servers, serverResponse{
			Name:    target.Name,
			Address: target.Address,
			Managed: target.Operator != nil && target.Operator.Managed(),
		})
	}
	writeJSON(w, http.StatusOK, servers)
}

// resolveTarget looks up {name} and stores the target in the request context.
func (a *api) resolveTarget(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		target, ok := a.targets[name]
		if !ok {
			writeError(w, http.StatusNotFound, "unknown server "+name)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), targetKey{}, target)))
	})
}

func targetFrom(r *http.Request) Target {
	return r.Context().Value(targetKey{}).(Target)
}

func (a *api) state(w http.ResponseWriter, r *http.Request) {
	target := targetFrom(r)
	observation := target.Observer.GetState(r.Context())

	if a.deps.Publisher != nil {
		if err := a.deps.Publisher.Publish(r.Context(), target.Name, target.Address, observation); err != nil {
			a.logger.Warn("Failed to publish state of %s: %v", target.Name, err)
		}
	}

	response := stateResponse{
		State:      observation.State,
		Text:       observation.String(),
		ObservedAt: observation.ObservedAt,
	}
	if opt.IsSome(observation.Status) {
		status := observation.Status.Value
		response.Status = &status
	}
	if observation.Err != nil {
		response.Error = observation.Err.Error()
	}
	writeJSON(w, http.StatusOK, response)
}

func (a *api) players(w http.ResponseWriter, r *http.Request) {
	players := targetFrom(r).Observer.GetPlayers(r.Context())

	names := players.Names
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, playersResponse{
		Online:      players.Online,
		Names:       names,
		Approximate: players.Approximate,
		Text:        players.String(),
	})
}

func (a *api) assumeStarting(w http.ResponseWriter, r *http.Request) {
	window := a.deps.StartingWindow
	if raw := r.URL.Query().Get("window"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "window must be a positive duration like 30s")
			return
		}
		window = parsed
	}
	if window <= 0 {
		writeError(w, http.StatusBadRequest, "no window given and no default configured")
		return
	}

	target := targetFrom(r)
	target.Observer.AssumeStarting(window)
	a.logger.Info("Server %s assumed to be starting for %s", target.Name, window)
	w.WriteHeader(http.StatusNoContent)
}

// start asks Crafty to start the server and waits for it in the background.
func (a *api) start(w http.ResponseWriter, r *http.Request) {
	target := targetFrom(r)
	if target.Operator == nil || !target.Operator.Managed() {
		writeError(w, http.StatusConflict, "server "+target.Name+" is not managed by crafty")
		return
	}

	if err := target.Operator.StartMinecraftServer(r.Context()); err != nil {
		a.logger.Error("Failed to start server %s: %v", target.Name, err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	go func() {
		err := target.Operator.AwaitForServerStart(a.ctx)
		if err == nil {
			return
		}
		if a.ctx.Err() != nil {
			a.logger.Debug("Stopped waiting for server %s: %v", target.Name, a.ctx.Err())
			return
		}
		a.logger.Warn("Server %s did not come online: %v", target.Name, err)
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "starting"})
}
