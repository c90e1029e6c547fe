package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	opt "github.com/repeale/fp-go/option"

	"github.com/sund3RRR/crafty-observer/internal/observer"
)

// setter is the part of *redis.Client the publisher needs.
type setter interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// Record is the JSON document stored for a server.
type Record struct {
	Server     string           `json:"server"`
	Address    string           `json:"address"`
	State      observer.State   `json:"state"`
	Text       string           `json:"text"`
	Status     *observer.Status `json:"status,omitempty"`
	Error      string           `json:"error,omitempty"`
	ObservedAt time.Time        `json:"observed_at"`
}

// NewRecord flattens an observation of the named server.
func NewRecord(name, address string, observation observer.Observation) Record {
	record := Record{
		Server:     name,
		Address:    address,
		State:      observation.State,
		Text:       observation.String(),
		ObservedAt: observation.ObservedAt,
	}
	if opt.IsSome(observation.Status) {
		status := observation.Status.Value
		record.Status = &status
	}
	if observation.Err != nil {
		record.Error = observation.Err.Error()
	}
	return record
}

// Publisher stores the latest observation of each server under
// "<prefix>:state:<server>". Entries expire after observer.CacheTTL, so a
// reader never sees a value older than the observer itself would serve.
type Publisher struct {
	client setter
	prefix string
}

// NewPublisher returns a Publisher writing keys under prefix.
func NewPublisher(client *redis.Client, prefix string) *Publisher {
	return newPublisher(client, prefix)
}

func newPublisher(client setter, prefix string) *Publisher {
	return &Publisher{client: client, prefix: prefix}
}

// Key returns the key the observation of server is stored under.
func (p *Publisher) Key(server string) string {
	return p.prefix + ":state:" + server
}

// Publish writes the observation of the named server.
func (p *Publisher) Publish(ctx context.Context, name, address string, observation observer.Observation) error {
	data, err := json.Marshal(NewRecord(name, address, observation))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPublishFailed, name, err)
	}

	if err := p.client.Set(ctx, p.Key(name), data, observer.CacheTTL).Err(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPublishFailed, name, err)
	}
	return nil
}
