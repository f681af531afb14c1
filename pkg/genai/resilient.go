package genai

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
)

// ResilientClient wraps Client with a circuit breaker so a misbehaving or
// unreachable API fails fast instead of tying up every request in timeouts.
type ResilientClient struct {
	client  *Client
	breaker *gobreaker.CircuitBreaker
}

// NewResilientClient creates a circuit-breaker-wrapped client.
func NewResilientClient(config Config) *ResilientClient {
	settings := gobreaker.Settings{
		Name:        "genai-api",
		MaxRequests: 2,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}

	return &ResilientClient{
		client:  NewClient(config),
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// GenerateText calls Client.GenerateText through the circuit breaker.
func (r *ResilientClient) GenerateText(ctx context.Context, model, prompt string) (string, error) {
	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.client.GenerateText(ctx, model, prompt)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// GenerateJSON calls Client.GenerateJSON through the circuit breaker.
func (r *ResilientClient) GenerateJSON(ctx context.Context, model, prompt string, schema map[string]any) (string, error) {
	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.client.GenerateJSON(ctx, model, prompt, schema)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// State returns the current breaker state for health reporting.
func (r *ResilientClient) State() gobreaker.State {
	return r.breaker.State()
}
