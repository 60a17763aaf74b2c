package server

import "context"

// HealthService reports backend readiness. The cached metadata provider implements it by
// probing its source (TMDB credentials or Neo4j connectivity).
type HealthService interface {
	Probe(ctx context.Context) error
}

// HealthFunc adapts a function to HealthService.
type HealthFunc func(ctx context.Context) error

// Probe implements the HealthService interface.
func (f HealthFunc) Probe(ctx context.Context) error {
	return f(ctx)
}
