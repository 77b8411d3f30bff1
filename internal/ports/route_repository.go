package ports

import (
	"context"

	"route-simulation-service/internal/domain"
)

// Port: a boundary for retrieving Route entities from a data source.
type RouteRepository interface {
	// Retrieve all routes available for simulation.
	ListRoutes(ctx context.Context) ([]*domain.Route, error)

	// Retrieve one route with its ordered stops.
	GetRoute(ctx context.Context, id string) (*domain.Route, error)
}
