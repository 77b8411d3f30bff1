package ports

import (
	"context"

	"route-simulation-service/internal/domain"
)

// Port: pushes live driver state to an external store so other services
// (dashboards, dispatch) can read positions without polling this one.
type LocationPublisher interface {
	// Record the driver's current position and status.
	PublishLocation(ctx context.Context, driver domain.Driver) error

	// Record a simulation event on the driver's event stream.
	PublishEvent(ctx context.Context, event domain.SimulationEvent) error
}
