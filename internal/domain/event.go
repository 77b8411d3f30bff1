package domain

import "time"

// Category of a simulation event.
type EventType string

const (
	EventRouteProgress    EventType = "route_progress"
	EventDeliveryComplete EventType = "delivery_complete"
)

// Timestamped domain event emitted when the simulated driver reaches a
// stop. Fire-and-forget: observers receive a value copy and the
// simulator never waits on delivery.
type SimulationEvent struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Type        EventType `json:"type"`
	Description string    `json:"description"`
	DriverID    string    `json:"driver_id"`
	Stop        Stop      `json:"stop"`
}
