package domain

// Activity state of the simulated vehicle.
type DriverStatus string

const (
	DriverIdle       DriverStatus = "idle"
	DriverDriving    DriverStatus = "driving"
	DriverLoading    DriverStatus = "loading"
	DriverDelivering DriverStatus = "delivering"
	DriverOnBreak    DriverStatus = "break"
)

// Simulation subject: one vehicle advancing along a fixed route.
// CompletedStops counts fully completed stops, so it is also the index
// of the segment currently being traversed. The invariant
// 0 <= CompletedStops <= TotalStops holds at all times, and
// CurrentLocation lies on the straight-line segment between the last
// completed stop and the next one.
type Driver struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Vehicle         string       `json:"vehicle"`
	CurrentLocation Coordinate   `json:"current_location"`
	Status          DriverStatus `json:"status"`
	CompletedStops  int          `json:"completed_stops"`
	TotalStops      int          `json:"total_stops"`
}
