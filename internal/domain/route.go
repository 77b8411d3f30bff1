package domain

import "fmt"

// Represents an ordered sequence of stops served by a single driver.
// The first and last stop are conventionally depots, though this is not
// enforced. The stop order is fixed: the simulation only updates per-stop
// status and arrival stamps, never the sequence itself.
type Route struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Stops []Stop `json:"stops"`
}

// Validate checks the route is well formed for simulation: at least two
// stops, non-negative service times, and in-range coordinates.
// Malformed routes are rejected at construction rather than silently
// degrading to no-ops mid-run.
func (r *Route) Validate() error {
	if len(r.Stops) < 2 {
		return fmt.Errorf("validate route %q: need at least 2 stops, got %d", r.ID, len(r.Stops))
	}
	for i, s := range r.Stops {
		if s.ServiceTime < 0 {
			return fmt.Errorf("validate route %q: stop %d (%s) has negative service time %d", r.ID, i, s.ID, s.ServiceTime)
		}
		if err := s.Coordinates.Validate(); err != nil {
			return fmt.Errorf("validate route %q: stop %d (%s): %w", r.ID, i, s.ID, err)
		}
	}
	return nil
}
