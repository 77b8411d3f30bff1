package services

import (
	"fmt"
	"time"

	"route-simulation-service/internal/domain"
	"route-simulation-service/internal/geo"
)

// Summary metrics for a scheduled route.
type RouteSchedule struct {
	RouteID         string
	DepartAt        time.Time
	TotalDistanceKm float64
	TotalDuration   time.Duration
}

// EstimateArrivals stamps each stop's EstimatedArrival display string by
// accumulating service-time windows from the departure time, matching
// the travel model the simulator uses (segment duration = destination
// stop's service time). It also sums the great-circle distance across
// all segments for display. The route is updated in place and summary
// metrics are returned.
func EstimateArrivals(route *domain.Route, departAt time.Time) (*RouteSchedule, error) {
	if route == nil {
		return nil, fmt.Errorf("estimate arrivals: route must be non-nil")
	}
	if err := route.Validate(); err != nil {
		return nil, fmt.Errorf("estimate arrivals: %w", err)
	}

	currentTime := departAt
	totalKm := 0.0

	route.Stops[0].EstimatedArrival = departAt.Format("15:04")
	for i := 1; i < len(route.Stops); i++ {
		prev := route.Stops[i-1]
		stop := route.Stops[i]

		currentTime = currentTime.Add(time.Duration(stop.ServiceTime) * time.Minute)
		totalKm += geo.DistanceKm(prev.Coordinates, stop.Coordinates)

		route.Stops[i].EstimatedArrival = currentTime.Format("15:04")
	}

	return &RouteSchedule{
		RouteID:         route.ID,
		DepartAt:        departAt,
		TotalDistanceKm: totalKm,
		TotalDuration:   currentTime.Sub(departAt),
	}, nil
}
