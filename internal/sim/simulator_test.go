package sim

import (
	"math"
	"testing"
	"time"

	"route-simulation-service/internal/domain"
)

func fixedClock() func() time.Time {
	at := time.Date(2026, 3, 9, 14, 30, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func twoStopRoute() *domain.Route {
	return &domain.Route{
		ID:   "r1",
		Name: "Depot to Market",
		Stops: []domain.Stop{
			{ID: "s0", Name: "Depot", Kind: domain.StopKindDepot, Coordinates: domain.Coordinate{Lat: 0, Lng: 0}},
			{ID: "s1", Name: "Market", Kind: domain.StopKindDelivery, Coordinates: domain.Coordinate{Lat: 1, Lng: 1}, ServiceTime: 10},
		},
	}
}

func newTestSimulator(t *testing.T, route *domain.Route) *Simulator {
	t.Helper()
	s, err := NewSimulator(
		domain.Driver{ID: "d1", Name: "Maria", Status: domain.DriverDriving},
		route,
		Options{Now: fixedClock()},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s
}

func TestAdvanceInterpolatesHalfway(t *testing.T) {
	s := newTestSimulator(t, twoStopRoute())

	// 300s elapsed of a 600s segment window.
	d := s.Advance(300 * time.Second)

	if math.Abs(d.CurrentLocation.Lat-0.5) > 1e-9 || math.Abs(d.CurrentLocation.Lng-0.5) > 1e-9 {
		t.Fatalf("location = %+v, want (0.5, 0.5)", d.CurrentLocation)
	}
	if d.CompletedStops != 0 {
		t.Fatalf("completed stops = %d, want 0", d.CompletedStops)
	}
	if d.Status != domain.DriverDriving {
		t.Fatalf("status = %q, want driving", d.Status)
	}
}

func TestAdvanceArrival(t *testing.T) {
	s := newTestSimulator(t, twoStopRoute())

	d := s.Advance(600 * time.Second)

	if d.CompletedStops != 1 {
		t.Fatalf("completed stops = %d, want 1", d.CompletedStops)
	}
	if d.Status != domain.DriverDelivering {
		t.Fatalf("status = %q, want delivering", d.Status)
	}
	if d.CurrentLocation != (domain.Coordinate{Lat: 1, Lng: 1}) {
		t.Fatalf("location = %+v, want (1, 1)", d.CurrentLocation)
	}

	arrived := s.Stops()[1]
	if arrived.Status != domain.StopInProgress {
		t.Fatalf("stop status = %q, want in_progress", arrived.Status)
	}
	if arrived.ActualArrival != "14:30" {
		t.Fatalf("actual arrival = %q, want 14:30", arrived.ActualArrival)
	}
}

func TestAdvanceClampedAfterArrival(t *testing.T) {
	s := newTestSimulator(t, twoStopRoute())

	first := s.Advance(600 * time.Second)
	again := s.Advance(900 * time.Second)

	if again != first {
		t.Fatalf("post-arrival advance changed driver: %+v vs %+v", again, first)
	}
}

func TestAdvanceNegativeElapsedStaysAtSegmentStart(t *testing.T) {
	s := newTestSimulator(t, twoStopRoute())

	d := s.Advance(-300 * time.Second)

	if d.CurrentLocation != (domain.Coordinate{Lat: 0, Lng: 0}) {
		t.Fatalf("location = %+v, want segment start (0, 0)", d.CurrentLocation)
	}
	if d.CompletedStops != 0 {
		t.Fatalf("completed stops = %d, want 0", d.CompletedStops)
	}
	if d.Status != domain.DriverDriving {
		t.Fatalf("status = %q, want driving", d.Status)
	}
}

func TestAdvanceNoOpWhenNotDriving(t *testing.T) {
	s := newTestSimulator(t, twoStopRoute())
	s.SetStatus(domain.DriverOnBreak)

	before := s.Driver()
	after := s.Advance(500 * time.Second)

	if after.CurrentLocation != before.CurrentLocation || after.CompletedStops != before.CompletedStops {
		t.Fatalf("advance while on break mutated driver: %+v vs %+v", after, before)
	}
}

func TestAdvanceNoOpWhenRouteExhausted(t *testing.T) {
	s := newTestSimulator(t, twoStopRoute())

	s.Advance(600 * time.Second) // arrive at final stop
	s.Depart()                   // nothing left: driver goes idle
	s.SetStatus(domain.DriverDriving)

	before := s.Driver()
	after := s.Advance(10_000 * time.Second)

	if after != before {
		t.Fatalf("advance past route end mutated driver: %+v vs %+v", after, before)
	}
}

func TestAdvanceEmitsDeliveryEvent(t *testing.T) {
	s := newTestSimulator(t, twoStopRoute())

	var events []domain.SimulationEvent
	unsubscribe := s.Subscribe(func(ev domain.SimulationEvent) {
		events = append(events, ev)
	})
	defer unsubscribe()

	s.Advance(300 * time.Second)
	if len(events) != 0 {
		t.Fatalf("expected no events before arrival, got %d", len(events))
	}

	s.Advance(600 * time.Second)
	if len(events) != 1 {
		t.Fatalf("expected 1 event on arrival, got %d", len(events))
	}
	ev := events[0]
	if ev.Type != domain.EventDeliveryComplete {
		t.Fatalf("event type = %q, want delivery_complete", ev.Type)
	}
	if ev.DriverID != "d1" || ev.Stop.ID != "s1" {
		t.Fatalf("event identity wrong: %+v", ev)
	}
	if ev.ID == "" {
		t.Fatal("event id is empty")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	s := newTestSimulator(t, twoStopRoute())

	count := 0
	unsubscribe := s.Subscribe(func(domain.SimulationEvent) { count++ })
	unsubscribe()

	s.Advance(600 * time.Second)
	if count != 0 {
		t.Fatalf("unsubscribed observer still received %d events", count)
	}
}

// Arrival must not write through to the caller's route: the simulator
// works on its own copy of the stop list.
func TestAdvanceDoesNotMutateCallerRoute(t *testing.T) {
	route := twoStopRoute()
	s := newTestSimulator(t, route)

	s.Advance(600 * time.Second)

	if route.Stops[1].Status != "" || route.Stops[1].ActualArrival != "" {
		t.Fatalf("caller route mutated: %+v", route.Stops[1])
	}
}

func TestDepartResumesDriving(t *testing.T) {
	route := &domain.Route{
		ID: "r2",
		Stops: []domain.Stop{
			{ID: "a", Name: "Depot", Kind: domain.StopKindDepot},
			{ID: "b", Name: "Pickup", Kind: domain.StopKindPickup, Coordinates: domain.Coordinate{Lat: 1, Lng: 0}, ServiceTime: 5},
			{ID: "c", Name: "Dropoff", Kind: domain.StopKindDelivery, Coordinates: domain.Coordinate{Lat: 2, Lng: 0}, ServiceTime: 5},
		},
	}
	s := newTestSimulator(t, route)

	s.Advance(300 * time.Second)
	d := s.Depart()
	if d.Status != domain.DriverDriving {
		t.Fatalf("status after depart = %q, want driving", d.Status)
	}
	if got := s.Stops()[1].Status; got != domain.StopCompleted {
		t.Fatalf("departed stop status = %q, want completed", got)
	}

	// Second segment runs against its own service-time window.
	d = s.Advance(150 * time.Second)
	if math.Abs(d.CurrentLocation.Lat-1.5) > 1e-9 {
		t.Fatalf("second segment midpoint lat = %v, want 1.5", d.CurrentLocation.Lat)
	}
}

func TestNewSimulatorValidation(t *testing.T) {
	driver := domain.Driver{ID: "d1"}

	tests := []struct {
		name  string
		route *domain.Route
	}{
		{"nil route", nil},
		{"single stop", &domain.Route{ID: "r", Stops: []domain.Stop{{ID: "only"}}}},
		{"negative service time", &domain.Route{ID: "r", Stops: []domain.Stop{
			{ID: "a"}, {ID: "b", ServiceTime: -1},
		}}},
		{"latitude out of range", &domain.Route{ID: "r", Stops: []domain.Stop{
			{ID: "a"}, {ID: "b", Coordinates: domain.Coordinate{Lat: 91}},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSimulator(driver, tt.route, Options{}); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestNewSimulatorSeedsDriverAtFirstStop(t *testing.T) {
	route := twoStopRoute()
	route.Stops[0].Coordinates = domain.Coordinate{Lat: 33.45, Lng: -112.07}

	s, err := NewSimulator(domain.Driver{ID: "d1"}, route, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d := s.Driver()
	if d.CurrentLocation != route.Stops[0].Coordinates {
		t.Fatalf("seed location = %+v, want depot", d.CurrentLocation)
	}
	if d.Status != domain.DriverIdle {
		t.Fatalf("seed status = %q, want idle", d.Status)
	}
	if d.TotalStops != 2 || d.CompletedStops != 0 {
		t.Fatalf("seed counters wrong: %+v", d)
	}
}
