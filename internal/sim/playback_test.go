package sim

import (
	"testing"
	"time"

	"route-simulation-service/internal/domain"
)

func threeStopRoute() *domain.Route {
	return &domain.Route{
		ID:   "r3",
		Name: "Morning loop",
		Stops: []domain.Stop{
			{ID: "s0", Name: "Depot", Kind: domain.StopKindDepot},
			{ID: "s1", Name: "Bakery", Kind: domain.StopKindDelivery, Coordinates: domain.Coordinate{Lat: 1, Lng: 1}, ServiceTime: 5},
			{ID: "s2", Name: "Overlook", Kind: domain.StopKindWaypoint, Coordinates: domain.Coordinate{Lat: 2, Lng: 2}, ServiceTime: 5},
		},
	}
}

func collectEvents(t *testing.T, s *Simulator, n int, timeout time.Duration) []domain.SimulationEvent {
	t.Helper()

	ch := make(chan domain.SimulationEvent, 16)
	unsubscribe := s.Subscribe(func(ev domain.SimulationEvent) { ch <- ev })
	defer unsubscribe()

	s.Start()

	events := make([]domain.SimulationEvent, 0, n)
	deadline := time.After(timeout)
	for len(events) < n {
		select {
		case ev := <-ch:
			events = append(events, ev)
		case <-deadline:
			t.Fatalf("timed out: got %d of %d events", len(events), n)
		}
	}

	// The run must halt on its own with no further events.
	select {
	case ev := <-ch:
		t.Fatalf("unexpected extra event: %+v", ev)
	case <-time.After(10 * s.tick):
	}

	return events
}

func TestPlaybackEmitsOneEventPerStop(t *testing.T) {
	s, err := NewSimulator(
		domain.Driver{ID: "d1", Name: "Maria"},
		threeStopRoute(),
		Options{TickInterval: 5 * time.Millisecond, Now: fixedClock()},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Stop()

	events := collectEvents(t, s, 3, 2*time.Second)

	wantStops := []string{"s0", "s1", "s2"}
	wantTypes := []domain.EventType{
		domain.EventRouteProgress,
		domain.EventDeliveryComplete,
		domain.EventRouteProgress,
	}
	for i, ev := range events {
		if ev.Stop.ID != wantStops[i] {
			t.Fatalf("event %d stop = %q, want %q", i, ev.Stop.ID, wantStops[i])
		}
		if ev.Type != wantTypes[i] {
			t.Fatalf("event %d type = %q, want %q", i, ev.Type, wantTypes[i])
		}
	}

	d := s.Driver()
	if d.CompletedStops != 3 {
		t.Fatalf("completed stops = %d, want 3", d.CompletedStops)
	}
	if d.CurrentLocation != (domain.Coordinate{Lat: 2, Lng: 2}) {
		t.Fatalf("final location = %+v, want last stop", d.CurrentLocation)
	}
}

func TestPlaybackSnapSetsStatusByStopKind(t *testing.T) {
	s, err := NewSimulator(
		domain.Driver{ID: "d1"},
		threeStopRoute(),
		Options{TickInterval: 5 * time.Millisecond},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Stop()

	statuses := make(chan domain.DriverStatus, 16)
	unsubscribe := s.Subscribe(func(domain.SimulationEvent) { statuses <- s.Driver().Status })
	defer unsubscribe()

	s.Start()

	want := []domain.DriverStatus{domain.DriverDriving, domain.DriverDelivering, domain.DriverDriving}
	for i, w := range want {
		select {
		case got := <-statuses:
			if got != w {
				t.Fatalf("status after stop %d = %q, want %q", i, got, w)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for stop %d", i)
		}
	}
}

func TestStopHaltsPlayback(t *testing.T) {
	s, err := NewSimulator(
		domain.Driver{ID: "d1"},
		threeStopRoute(),
		Options{TickInterval: 10 * time.Millisecond},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ch := make(chan domain.SimulationEvent, 16)
	unsubscribe := s.Subscribe(func(ev domain.SimulationEvent) { ch <- ev })
	defer unsubscribe()

	s.Start()

	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for first event")
	}

	s.Stop()
	if s.Running() {
		t.Fatal("simulator still running after Stop")
	}

	select {
	case ev := <-ch:
		t.Fatalf("event emitted after Stop: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}

	// Stop is idempotent.
	s.Stop()
}

func TestStartCancelsPreviousRun(t *testing.T) {
	s, err := NewSimulator(
		domain.Driver{ID: "d1"},
		threeStopRoute(),
		Options{TickInterval: time.Hour},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Stop()

	currentRun := func() *playbackRun {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.run
	}

	s.Start()
	first := currentRun()
	s.Start()
	second := currentRun()

	if first == second {
		t.Fatal("second Start reused the previous run")
	}
	select {
	case <-first.done:
	case <-time.After(time.Second):
		t.Fatal("previous run not cancelled by new Start")
	}
}

func TestLinearPlaybackWalksSegments(t *testing.T) {
	// Tiny service times so each segment spans a few ticks.
	route := &domain.Route{
		ID: "r4",
		Stops: []domain.Stop{
			{ID: "a", Name: "Depot", Kind: domain.StopKindDepot},
			{ID: "b", Name: "Customer", Kind: domain.StopKindDelivery, Coordinates: domain.Coordinate{Lat: 1, Lng: 1}, ServiceTime: 0},
		},
	}
	s, err := NewSimulator(
		domain.Driver{ID: "d1"},
		route,
		Options{TickInterval: 5 * time.Millisecond, Interpolation: InterpolationLinear},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Stop()

	ch := make(chan domain.SimulationEvent, 4)
	unsubscribe := s.Subscribe(func(ev domain.SimulationEvent) { ch <- ev })
	defer unsubscribe()

	s.Start()

	select {
	case ev := <-ch:
		if ev.Type != domain.EventDeliveryComplete {
			t.Fatalf("event type = %q, want delivery_complete", ev.Type)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for arrival event")
	}

	// Run finishes after servicing the final stop.
	deadline := time.Now().Add(2 * time.Second)
	for s.Running() {
		if time.Now().After(deadline) {
			t.Fatal("linear playback did not finish")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if got := s.Driver().Status; got != domain.DriverIdle {
		t.Fatalf("final status = %q, want idle", got)
	}
	if got := s.Stops()[1].Status; got != domain.StopCompleted {
		t.Fatalf("final stop status = %q, want completed", got)
	}
}
