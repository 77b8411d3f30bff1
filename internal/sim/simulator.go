// Package sim implements the discrete-time route simulation engine: a
// single driver advancing along a fixed sequence of stops, with
// interpolated position updates and timestamped domain events.
package sim

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"route-simulation-service/internal/domain"
	"route-simulation-service/internal/geo"
)

// Interpolation selects how playback moves the driver between stops.
type Interpolation string

const (
	// InterpolationNone snaps the driver to each stop's coordinates,
	// one stop per tick.
	InterpolationNone Interpolation = "none"

	// InterpolationLinear advances the driver along each segment in
	// tick-sized increments of simulated time.
	InterpolationLinear Interpolation = "linear"
)

const defaultTickInterval = 2 * time.Second

// Options tunes a simulator instance. The zero value gives snap-to-stop
// playback at a 2 second cadence with the wall clock.
type Options struct {
	TickInterval  time.Duration
	Interpolation Interpolation

	// Now overrides the clock used for event timestamps and arrival
	// stamps. Tests inject a fixed clock here.
	Now func() time.Time
}

type playbackRun struct {
	stopCh chan struct{}
	done   chan struct{}
	once   sync.Once
}

func (r *playbackRun) signalStop() { r.once.Do(func() { close(r.stopCh) }) }

// Simulator owns one driver and a private copy of its route's stops.
// All state transitions go through the simulator: stops are updated
// copy-on-write, so snapshots handed to observers never alias mutable
// state. Safe for concurrent use.
type Simulator struct {
	mu     sync.Mutex
	driver domain.Driver
	stops  []domain.Stop

	tick   time.Duration
	interp Interpolation
	nowFn  func() time.Time

	run *playbackRun

	subs      map[int]func(domain.SimulationEvent)
	nextSubID int
}

// NewSimulator validates the route and seeds the driver at the first
// stop. Malformed routes (fewer than two stops, negative service times,
// out-of-range coordinates) are rejected here rather than degrading to
// silent no-ops during the run.
func NewSimulator(driver domain.Driver, route *domain.Route, opts Options) (*Simulator, error) {
	if route == nil {
		return nil, fmt.Errorf("new simulator: route must be non-nil")
	}
	if err := route.Validate(); err != nil {
		return nil, fmt.Errorf("new simulator: %w", err)
	}

	stops := make([]domain.Stop, len(route.Stops))
	copy(stops, route.Stops)
	for i := range stops {
		if stops[i].Status == "" {
			stops[i].Status = domain.StopPending
		}
	}

	driver.CompletedStops = 0
	driver.TotalStops = len(stops)
	driver.CurrentLocation = stops[0].Coordinates
	if driver.Status == "" {
		driver.Status = domain.DriverIdle
	}

	tick := opts.TickInterval
	if tick <= 0 {
		tick = defaultTickInterval
	}
	interp := opts.Interpolation
	if interp == "" {
		interp = InterpolationNone
	}
	nowFn := opts.Now
	if nowFn == nil {
		nowFn = time.Now
	}

	return &Simulator{
		driver: driver,
		stops:  stops,
		tick:   tick,
		interp: interp,
		nowFn:  nowFn,
		subs:   make(map[int]func(domain.SimulationEvent)),
	}, nil
}

// Driver returns the current driver snapshot.
func (s *Simulator) Driver() domain.Driver {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.driver
}

// Stops returns a copy of the stop list with current statuses.
func (s *Simulator) Stops() []domain.Stop {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Stop, len(s.stops))
	copy(out, s.stops)
	return out
}

// Subscribe registers an observer for simulation events and returns its
// unsubscribe function. Observers are invoked after the state change
// commits, outside the simulator lock.
func (s *Simulator) Subscribe(fn func(domain.SimulationEvent)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// SetStatus updates the driver status outside the simulation's own
// transitions (e.g. loading, break). Setting driving arms Advance.
func (s *Simulator) SetStatus(status domain.DriverStatus) {
	s.mu.Lock()
	s.driver.Status = status
	s.mu.Unlock()
}

// Advance moves the driver along the current segment given the elapsed
// simulated time since that segment began, and returns the updated
// driver snapshot.
//
// The segment runs from stops[CompletedStops] to stops[CompletedStops+1]
// and its duration is the destination stop's service time. Callers do
// not need to reset their elapsed counter on arrival: arrival flips the
// driver to delivering, which makes further Advance calls no-ops until
// Depart starts the next segment.
//
// No-op when the driver is not driving or the route is exhausted.
func (s *Simulator) Advance(elapsed time.Duration) domain.Driver {
	s.mu.Lock()
	ev, _ := s.advanceLocked(elapsed)
	d := s.driver
	s.mu.Unlock()

	if ev != nil {
		s.emit(*ev)
	}
	return d
}

// Depart completes service at the current stop and puts the driver back
// on the road toward the next one. No-op unless the driver is
// delivering or loading.
func (s *Simulator) Depart() domain.Driver {
	s.mu.Lock()
	s.departLocked()
	d := s.driver
	s.mu.Unlock()
	return d
}

// advanceLocked applies one Advance step. Returns the arrival event to
// emit, if any, and whether the driver arrived at the next stop.
func (s *Simulator) advanceLocked(elapsed time.Duration) (*domain.SimulationEvent, bool) {
	if s.driver.Status != domain.DriverDriving {
		return nil, false
	}

	idx := s.driver.CompletedStops
	if idx+1 >= len(s.stops) {
		return nil, false
	}
	current := s.stops[idx]
	next := s.stops[idx+1]

	// Clamp to [0, 1] so the driver stays on the segment even when a
	// caller hands in negative or past-arrival elapsed values.
	window := time.Duration(next.ServiceTime) * time.Minute
	progress := 1.0
	if window > 0 {
		progress = float64(elapsed) / float64(window)
		if progress < 0 {
			progress = 0
		}
		if progress > 1 {
			progress = 1
		}
	}

	s.driver.CurrentLocation = geo.Lerp(current.Coordinates, next.Coordinates, progress)

	if progress < 1 {
		return nil, false
	}

	// Arrival: commit a fresh stop value rather than mutating the old one.
	arrived := next
	arrived.Status = domain.StopInProgress
	arrived.ActualArrival = s.nowFn().Format("15:04")
	s.stops[idx+1] = arrived

	s.driver.CompletedStops = idx + 1
	s.driver.Status = domain.DriverDelivering
	s.driver.CurrentLocation = arrived.Coordinates

	ev := s.arrivalEventLocked(arrived)
	return &ev, true
}

func (s *Simulator) departLocked() {
	if s.driver.Status != domain.DriverDelivering && s.driver.Status != domain.DriverLoading {
		return
	}

	idx := s.driver.CompletedStops
	if idx < len(s.stops) {
		done := s.stops[idx]
		done.Status = domain.StopCompleted
		s.stops[idx] = done
	}

	if idx+1 >= len(s.stops) {
		// Route exhausted: nothing left to drive toward.
		s.driver.Status = domain.DriverIdle
		return
	}
	s.driver.Status = domain.DriverDriving
}

func (s *Simulator) arrivalEventLocked(stop domain.Stop) domain.SimulationEvent {
	evType := domain.EventRouteProgress
	desc := fmt.Sprintf("%s reached %s", s.driver.Name, stop.Name)
	if stop.Kind == domain.StopKindDelivery {
		evType = domain.EventDeliveryComplete
		desc = fmt.Sprintf("%s completed delivery at %s", s.driver.Name, stop.Name)
	}

	return domain.SimulationEvent{
		ID:          uuid.NewString(),
		Timestamp:   s.nowFn(),
		Type:        evType,
		Description: desc,
		DriverID:    s.driver.ID,
		Stop:        stop,
	}
}

// emit fans an event out to all subscribers outside the lock.
func (s *Simulator) emit(ev domain.SimulationEvent) {
	s.mu.Lock()
	fns := make([]func(domain.SimulationEvent), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
