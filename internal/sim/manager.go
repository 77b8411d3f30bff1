package sim

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"route-simulation-service/internal/domain"
	"route-simulation-service/internal/ports"
)

// Run is one active simulation: a driver/route pair with its simulator.
type Run struct {
	ID       string
	RouteID  string
	DriverID string
	Sim      *Simulator

	unsubscribe func()
}

// StartParams configures a new simulation run.
type StartParams struct {
	Driver domain.Driver
	Route  *domain.Route

	// Interpolation selects the playback strategy; TickInterval its
	// cadence. Both fall back to simulator defaults when zero.
	Interpolation Interpolation
	TickInterval  time.Duration

	// Autoplay starts autonomous playback immediately. When false the
	// driver is armed for caller-driven Advance calls instead.
	Autoplay bool
}

// Manager owns all active simulation runs. It guarantees at most one
// run mutates a given driver at a time: starting a new run for a driver
// cancels that driver's previous run first.
type Manager struct {
	mu       sync.Mutex
	runs     map[string]*Run
	byDriver map[string]*Run

	publisher ports.LocationPublisher
}

// NewManager creates a run manager. publisher may be nil, in which case
// no external location updates are pushed.
func NewManager(publisher ports.LocationPublisher) *Manager {
	return &Manager{
		runs:      make(map[string]*Run),
		byDriver:  make(map[string]*Run),
		publisher: publisher,
	}
}

// Start creates and activates a simulation run.
func (m *Manager) Start(p StartParams) (*Run, error) {
	if p.Driver.ID == "" {
		p.Driver.ID = uuid.NewString()
	}

	simulator, err := NewSimulator(p.Driver, p.Route, Options{
		TickInterval:  p.TickInterval,
		Interpolation: p.Interpolation,
	})
	if err != nil {
		return nil, fmt.Errorf("start run: %w", err)
	}

	run := &Run{
		ID:       uuid.NewString(),
		RouteID:  p.Route.ID,
		DriverID: p.Driver.ID,
		Sim:      simulator,
	}

	if m.publisher != nil {
		run.unsubscribe = simulator.Subscribe(func(ev domain.SimulationEvent) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := m.publisher.PublishEvent(ctx, ev); err != nil {
				log.Printf("publish event failed: run=%s err=%v", run.ID, err)
			}
			if err := m.publisher.PublishLocation(ctx, simulator.Driver()); err != nil {
				log.Printf("publish location failed: run=%s err=%v", run.ID, err)
			}
		})
	}

	// Evicting the driver's previous run and registering the new one
	// happen in one critical section, so two concurrent Starts for the
	// same driver cannot both stay registered.
	m.mu.Lock()
	prev := m.byDriver[p.Driver.ID]
	if prev != nil {
		delete(m.runs, prev.ID)
		delete(m.byDriver, prev.DriverID)
	}
	m.runs[run.ID] = run
	m.byDriver[run.DriverID] = run
	m.mu.Unlock()

	if prev != nil {
		m.releaseRun(prev)
	}

	if p.Autoplay {
		simulator.Start()
	} else {
		simulator.SetStatus(domain.DriverDriving)
	}

	log.Printf("run started: run=%s route=%s driver=%s autoplay=%t", run.ID, run.RouteID, run.DriverID, p.Autoplay)
	return run, nil
}

// Get returns the run with the given id.
func (m *Manager) Get(runID string) (*Run, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[runID]
	return run, ok
}

// ActiveRuns reports how many simulations are currently registered.
func (m *Manager) ActiveRuns() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.runs)
}

// Advance applies a caller-driven tick to the run's simulator.
func (m *Manager) Advance(runID string, elapsed time.Duration) (domain.Driver, error) {
	run, ok := m.Get(runID)
	if !ok {
		return domain.Driver{}, fmt.Errorf("advance run: run %q not found", runID)
	}

	driver := run.Sim.Advance(elapsed)

	if m.publisher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := m.publisher.PublishLocation(ctx, driver); err != nil {
			log.Printf("publish location failed: run=%s err=%v", runID, err)
		}
	}
	return driver, nil
}

// Stop cancels a run and releases it. Idempotent: stopping an unknown
// or already-stopped run reports false.
func (m *Manager) Stop(runID string) bool {
	m.mu.Lock()
	run, ok := m.runs[runID]
	if ok {
		delete(m.runs, runID)
		if m.byDriver[run.DriverID] == run {
			delete(m.byDriver, run.DriverID)
		}
	}
	m.mu.Unlock()

	if !ok {
		return false
	}

	m.releaseRun(run)
	return true
}

// releaseRun halts a deregistered run's playback and detaches its
// publisher subscription. Called outside m.mu: Simulator.Stop waits on
// the playback goroutine.
func (m *Manager) releaseRun(run *Run) {
	run.Sim.Stop()
	if run.unsubscribe != nil {
		run.unsubscribe()
	}
	log.Printf("run stopped: run=%s driver=%s", run.ID, run.DriverID)
}

// StopAll cancels every active run (server shutdown).
func (m *Manager) StopAll() {
	m.mu.Lock()
	ids := make([]string, 0, len(m.runs))
	for id := range m.runs {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		m.Stop(id)
	}
}
