package sim

import (
	"time"

	"route-simulation-service/internal/domain"
)

// Start launches autonomous playback on the configured tick interval.
// Any previous playback for this simulator is cancelled first, so at
// most one process ever mutates the driver/route pair. Playback stops
// on its own once the route is exhausted.
func (s *Simulator) Start() {
	s.Stop()

	s.mu.Lock()
	run := &playbackRun{stopCh: make(chan struct{}), done: make(chan struct{})}
	s.run = run
	tick := s.tick
	interp := s.interp
	s.mu.Unlock()

	go s.playbackLoop(run, tick, interp)
}

// Stop cancels the active playback and waits for its goroutine to
// return. Safe to call when no playback is running.
func (s *Simulator) Stop() {
	s.mu.Lock()
	run := s.run
	s.run = nil
	s.mu.Unlock()

	if run == nil {
		return
	}
	run.signalStop()
	<-run.done
}

// Running reports whether a playback goroutine is active.
func (s *Simulator) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run != nil
}

func (s *Simulator) playbackLoop(run *playbackRun, tick time.Duration, interp Interpolation) {
	defer close(run.done)
	defer func() {
		// Clear the run slot unless a newer playback already replaced it.
		s.mu.Lock()
		if s.run == run {
			s.run = nil
		}
		s.mu.Unlock()
	}()

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	if interp == InterpolationLinear {
		s.linearLoop(run, ticker, tick)
		return
	}
	s.snapLoop(run, ticker)
}

// snapLoop advances one stop per tick, snapping the driver's position to
// the stop coordinates and emitting one event per stop in route order.
func (s *Simulator) snapLoop(run *playbackRun, ticker *time.Ticker) {
	for {
		select {
		case <-run.stopCh:
			return
		case <-ticker.C:
		}

		ev, ok := s.stepToNextStop()
		if !ok {
			return
		}
		s.emit(ev)
	}
}

// linearLoop drives the same segment state machine as Advance: each tick
// contributes one tick's worth of simulated segment time, arrivals dwell
// for one tick, then the driver departs toward the next stop.
func (s *Simulator) linearLoop(run *playbackRun, ticker *time.Ticker, tick time.Duration) {
	var elapsed time.Duration

	s.mu.Lock()
	if s.driver.Status == domain.DriverIdle {
		s.driver.Status = domain.DriverDriving
	}
	s.mu.Unlock()

	for {
		select {
		case <-run.stopCh:
			return
		case <-ticker.C:
		}

		s.mu.Lock()
		if s.driver.Status == domain.DriverDelivering {
			s.departLocked()
			elapsed = 0
			if s.driver.Status == domain.DriverIdle {
				s.mu.Unlock()
				return
			}
			s.mu.Unlock()
			continue
		}

		elapsed += tick
		ev, _ := s.advanceLocked(elapsed)
		s.mu.Unlock()

		if ev != nil {
			s.emit(*ev)
		}
	}
}

// stepToNextStop performs one snap-mode step: visit the next unvisited
// stop, mark it completed, and report the transition event.
func (s *Simulator) stepToNextStop() (domain.SimulationEvent, bool) {
	s.mu.Lock()

	idx := s.driver.CompletedStops
	if idx >= len(s.stops) {
		s.mu.Unlock()
		return domain.SimulationEvent{}, false
	}

	visited := s.stops[idx]
	visited.Status = domain.StopCompleted
	visited.ActualArrival = s.nowFn().Format("15:04")
	s.stops[idx] = visited

	s.driver.CurrentLocation = visited.Coordinates
	s.driver.CompletedStops = idx + 1
	if visited.Kind == domain.StopKindDelivery {
		s.driver.Status = domain.DriverDelivering
	} else {
		s.driver.Status = domain.DriverDriving
	}

	ev := s.arrivalEventLocked(visited)
	s.mu.Unlock()
	return ev, true
}
