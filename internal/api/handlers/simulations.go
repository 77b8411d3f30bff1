package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"route-simulation-service/internal/api/dto"
	"route-simulation-service/internal/domain"
	"route-simulation-service/internal/ports"
	"route-simulation-service/internal/services"
	"route-simulation-service/internal/sim"
)

// SimulationHandler orchestrates simulation run lifecycle endpoints.
type SimulationHandler struct {
	Repo    ports.RouteRepository
	Manager *sim.Manager
}

// Start creates a new simulation run over a stored route.
func (h *SimulationHandler) Start(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.StartSimulationRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	if req.RouteID == "" {
		writeError(w, r, http.StatusBadRequest, "route_id is required")
		return
	}

	interp := sim.InterpolationNone
	switch req.Mode {
	case "", "none":
	case "linear":
		interp = sim.InterpolationLinear
	default:
		writeError(w, r, http.StatusBadRequest, "mode must be \"none\" or \"linear\"")
		return
	}

	if req.TickSeconds < 0 || req.TickSeconds > 60 {
		writeError(w, r, http.StatusBadRequest, "tick_seconds must be between 0 and 60")
		return
	}

	route, err := h.Repo.GetRoute(r.Context(), req.RouteID)
	if err != nil {
		log.Printf("get route failed: %v", err)
		writeError(w, r, http.StatusNotFound, "route not found")
		return
	}

	// Stamp estimated arrivals before the run starts so snapshots carry
	// the planned schedule alongside live progress.
	if _, err := services.EstimateArrivals(route, time.Now()); err != nil {
		log.Printf("estimate arrivals failed: %v", err)
		writeError(w, r, http.StatusUnprocessableEntity, "route is not simulatable")
		return
	}

	run, err := h.Manager.Start(sim.StartParams{
		Driver: domain.Driver{
			Name:    req.DriverName,
			Vehicle: req.Vehicle,
		},
		Route:         route,
		Interpolation: interp,
		TickInterval:  time.Duration(req.TickSeconds * float64(time.Second)),
		Autoplay:      req.Autoplay,
	})
	if err != nil {
		log.Printf("start run failed: %v", err)
		writeError(w, r, http.StatusUnprocessableEntity, "could not start simulation")
		return
	}

	writeJSON(w, r, http.StatusCreated, toSimulationResponse(run))
}

// Advance applies a caller-driven tick to a run.
func (h *SimulationHandler) Advance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.AdvanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	defer r.Body.Close()

	if req.RunID == "" {
		writeError(w, r, http.StatusBadRequest, "run_id is required")
		return
	}
	if req.ElapsedSeconds < 0 {
		writeError(w, r, http.StatusBadRequest, "elapsed_seconds must be non-negative")
		return
	}

	driver, err := h.Manager.Advance(req.RunID, time.Duration(req.ElapsedSeconds*float64(time.Second)))
	if err != nil {
		writeError(w, r, http.StatusNotFound, "run not found")
		return
	}

	writeJSON(w, r, http.StatusOK, toDriverResponse(driver))
}

// Stop cancels a run. Stopping an unknown run is not an error: the
// response simply reports stopped=false.
func (h *SimulationHandler) Stop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.StopSimulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	defer r.Body.Close()

	if req.RunID == "" {
		writeError(w, r, http.StatusBadRequest, "run_id is required")
		return
	}

	stopped := h.Manager.Stop(req.RunID)
	writeJSON(w, r, http.StatusOK, dto.StopSimulationResponse{Stopped: stopped})
}

// Driver returns the current snapshot for a run.
func (h *SimulationHandler) Driver(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		writeError(w, r, http.StatusBadRequest, "run_id is required")
		return
	}

	run, ok := h.Manager.Get(runID)
	if !ok {
		writeError(w, r, http.StatusNotFound, "run not found")
		return
	}

	writeJSON(w, r, http.StatusOK, toSimulationResponse(run))
}

func toSimulationResponse(run *sim.Run) dto.SimulationResponse {
	stops := run.Sim.Stops()
	res := dto.SimulationResponse{
		RunID:   run.ID,
		RouteID: run.RouteID,
		Driver:  toDriverResponse(run.Sim.Driver()),
		Stops:   make([]dto.StopResponse, 0, len(stops)),
	}
	for _, s := range stops {
		res.Stops = append(res.Stops, toStopResponse(s))
	}
	return res
}

func toDriverResponse(d domain.Driver) dto.DriverResponse {
	return dto.DriverResponse{
		DriverID:       d.ID,
		Name:           d.Name,
		Vehicle:        d.Vehicle,
		Lat:            d.CurrentLocation.Lat,
		Lng:            d.CurrentLocation.Lng,
		Status:         string(d.Status),
		CompletedStops: d.CompletedStops,
		TotalStops:     d.TotalStops,
	}
}
