package handlers

import (
	"net/http"

	"route-simulation-service/internal/sim"
)

// HealthHandler reports liveness plus a small amount of runtime state.
type HealthHandler struct {
	Manager *sim.Manager
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	res := map[string]any{
		"status":      "ok",
		"active_runs": h.Manager.ActiveRuns(),
	}
	writeJSON(w, r, http.StatusOK, res)
}
