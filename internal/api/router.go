package api

import (
	"net/http"

	"route-simulation-service/internal/api/handlers"
	"route-simulation-service/internal/ports"
	"route-simulation-service/internal/sim"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(repo ports.RouteRepository, manager *sim.Manager) http.Handler {
	mux := http.NewServeMux()

	healthHandler := &handlers.HealthHandler{Manager: manager}
	routeHandler := &handlers.RouteHandler{Repo: repo}
	simHandler := &handlers.SimulationHandler{Repo: repo, Manager: manager}
	streamHandler := &handlers.StreamHandler{Manager: manager}

	mux.HandleFunc("/health", healthHandler.Health)
	mux.HandleFunc("/routes", routeHandler.List)
	mux.HandleFunc("/simulations", simHandler.Start)
	mux.HandleFunc("/simulations/advance", simHandler.Advance)
	mux.HandleFunc("/simulations/stop", simHandler.Stop)
	mux.HandleFunc("/simulations/driver", simHandler.Driver)
	mux.HandleFunc("/simulations/stream", streamHandler.Stream)

	return loggingMiddleware(mux)
}
