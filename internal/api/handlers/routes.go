package handlers

import (
	"log"
	"net/http"

	"route-simulation-service/internal/api/dto"
	"route-simulation-service/internal/domain"
	"route-simulation-service/internal/ports"
)

// RouteHandler exposes read-only route retrieval endpoints.
type RouteHandler struct {
	Repo ports.RouteRepository
}

func (h *RouteHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	routes, err := h.Repo.ListRoutes(r.Context())
	if err != nil {
		log.Printf("list routes failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListRoutesResponse{
		Routes: make([]dto.RouteResponse, 0, len(routes)),
	}
	for _, route := range routes {
		res.Routes = append(res.Routes, toRouteResponse(route))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func toRouteResponse(route *domain.Route) dto.RouteResponse {
	stops := make([]dto.StopResponse, 0, len(route.Stops))
	for _, s := range route.Stops {
		stops = append(stops, toStopResponse(s))
	}
	return dto.RouteResponse{
		RouteID: route.ID,
		Name:    route.Name,
		Stops:   stops,
	}
}

func toStopResponse(s domain.Stop) dto.StopResponse {
	res := dto.StopResponse{
		StopID:           s.ID,
		Name:             s.Name,
		Kind:             string(s.Kind),
		Lat:              s.Coordinates.Lat,
		Lng:              s.Coordinates.Lng,
		ServiceTime:      s.ServiceTime,
		Status:           string(s.Status),
		EstimatedArrival: s.EstimatedArrival,
		ActualArrival:    s.ActualArrival,
	}
	if s.Order != nil {
		res.Order = &dto.OrderInfoResponse{
			OrderID:  s.Order.OrderID,
			Customer: s.Order.Customer,
			Items:    s.Order.Items,
			Priority: s.Order.Priority,
		}
	}
	return res
}
