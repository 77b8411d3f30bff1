package dto

type StartSimulationRequest struct {
	RouteID     string  `json:"route_id"`
	DriverName  string  `json:"driver_name"`
	Vehicle     string  `json:"vehicle"`
	Mode        string  `json:"mode"`
	TickSeconds float64 `json:"tick_seconds"`
	Autoplay    bool    `json:"autoplay"`
}

type DriverResponse struct {
	DriverID       string  `json:"driver_id"`
	Name           string  `json:"name"`
	Vehicle        string  `json:"vehicle"`
	Lat            float64 `json:"lat"`
	Lng            float64 `json:"lng"`
	Status         string  `json:"status"`
	CompletedStops int     `json:"completed_stops"`
	TotalStops     int     `json:"total_stops"`
}

type SimulationResponse struct {
	RunID   string         `json:"run_id"`
	RouteID string         `json:"route_id"`
	Driver  DriverResponse `json:"driver"`
	Stops   []StopResponse `json:"stops"`
}

type AdvanceRequest struct {
	RunID          string  `json:"run_id"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

type StopSimulationRequest struct {
	RunID string `json:"run_id"`
}

type StopSimulationResponse struct {
	Stopped bool `json:"stopped"`
}
