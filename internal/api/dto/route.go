package dto

type OrderInfoResponse struct {
	OrderID  string `json:"order_id"`
	Customer string `json:"customer"`
	Items    int    `json:"items"`
	Priority string `json:"priority,omitempty"`
}

type StopResponse struct {
	StopID           string             `json:"stop_id"`
	Name             string             `json:"name"`
	Kind             string             `json:"kind"`
	Lat              float64            `json:"lat"`
	Lng              float64            `json:"lng"`
	ServiceTime      int                `json:"service_time"`
	Status           string             `json:"status"`
	Order            *OrderInfoResponse `json:"order_info,omitempty"`
	EstimatedArrival string             `json:"estimated_arrival,omitempty"`
	ActualArrival    string             `json:"actual_arrival,omitempty"`
}

type RouteResponse struct {
	RouteID string         `json:"route_id"`
	Name    string         `json:"name"`
	Stops   []StopResponse `json:"stops"`
}

type ListRoutesResponse struct {
	Routes []RouteResponse `json:"routes"`
}
