package domain

// Kind of waypoint a stop represents within a route.
type StopKind string

const (
	StopKindDepot    StopKind = "depot"
	StopKindPickup   StopKind = "pickup"
	StopKindDelivery StopKind = "delivery"
	StopKindWaypoint StopKind = "waypoint"
)

// Per-stop progress state. Transitions are driven by the simulator:
// pending -> in_progress on arrival, in_progress -> completed when the
// vehicle departs. Delayed is set externally and never by the simulator.
type StopStatus string

const (
	StopPending    StopStatus = "pending"
	StopInProgress StopStatus = "in_progress"
	StopCompleted  StopStatus = "completed"
	StopDelayed    StopStatus = "delayed"
)

// Order payload attached to pickup and delivery stops.
// Pure display data; the simulation never reads it.
type OrderInfo struct {
	OrderID  string `json:"order_id"`
	Customer string `json:"customer"`
	Items    int    `json:"items"`
	Priority string `json:"priority,omitempty"`
}

// Represents a single named waypoint in a driver's route.
// ServiceTime is the dwell duration in minutes; the simulation reuses it
// as the travel-time window for the segment arriving at this stop.
// EstimatedArrival and ActualArrival are "HH:MM" display strings and do
// not participate in simulation math.
type Stop struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Kind             StopKind   `json:"kind"`
	Coordinates      Coordinate `json:"coordinates"`
	ServiceTime      int        `json:"service_time"`
	Status           StopStatus `json:"status"`
	Order            *OrderInfo `json:"order_info,omitempty"`
	EstimatedArrival string     `json:"estimated_arrival,omitempty"`
	ActualArrival    string     `json:"actual_arrival,omitempty"`
}
