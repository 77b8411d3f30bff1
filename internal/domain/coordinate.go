package domain

import "fmt"

// Immutable geographic point (latitude, longitude) in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate reports whether the coordinate lies in the valid degree ranges.
func (c Coordinate) Validate() error {
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("validate coordinate: latitude %v out of range [-90, 90]", c.Lat)
	}
	if c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("validate coordinate: longitude %v out of range [-180, 180]", c.Lng)
	}
	return nil
}
