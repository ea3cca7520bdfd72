package models

import "fmt"

// LatLng is a corner point in floating-point degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Bounds is the rectangle drawn on the map.
type Bounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// Validate checks the bounds form a non-empty rectangle within WGS84 ranges.
func (b Bounds) Validate() error {
	if b.North > 90 || b.South < -90 {
		return fmt.Errorf("latitude out of range: north=%v south=%v", b.North, b.South)
	}
	if b.East > 180 || b.West < -180 {
		return fmt.Errorf("longitude out of range: east=%v west=%v", b.East, b.West)
	}
	if b.North <= b.South {
		return fmt.Errorf("north (%v) must be greater than south (%v)", b.North, b.South)
	}
	if b.East <= b.West {
		return fmt.Errorf("east (%v) must be greater than west (%v)", b.East, b.West)
	}
	return nil
}

func (b Bounds) String() string {
	return fmt.Sprintf("N=%.6f S=%.6f E=%.6f W=%.6f", b.North, b.South, b.East, b.West)
}
