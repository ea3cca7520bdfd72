package models

import "time"

// ProfileRecord is one applied profile together with the region it was sampled from.
type ProfileRecord struct {
	ID             string    `json:"id"`
	Bounds         Bounds    `json:"bounds"`
	Path           [2]LatLng `json:"path"`
	Samples        Profile   `json:"samples"`
	Generation     uint64    `json:"generation"`
	TransectMeters float64   `json:"transect_meters"`
	SampledAt      time.Time `json:"sampled_at"`
}
