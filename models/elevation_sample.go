package models

// ElevationSample is one point returned by the elevation service.
type ElevationSample struct {
	Location   LatLng  `json:"location"`
	Elevation  float64 `json:"elevation"`
	Resolution float64 `json:"resolution"`
}

// Profile is an ordered, index-addressed sequence of samples along a transect.
type Profile []ElevationSample

// Elevations returns the elevation of every sample in order.
func (p Profile) Elevations() []float64 {
	out := make([]float64, len(p))
	for i, s := range p {
		out[i] = s.Elevation
	}
	return out
}

// MaxElevation returns the highest elevation, or false for an empty profile.
func (p Profile) MaxElevation() (float64, bool) {
	if len(p) == 0 {
		return 0, false
	}
	max := p[0].Elevation
	for _, s := range p[1:] {
		if s.Elevation > max {
			max = s.Elevation
		}
	}
	return max, true
}

// Clone returns a copy that shares no backing array with p.
func (p Profile) Clone() Profile {
	if p == nil {
		return nil
	}
	out := make(Profile, len(p))
	copy(out, p)
	return out
}
