package elevation

import (
	"context"
	"math"
	"sync"

	"profile-server/geo"
	"profile-server/models"
)

// Call records one SampleAlongPath invocation.
type Call struct {
	Path    []models.LatLng
	Samples int
}

// ElevationApiClientMock samples a synthetic terrain without any network access.
type ElevationApiClientMock struct {
	mu     sync.Mutex
	calls  []Call
	status string
}

// NewElevationApiClientMock creates a new instance of ElevationApiClientMock
func NewElevationApiClientMock() *ElevationApiClientMock {
	return &ElevationApiClientMock{status: STATUS_OK}
}

// SetStatus makes subsequent calls answer with status; anything but OK is a failure.
func (c *ElevationApiClientMock) SetStatus(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = status
}

// Calls returns the recorded invocations.
func (c *ElevationApiClientMock) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Call, len(c.calls))
	copy(out, c.calls)
	return out
}

// SampleAlongPath interpolates between the first and last point of path.
func (c *ElevationApiClientMock) SampleAlongPath(ctx context.Context, path []models.LatLng, samples int) (models.Profile, error) {
	c.mu.Lock()
	c.calls = append(c.calls, Call{Path: append([]models.LatLng(nil), path...), Samples: samples})
	status := c.status
	c.mu.Unlock()

	if err := validateRequest(path, samples); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if status != STATUS_OK {
		return nil, &StatusError{Status: status}
	}

	points := geo.Interpolate(path[0], path[len(path)-1], samples)
	profile := make(models.Profile, len(points))
	for i, p := range points {
		profile[i] = models.ElevationSample{
			Location:   p,
			Elevation:  SyntheticElevation(p),
			Resolution: 152.7,
		}
	}
	return profile, nil
}

// SyntheticElevation is the terrain served by the mock: rolling hills around 300m.
func SyntheticElevation(p models.LatLng) float64 {
	return 300 + 120*math.Sin(p.Lat*50) + 80*math.Cos(p.Lng*40)
}
