package elevation

import (
	"context"
	"errors"
	"fmt"

	"profile-server/models"
)

// STATUS_OK is the only successful elevation response status.
const STATUS_OK = "OK"

// ErrInvalidRequest is returned before any I/O for paths or sample counts the service would reject.
var ErrInvalidRequest = errors.New("invalid elevation request")

// StatusError reports a response whose status is not OK.
type StatusError struct {
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("elevation service returned status %s", e.Status)
	}
	return fmt.Sprintf("elevation service returned status %s: %s", e.Status, e.Message)
}

// ElevationAPI samples elevations along a path.
type ElevationAPI interface {
	// SampleAlongPath returns samples evenly spaced points along path, first point first.
	SampleAlongPath(ctx context.Context, path []models.LatLng, samples int) (models.Profile, error)
}

func validateRequest(path []models.LatLng, samples int) error {
	if len(path) < 2 {
		return fmt.Errorf("%w: path needs at least 2 points, got %d", ErrInvalidRequest, len(path))
	}
	if samples < 2 {
		return fmt.Errorf("%w: samples must be at least 2, got %d", ErrInvalidRequest, samples)
	}
	return nil
}
