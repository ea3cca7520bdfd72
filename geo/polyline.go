package geo

import (
	"profile-server/models"

	"github.com/twpayne/go-polyline"
)

// EncodePath encodes points with Google's Polyline Algorithm Format (5 decimal places).
func EncodePath(points []models.LatLng) string {
	if len(points) == 0 {
		return ""
	}
	coords := make([][]float64, len(points))
	for i, p := range points {
		coords[i] = []float64{p.Lat, p.Lng}
	}
	return string(polyline.EncodeCoords(coords))
}
