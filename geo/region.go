// Package geo turns editor bounds into the transect that gets sampled.
package geo

import (
	"math"
	"strconv"

	"profile-server/models"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

// NorthEast returns the north-east corner of b.
func NorthEast(b models.Bounds) models.LatLng {
	return models.LatLng{Lat: b.North, Lng: b.East}
}

// SouthWest returns the south-west corner of b.
func SouthWest(b models.Bounds) models.LatLng {
	return models.LatLng{Lat: b.South, Lng: b.West}
}

// ExtractDiagonal returns the endpoints of the sampled transect. The pairing is
// NE-lat/SW-lng to SW-lat/NE-lng, i.e. the north-west to south-east diagonal,
// not the NE/SW one.
func ExtractDiagonal(b models.Bounds) (models.LatLng, models.LatLng) {
	ne, sw := NorthEast(b), SouthWest(b)
	a := models.LatLng{Lat: ne.Lat, Lng: sw.Lng}
	c := models.LatLng{Lat: sw.Lat, Lng: ne.Lng}
	return a, c
}

// bound converts b into an orb.Bound.
func bound(b models.Bounds) orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.West, b.South},
		Max: orb.Point{b.East, b.North},
	}
}

// Contains reports whether p lies inside b, edges included.
func Contains(b models.Bounds, p models.LatLng) bool {
	return bound(b).Contains(point(p))
}

// CoveringCircle returns the center of b and the radius in km of the smallest
// circle around that center that holds every corner of b.
func CoveringCircle(b models.Bounds) (models.LatLng, float64) {
	bb := bound(b)
	center := bb.Center()
	radius := 0.0
	for _, corner := range []orb.Point{bb.Min, bb.Max, bb.LeftTop(), bb.RightBottom()} {
		radius = math.Max(radius, orbgeo.Distance(center, corner))
	}
	return models.LatLng{Lat: center.Lat(), Lng: center.Lon()}, radius / 1000
}

// TransectLength is the great-circle distance between a and b in meters.
func TransectLength(a, b models.LatLng) float64 {
	return orbgeo.Distance(point(a), point(b))
}

// Midpoint returns the point halfway along the straight line from a to b in degrees.
func Midpoint(a, b models.LatLng) models.LatLng {
	return models.LatLng{Lat: (a.Lat + b.Lat) / 2, Lng: (a.Lng + b.Lng) / 2}
}

// Interpolate returns n evenly spaced points from a to b, both ends included.
func Interpolate(a, b models.LatLng, n int) []models.LatLng {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []models.LatLng{a}
	}
	out := make([]models.LatLng, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		out[i] = models.LatLng{
			Lat: a.Lat + (b.Lat-a.Lat)*t,
			Lng: a.Lng + (b.Lng-a.Lng)*t,
		}
	}
	return out
}

// PathKey identifies a sampling request by its path rounded to 1e-6 degrees.
func PathKey(path []models.LatLng, samples int) string {
	buf := make([]byte, 0, 24*len(path)+8)
	for _, p := range path {
		buf = appendRounded(buf, p.Lat)
		buf = append(buf, ',')
		buf = appendRounded(buf, p.Lng)
		buf = append(buf, '|')
	}
	buf = append(buf, 'n')
	buf = strconv.AppendInt(buf, int64(samples), 10)
	return string(buf)
}

func point(ll models.LatLng) orb.Point {
	return orb.Point{ll.Lng, ll.Lat}
}

func appendRounded(buf []byte, v float64) []byte {
	return strconv.AppendInt(buf, int64(math.Round(v*1e6)), 10)
}
