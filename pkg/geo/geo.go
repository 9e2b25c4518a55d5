// Package geo maps geographic coordinates onto the globe's sphere and onto
// the flat overview map.
package geo

import (
	"math"
	"strconv"

	"github.com/golang/geo/r3"
)

// GeoPoint is a geographic location. Altitude is a fraction of the sphere
// radius above the surface; zero sits on the surface.
type GeoPoint struct {
	Lat      float64 `json:"lat" mapstructure:"lat"`
	Lng      float64 `json:"lng" mapstructure:"lng"`
	Altitude float64 `json:"alt,omitempty" mapstructure:"alt"`
}

// ToSurfacePosition converts a latitude/longitude pair in degrees into a
// point on a sphere of the given radius. +Y is the north pole, the prime
// meridian crosses the equator on +X and east longitudes run toward -Z.
func ToSurfacePosition(lat, lng, radius float64) r3.Vector {
	phi := (90 - lat) * math.Pi / 180
	theta := (lng + 180) * math.Pi / 180
	sinPhi := math.Sin(phi)
	return r3.Vector{
		X: -radius * sinPhi * math.Cos(theta),
		Y: radius * math.Cos(phi),
		Z: radius * sinPhi * math.Sin(theta),
	}
}

// Position returns the point on (or above) a sphere of the given radius.
func (p GeoPoint) Position(radius float64) r3.Vector {
	return ToSurfacePosition(p.Lat, p.Lng, radius*(1+p.Altitude))
}

// FromPosition is the inverse of ToSurfacePosition for any radius. The
// returned longitude lies in [-180, 180).
func FromPosition(v r3.Vector) (lat, lng float64) {
	r := v.Norm()
	if r == 0 {
		return 0, 0
	}
	lat = 90 - math.Acos(math.Max(-1, math.Min(1, v.Y/r)))*180/math.Pi
	lng = math.Atan2(v.Z, -v.X)*180/math.Pi - 180
	for lng < -180 {
		lng += 360
	}
	for lng >= 180 {
		lng -= 360
	}
	return lat, lng
}

// PointKey is the exact composite key used to detect repeated coordinates.
func PointKey(lat, lng float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lng, 'f', -1, 64)
}

// Mollweide projects coordinates onto an equal-area flat map centred in a
// width x height canvas. It backs the 2D overview map.
type Mollweide struct {
	width, height int
	scale         float64
}

// NewMollweide returns a projection for a width x height canvas; scale is
// the map radius in pixels.
func NewMollweide(width, height int, scale float64) *Mollweide {
	return &Mollweide{width: width, height: height, scale: scale}
}

// Project returns canvas pixels for lat/lng degrees. Latitudes are clamped
// to ±89.5 to keep the solver stable near the poles.
func (m *Mollweide) Project(lat, lng float64) (x, y float64) {
	if lat > 89.5 {
		lat = 89.5
	}
	if lat < -89.5 {
		lat = -89.5
	}

	latRad, lngRad := lat*math.Pi/180, lng*math.Pi/180
	theta := latRad
	for i := 0; i < 10; i++ {
		denom := 2 + 2*math.Cos(2*theta)
		if math.Abs(denom) < 1e-9 {
			break
		}
		delta := (2*theta + math.Sin(2*theta) - math.Pi*math.Sin(latRad)) / denom
		theta -= delta
		if math.Abs(delta) < 1e-7 {
			break
		}
	}
	r := m.scale
	x = (float64(m.width) / 2) + r*(2*math.Sqrt(2)/math.Pi)*lngRad*math.Cos(theta)
	y = (float64(m.height) / 2) - r*math.Sqrt(2)*math.Sin(theta)
	return x, y
}
