// Package geo computes venue geofences and models the device location
// capability with its failure variants.
package geo

import (
	"context"
	"errors"
	"math"
)

// EarthRadius in meters
const EarthRadius = 6371e3

var (
	ErrUnsupported         = errors.New("geolocation unsupported")
	ErrPermissionDenied    = errors.New("location permission denied")
	ErrPositionUnavailable = errors.New("location unavailable")
	ErrTimeout             = errors.New("location request timed out")
	ErrNoVenue             = errors.New("venue location not available")
)

// Message is the text shown when locating fails with err
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnsupported):
		return "Geolocation is not supported by your device"
	case errors.Is(err, ErrNoVenue):
		return "Venue location not available"
	case errors.Is(err, ErrPermissionDenied):
		return "Location access was denied. Please enable location access in your settings to check in."
	case errors.Is(err, ErrPositionUnavailable):
		return "Location information is unavailable. Please try again."
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "Location request timed out. Please try again."
	default:
		return "An unexpected error occurred while getting your location."
	}
}

type Position struct {
	Latitude  float64
	Longitude float64
	// Accuracy radius in meters, 0 when unknown
	Accuracy float64
}

// Venue is a geofence centered on a venue
type Venue struct {
	Latitude  float64
	Longitude float64
	Radius    float64
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// Distance is the haversine great-circle distance in meters
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	φ1, φ2 := radians(lat1), radians(lat2)
	Δφ := radians(lat2 - lat1)
	Δλ := radians(lon2 - lon1)

	a := math.Sin(Δφ/2)*math.Sin(Δφ/2) +
		math.Cos(φ1)*math.Cos(φ2)*math.Sin(Δλ/2)*math.Sin(Δλ/2)
	return EarthRadius * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Contains reports whether p is inside the fence; the edge counts as inside
func (v Venue) Contains(p Position) bool {
	return Distance(p.Latitude, p.Longitude, v.Latitude, v.Longitude) <= v.Radius
}

// Locator yields the device's current position
type Locator interface {
	Locate(ctx context.Context) (Position, error)
}

// LocatorFunc adapts a plain function to Locator
type LocatorFunc func(ctx context.Context) (Position, error)

func (f LocatorFunc) Locate(ctx context.Context) (Position, error) { return f(ctx) }

// Static always answers the same position or error
type Static struct {
	Position Position
	Err      error
}

func (s Static) Locate(ctx context.Context) (Position, error) {
	if err := ctx.Err(); err != nil {
		return Position{}, err
	}
	return s.Position, s.Err
}

// Unsupported is the locator of a device without geolocation
var Unsupported Locator = Static{Err: ErrUnsupported}
