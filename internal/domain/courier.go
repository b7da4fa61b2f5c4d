package domain

import (
	"math"
	"time"
)

// Courier represents a delivery courier linked to a user account.
type Courier struct {
	ID              int64
	UserID          int64
	Name            string
	Phone           string
	IsAvailable     bool
	CurrentLocation string
}

// GeoPoint is a validated pair of WGS84 coordinates.
type GeoPoint struct {
	Latitude  float64
	Longitude float64
}

// NewGeoPoint validates coordinate bounds and returns the point.
// Latitude must be within [-90,90] and longitude within [-180,180].
func NewGeoPoint(lat, lon float64) (GeoPoint, bool) {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return GeoPoint{}, false
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return GeoPoint{}, false
	}
	return GeoPoint{Latitude: lat, Longitude: lon}, true
}

// CourierLocation is one entry of the append-only courier position log.
type CourierLocation struct {
	ID        int64
	CourierID int64
	Latitude  float64
	Longitude float64
	Timestamp time.Time
}
