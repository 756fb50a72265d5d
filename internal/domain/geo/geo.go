// Package geo provides great-circle distance computation and the
// conversion of distance into a bounded relevance score.
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusKm is the mean radius of Earth used for Haversine distance.
const EarthRadiusKm = 6371.0

// NeutralScore is the distance score applied to every document when no
// user location is supplied. It means "unknown, treat as average" and is
// deliberately not 0, so that absence of a location does not penalize
// every result the way a maximally distant one would be.
const NeutralScore = 0.5

// HaversineKm returns the great-circle distance in kilometers between two
// points given as latitude/longitude in degrees.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(a))
}

// Score converts a distance into a relevance score in [0,1] with linear
// decay: 1 - d/max, clamped. Exactly 0 at and beyond maxKm.
func Score(distanceKm, maxKm float64) float64 {
	if distanceKm >= maxKm {
		return 0
	}
	s := 1 - distanceKm/maxKm
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// ScoreExponential converts a distance into a score in (0,1] with
// exponential decay, penalizing far results harder than the linear form.
func ScoreExponential(distanceKm, decayRate float64) float64 {
	return math.Exp(-decayRate * distanceKm)
}

// BoundingBox is a latitude/longitude rectangle usable as a cheap
// prefilter before exact distance computation.
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// kmPerDegreeLat is the approximate north-south span of one degree of
// latitude.
const kmPerDegreeLat = 111.0

// NewBoundingBox returns the box of the given radius around a center
// point. The longitude span widens with latitude.
func NewBoundingBox(lat, lon, radiusKm float64) BoundingBox {
	latDiff := radiusKm / kmPerDegreeLat
	lonDiff := radiusKm / (kmPerDegreeLat * math.Cos(lat*math.Pi/180))
	return BoundingBox{
		MinLat: lat - latDiff,
		MaxLat: lat + latDiff,
		MinLon: lon - lonDiff,
		MaxLon: lon + lonDiff,
	}
}

// Contains reports whether the point lies within the box.
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// ValidCoordinates checks that latitude is in [-90,90] and longitude in
// [-180,180].
func ValidCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// FormatDistance renders a distance for display: meters below 1 km,
// kilometers with two decimals otherwise.
func FormatDistance(distanceKm float64) string {
	if distanceKm < 1 {
		return fmt.Sprintf("%.0f m", distanceKm*1000)
	}
	return fmt.Sprintf("%.2f km", distanceKm)
}
