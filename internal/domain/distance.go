package domain

import "math"

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance between two points in
// kilometers, using the haversine formula on a spherical Earth.
func DistanceKm(a, b GeoPoint) float64 {
	latA := a.Lat * math.Pi / 180
	latB := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// FindClosest scans events once and returns the one nearest to origin along
// with its distance in kilometers. Ties keep the earlier event (strict <
// comparison). An empty set returns found=false and +Inf.
func FindClosest(origin GeoPoint, events []SeismicEvent) (nearest SeismicEvent, distanceKm float64, found bool) {
	distanceKm = math.Inf(1)
	for _, ev := range events {
		if d := DistanceKm(origin, ev.Location); d < distanceKm {
			distanceKm = d
			nearest = ev
			found = true
		}
	}
	return nearest, distanceKm, found
}
