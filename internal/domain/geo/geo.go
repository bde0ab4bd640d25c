// Package geo provides great-circle distance math for scoring.
package geo

import "math"

// earthRadiusKM is the mean Earth radius used by the haversine formula.
const earthRadiusKM = 6371.0

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Distance returns the haversine distance between a and b in kilometers.
func Distance(a, b Point) float64 {
	lat1 := radians(a.Lat)
	lon1 := radians(a.Lon)
	lat2 := radians(b.Lat)
	lon2 := radians(b.Lon)

	dLat := lat2 - lat1
	dLon := lon2 - lon1

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKM * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
