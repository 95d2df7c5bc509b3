package geo

import (
	"fmt"
	"math"

	olc "github.com/google/open-location-code/go"
)

// earthRadiusMiles is the mean Earth radius used for haversine distances.
const earthRadiusMiles = 3959.0

// Coordinate is a point in decimal degrees. It is captured once per session
// and treated as immutable by everything downstream.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Latitude, c.Longitude)
}

// PlusCode returns the open location code for the coordinate.
func (c Coordinate) PlusCode() string {
	return olc.Encode(c.Latitude, c.Longitude, 0)
}

// CosLat returns cos(latitude) for the given coordinate. Precompute it once
// per origin and pass it to FastDistance when measuring many targets.
func CosLat(origin Coordinate) float64 {
	return math.Cos(origin.Latitude * math.Pi / 180)
}

// Distance returns the great-circle distance between a and b in miles.
func Distance(a, b Coordinate) float64 {
	return FastDistance(a, CosLat(a), b)
}

// FastDistance is Distance with the origin's cosine term precomputed.
// For a fixed origin, FastDistance(o, CosLat(o), t) == Distance(o, t)
// within floating point tolerance.
func FastDistance(origin Coordinate, cosOriginLat float64, target Coordinate) float64 {
	dLat := (target.Latitude - origin.Latitude) * math.Pi / 180
	dLon := (target.Longitude - origin.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		cosOriginLat*math.Cos(target.Latitude*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMiles * c
}
