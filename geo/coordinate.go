package geo

import "math"

// EarthRadiusMeters is the mean earth radius used by Distance.
const EarthRadiusMeters = 6371000.0

// Coordinate is a WGS84 latitude/longitude pair stored as float32,
// matching the on-disk precision of the graph store.
type Coordinate struct {
	Latitude  float32 `json:"latitude"`
	Longitude float32 `json:"longitude"`
}

// Distance returns the haversine distance in meters between a and b.
func Distance(a, b Coordinate) float32 {
	lat1 := toRadians(float64(a.Latitude))
	lat2 := toRadians(float64(b.Latitude))
	dLat := lat2 - lat1
	dLon := toRadians(float64(b.Longitude) - float64(a.Longitude))

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return float32(2 * EarthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h))))
}

// PolylineLength returns the summed distance along points.
func PolylineLength(points []Coordinate) float32 {
	var total float32
	for i := 1; i < len(points); i++ {
		total += Distance(points[i-1], points[i])
	}
	return total
}

// ProjectOnSegment returns the point on segment [a,b] closest to p and the
// distance from p to it. The projection is done on an equirectangular plane
// centered on p, which is accurate for the short segments of a road network.
func ProjectOnSegment(p, a, b Coordinate) (Coordinate, float32) {
	cosLat := math.Cos(toRadians(float64(p.Latitude)))
	ax := (float64(a.Longitude) - float64(p.Longitude)) * cosLat
	ay := float64(a.Latitude) - float64(p.Latitude)
	bx := (float64(b.Longitude) - float64(p.Longitude)) * cosLat
	by := float64(b.Latitude) - float64(p.Latitude)

	dx, dy := bx-ax, by-ay
	t := 0.0
	if l2 := dx*dx + dy*dy; l2 > 0 {
		t = -(ax*dx + ay*dy) / l2
		t = math.Max(0, math.Min(1, t))
	}

	proj := Coordinate{
		Latitude:  float32(float64(a.Latitude) + t*(float64(b.Latitude)-float64(a.Latitude))),
		Longitude: float32(float64(a.Longitude) + t*(float64(b.Longitude)-float64(a.Longitude))),
	}
	return proj, Distance(p, proj)
}

// Reverse returns a reversed copy of points.
func Reverse(points []Coordinate) []Coordinate {
	if points == nil {
		return nil
	}
	out := make([]Coordinate, len(points))
	for i, c := range points {
		out[len(points)-1-i] = c
	}
	return out
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
