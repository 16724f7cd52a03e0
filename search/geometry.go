package search

import (
	"slices"

	"github.com/hupe1980/roadnet/geo"
)

// interpolate returns the point at metres along poly.
func interpolate(poly []geo.Coordinate, metres float32) geo.Coordinate {
	var acc float32
	for i := 1; i < len(poly); i++ {
		seg := geo.Distance(poly[i-1], poly[i])
		if seg > 0 && acc+seg >= metres {
			t := (metres - acc) / seg
			a, b := poly[i-1], poly[i]
			switch {
			case t <= 0:
				return a
			case t >= 1:
				return b
			}
			return geo.Coordinate{
				Latitude:  a.Latitude + t*(b.Latitude-a.Latitude),
				Longitude: a.Longitude + t*(b.Longitude-a.Longitude),
			}
		}
		acc += seg
	}
	return poly[len(poly)-1]
}

// sub cuts poly between the length fractions a <= b.
func sub(poly []geo.Coordinate, a, b float32) []geo.Coordinate {
	total := geo.PolylineLength(poly)
	if total == 0 {
		return []geo.Coordinate{poly[0]}
	}
	from, to := a*total, b*total

	out := []geo.Coordinate{interpolate(poly, from)}
	var acc float32
	for i := 1; i < len(poly)-1; i++ {
		acc += geo.Distance(poly[i-1], poly[i])
		if acc > from && acc < to {
			out = append(out, poly[i])
		}
	}
	return append(out, interpolate(poly, to))
}

// subDirected cuts poly from fraction a to fraction b, reversed when b < a.
func subDirected(poly []geo.Coordinate, a, b float32) []geo.Coordinate {
	if a <= b {
		return sub(poly, a, b)
	}
	out := sub(poly, b, a)
	slices.Reverse(out)
	return out
}

// appendShape appends points to shape, skipping a repeat of the last point.
func appendShape(shape []geo.Coordinate, points ...geo.Coordinate) []geo.Coordinate {
	for _, p := range points {
		if n := len(shape); n > 0 && shape[n-1] == p {
			continue
		}
		shape = append(shape, p)
	}
	return shape
}
