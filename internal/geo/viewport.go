// Package geo holds the pure geometric predicates used by the neighborhood
// queries: viewport containment and great-circle distance.
//
// Nothing here performs I/O or keeps state.
package geo

import "math"

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Viewport is a map rectangle described by its center and its full height and
// width in degrees. The rectangle spans DeltaLat/2 above and below the center
// and DeltaLon/2 to each side.
//
// A NaN field means the caller never supplied it; such a viewport contains
// nothing.
type Viewport struct {
	CenterLat float64 `json:"centerLat"`
	CenterLon float64 `json:"centerLon"`
	DeltaLat  float64 `json:"deltaLat"`
	DeltaLon  float64 `json:"deltaLon"`
}

// Complete reports whether all four fields were supplied.
func (v Viewport) Complete() bool {
	return !math.IsNaN(v.CenterLat) && !math.IsNaN(v.CenterLon) &&
		!math.IsNaN(v.DeltaLat) && !math.IsNaN(v.DeltaLon)
}

// Bounds returns the latitude range and the longitude range of the viewport.
// Longitudes are folded back into [-180, 180], so minLon > maxLon means the
// rectangle crosses the antimeridian.
func (v Viewport) Bounds() (minLat, maxLat, minLon, maxLon float64) {
	minLat = v.CenterLat - v.DeltaLat/2
	maxLat = v.CenterLat + v.DeltaLat/2
	minLon = wrapLon(v.CenterLon - v.DeltaLon/2)
	maxLon = wrapLon(v.CenterLon + v.DeltaLon/2)
	return minLat, maxLat, minLon, maxLon
}

// Contains reports whether p lies inside the viewport. Edges are inclusive.
//
// Example: center 179, deltaLon 4 spans 177..181, i.e. 177..180 and -180..-179,
// so lon -180 is inside and lon 170 is not.
func (v Viewport) Contains(p Point) bool {
	if !v.Complete() {
		return false
	}

	minLat, maxLat, minLon, maxLon := v.Bounds()
	if p.Lat < minLat || p.Lat > maxLat {
		return false
	}

	// A rectangle at least one full turn wide covers every longitude.
	if v.DeltaLon >= 360 {
		return true
	}
	if minLon <= maxLon {
		return p.Lon >= minLon && p.Lon <= maxLon
	}
	return p.Lon >= minLon || p.Lon <= maxLon
}

// InViewport is the free-function form of Viewport.Contains.
func InViewport(p Point, v Viewport) bool {
	return v.Contains(p)
}

// wrapLon folds a longitude that overshot ±180 by less than a full turn back
// into range. 181 becomes -179, -181 becomes 179, 180 and -180 are kept.
func wrapLon(lon float64) float64 {
	switch {
	case lon > 180:
		return lon - 360
	case lon < -180:
		return lon + 360
	}
	return lon
}
