// Package geocode is the boundary to the external reverse-geocoding service.
//
// The rest of the application only depends on the Provider interface: "given
// (longitude, latitude), return zero or more candidate regions". KakaoClient
// is the production implementation.
package geocode

import (
	"context"
	"errors"
)

// RegionKind tells administrative units apart from legal (cadastral) ones.
// The values are the provider's region_type codes.
type RegionKind string

const (
	KindAdministrative RegionKind = "H"
	KindLegal          RegionKind = "B"
)

// Region is one candidate returned for a coordinate.
type Region struct {
	Kind        RegionKind `json:"region_type"`
	AddressName string     `json:"address_name"`       // full name down to the finest unit
	Depth1Name  string     `json:"region_1depth_name"` // province / metropolitan city
	Depth2Name  string     `json:"region_2depth_name"` // city / county / district
	Depth3Name  string     `json:"region_3depth_name"` // dong / eup / myeon
	Depth4Name  string     `json:"region_4depth_name"` // ri, usually empty
	Code        string     `json:"code"`
}

// ErrMissingKey is returned when no API key is configured. No request is sent.
var ErrMissingKey = errors.New("geocode: API key is not configured")

// Provider returns the candidate regions containing a coordinate.
//
// An empty slice with a nil error means the provider answered but knows no
// region there. Any error means the call itself failed.
type Provider interface {
	Regions(ctx context.Context, lon, lat float64) ([]Region, error)
}

// FindKind returns the first candidate of the given kind.
func FindKind(regions []Region, kind RegionKind) (Region, bool) {
	for _, r := range regions {
		if r.Kind == kind {
			return r, true
		}
	}
	return Region{}, false
}
