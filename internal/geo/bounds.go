// Package geo computes map-fit geometry over company coordinates.
package geo

import (
	"github.com/twpayne/go-geom"

	"github.com/proven-connections/connections-cli/internal/search"
)

// BoundingBox frames a set of company markers for map fitting.
// Coordinates are WGS84 degrees.
type BoundingBox struct {
	MinLat float64 `json:"min_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLat float64 `json:"max_lat"`
	MaxLng float64 `json:"max_lng"`
}

// Bounds returns the bounding box over every company carrying both
// coordinates, or nil when none does. Companies with a partial or
// absent location are ignored.
func Bounds(companies []search.Company) *BoundingBox {
	bounds := geom.NewBounds(geom.XY)
	located := false

	for _, c := range companies {
		if c.Latitude == nil || c.Longitude == nil {
			continue
		}
		bounds.Extend(geom.NewPointFlat(geom.XY, []float64{*c.Longitude, *c.Latitude}))
		located = true
	}

	if !located {
		return nil
	}
	return &BoundingBox{
		MinLat: bounds.Min(1),
		MinLng: bounds.Min(0),
		MaxLat: bounds.Max(1),
		MaxLng: bounds.Max(0),
	}
}
