// Package mapregion computes the map viewport that frames a set of clients.
package mapregion

import (
	"math"

	"github.com/harrylevesque/clientdir/internal/models"
)

const (
	padding  = 1.5
	minDelta = 0.5
	// pointDelta is used when every client shares one coordinate.
	pointDelta = 10.0
)

// Default is the whole-country view shown before any client is known.
var Default = models.Region{
	Latitude:       -15.7801,
	Longitude:      -47.9292,
	LatitudeDelta:  25,
	LongitudeDelta: 25,
}

// Frame centers on the midpoint of the clients' bounding box.
func Frame(clients []models.Client) models.Region {
	if len(clients) == 0 {
		return Default
	}

	minLat, maxLat := 90.0, -90.0
	minLng, maxLng := 180.0, -180.0
	for _, c := range clients {
		g := c.Address.Geo
		minLat = math.Min(minLat, g.Lat)
		maxLat = math.Max(maxLat, g.Lat)
		minLng = math.Min(minLng, g.Lng)
		maxLng = math.Max(maxLng, g.Lng)
	}

	return models.Region{
		Latitude:       (minLat + maxLat) / 2,
		Longitude:      (minLng + maxLng) / 2,
		LatitudeDelta:  delta(maxLat - minLat),
		LongitudeDelta: delta(maxLng - minLng),
	}
}

func delta(span float64) float64 {
	d := span * padding
	if d == 0 {
		d = pointDelta
	}
	return math.Max(d, minDelta)
}
