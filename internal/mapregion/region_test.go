package mapregion

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/harrylevesque/clientdir/internal/models"
)

func at(lat, lng float64) models.Client {
	return models.Client{Address: models.Address{Geo: models.Geo{Lat: lat, Lng: lng}}}
}

func TestFrame(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		clients []models.Client
		want    models.Region
	}{
		{
			name: "empty uses default",
			want: Default,
		},
		{
			name:    "two clients",
			clients: []models.Client{at(-23.5, -46.6), at(-15.5, -47.9)},
			want:    models.Region{Latitude: -19.5, Longitude: -47.25, LatitudeDelta: 12, LongitudeDelta: 1.95},
		},
		{
			name:    "single point",
			clients: []models.Client{at(-23.5, -46.6)},
			want:    models.Region{Latitude: -23.5, Longitude: -46.6, LatitudeDelta: 10, LongitudeDelta: 10},
		},
		{
			name:    "tiny span floored",
			clients: []models.Client{at(-23.5, -46.6), at(-23.6, -46.7)},
			want:    models.Region{Latitude: -23.55, Longitude: -46.65, LatitudeDelta: 0.5, LongitudeDelta: 0.5},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Frame(tt.clients)
			assert.InDelta(t, tt.want.Latitude, got.Latitude, 1e-9)
			assert.InDelta(t, tt.want.Longitude, got.Longitude, 1e-9)
			assert.InDelta(t, tt.want.LatitudeDelta, got.LatitudeDelta, 1e-9)
			assert.InDelta(t, tt.want.LongitudeDelta, got.LongitudeDelta, 1e-9)
		})
	}
}
