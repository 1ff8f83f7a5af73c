package gmaps

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"

	"github.com/citycompass/citycompass/location"
)

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient("")
	require.Error(t, err)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{30 * time.Second, "1 min"},
		{time.Minute, "1 min"},
		{5 * time.Minute, "5 mins"},
		{35 * time.Minute, "35 mins"},
		{time.Hour, "1 hour"},
		{65 * time.Minute, "1 hour 5 mins"},
		{2 * time.Hour, "2 hours"},
		{150 * time.Minute, "2 hours 30 mins"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.in), "duration %s", tt.in)
	}
}

func TestVehicleMode(t *testing.T) {
	assert.Equal(t, "bus", vehicleMode("BUS"))
	assert.Equal(t, "heavy_rail", vehicleMode("HEAVY_RAIL"))
	assert.Equal(t, "transit", vehicleMode(""))
}

func TestTransitLeg(t *testing.T) {
	step := &maps.Step{
		Duration:         35 * time.Minute,
		HTMLInstructions: "Bus towards Pune Station",
		TransitDetails: &maps.TransitDetails{
			DepartureStop: maps.TransitStop{Name: "Dighi"},
			ArrivalStop:   maps.TransitStop{Name: "Pune Station"},
			Line: maps.TransitLine{
				Name:      "Dighi - Pune Station",
				ShortName: "42A",
				Vehicle:   maps.TransitLineVehicle{Type: "BUS"},
			},
		},
	}

	leg := transitLeg(step)
	assert.Equal(t, "bus", leg.Mode)
	assert.Equal(t, "42A", leg.LineName)
	assert.Equal(t, "Dighi", leg.Departure)
	assert.Equal(t, "Pune Station", leg.Arrival)
	assert.Equal(t, "35 mins", leg.Duration)

	// The API can omit the vehicle and the short name entirely.
	step.TransitDetails.Line = maps.TransitLine{Name: "Purple Line"}
	leg = transitLeg(step)
	assert.Equal(t, "transit", leg.Mode)
	assert.Equal(t, "Purple Line", leg.LineName)
}

func TestDistanceKm(t *testing.T) {
	shivajinagar := location.GeoPoint{Lat: 18.5308, Lng: 73.8475}
	puneStation := location.GeoPoint{Lat: 18.5289, Lng: 73.8744}

	d := DistanceKm(shivajinagar, puneStation)
	assert.InDelta(t, 2.85, d, 0.2)

	assert.Zero(t, DistanceKm(shivajinagar, shivajinagar))
}
