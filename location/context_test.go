package location

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDirections struct {
	route      *RouteInfo
	err        error
	gotOrigin  string
	gotDest    string
	callCount  int
}

func (f *fakeDirections) TransitRoute(_ context.Context, origin, destination string) (*RouteInfo, error) {
	f.callCount++
	f.gotOrigin = origin
	f.gotDest = destination
	return f.route, f.err
}

type fakePlaces struct {
	places    []NearbyPlace
	err       error
	callCount int
}

func (f *fakePlaces) NearbyTransit(_ context.Context, _ GeoPoint, _ uint) ([]NearbyPlace, error) {
	f.callCount++
	return f.places, f.err
}

func TestBuildWithRouteAndPlaces(t *testing.T) {
	directions := &fakeDirections{route: &RouteInfo{Distance: "9.2 km", Duration: "38 mins"}}
	places := &fakePlaces{places: []NearbyPlace{{Name: "Pune Station", Type: "transit_station"}}}
	builder := NewContextBuilder(directions, places)

	userLocation := &GeoPoint{Lat: 18.5204, Lng: 73.8567}
	got := builder.Build(context.Background(), "from Dighi to Airport", userLocation)

	require.NotNil(t, got)
	assert.True(t, got.HasValidLocation)
	assert.Equal(t, "Dighi", got.ExtractedLocations.Origin)
	assert.Equal(t, "Airport", got.ExtractedLocations.Destination)
	require.NotNil(t, got.RouteInfo)
	assert.Equal(t, "9.2 km", got.RouteInfo.Distance)
	assert.Len(t, got.NearbyPlaces, 1)
	assert.Equal(t, "Dighi", directions.gotOrigin)
}

func TestBuildSubstitutesCurrentLocation(t *testing.T) {
	directions := &fakeDirections{route: &RouteInfo{}}
	builder := NewContextBuilder(directions, nil)

	userLocation := &GeoPoint{Lat: 18.5204, Lng: 73.8567}
	builder.Build(context.Background(), "I want to go to Hadapsar", userLocation)

	assert.Equal(t, "18.520400,73.856700", directions.gotOrigin,
		"current-location origin must be replaced with GPS coordinates")
	assert.Equal(t, "Hadapsar", directions.gotDest)
}

func TestBuildFailuresAreIsolated(t *testing.T) {
	directions := &fakeDirections{err: errors.New("quota exceeded")}
	places := &fakePlaces{places: []NearbyPlace{{Name: "Swargate"}}}
	builder := NewContextBuilder(directions, places)

	userLocation := &GeoPoint{Lat: 18.5, Lng: 73.8}
	got := builder.Build(context.Background(), "from Camp to Deccan", userLocation)

	require.NotNil(t, got)
	assert.Nil(t, got.RouteInfo)
	assert.Len(t, got.NearbyPlaces, 1, "routing failure must not prevent the nearby lookup")

	directions = &fakeDirections{route: &RouteInfo{}}
	places = &fakePlaces{err: errors.New("network down")}
	builder = NewContextBuilder(directions, places)

	got = builder.Build(context.Background(), "from Camp to Deccan", userLocation)
	require.NotNil(t, got)
	assert.NotNil(t, got.RouteInfo)
	assert.Nil(t, got.NearbyPlaces)
}

func TestBuildWithoutCollaborators(t *testing.T) {
	builder := NewContextBuilder(nil, nil)

	got := builder.Build(context.Background(), "from Dighi to Airport", nil)

	require.NotNil(t, got)
	assert.False(t, got.HasValidLocation)
	assert.Nil(t, got.RouteInfo)
	assert.Nil(t, got.NearbyPlaces)
	assert.Equal(t, "Dighi", got.ExtractedLocations.Origin)
}

func TestBuildSkipsRouteWithoutBothEndpoints(t *testing.T) {
	directions := &fakeDirections{route: &RouteInfo{}}
	builder := NewContextBuilder(directions, nil)

	builder.Build(context.Background(), "hello", nil)
	assert.Zero(t, directions.callCount)
}

func TestBuildCapsNearbyPlaces(t *testing.T) {
	many := make([]NearbyPlace, 9)
	for i := range many {
		many[i] = NearbyPlace{Name: "stop"}
	}
	places := &fakePlaces{places: many}
	builder := NewContextBuilder(nil, places)

	got := builder.Build(context.Background(), "hello", &GeoPoint{Lat: 18.5, Lng: 73.8})
	assert.Len(t, got.NearbyPlaces, 5)
}
