package location

import (
	"context"
	"fmt"
	"log/slog"
	"math"
)

// GeoPoint is a WGS84 coordinate pair.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the point carries usable numeric coordinates.
func (p GeoPoint) Valid() bool {
	return !math.IsNaN(p.Lat) && !math.IsNaN(p.Lng)
}

// NamedLocation is a coordinate with its resolved street address.
type NamedLocation struct {
	GeoPoint
	Address string `json:"address"`
}

// TransitLeg is one transit segment of a suggested route.
type TransitLeg struct {
	Mode         string `json:"mode"`
	LineName     string `json:"lineName"`
	Departure    string `json:"departure"`
	Arrival      string `json:"arrival"`
	Duration     string `json:"duration"`
	Instructions string `json:"instructions,omitempty"`
}

// RouteInfo is the directions collaborator's answer for one origin/destination
// pair. The server relays it verbatim; it never computes or validates routes.
type RouteInfo struct {
	Distance       string       `json:"distance"`
	Duration       string       `json:"duration"`
	StartAddress   string       `json:"startAddress"`
	EndAddress     string       `json:"endAddress"`
	TransitDetails []TransitLeg `json:"transitDetails"`
	Alternatives   int          `json:"alternatives"`
}

// NearbyPlace is a transit-related place near the user.
type NearbyPlace struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Rating   float64  `json:"rating"`
	Vicinity string   `json:"vicinity"`
	Location GeoPoint `json:"location"`
}

// Context bundles everything known about locations for a single turn. It is
// rebuilt per message and never persisted.
type Context struct {
	UserLocation       *GeoPoint          `json:"userLocation"`
	ExtractedLocations ExtractedLocations `json:"extractedLocations"`
	RouteInfo          *RouteInfo         `json:"routeInfo"`
	NearbyPlaces       []NearbyPlace      `json:"nearbyPlaces"`
	HasValidLocation   bool               `json:"hasValidLocation"`
}

// Directions is the narrow interface onto the routing collaborator.
type Directions interface {
	// TransitRoute requests a transit-mode route with alternatives enabled.
	// Origin may be a place name or a "lat,lng" pair.
	TransitRoute(ctx context.Context, origin, destination string) (*RouteInfo, error)
}

// Places is the narrow interface onto the nearby-search collaborator.
type Places interface {
	// NearbyTransit returns transit-related places within radiusMeters of at.
	NearbyTransit(ctx context.Context, at GeoPoint, radiusMeters uint) ([]NearbyPlace, error)
}

const (
	nearbySearchRadiusMeters = 1000
	maxNearbyPlaces          = 5
)

// ContextBuilder assembles a per-turn Context from the parser plus optional
// external collaborators. Either collaborator may be nil.
type ContextBuilder struct {
	directions Directions
	places     Places
}

// NewContextBuilder creates a builder over the given collaborators. Nil
// collaborators simply disable their part of the context.
func NewContextBuilder(directions Directions, places Places) *ContextBuilder {
	return &ContextBuilder{
		directions: directions,
		places:     places,
	}
}

// Build extracts locations from the message and enriches them with route and
// nearby-place data. Every external call is isolated: a routing failure does
// not prevent the nearby-places lookup and vice versa, and the returned
// Context is always valid. Build never returns an error.
func (b *ContextBuilder) Build(ctx context.Context, message string, userLocation *GeoPoint) *Context {
	locations := Parse(message)

	result := &Context{
		UserLocation:       userLocation,
		ExtractedLocations: locations,
		HasValidLocation:   userLocation != nil && userLocation.Valid(),
	}

	if b.directions != nil && locations.Origin != "" && locations.Destination != "" {
		origin := locations.Origin
		if origin == CurrentLocation && result.HasValidLocation {
			origin = fmt.Sprintf("%.6f,%.6f", userLocation.Lat, userLocation.Lng)
		}

		routeInfo, err := b.directions.TransitRoute(ctx, origin, locations.Destination)
		if err != nil {
			slog.Warn("directions lookup failed",
				"origin", locations.Origin,
				"destination", locations.Destination,
				"error", err)
		} else {
			result.RouteInfo = routeInfo
		}
	}

	if b.places != nil && result.HasValidLocation {
		nearby, err := b.places.NearbyTransit(ctx, *userLocation, nearbySearchRadiusMeters)
		if err != nil {
			slog.Warn("nearby transit lookup failed", "error", err)
		} else {
			if len(nearby) > maxNearbyPlaces {
				nearby = nearby[:maxNearbyPlaces]
			}
			result.NearbyPlaces = nearby
		}
	}

	return result
}
