// Package gmaps wraps the Google Maps web services behind the narrow
// interfaces the rest of the server consumes. Responses are cached so that
// repeated lookups for the same route or address stay off the API quota.
package gmaps

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"googlemaps.github.io/maps"

	"github.com/citycompass/citycompass/location"
)

// Client talks to the Directions, Places and Geocoding APIs. It implements
// location.Directions and location.Places.
type Client struct {
	maps       *maps.Client
	routeCache *responseCache[*location.RouteInfo]
	geoCache   *responseCache[location.NamedLocation]
}

// NewClient creates a Maps client with the given API key.
func NewClient(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("google maps api key is required")
	}
	inner, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create google maps client")
	}
	return &Client{
		maps:       inner,
		routeCache: newResponseCache[*location.RouteInfo](256, 10*time.Minute),
		geoCache:   newResponseCache[location.NamedLocation](512, time.Hour),
	}, nil
}

// TransitRoute requests a transit-mode route between origin and destination,
// with alternatives, and flattens the best route into a RouteInfo.
func (c *Client) TransitRoute(ctx context.Context, origin, destination string) (*location.RouteInfo, error) {
	cacheKey := "route|" + strings.ToLower(origin) + "|" + strings.ToLower(destination)
	if cached, ok := c.routeCache.get(cacheKey); ok {
		return cached, nil
	}

	routes, _, err := c.maps.Directions(ctx, &maps.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Mode:        maps.TravelModeTransit,
		TransitMode: []maps.TransitMode{
			maps.TransitModeBus,
			maps.TransitModeSubway,
			maps.TransitModeTrain,
		},
		Alternatives: true,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "directions request failed for %q to %q", origin, destination)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return nil, errors.Errorf("no transit route found from %q to %q", origin, destination)
	}

	leg := routes[0].Legs[0]
	info := &location.RouteInfo{
		Distance:     leg.Distance.HumanReadable,
		Duration:     formatDuration(leg.Duration),
		StartAddress: leg.StartAddress,
		EndAddress:   leg.EndAddress,
		Alternatives: len(routes),
	}
	for _, step := range leg.Steps {
		if step.TravelMode != "TRANSIT" || step.TransitDetails == nil {
			continue
		}
		info.TransitDetails = append(info.TransitDetails, transitLeg(step))
	}

	c.routeCache.set(cacheKey, info)
	return info, nil
}

// transitLeg flattens one transit step into a TransitLeg. The line's short
// name wins over the long name, and an unreported vehicle type falls back
// to the generic "transit" mode.
func transitLeg(step *maps.Step) location.TransitLeg {
	details := step.TransitDetails
	lineName := details.Line.ShortName
	if lineName == "" {
		lineName = details.Line.Name
	}
	return location.TransitLeg{
		Mode:         vehicleMode(string(details.Line.Vehicle.Type)),
		LineName:     lineName,
		Departure:    details.DepartureStop.Name,
		Arrival:      details.ArrivalStop.Name,
		Duration:     formatDuration(step.Duration),
		Instructions: step.HTMLInstructions,
	}
}

// NearbyTransit returns transit stations within radiusMeters of at, closest
// first.
func (c *Client) NearbyTransit(ctx context.Context, at location.GeoPoint, radiusMeters uint) ([]location.NearbyPlace, error) {
	resp, err := c.maps.NearbySearch(ctx, &maps.NearbySearchRequest{
		Location: &maps.LatLng{Lat: at.Lat, Lng: at.Lng},
		Radius:   radiusMeters,
		Type:     maps.PlaceTypeTransitStation,
	})
	if err != nil {
		return nil, errors.Wrap(err, "nearby search request failed")
	}

	places := make([]location.NearbyPlace, 0, len(resp.Results))
	for _, result := range resp.Results {
		place := location.NearbyPlace{
			Name:     result.Name,
			Type:     "transit_station",
			Rating:   float64(result.Rating),
			Vicinity: result.Vicinity,
			Location: location.GeoPoint{
				Lat: result.Geometry.Location.Lat,
				Lng: result.Geometry.Location.Lng,
			},
		}
		if len(result.Types) > 0 {
			place.Type = result.Types[0]
		}
		places = append(places, place)
	}

	sort.SliceStable(places, func(i, j int) bool {
		return DistanceKm(at, places[i].Location) < DistanceKm(at, places[j].Location)
	})
	return places, nil
}

// Geocode resolves a free-text address to a coordinate.
func (c *Client) Geocode(ctx context.Context, address string) (*location.NamedLocation, error) {
	cacheKey := "geo|" + strings.ToLower(address)
	if cached, ok := c.geoCache.get(cacheKey); ok {
		return &cached, nil
	}

	results, err := c.maps.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return nil, errors.Wrapf(err, "geocode request failed for %q", address)
	}
	if len(results) == 0 {
		return nil, errors.Errorf("no geocode result for %q", address)
	}

	named := location.NamedLocation{
		GeoPoint: location.GeoPoint{
			Lat: results[0].Geometry.Location.Lat,
			Lng: results[0].Geometry.Location.Lng,
		},
		Address: results[0].FormattedAddress,
	}
	c.geoCache.set(cacheKey, named)
	return &named, nil
}

// ReverseGeocode resolves a coordinate to its street address.
func (c *Client) ReverseGeocode(ctx context.Context, at location.GeoPoint) (*location.NamedLocation, error) {
	cacheKey := fmt.Sprintf("rev|%.6f,%.6f", at.Lat, at.Lng)
	if cached, ok := c.geoCache.get(cacheKey); ok {
		return &cached, nil
	}

	results, err := c.maps.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: at.Lat, Lng: at.Lng},
	})
	if err != nil {
		return nil, errors.Wrap(err, "reverse geocode request failed")
	}
	if len(results) == 0 {
		slog.Debug("reverse geocode returned no results", "lat", at.Lat, "lng", at.Lng)
		return nil, errors.Errorf("no address found for %.6f,%.6f", at.Lat, at.Lng)
	}

	named := location.NamedLocation{
		GeoPoint: at,
		Address:  results[0].FormattedAddress,
	}
	c.geoCache.set(cacheKey, named)
	return &named, nil
}

const earthRadiusKm = 6371.0

// DistanceKm is the great-circle distance between two points in kilometers.
func DistanceKm(a, b location.GeoPoint) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func formatDuration(d time.Duration) string {
	mins := int(math.Round(d.Minutes()))
	if mins < 1 {
		mins = 1
	}
	hours := mins / 60
	mins = mins % 60
	switch {
	case hours == 0 && mins == 1:
		return "1 min"
	case hours == 0:
		return fmt.Sprintf("%d mins", mins)
	case hours == 1 && mins == 0:
		return "1 hour"
	case mins == 0:
		return fmt.Sprintf("%d hours", hours)
	case hours == 1:
		return fmt.Sprintf("1 hour %d mins", mins)
	default:
		return fmt.Sprintf("%d hours %d mins", hours, mins)
	}
}

func vehicleMode(vehicleType string) string {
	if vehicleType == "" {
		return "transit"
	}
	return strings.ToLower(vehicleType)
}
