// Package transit is a deterministic stand-in for a real transit data feed.
// It serves fixed journey options and per-mode status from small static
// tables; treat it as an external collaborator with a stable contract.
package transit

import (
	"sort"
	"strconv"
	"time"
)

// BusRoute is one scheduled bus service.
type BusRoute struct {
	ID             string   `json:"id"`
	RouteNumber    string   `json:"routeNumber"`
	ServiceName    string   `json:"serviceName"`
	Origin         string   `json:"origin"`
	Destination    string   `json:"destination"`
	NextDepartures []string `json:"nextDepartures"`
	Duration       int      `json:"duration"`
	Cost           float64  `json:"cost"`
	Status         string   `json:"status"`
}

// MetroRoute is one metro line service.
type MetroRoute struct {
	ID             string   `json:"id"`
	LineName       string   `json:"lineName"`
	ServiceName    string   `json:"serviceName"`
	Origin         string   `json:"origin"`
	Destination    string   `json:"destination"`
	NextDepartures []string `json:"nextDepartures"`
	Duration       int      `json:"duration"`
	Cost           float64  `json:"cost"`
	Status         string   `json:"status"`
}

// BikeStation is one bike-share docking station.
type BikeStation struct {
	ID             string  `json:"id"`
	StationName    string  `json:"stationName"`
	ServiceName    string  `json:"serviceName"`
	AvailableBikes int     `json:"availableBikes"`
	AvailableDocks int     `json:"availableDocks"`
	Distance       string  `json:"distance"`
	WalkTime       string  `json:"walkTime"`
	Cost           float64 `json:"cost"`
	Status         string  `json:"status"`
}

// JourneyStep is one leg of a journey option.
type JourneyStep struct {
	Transport     string  `json:"transport"`
	ServiceName   string  `json:"serviceName,omitempty"`
	RouteInfo     string  `json:"routeInfo,omitempty"`
	Instruction   string  `json:"instruction"`
	Duration      int     `json:"duration"`
	Cost          float64 `json:"cost"`
	DepartureTime string  `json:"departureTime,omitempty"`
	Status        string  `json:"status,omitempty"`
}

// JourneyOption is one way to make the requested trip.
type JourneyOption struct {
	ID             string        `json:"id"`
	Type           string        `json:"type"` // single-mode or multi-modal
	TransportModes []string      `json:"transportModes"`
	TotalDuration  int           `json:"totalDuration"`
	TotalCost      float64       `json:"totalCost"`
	Reliability    int           `json:"reliability"`
	Steps          []JourneyStep `json:"steps"`
}

// JourneyPlan is the full answer for one origin/destination request.
type JourneyPlan struct {
	Origin            string          `json:"origin"`
	Destination       string          `json:"destination"`
	SearchTime        string          `json:"searchTime"`
	RecommendedOption *JourneyOption  `json:"recommendedOption"`
	AllOptions        []JourneyOption `json:"allOptions"`
	Preferences       Preferences     `json:"preferences"`
}

// Preferences narrows which modes appear in a plan.
type Preferences struct {
	ExcludeBus   bool `json:"excludeBus,omitempty"`
	ExcludeMetro bool `json:"excludeMetro,omitempty"`
}

// ModeStatus is the per-service line item of a status report.
type ModeStatus struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Status        string `json:"status"`
	NextDeparture string `json:"nextDeparture,omitempty"`
	Available     string `json:"available,omitempty"`
}

// StatusReport groups mode statuses for the UI.
type StatusReport struct {
	Buses  []ModeStatus `json:"buses"`
	Metros []ModeStatus `json:"metros"`
	Bikes  []ModeStatus `json:"bikes"`
}

// Planner holds the static route tables.
type Planner struct {
	busRoutes    []BusRoute
	metroRoutes  []MetroRoute
	bikeStations []BikeStation
	now          func() time.Time
}

// NewPlanner creates a planner over the built-in tables.
func NewPlanner() *Planner {
	return &Planner{
		busRoutes:    defaultBusRoutes(),
		metroRoutes:  defaultMetroRoutes(),
		bikeStations: defaultBikeStations(),
		now:          time.Now,
	}
}

func defaultBusRoutes() []BusRoute {
	return []BusRoute{
		{
			ID:             "bus-001",
			RouteNumber:    "42A",
			ServiceName:    "City Bus",
			Origin:         "Downtown Station",
			Destination:    "Airport Terminal",
			NextDepartures: []string{"5 min", "15 min", "25 min"},
			Duration:       35,
			Cost:           2.50,
			Status:         "on-time",
		},
		{
			ID:             "bus-002",
			RouteNumber:    "15B",
			ServiceName:    "Express Bus",
			Origin:         "City Center",
			Destination:    "University Campus",
			NextDepartures: []string{"8 min", "18 min", "28 min"},
			Duration:       22,
			Cost:           3.00,
			Status:         "delayed",
		},
	}
}

func defaultMetroRoutes() []MetroRoute {
	return []MetroRoute{
		{
			ID:             "metro-001",
			LineName:       "Red Line",
			ServiceName:    "Metro Rail",
			Origin:         "Central Hub",
			Destination:    "North Station",
			NextDepartures: []string{"3 min", "9 min", "15 min"},
			Duration:       18,
			Cost:           3.25,
			Status:         "on-time",
		},
		{
			ID:             "metro-002",
			LineName:       "Blue Line",
			ServiceName:    "Metro Rail",
			Origin:         "Downtown",
			Destination:    "Riverside",
			NextDepartures: []string{"6 min", "16 min", "26 min"},
			Duration:       28,
			Cost:           3.25,
			Status:         "on-time",
		},
	}
}

func defaultBikeStations() []BikeStation {
	return []BikeStation{
		{
			ID:             "bike-001",
			StationName:    "Park Avenue Station",
			ServiceName:    "CityBike",
			AvailableBikes: 12,
			AvailableDocks: 8,
			Distance:       "0.2 miles",
			WalkTime:       "3 min",
			Cost:           4.95,
			Status:         "active",
		},
		{
			ID:             "bike-002",
			StationName:    "Main Street Hub",
			ServiceName:    "CityBike",
			AvailableBikes: 5,
			AvailableDocks: 15,
			Distance:       "0.4 miles",
			WalkTime:       "6 min",
			Cost:           4.95,
			Status:         "active",
		},
	}
}

const maxJourneyOptions = 5

// PlanJourney returns the journey options for one origin/destination pair,
// sorted ascending by total duration and capped at five; the first option is
// the recommendation. Output is fully deterministic apart from the search
// timestamp.
func (p *Planner) PlanJourney(origin, destination string, preferences Preferences) *JourneyPlan {
	var options []JourneyOption

	if !preferences.ExcludeBus {
		for _, route := range p.busRoutes {
			options = append(options, JourneyOption{
				ID:             "journey-" + route.ID,
				Type:           "single-mode",
				TransportModes: []string{"bus"},
				TotalDuration:  route.Duration,
				TotalCost:      route.Cost,
				Reliability:    85,
				Steps: []JourneyStep{{
					Transport:     "bus",
					ServiceName:   route.ServiceName,
					RouteInfo:     route.RouteNumber,
					Instruction:   "Take " + route.RouteNumber + " from " + route.Origin,
					Duration:      route.Duration,
					Cost:          route.Cost,
					DepartureTime: route.NextDepartures[0],
					Status:        route.Status,
				}},
			})
		}
	}

	if !preferences.ExcludeMetro {
		for _, route := range p.metroRoutes {
			options = append(options, JourneyOption{
				ID:             "journey-" + route.ID,
				Type:           "single-mode",
				TransportModes: []string{"metro"},
				TotalDuration:  route.Duration,
				TotalCost:      route.Cost,
				Reliability:    92,
				Steps: []JourneyStep{{
					Transport:     "metro",
					ServiceName:   route.ServiceName,
					RouteInfo:     route.LineName,
					Instruction:   "Take " + route.LineName + " from " + route.Origin,
					Duration:      route.Duration,
					Cost:          route.Cost,
					DepartureTime: route.NextDepartures[0],
					Status:        route.Status,
				}},
			})
		}
	}

	options = append(options, multiModalOption())

	sort.SliceStable(options, func(i, j int) bool {
		return options[i].TotalDuration < options[j].TotalDuration
	})
	if len(options) > maxJourneyOptions {
		options = options[:maxJourneyOptions]
	}

	plan := &JourneyPlan{
		Origin:      origin,
		Destination: destination,
		SearchTime:  p.now().UTC().Format(time.RFC3339),
		AllOptions:  options,
		Preferences: preferences,
	}
	if len(options) > 0 {
		plan.RecommendedOption = &options[0]
	}
	return plan
}

func multiModalOption() JourneyOption {
	return JourneyOption{
		ID:             "journey-multimodal-001",
		Type:           "multi-modal",
		TransportModes: []string{"bus", "metro"},
		TotalDuration:  32,
		TotalCost:      5.75,
		Reliability:    88,
		Steps: []JourneyStep{
			{
				Transport:     "bus",
				ServiceName:   "City Bus",
				RouteInfo:     "42A",
				Instruction:   "Take Bus 42A to Metro Station",
				Duration:      12,
				Cost:          2.50,
				DepartureTime: "5 min",
				Status:        "on-time",
			},
			{
				Transport:   "walk",
				Instruction: "Walk to Metro platform",
				Duration:    3,
			},
			{
				Transport:     "metro",
				ServiceName:   "Metro Rail",
				RouteInfo:     "Red Line",
				Instruction:   "Take Red Line to destination",
				Duration:      17,
				Cost:          3.25,
				DepartureTime: "3 min",
				Status:        "on-time",
			},
		},
	}
}

// TransportStatus flattens the route tables into a per-mode status report.
func (p *Planner) TransportStatus() *StatusReport {
	report := &StatusReport{}

	for _, route := range p.busRoutes {
		report.Buses = append(report.Buses, ModeStatus{
			ID:            route.ID,
			Name:          route.RouteNumber,
			Status:        route.Status,
			NextDeparture: route.NextDepartures[0],
		})
	}
	for _, route := range p.metroRoutes {
		report.Metros = append(report.Metros, ModeStatus{
			ID:            route.ID,
			Name:          route.LineName,
			Status:        route.Status,
			NextDeparture: route.NextDepartures[0],
		})
	}
	for _, station := range p.bikeStations {
		report.Bikes = append(report.Bikes, ModeStatus{
			ID:        station.ID,
			Name:      station.StationName,
			Status:    station.Status,
			Available: formatBikes(station.AvailableBikes),
		})
	}

	return report
}

func formatBikes(count int) string {
	if count == 1 {
		return "1 bike"
	}
	return strconv.Itoa(count) + " bikes"
}
