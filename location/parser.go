// Package location extracts origin/destination pairs and location context
// from free-text mobility queries.
package location

import (
	"regexp"
	"strings"
)

// CurrentLocation is the sentinel origin used when a destination is known
// but no explicit origin phrase was found. It is a smart default, not a
// parsing failure.
const CurrentLocation = "Current Location"

// ExtractedLocations is the best-guess origin/destination pair parsed from
// one message. Empty fields mean "not found".
type ExtractedLocations struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

// Rule order matters: from/to beats travel-intent beats destination-is.
// Longest phrases first inside an alternation so "want to go to" is not
// swallowed by "go to".
var (
	fromToPattern       = regexp.MustCompile(`(?i)\bfrom\s+(.+?)\s+to\s+(.+)`)
	travelIntentPattern = regexp.MustCompile(`(?i)\b(?:want to go to|going to|go to|route me to|get to|travel to)\s+(.+)`)
	destinationPattern  = regexp.MustCompile(`(?i)\b(?:my destination is|destination is)\s+(.+)`)
	leadingThePattern   = regexp.MustCompile(`(?i)^the\s+`)
	whitespacePattern   = regexp.MustCompile(`\s+`)
)

// Parse extracts an origin/destination pair from a free-text message.
// It is pure, total and case-insensitive: unmatched fields stay empty and
// no input can make it fail.
func Parse(message string) ExtractedLocations {
	var locations ExtractedLocations

	switch {
	case fromToPattern.MatchString(message):
		m := fromToPattern.FindStringSubmatch(message)
		locations.Origin = strings.TrimSpace(m[1])
		locations.Destination = normalizeDestination(m[2])
	case travelIntentPattern.MatchString(message):
		m := travelIntentPattern.FindStringSubmatch(message)
		locations.Origin = CurrentLocation
		locations.Destination = normalizeDestination(m[1])
	case destinationPattern.MatchString(message):
		m := destinationPattern.FindStringSubmatch(message)
		locations.Destination = normalizeDestination(m[1])
	}

	// Safety pass: a destination without an origin means "start from here".
	if locations.Destination != "" && locations.Origin == "" {
		locations.Origin = CurrentLocation
	}

	return locations
}

// normalizeDestination cleans a raw destination capture: trims, strips a
// leading "the", collapses whitespace, and canonicalizes any station
// mention to the Pune railway station label.
func normalizeDestination(raw string) string {
	destination := strings.TrimSpace(raw)
	if destination == "" {
		return ""
	}

	destination = leadingThePattern.ReplaceAllString(destination, "")
	destination = whitespacePattern.ReplaceAllString(destination, " ")
	destination = strings.TrimSpace(destination)

	if strings.Contains(strings.ToLower(destination), "station") {
		return "pune railway station"
	}

	return destination
}
