package ai

import (
	"regexp"
	"strings"

	"github.com/citycompass/citycompass/internal/util"
	"github.com/citycompass/citycompass/location"
)

// Title generation is heuristic and cheap: it runs once per conversation,
// right after the first AI reply, and must not call the LLM.

var (
	titleRoutePattern       = regexp.MustCompile(`(?i)route from\s+(.+?)\s+to\s+([^.!?\n]+)`)
	titleDestinationPattern = regexp.MustCompile(`(?i)(?:to reach|getting to|travel to)\s+([^,.\n]+)`)
)

// titleScanNames is the fixed, ordered list of place names looked for in AI
// replies when no route phrasing matched. Order decides which two names form
// the title, so it must stay stable.
var titleScanNames = []string{
	"Dighi", "Pune Airport", "Airport", "Koregaon Park", "Camp",
	"Hinjewadi", "Baner", "Wakad", "Hadapsar", "Kharadi",
	"Deccan", "Shivajinagar", "Mumbai", "Delhi", "Bangalore",
}

// GenerateTitle derives a short conversation title from the first user
// message and the first AI reply. Rules fire in a fixed order; the final
// fallback truncates the user message, so a non-empty input always yields a
// non-empty title.
func GenerateTitle(userMessage, aiResponse string) string {
	if m := titleRoutePattern.FindStringSubmatch(aiResponse); m != nil {
		from := capitalizeLocation(strings.TrimSpace(m[1]))
		to := capitalizeLocation(strings.TrimSpace(m[2]))
		return from + " → " + to
	}

	if m := titleDestinationPattern.FindStringSubmatch(aiResponse); m != nil {
		return "Route to " + capitalizeLocation(strings.TrimSpace(m[1]))
	}

	lower := strings.ToLower(aiResponse)
	if strings.Contains(lower, "bus") && (strings.Contains(lower, "route") || strings.Contains(lower, "service")) {
		return "Bus Routes"
	}
	if strings.Contains(lower, "metro") || strings.Contains(lower, "train") {
		return "Metro/Train Info"
	}
	if strings.Contains(lower, "taxi") || strings.Contains(lower, "auto") {
		return "Taxi/Auto Info"
	}

	if names := scanTitleNames(aiResponse); len(names) >= 2 {
		return names[0] + " → " + names[1]
	} else if len(names) == 1 {
		return names[0] + " Journey"
	}

	return FallbackTitle(userMessage)
}

// FallbackTitle builds a title from the first few words of the user message,
// truncated at 25 characters.
func FallbackTitle(userMessage string) string {
	words := strings.Fields(userMessage)
	if len(words) > 4 {
		words = words[:4]
	}
	return util.Truncate(strings.Join(words, " "), 25)
}

// scanTitleNames collects up to two known place names mentioned in the AI
// reply, in scan order.
func scanTitleNames(aiResponse string) []string {
	var names []string
	for _, name := range titleScanNames {
		if strings.Contains(aiResponse, name) {
			names = append(names, name)
			if len(names) == 2 {
				break
			}
		}
	}
	return names
}

// capitalizeLocation title-cases a location phrase while keeping connective
// words lowercase. Known names win over naive casing.
func capitalizeLocation(raw string) string {
	if known := location.FindKnownName(raw); known != "" {
		return known
	}

	words := strings.Fields(strings.ToLower(raw))
	for i, w := range words {
		if i > 0 && (w == "to" || w == "and") {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
