package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/citycompass/citycompass/location"
)

// personaPrompt is the fixed persona and domain description for the
// assistant. It always opens the system message.
const personaPrompt = `You are Maya, an expert urban mobility assistant specifically for Pune, India, with access to real-time location and route data.

IMPORTANT INSTRUCTIONS:
1. Use the provided location context to give SPECIFIC, REAL transport advice
2. Include actual route information, costs, and timings when available
3. Suggest the best transport options based on the route data provided
4. Reference specific locations, distances, and transit lines mentioned in the context
5. Provide alternative options if multiple routes are available
6. Always mention real-world factors like traffic, peak hours, and costs
7. Be conversational but precise in your recommendations

For Pune specifically:
- PMPML buses: ₹5-35 depending on distance
- Auto-rickshaws: ₹15-20 per km + waiting charges
- Ola/Uber: Varies with surge pricing
- Pune Metro: ₹10-40 depending on distance
- Consider traffic patterns and peak hours (8-11 AM, 6-9 PM)

Always prioritize the location context provided and give actionable, specific advice. Maintain conversation context and remember previous discussions.`

// BuildMessages assembles the exact ordered message list sent to the LLM:
// one system message, the conversation history in original order, then the
// current user message last. The output is deterministic; identical inputs
// produce a byte-identical payload.
func BuildMessages(currentMessage string, history []Message, locationContext *location.Context) []Message {
	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, SystemPrompt(buildSystemContent(locationContext)))

	for _, h := range history {
		role := h.Role
		if role != "assistant" {
			role = "user"
		}
		messages = append(messages, Message{Role: role, Content: h.Content})
	}

	messages = append(messages, UserMessage(currentMessage))
	return messages
}

// buildSystemContent renders the persona plus whatever location context is
// available for this turn.
func buildSystemContent(locationContext *location.Context) string {
	var b strings.Builder
	b.WriteString(personaPrompt)

	if locationContext == nil {
		return b.String()
	}

	b.WriteString("\n\nLOCATION CONTEXT:\n")

	if locationContext.ExtractedLocations.Origin != "" || locationContext.ExtractedLocations.Destination != "" {
		// Struct marshalling keeps field order stable across calls.
		extracted, err := json.Marshal(locationContext.ExtractedLocations)
		if err == nil {
			fmt.Fprintf(&b, "- Extracted Locations: %s\n", extracted)
		}
	}

	if locationContext.UserLocation != nil {
		fmt.Fprintf(&b, "- Current Location: %.6f, %.6f\n",
			locationContext.UserLocation.Lat, locationContext.UserLocation.Lng)
	}

	if route := locationContext.RouteInfo; route != nil {
		fmt.Fprintf(&b, "- Route Distance: %s\n", route.Distance)
		fmt.Fprintf(&b, "- Route Duration: %s\n", route.Duration)
		fmt.Fprintf(&b, "- Start Address: %s\n", route.StartAddress)
		fmt.Fprintf(&b, "- End Address: %s\n", route.EndAddress)

		if len(route.TransitDetails) > 0 {
			b.WriteString("- Available Transit Options:\n")
			for i, leg := range route.TransitDetails {
				fmt.Fprintf(&b, "  %d. %s - %s\n", i+1, leg.Mode, leg.LineName)
				fmt.Fprintf(&b, "     From: %s to %s\n", leg.Departure, leg.Arrival)
				fmt.Fprintf(&b, "     Duration: %s\n", leg.Duration)
			}
		}
	}

	if len(locationContext.NearbyPlaces) > 0 {
		b.WriteString("- Nearby Transport Hubs:\n")
		for i, place := range locationContext.NearbyPlaces {
			fmt.Fprintf(&b, "  %d. %s (%s) - Rating: %.1f\n", i+1, place.Name, place.Type, place.Rating)
		}
	}

	b.WriteString("\nBased on this location context, provide specific, actionable transport advice for Pune, including real costs, timings, and route recommendations.")

	return b.String()
}
