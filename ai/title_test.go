package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateTitleRoutePhrase(t *testing.T) {
	got := GenerateTitle(
		"how do I get to the airport",
		"The best route from dighi to pune airport takes around 45 minutes by bus.",
	)
	assert.Equal(t, "Dighi → Pune Airport", got)
}

func TestGenerateTitleDestinationPhrase(t *testing.T) {
	got := GenerateTitle(
		"trip advice",
		"To reach kharadi, take the 42A bu-- feeder and switch at the bypass.",
	)
	assert.Equal(t, "Route to Kharadi", got)
}

func TestGenerateTitleModeBuckets(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{"bus routes", "Several bus route options serve this corridor.", "Bus Routes"},
		{"metro", "The metro is your fastest choice this time of day.", "Metro/Train Info"},
		{"taxi", "A taxi would cost around 300 rupees.", "Taxi/Auto Info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateTitle("some question", tt.response))
		})
	}
}

func TestGenerateTitleKnownLocations(t *testing.T) {
	got := GenerateTitle(
		"best way?",
		"Hinjewadi and Wakad are both well connected during peak hours.",
	)
	assert.Equal(t, "Hinjewadi → Wakad", got)

	got = GenerateTitle("best way?", "Kharadi is reachable in under an hour.")
	assert.Equal(t, "Kharadi Journey", got)
}

func TestGenerateTitleFallback(t *testing.T) {
	got := GenerateTitle("what are my options here", "I can help with many things.")
	assert.Equal(t, "what are my options", got)
}

func TestFallbackTitleTruncation(t *testing.T) {
	got := FallbackTitle("alpha bravocharliedeltaechofoxtrot golf hotel india")
	assert.LessOrEqual(t, len([]rune(got)), 28, "four words capped at 25 runes plus ellipsis")
	assert.Contains(t, got, "...")

	assert.Equal(t, "hi", FallbackTitle("hi"))
}
