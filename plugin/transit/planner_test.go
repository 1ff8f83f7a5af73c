package transit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanJourneySortedAndCapped(t *testing.T) {
	planner := NewPlanner()

	plan := planner.PlanJourney("Dighi", "Airport", Preferences{})

	require.NotNil(t, plan)
	assert.Equal(t, "Dighi", plan.Origin)
	assert.Equal(t, "Airport", plan.Destination)
	assert.LessOrEqual(t, len(plan.AllOptions), 5)
	require.NotEmpty(t, plan.AllOptions)

	for i := 1; i < len(plan.AllOptions); i++ {
		assert.LessOrEqual(t,
			plan.AllOptions[i-1].TotalDuration,
			plan.AllOptions[i].TotalDuration,
			"options must be sorted ascending by total duration")
	}

	require.NotNil(t, plan.RecommendedOption)
	assert.Equal(t, plan.AllOptions[0], *plan.RecommendedOption)
}

func TestPlanJourneyIncludesMultiModal(t *testing.T) {
	planner := NewPlanner()

	plan := planner.PlanJourney("Camp", "Deccan", Preferences{})

	var found bool
	for _, option := range plan.AllOptions {
		if option.Type == "multi-modal" {
			found = true
			assert.Len(t, option.Steps, 3)
		}
	}
	assert.True(t, found, "plan should contain the multi-modal composite")
}

func TestPlanJourneyPreferences(t *testing.T) {
	planner := NewPlanner()

	plan := planner.PlanJourney("A", "B", Preferences{ExcludeBus: true})
	for _, option := range plan.AllOptions {
		if option.Type == "single-mode" {
			assert.NotContains(t, option.TransportModes, "bus")
		}
	}

	plan = planner.PlanJourney("A", "B", Preferences{ExcludeMetro: true})
	for _, option := range plan.AllOptions {
		if option.Type == "single-mode" {
			assert.NotContains(t, option.TransportModes, "metro")
		}
	}
}

func TestPlanJourneyDeterministic(t *testing.T) {
	planner := NewPlanner()

	first := planner.PlanJourney("Dighi", "Airport", Preferences{})
	second := planner.PlanJourney("Dighi", "Airport", Preferences{})

	assert.Equal(t, first.AllOptions, second.AllOptions)
	assert.Equal(t, first.RecommendedOption, second.RecommendedOption)
}

func TestTransportStatus(t *testing.T) {
	planner := NewPlanner()

	report := planner.TransportStatus()

	require.NotNil(t, report)
	assert.Len(t, report.Buses, 2)
	assert.Len(t, report.Metros, 2)
	assert.Len(t, report.Bikes, 2)

	assert.Equal(t, "42A", report.Buses[0].Name)
	assert.Equal(t, "on-time", report.Buses[0].Status)
	assert.Equal(t, "12 bikes", report.Bikes[0].Available)
}
