package dialog

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citycompass/citycompass/ai"
	"github.com/citycompass/citycompass/location"
	"github.com/citycompass/citycompass/plugin/transit"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		message string
		want    Intent
	}{
		{"Hello there", IntentGreeting},
		{"hey, good morning", IntentGreeting},
		{"HELP", IntentHelp},
		{"what can you do", IntentHelp},
		{"any delays on the red line?", IntentStatus},
		{"is there a disruption today", IntentStatus},
		{"I want to go to Pune Airport", IntentJourney},
		{"from Dighi to Airport", IntentJourney},
		{"plan my journey", IntentJourney},
		{"what's the weather", IntentGeneral},
		// "help" outranks journey keywords
		{"help me travel from A to B", IntentHelp},
		// "hi" only matches as a whole word, not inside place names
		{"Plan a journey from Dighi to Airport", IntentJourney},
		{"hi, anyone there?", IntentGreeting},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.message))
		})
	}
}

// fakeLLM returns a fixed reply, or fails every call when err is set. It
// records the messages of the last call.
type fakeLLM struct {
	reply string
	err   error
	last  []ai.Message
	calls int
}

func (f *fakeLLM) Chat(_ context.Context, messages []ai.Message) (string, *ai.CallStats, error) {
	f.calls++
	f.last = messages
	if f.err != nil {
		return "", nil, f.err
	}
	return f.reply, &ai.CallStats{}, nil
}

func (f *fakeLLM) Warmup(context.Context) {}

func newTestRouter(llm ai.LLMService) *Router {
	return NewRouter(llm, location.NewContextBuilder(nil, nil), transit.NewPlanner(), 2)
}

func TestHandleGreeting(t *testing.T) {
	llm := &fakeLLM{reply: "Hi! I'm Maya."}
	router := newTestRouter(llm)

	env := router.Handle(context.Background(), Request{Message: "hello"})

	require.NotNil(t, env)
	assert.Equal(t, "text", env.Type)
	assert.Equal(t, "Hi! I'm Maya.", env.Message)
}

func TestHandleGreetingFallback(t *testing.T) {
	llm := &fakeLLM{err: errors.New("connection refused")}
	router := newTestRouter(llm)

	env := router.Handle(context.Background(), Request{Message: "hello"})

	require.NotNil(t, env)
	assert.Equal(t, "text", env.Type)
	assert.Equal(t, greetingFallback, env.Message)
}

func TestHandleHelpFallback(t *testing.T) {
	llm := &fakeLLM{err: errors.New("boom")}
	router := newTestRouter(llm)

	env := router.Handle(context.Background(), Request{Message: "help"})

	assert.Equal(t, "text", env.Type)
	assert.Equal(t, helpFallback, env.Message)
}

func TestHandleJourney(t *testing.T) {
	llm := &fakeLLM{reply: "Take the 42A bus."}
	router := newTestRouter(llm)

	env := router.Handle(context.Background(), Request{Message: "from Dighi to Airport"})

	require.NotNil(t, env)
	assert.Equal(t, "journey_plan", env.Type)
	assert.Equal(t, "Take the 42A bus.", env.Message)

	plan, ok := env.Data.(*transit.JourneyPlan)
	require.True(t, ok)
	assert.Equal(t, "Dighi", plan.Origin)
	assert.Equal(t, "Airport", plan.Destination)
	require.NotNil(t, env.LocationContext)
	assert.Equal(t, "Dighi", env.LocationContext.ExtractedLocations.Origin)
}

func TestHandleJourneyFallback(t *testing.T) {
	llm := &fakeLLM{err: errors.New("model offline")}
	router := newTestRouter(llm)

	env := router.Handle(context.Background(), Request{Message: "from Dighi to Airport"})

	require.NotNil(t, env)
	assert.Equal(t, "journey_plan", env.Type)
	assert.Equal(t, journeyFallback, env.Message)

	plan, ok := env.Data.(*transit.JourneyPlan)
	require.True(t, ok, "fallback still carries structured journey data")
	assert.NotEmpty(t, plan.AllOptions)
}

func TestHandleStatusFallback(t *testing.T) {
	llm := &fakeLLM{err: errors.New("model offline")}
	router := newTestRouter(llm)

	env := router.Handle(context.Background(), Request{Message: "any delays?"})

	require.NotNil(t, env)
	assert.Equal(t, "transport_status", env.Type)
	assert.Equal(t, statusFallback, env.Message)

	report, ok := env.Data.(*transit.StatusReport)
	require.True(t, ok, "fallback still carries structured status data")
	assert.Len(t, report.Buses, 2)
}

func TestHandleGeneralError(t *testing.T) {
	llm := &fakeLLM{err: errors.New("model offline")}
	router := newTestRouter(llm)

	env := router.Handle(context.Background(), Request{Message: "what's the weather"})

	assert.Equal(t, "text", env.Type)
	assert.Equal(t, errorFallback, env.Message)
	assert.Nil(t, env.Data)
}

func TestHandleWithoutModel(t *testing.T) {
	router := newTestRouter(nil)

	env := router.Handle(context.Background(), Request{Message: "hello"})

	require.NotNil(t, env)
	assert.Equal(t, greetingFallback, env.Message)
}

func TestHandleGeneralIncludesHistory(t *testing.T) {
	llm := &fakeLLM{reply: "ok"}
	router := newTestRouter(llm)

	history := []ai.Message{
		ai.UserMessage("earlier question"),
		ai.AssistantMessage("earlier answer"),
	}
	router.Handle(context.Background(), Request{Message: "best snacks near deccan?", History: history})

	require.GreaterOrEqual(t, len(llm.last), 4)
	assert.Equal(t, "system", llm.last[0].Role)
	assert.Equal(t, "earlier question", llm.last[1].Content)
	assert.Equal(t, "earlier answer", llm.last[2].Content)
	assert.Equal(t, "best snacks near deccan?", llm.last[len(llm.last)-1].Content)
}
