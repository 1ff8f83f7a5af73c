// Package dialog classifies incoming chat messages and routes them to the
// matching handler. Every handler degrades to a canned reply when the
// language model is unavailable, so Handle never returns an error.
package dialog

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"

	"github.com/citycompass/citycompass/ai"
	"github.com/citycompass/citycompass/internal/metrics"
	"github.com/citycompass/citycompass/location"
	"github.com/citycompass/citycompass/plugin/transit"
)

// Intent is the coarse category of a chat message.
type Intent string

const (
	IntentGreeting Intent = "greeting"
	IntentHelp     Intent = "help"
	IntentStatus   Intent = "check_status"
	IntentJourney  Intent = "plan_journey"
	IntentGeneral  Intent = "general"
)

// greetingPattern matches short salutations on word boundaries. Substring
// matching would trip on place names such as "Dighi".
var greetingPattern = regexp.MustCompile(`(?i)\b(?:hello|hi|hey)\b`)

// Classify picks the intent for a message by case-insensitive substring
// match. The first matching rule wins; rules are checked in a fixed order so
// "help me travel from A to B" classifies as help, not journey.
func Classify(message string) Intent {
	m := strings.ToLower(message)

	switch {
	case greetingPattern.MatchString(m):
		return IntentGreeting
	case strings.Contains(m, "help"), strings.Contains(m, "what can you do"):
		return IntentHelp
	case strings.Contains(m, "status"), strings.Contains(m, "delay"), strings.Contains(m, "disruption"):
		return IntentStatus
	case strings.Contains(m, "from"), strings.Contains(m, "to"), strings.Contains(m, "go to"),
		strings.Contains(m, "travel"), strings.Contains(m, "journey"), strings.Contains(m, "route"):
		return IntentJourney
	default:
		return IntentGeneral
	}
}

// Envelope is the uniform reply shape shared by the REST and socket surfaces.
type Envelope struct {
	Type            string            `json:"type"`
	Message         string            `json:"message"`
	Data            any               `json:"data,omitempty"`
	LocationContext *location.Context `json:"locationContext,omitempty"`
}

const (
	greetingPrompt = "Greet the user as an urban mobility assistant for Pune. Be friendly and explain how you can help with transportation planning, status checks, and journey coordination."
	helpPrompt     = "Explain your capabilities as an urban mobility assistant for Pune. List the specific ways you can help users with transportation including journey planning, status checks, multi-modal options, etc."
	statusPrompt   = "Check current transport status"

	// WelcomeMessage doubles as the greeting fallback and the seeded first
	// message of a new conversation.
	WelcomeMessage = "Hello! I'm your urban mobility assistant for Pune. I can help you plan journeys using buses, metros, ride-sharing, and bike-sharing services. Where would you like to go?"

	greetingFallback = WelcomeMessage
	helpFallback     = "I can help you with:\n• Journey planning across multiple transport modes\n• Real-time transport status and delays\n• Route recommendations for buses, metros, ride-sharing, and bike-sharing\n• Multi-modal travel coordination\n\nJust tell me where you want to go!"
	journeyFallback  = "I've found several journey options for you:"
	statusFallback   = "Here's the current transport service status:"
	errorFallback    = "Sorry, I encountered an error. Please try again, or ask me about specific transportation routes or service status."
)

// Router dispatches chat messages by intent. A nil llm disables generated
// replies and every handler serves its canned text.
type Router struct {
	llm      ai.LLMService
	contexts *location.ContextBuilder
	planner  *transit.Planner
	sem      *semaphore.Weighted
}

// NewRouter creates a Router. maxConcurrentLLM caps in-flight model calls
// across all connections.
func NewRouter(llm ai.LLMService, contexts *location.ContextBuilder, planner *transit.Planner, maxConcurrentLLM int64) *Router {
	if maxConcurrentLLM <= 0 {
		maxConcurrentLLM = 4
	}
	return &Router{
		llm:      llm,
		contexts: contexts,
		planner:  planner,
		sem:      semaphore.NewWeighted(maxConcurrentLLM),
	}
}

// Request is one inbound chat turn.
type Request struct {
	Message      string
	History      []ai.Message
	UserLocation *location.GeoPoint
}

// Handle routes one message and always produces a well-formed Envelope.
func (r *Router) Handle(ctx context.Context, req Request) *Envelope {
	intent := Classify(req.Message)
	metrics.CountMessage(string(intent))

	locCtx := r.contexts.Build(ctx, req.Message, req.UserLocation)

	switch intent {
	case IntentGreeting:
		return r.handleCanned(ctx, greetingPrompt, greetingFallback)
	case IntentHelp:
		return r.handleCanned(ctx, helpPrompt, helpFallback)
	case IntentStatus:
		return r.handleStatus(ctx, locCtx)
	case IntentJourney:
		return r.handleJourney(ctx, req, locCtx)
	default:
		return r.handleGeneral(ctx, req, locCtx)
	}
}

func (r *Router) handleCanned(ctx context.Context, prompt, fallback string) *Envelope {
	reply, err := r.generate(ctx, prompt, nil, nil)
	if err != nil {
		return &Envelope{Type: "text", Message: fallback}
	}
	return &Envelope{Type: "text", Message: reply}
}

func (r *Router) handleStatus(ctx context.Context, locCtx *location.Context) *Envelope {
	report := r.planner.TransportStatus()

	reply, err := r.generate(ctx, statusPrompt, nil, locCtx)
	if err != nil {
		return &Envelope{Type: "transport_status", Message: statusFallback, Data: report}
	}
	return &Envelope{Type: "transport_status", Message: reply, Data: report}
}

func (r *Router) handleJourney(ctx context.Context, req Request, locCtx *location.Context) *Envelope {
	origin := locCtx.ExtractedLocations.Origin
	if origin == "" {
		origin = location.CurrentLocation
	}
	destination := locCtx.ExtractedLocations.Destination
	if destination == "" {
		destination = "Destination"
	}

	reply, err := r.generate(ctx, req.Message, req.History, locCtx)
	if err != nil {
		plan := r.planner.PlanJourney("Origin", "Destination", transit.Preferences{})
		return &Envelope{Type: "journey_plan", Message: journeyFallback, Data: plan}
	}

	plan := r.planner.PlanJourney(origin, destination, transit.Preferences{})
	return &Envelope{
		Type:            "journey_plan",
		Message:         reply,
		Data:            plan,
		LocationContext: locCtx,
	}
}

func (r *Router) handleGeneral(ctx context.Context, req Request, locCtx *location.Context) *Envelope {
	reply, err := r.generate(ctx, req.Message, req.History, locCtx)
	if err != nil {
		return &Envelope{Type: "text", Message: errorFallback}
	}
	return &Envelope{Type: "text", Message: reply, LocationContext: locCtx}
}

// generate runs one model call under the concurrency cap.
func (r *Router) generate(ctx context.Context, message string, history []ai.Message, locCtx *location.Context) (string, error) {
	if r.llm == nil {
		return "", errNoModel
	}

	if err := r.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer r.sem.Release(1)

	reply, stats, err := r.llm.Chat(ctx, ai.BuildMessages(message, history, locCtx))
	if err != nil {
		metrics.CountLLMFailure()
		slog.Error("model call failed", "error", err)
		return "", err
	}
	if stats != nil {
		slog.Debug("model call finished",
			"duration_ms", stats.TotalDurationMs,
			"prompt_tokens", stats.PromptTokens,
			"completion_tokens", stats.CompletionTokens)
	}
	return reply, nil
}

var errNoModel = errors.New("no language model configured")
