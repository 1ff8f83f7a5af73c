package dialog

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/citycompass/citycompass/ai"
	"github.com/citycompass/citycompass/location"
	"github.com/citycompass/citycompass/store"
)

// SessionService runs the chat pipeline for one turn: load history, route
// the message, persist both sides of the exchange and title the conversation
// after its first reply. Both the REST and socket surfaces call into it.
type SessionService struct {
	router *Router
	store  *store.Store
}

func NewSessionService(router *Router, st *store.Store) *SessionService {
	return &SessionService{
		router: router,
		store:  st,
	}
}

// SessionInput is one inbound turn. When ConversationID is empty the turn is
// stateless and History supplies whatever context the client kept.
type SessionInput struct {
	ConversationID string
	UserID         string
	Message        string
	UserLocation   *location.GeoPoint
	History        []ai.Message
}

// Process handles one turn. The returned envelope is always well formed;
// an error means the conversation could not be loaded or persisted, not that
// the reply failed.
func (s *SessionService) Process(ctx context.Context, in SessionInput) (*Envelope, error) {
	history := in.History

	persistent := in.ConversationID != "" && s.store != nil
	if persistent {
		conversation, err := s.store.GetConversation(ctx, in.ConversationID)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load conversation %s", in.ConversationID)
		}
		history = historyFromMessages(conversation.Messages)

		if _, err := s.store.AppendUserMessage(ctx, in.ConversationID, in.Message); err != nil {
			return nil, err
		}
	}

	envelope := s.router.Handle(ctx, Request{
		Message:      in.Message,
		History:      history,
		UserLocation: in.UserLocation,
	})

	if persistent {
		if _, err := s.store.AppendAIMessage(ctx, in.ConversationID, envelope.Type, envelope.Message, false); err != nil {
			return nil, err
		}

		title, ok, err := s.store.MaybeAutoTitle(ctx, in.ConversationID, func() string {
			return ai.GenerateTitle(in.Message, envelope.Message)
		})
		if err != nil {
			slog.Warn("conversation titling failed", "conversation", in.ConversationID, "error", err)
		} else if ok {
			slog.Debug("conversation titled", "conversation", in.ConversationID, "title", title)
		}
	}

	return envelope, nil
}

// historyFromMessages maps the stored log to prompt messages.
func historyFromMessages(messages []store.Message) []ai.Message {
	history := make([]ai.Message, 0, len(messages))
	for _, m := range messages {
		if m.Sender == store.SenderAI {
			history = append(history, ai.AssistantMessage(m.Content))
		} else {
			history = append(history, ai.UserMessage(m.Content))
		}
	}
	return history
}
