package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"

	"github.com/citycompass/citycompass/internal/profile"
)

// DefaultTitle is the placeholder every new conversation starts with.
const DefaultTitle = "New Chat"

// Store provides access to conversation persistence.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	return s.driver.Close()
}

// CreateConversation starts a new thread for userID. welcomeText, when not
// empty, is seeded as the first assistant message.
func (s *Store) CreateConversation(ctx context.Context, userID, welcomeText string) (*Conversation, error) {
	now := time.Now().UTC()
	create := &Conversation{
		ID:            shortuuid.New(),
		UserID:        userID,
		Title:         DefaultTitle,
		TitleSource:   TitleSourceDefault,
		CreatedAt:     now,
		LastMessageAt: now,
	}
	if welcomeText != "" {
		create.Messages = []Message{{
			ID:        uuid.New().String(),
			Type:      "text",
			Content:   welcomeText,
			Sender:    SenderAI,
			Timestamp: now,
		}}
	}

	conversation, err := s.driver.CreateConversation(ctx, create)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create conversation")
	}
	return conversation, nil
}

func (s *Store) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	return s.driver.GetConversation(ctx, id)
}

func (s *Store) ListConversations(ctx context.Context, find *FindConversation) ([]*Conversation, error) {
	return s.driver.ListConversations(ctx, find)
}

func (s *Store) DeleteConversation(ctx context.Context, id string) error {
	return s.driver.DeleteConversation(ctx, id)
}

// AppendUserMessage appends one user-authored message and returns it.
func (s *Store) AppendUserMessage(ctx context.Context, conversationID, content string) (*Message, error) {
	message := &Message{
		ID:        uuid.New().String(),
		Type:      "text",
		Content:   content,
		Sender:    SenderUser,
		Timestamp: time.Now().UTC(),
	}
	if err := s.driver.AppendMessage(ctx, conversationID, message); err != nil {
		return nil, errors.Wrap(err, "failed to append user message")
	}
	return message, nil
}

// AppendAIMessage appends one assistant message and returns it. messageType
// mirrors the reply envelope type.
func (s *Store) AppendAIMessage(ctx context.Context, conversationID, messageType, content string, isError bool) (*Message, error) {
	message := &Message{
		ID:        uuid.New().String(),
		Type:      messageType,
		Content:   content,
		Sender:    SenderAI,
		Timestamp: time.Now().UTC(),
		Error:     isError,
	}
	if err := s.driver.AppendMessage(ctx, conversationID, message); err != nil {
		return nil, errors.Wrap(err, "failed to append ai message")
	}
	return message, nil
}

// MaybeAutoTitle sets a generated title on the conversation if, and only if,
// the title is still the creation-time placeholder and the user has sent
// exactly one message. generate runs only when both conditions hold, so the
// title is produced at most once per conversation. Returns the title set and
// whether it ran.
func (s *Store) MaybeAutoTitle(ctx context.Context, conversationID string, generate func() string) (string, bool, error) {
	conversation, err := s.driver.GetConversation(ctx, conversationID)
	if err != nil {
		return "", false, errors.Wrap(err, "failed to load conversation for titling")
	}
	if conversation.TitleSource != TitleSourceDefault {
		return conversation.Title, false, nil
	}
	if conversation.UserMessageCount() != 1 {
		return conversation.Title, false, nil
	}

	title := generate()
	if title == "" {
		return conversation.Title, false, nil
	}
	if err := s.driver.UpdateTitle(ctx, conversationID, title, TitleSourceAuto); err != nil {
		return "", false, errors.Wrap(err, "failed to set auto title")
	}
	return title, true, nil
}

// RenameConversation sets a user-chosen title. User titles are final; auto
// titling never overrides them.
func (s *Store) RenameConversation(ctx context.Context, conversationID, title string) error {
	if title == "" {
		return errors.New("title is required")
	}
	return s.driver.UpdateTitle(ctx, conversationID, title, TitleSourceUser)
}
