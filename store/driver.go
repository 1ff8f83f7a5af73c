package store

import (
	"context"

	"github.com/pkg/errors"
)

// ErrConversationNotFound is returned when the requested conversation does
// not exist. Both drivers return this exact value so callers can test for it
// with errors.Is.
var ErrConversationNotFound = errors.New("conversation not found")

// Driver is the storage backend interface. Implementations live under
// store/db and are selected by profile.Driver.
type Driver interface {
	CreateConversation(ctx context.Context, create *Conversation) (*Conversation, error)
	GetConversation(ctx context.Context, id string) (*Conversation, error)
	ListConversations(ctx context.Context, find *FindConversation) ([]*Conversation, error)
	AppendMessage(ctx context.Context, conversationID string, message *Message) error
	UpdateTitle(ctx context.Context, conversationID, title string, source TitleSource) error
	DeleteConversation(ctx context.Context, id string) error

	Close() error
}
