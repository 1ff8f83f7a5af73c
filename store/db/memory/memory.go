// Package memory implements the conversation store driver on an in-process
// map. It is the default driver; every restart starts empty.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/citycompass/citycompass/store"
)

type DB struct {
	mu            sync.RWMutex
	conversations map[string]*store.Conversation
}

// NewDB creates an empty in-memory driver.
func NewDB() store.Driver {
	return &DB{
		conversations: make(map[string]*store.Conversation),
	}
}

func (d *DB) CreateConversation(_ context.Context, create *store.Conversation) (*store.Conversation, error) {
	if create.ID == "" {
		return nil, errors.New("conversation id is required")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.conversations[create.ID]; ok {
		return nil, errors.Errorf("conversation %s already exists", create.ID)
	}

	stored := cloneConversation(create)
	d.conversations[create.ID] = stored
	return cloneConversation(stored), nil
}

func (d *DB) GetConversation(_ context.Context, id string) (*store.Conversation, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	conversation, ok := d.conversations[id]
	if !ok {
		return nil, store.ErrConversationNotFound
	}
	return cloneConversation(conversation), nil
}

func (d *DB) ListConversations(_ context.Context, find *store.FindConversation) ([]*store.Conversation, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var list []*store.Conversation
	for _, conversation := range d.conversations {
		if find != nil {
			if find.ID != nil && conversation.ID != *find.ID {
				continue
			}
			if find.UserID != nil && conversation.UserID != *find.UserID {
				continue
			}
		}
		list = append(list, cloneConversation(conversation))
	}

	// Most recently active first.
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].LastMessageAt.After(list[j].LastMessageAt)
	})
	return list, nil
}

func (d *DB) AppendMessage(_ context.Context, conversationID string, message *store.Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	conversation, ok := d.conversations[conversationID]
	if !ok {
		return store.ErrConversationNotFound
	}

	conversation.Messages = append(conversation.Messages, *message)
	if message.Timestamp.After(conversation.LastMessageAt) {
		conversation.LastMessageAt = message.Timestamp
	}
	return nil
}

func (d *DB) UpdateTitle(_ context.Context, conversationID, title string, source store.TitleSource) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	conversation, ok := d.conversations[conversationID]
	if !ok {
		return store.ErrConversationNotFound
	}

	conversation.Title = title
	conversation.TitleSource = source
	return nil
}

func (d *DB) DeleteConversation(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.conversations[id]; !ok {
		return store.ErrConversationNotFound
	}
	delete(d.conversations, id)
	return nil
}

func (d *DB) Close() error {
	return nil
}

// cloneConversation copies a conversation so callers never share the stored
// message slice.
func cloneConversation(c *store.Conversation) *store.Conversation {
	clone := *c
	clone.Messages = make([]store.Message, len(c.Messages))
	copy(clone.Messages, c.Messages)
	return &clone
}
