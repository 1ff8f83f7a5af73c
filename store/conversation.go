package store

import "time"

// TitleSource indicates how the conversation title was created.
// - "default": placeholder set at creation
// - "auto": generated from the first exchange
// - "user": renamed by the user
type TitleSource string

const (
	TitleSourceDefault TitleSource = "default"
	TitleSourceAuto    TitleSource = "auto"
	TitleSourceUser    TitleSource = "user"
)

// Sender identifies who produced a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Message is one chat message inside a conversation. The message log is
// append-only; messages are never edited or removed.
type Message struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"` // text, journey_plan, transport_status
	Content   string    `json:"content"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
	Error     bool      `json:"error,omitempty"`
}

// Conversation is one chat thread with its full message log.
type Conversation struct {
	ID            string      `json:"id"`
	UserID        string      `json:"userId"`
	Title         string      `json:"title"`
	TitleSource   TitleSource `json:"titleSource"`
	CreatedAt     time.Time   `json:"createdAt"`
	LastMessageAt time.Time   `json:"lastMessageAt"`
	Messages      []Message   `json:"messages"`
}

// UserMessageCount counts messages sent by the user.
func (c *Conversation) UserMessageCount() int {
	count := 0
	for _, m := range c.Messages {
		if m.Sender == SenderUser {
			count++
		}
	}
	return count
}

// FindConversation filters conversation listings. Nil fields match anything.
type FindConversation struct {
	ID     *string
	UserID *string
}
