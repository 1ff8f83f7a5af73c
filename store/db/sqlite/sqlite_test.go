package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citycompass/citycompass/internal/profile"
	"github.com/citycompass/citycompass/store"
	"github.com/citycompass/citycompass/store/db/sqlite"
)

func newTestDriver(t *testing.T) store.Driver {
	t.Helper()
	driver, err := sqlite.NewDB(&profile.Profile{
		Mode:   "dev",
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "citycompass_test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = driver.Close() })
	return driver
}

// Timestamps survive the round trip at second granularity for conversations
// and millisecond granularity for messages.
func conversationAt(id, userID string, at time.Time) *store.Conversation {
	return &store.Conversation{
		ID:            id,
		UserID:        userID,
		Title:         store.DefaultTitle,
		TitleSource:   store.TitleSourceDefault,
		CreatedAt:     at,
		LastMessageAt: at,
	}
}

func TestCreateAndGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	driver := newTestDriver(t)

	now := time.Now().UTC().Truncate(time.Second)
	create := conversationAt("conv-1", "user-1", now)
	create.Messages = []store.Message{{
		ID:        "msg-1",
		Type:      "text",
		Content:   "Hello! Where would you like to go?",
		Sender:    store.SenderAI,
		Timestamp: now,
	}}

	created, err := driver.CreateConversation(ctx, create)
	require.NoError(t, err)
	assert.Equal(t, "conv-1", created.ID)

	got, err := driver.GetConversation(ctx, "conv-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, store.DefaultTitle, got.Title)
	assert.Equal(t, store.TitleSourceDefault, got.TitleSource)
	assert.Equal(t, now, got.CreatedAt)
	assert.Equal(t, now, got.LastMessageAt)

	require.Len(t, got.Messages, 1)
	assert.Equal(t, "msg-1", got.Messages[0].ID)
	assert.Equal(t, "Hello! Where would you like to go?", got.Messages[0].Content)
	assert.Equal(t, store.SenderAI, got.Messages[0].Sender)
	assert.Equal(t, now, got.Messages[0].Timestamp)
	assert.False(t, got.Messages[0].Error)
}

func TestGetConversationNotFound(t *testing.T) {
	ctx := context.Background()
	driver := newTestDriver(t)

	_, err := driver.GetConversation(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrConversationNotFound)
}

func TestAppendMessageOrderingAndTouch(t *testing.T) {
	ctx := context.Background()
	driver := newTestDriver(t)

	start := time.Now().UTC().Truncate(time.Second)
	_, err := driver.CreateConversation(ctx, conversationAt("conv-1", "user-1", start))
	require.NoError(t, err)

	contents := []string{"how do I get to Deccan?", "Take the 42A.", "thanks"}
	senders := []store.Sender{store.SenderUser, store.SenderAI, store.SenderUser}
	for i, content := range contents {
		err := driver.AppendMessage(ctx, "conv-1", &store.Message{
			ID:        content,
			Type:      "text",
			Content:   content,
			Sender:    senders[i],
			Timestamp: start.Add(time.Duration(i+1) * time.Second),
		})
		require.NoError(t, err)
	}

	got, err := driver.GetConversation(ctx, "conv-1")
	require.NoError(t, err)
	require.Len(t, got.Messages, 3)
	for i, message := range got.Messages {
		assert.Equal(t, contents[i], message.Content)
		assert.Equal(t, senders[i], message.Sender)
	}
	assert.Equal(t, start.Add(3*time.Second), got.LastMessageAt)
}

func TestAppendMessageErrorFlag(t *testing.T) {
	ctx := context.Background()
	driver := newTestDriver(t)

	now := time.Now().UTC().Truncate(time.Second)
	_, err := driver.CreateConversation(ctx, conversationAt("conv-1", "user-1", now))
	require.NoError(t, err)

	err = driver.AppendMessage(ctx, "conv-1", &store.Message{
		ID:        "msg-err",
		Type:      "text",
		Content:   "Sorry, I encountered an error.",
		Sender:    store.SenderAI,
		Timestamp: now,
		Error:     true,
	})
	require.NoError(t, err)

	got, err := driver.GetConversation(ctx, "conv-1")
	require.NoError(t, err)
	require.Len(t, got.Messages, 1)
	assert.True(t, got.Messages[0].Error)
}

func TestAppendMessageMissingConversation(t *testing.T) {
	ctx := context.Background()
	driver := newTestDriver(t)

	err := driver.AppendMessage(ctx, "missing", &store.Message{
		ID:        "msg-1",
		Type:      "text",
		Content:   "hello",
		Sender:    store.SenderUser,
		Timestamp: time.Now().UTC(),
	})
	assert.ErrorIs(t, err, store.ErrConversationNotFound)
}

func TestListConversationsFiltersAndSorts(t *testing.T) {
	ctx := context.Background()
	driver := newTestDriver(t)

	base := time.Now().UTC().Truncate(time.Second)
	for i, fixture := range []struct {
		id     string
		userID string
	}{
		{"conv-old", "user-1"},
		{"conv-new", "user-1"},
		{"conv-other", "user-2"},
	} {
		_, err := driver.CreateConversation(ctx, conversationAt(fixture.id, fixture.userID, base.Add(time.Duration(i)*time.Second)))
		require.NoError(t, err)
	}

	userID := "user-1"
	list, err := driver.ListConversations(ctx, &store.FindConversation{UserID: &userID})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "conv-new", list[0].ID)
	assert.Equal(t, "conv-old", list[1].ID)

	all, err := driver.ListConversations(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestUpdateTitle(t *testing.T) {
	ctx := context.Background()
	driver := newTestDriver(t)

	now := time.Now().UTC().Truncate(time.Second)
	_, err := driver.CreateConversation(ctx, conversationAt("conv-1", "user-1", now))
	require.NoError(t, err)

	require.NoError(t, driver.UpdateTitle(ctx, "conv-1", "Dighi → Airport", store.TitleSourceAuto))

	got, err := driver.GetConversation(ctx, "conv-1")
	require.NoError(t, err)
	assert.Equal(t, "Dighi → Airport", got.Title)
	assert.Equal(t, store.TitleSourceAuto, got.TitleSource)

	err = driver.UpdateTitle(ctx, "missing", "whatever", store.TitleSourceUser)
	assert.ErrorIs(t, err, store.ErrConversationNotFound)
}

func TestDeleteConversationCascades(t *testing.T) {
	ctx := context.Background()
	driver := newTestDriver(t)

	now := time.Now().UTC().Truncate(time.Second)
	create := conversationAt("conv-1", "user-1", now)
	create.Messages = []store.Message{{
		ID:        "msg-1",
		Type:      "text",
		Content:   "hello",
		Sender:    store.SenderUser,
		Timestamp: now,
	}}
	_, err := driver.CreateConversation(ctx, create)
	require.NoError(t, err)

	require.NoError(t, driver.DeleteConversation(ctx, "conv-1"))

	_, err = driver.GetConversation(ctx, "conv-1")
	assert.ErrorIs(t, err, store.ErrConversationNotFound)

	err = driver.DeleteConversation(ctx, "conv-1")
	assert.ErrorIs(t, err, store.ErrConversationNotFound)

	// Cascaded messages must not resurface if the id is reused.
	recreated, err := driver.CreateConversation(ctx, conversationAt("conv-1", "user-1", now))
	require.NoError(t, err)
	assert.Empty(t, recreated.Messages)
}
