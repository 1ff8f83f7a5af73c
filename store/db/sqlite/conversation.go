package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/citycompass/citycompass/store"
)

func (d *DB) CreateConversation(ctx context.Context, create *store.Conversation) (*store.Conversation, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin tx")
	}
	defer tx.Rollback()

	stmt := `
		INSERT INTO conversation (id, user_id, title, title_source, created_ts, last_message_ts)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.ExecContext(ctx, stmt,
		create.ID,
		create.UserID,
		create.Title,
		string(create.TitleSource),
		create.CreatedAt.Unix(),
		create.LastMessageAt.Unix(),
	); err != nil {
		return nil, errors.Wrap(err, "failed to insert conversation")
	}

	for i := range create.Messages {
		if err := insertMessage(ctx, tx, create.ID, &create.Messages[i]); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "failed to commit tx")
	}
	return d.GetConversation(ctx, create.ID)
}

func (d *DB) GetConversation(ctx context.Context, id string) (*store.Conversation, error) {
	stmt := `
		SELECT id, user_id, title, title_source, created_ts, last_message_ts
		FROM conversation
		WHERE id = ?
	`
	conversation, err := scanConversation(d.db.QueryRowContext(ctx, stmt, id))
	if err != nil {
		return nil, err
	}

	messages, err := d.listMessages(ctx, id)
	if err != nil {
		return nil, err
	}
	conversation.Messages = messages
	return conversation, nil
}

func (d *DB) ListConversations(ctx context.Context, find *store.FindConversation) ([]*store.Conversation, error) {
	where, args := []string{"1 = 1"}, []any{}
	if find != nil {
		if find.ID != nil {
			where, args = append(where, "id = ?"), append(args, *find.ID)
		}
		if find.UserID != nil {
			where, args = append(where, "user_id = ?"), append(args, *find.UserID)
		}
	}

	stmt := `
		SELECT id, user_id, title, title_source, created_ts, last_message_ts
		FROM conversation
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY last_message_ts DESC
	`
	rows, err := d.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list conversations")
	}
	defer rows.Close()

	var list []*store.Conversation
	for rows.Next() {
		conversation, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, conversation)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate conversations")
	}

	for _, conversation := range list {
		messages, err := d.listMessages(ctx, conversation.ID)
		if err != nil {
			return nil, err
		}
		conversation.Messages = messages
	}
	return list, nil
}

func (d *DB) AppendMessage(ctx context.Context, conversationID string, message *store.Message) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin tx")
	}
	defer tx.Rollback()

	// Touch the conversation first: zero rows means it does not exist, which
	// the insert below would otherwise report as a foreign key violation.
	result, err := tx.ExecContext(ctx,
		"UPDATE conversation SET last_message_ts = ? WHERE id = ?",
		message.Timestamp.Unix(), conversationID,
	)
	if err != nil {
		return errors.Wrap(err, "failed to touch conversation")
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return store.ErrConversationNotFound
	}

	if err := insertMessage(ctx, tx, conversationID, message); err != nil {
		return err
	}

	return errors.Wrap(tx.Commit(), "failed to commit tx")
}

func (d *DB) UpdateTitle(ctx context.Context, conversationID, title string, source store.TitleSource) error {
	result, err := d.db.ExecContext(ctx,
		"UPDATE conversation SET title = ?, title_source = ? WHERE id = ?",
		title, string(source), conversationID,
	)
	if err != nil {
		return errors.Wrap(err, "failed to update title")
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return store.ErrConversationNotFound
	}
	return nil
}

func (d *DB) DeleteConversation(ctx context.Context, id string) error {
	result, err := d.db.ExecContext(ctx, "DELETE FROM conversation WHERE id = ?", id)
	if err != nil {
		return errors.Wrap(err, "failed to delete conversation")
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return store.ErrConversationNotFound
	}
	return nil
}

func insertMessage(ctx context.Context, tx *sql.Tx, conversationID string, message *store.Message) error {
	stmt := `
		INSERT INTO message (id, conversation_id, type, content, sender, timestamp_ms, is_error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := tx.ExecContext(ctx, stmt,
		message.ID,
		conversationID,
		message.Type,
		message.Content,
		string(message.Sender),
		message.Timestamp.UnixMilli(),
		boolToInt(message.Error),
	)
	return errors.Wrap(err, "failed to insert message")
}

func (d *DB) listMessages(ctx context.Context, conversationID string) ([]store.Message, error) {
	stmt := `
		SELECT id, type, content, sender, timestamp_ms, is_error
		FROM message
		WHERE conversation_id = ?
		ORDER BY timestamp_ms ASC, rowid ASC
	`
	rows, err := d.db.QueryContext(ctx, stmt, conversationID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list messages")
	}
	defer rows.Close()

	var messages []store.Message
	for rows.Next() {
		var (
			message     store.Message
			sender      string
			timestampMs int64
			isError     int
		)
		if err := rows.Scan(
			&message.ID,
			&message.Type,
			&message.Content,
			&sender,
			&timestampMs,
			&isError,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan message")
		}
		message.Sender = store.Sender(sender)
		message.Timestamp = time.UnixMilli(timestampMs).UTC()
		message.Error = isError != 0
		messages = append(messages, message)
	}
	return messages, errors.Wrap(rows.Err(), "failed to iterate messages")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversation(row rowScanner) (*store.Conversation, error) {
	var (
		conversation  store.Conversation
		titleSource   string
		createdTs     int64
		lastMessageTs int64
	)
	if err := row.Scan(
		&conversation.ID,
		&conversation.UserID,
		&conversation.Title,
		&titleSource,
		&createdTs,
		&lastMessageTs,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrConversationNotFound
		}
		return nil, errors.Wrap(err, "failed to scan conversation")
	}
	conversation.TitleSource = store.TitleSource(titleSource)
	conversation.CreatedAt = time.Unix(createdTs, 0).UTC()
	conversation.LastMessageAt = time.Unix(lastMessageTs, 0).UTC()
	return &conversation, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
