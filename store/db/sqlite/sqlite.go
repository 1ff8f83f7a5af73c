// Package sqlite implements the conversation store driver on a local SQLite
// file via the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	// Import the SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/citycompass/citycompass/internal/profile"
	"github.com/citycompass/citycompass/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens the SQLite database named by profile.DSN and ensures the
// schema exists.
//
// Pragmas: WAL journal mode avoids reader/writer locking and a busy timeout
// covers the occasional concurrent write. With the modernc driver each
// pragma is passed as a `_pragma=` query parameter.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	sqliteDB, err := sql.Open("sqlite", profile.DSN+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}

	// A single connection is optimal for SQLite with WAL.
	sqliteDB.SetMaxOpenConns(1)
	sqliteDB.SetMaxIdleConns(1)
	sqliteDB.SetConnMaxLifetime(0)

	driver := &DB{db: sqliteDB, profile: profile}
	if err := driver.migrate(context.Background()); err != nil {
		_ = sqliteDB.Close()
		return nil, errors.Wrap(err, "failed to migrate schema")
	}
	return driver, nil
}

func (d *DB) migrate(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS conversation (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL,
		title_source TEXT NOT NULL DEFAULT 'default',
		created_ts BIGINT NOT NULL,
		last_message_ts BIGINT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_conversation_user_id ON conversation (user_id);

	CREATE TABLE IF NOT EXISTS message (
		id TEXT PRIMARY KEY,
		conversation_id TEXT NOT NULL REFERENCES conversation (id) ON DELETE CASCADE,
		type TEXT NOT NULL DEFAULT 'text',
		content TEXT NOT NULL,
		sender TEXT NOT NULL,
		timestamp_ms BIGINT NOT NULL,
		is_error INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_message_conversation_id ON message (conversation_id, timestamp_ms);
	`
	_, err := d.db.ExecContext(ctx, schema)
	return err
}

func (d *DB) Close() error {
	return d.db.Close()
}
