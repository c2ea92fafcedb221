package postgres

import (
	"context"
	"fmt"
)

// SessionSchema holds one row per session entry (token, name, email).
const SessionSchema = `
CREATE TABLE IF NOT EXISTS session_entries (
	sid        TEXT        NOT NULL,
	key        TEXT        NOT NULL,
	value      TEXT        NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (sid, key)
);
CREATE INDEX IF NOT EXISTS session_entries_updated_at_idx ON session_entries (updated_at);`

func (c *Client) Migrate(ctx context.Context) error {
	if _, err := c.DB.ExecContext(ctx, SessionSchema); err != nil {
		return fmt.Errorf("migrate session schema: %w", err)
	}
	return nil
}

func (c *Client) DropSchema(ctx context.Context) error {
	if _, err := c.DB.ExecContext(ctx, `DROP TABLE IF EXISTS session_entries`); err != nil {
		return fmt.Errorf("drop session schema: %w", err)
	}
	return nil
}
