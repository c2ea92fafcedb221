package session

import (
	"context"
	"fmt"
	"time"

	"github.com/propdesk/propdesk/internal/storage/postgres"
)

type PostgresStore struct {
	db  *postgres.Client
	ttl time.Duration
	now func() time.Time
}

func NewPostgresStore(db *postgres.Client, ttl time.Duration) *PostgresStore {
	return &PostgresStore{db: db, ttl: ttl, now: time.Now}
}

func (s *PostgresStore) Load(ctx context.Context, sid string) (Values, error) {
	query := `SELECT key, value FROM session_entries WHERE sid = $1 AND updated_at > $2`
	rows, err := s.db.DB.QueryContext(ctx, query, sid, s.now().Add(-s.ttl))
	if err != nil {
		return Values{}, fmt.Errorf("load session: %w", err)
	}
	defer rows.Close()

	m := make(map[string]string, 3)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return Values{}, fmt.Errorf("scan session entry: %w", err)
		}
		m[key] = value
	}
	if err := rows.Err(); err != nil {
		return Values{}, fmt.Errorf("load session: %w", err)
	}
	return valuesFrom(m), nil
}

func (s *PostgresStore) Save(ctx context.Context, sid string, v Values) error {
	tx, err := s.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin session save: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO session_entries (sid, key, value, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (sid, key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	now := s.now()
	for _, key := range []string{KeyToken, KeyName, KeyEmail} {
		if _, err := tx.ExecContext(ctx, query, sid, key, v.entries()[key], now); err != nil {
			return fmt.Errorf("save session entry %s: %w", key, err)
		}
	}
	return tx.Commit()
}

func (s *PostgresStore) Delete(ctx context.Context, sid string) error {
	if _, err := s.db.DB.ExecContext(ctx, `DELETE FROM session_entries WHERE sid = $1`, sid); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *PostgresStore) Purge(ctx context.Context) (int64, error) {
	res, err := s.db.DB.ExecContext(ctx, `DELETE FROM session_entries WHERE updated_at <= $1`, s.now().Add(-s.ttl))
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return res.RowsAffected()
}
