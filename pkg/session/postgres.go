package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is a Store implementation backed by PostgreSQL.
// Session values are stored as JSONB; numeric values come back as float64.
type PostgresStore struct {
	pool  *pgxpool.Pool
	table string
}

// PostgresStoreOption configures a PostgresStore.
type PostgresStoreOption func(*PostgresStore)

// WithPostgresTable sets the table name. Default: "sessions".
func WithPostgresTable(name string) PostgresStoreOption {
	return func(s *PostgresStore) {
		if name != "" {
			s.table = name
		}
	}
}

// NewPostgresStore creates a PostgreSQL-backed session store.
// Call Migrate once at startup, or create the schema with your own
// migration tooling.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresStoreOption) *PostgresStore {
	s := &PostgresStore{
		pool:  pool,
		table: "sessions",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Migrate creates the sessions table and its indexes if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	ddl := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %[1]s (
	id TEXT PRIMARY KEY,
	token TEXT NOT NULL UNIQUE,
	user_id TEXT,
	ip TEXT NOT NULL DEFAULT '',
	user_agent TEXT NOT NULL DEFAULT '',
	data JSONB NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL,
	last_active_at TIMESTAMPTZ NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS %[1]s_user_id_idx ON %[1]s (user_id) WHERE user_id IS NOT NULL;
CREATE INDEX IF NOT EXISTS %[1]s_expires_at_idx ON %[1]s (expires_at);`, s.table)

	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("session: migrate: %w", err)
	}
	return nil
}

// Create persists a new session.
func (s *PostgresStore) Create(ctx context.Context, sess *Session) error {
	query := fmt.Sprintf(`
INSERT INTO %s (id, token, user_id, ip, user_agent, data, created_at, last_active_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`, s.table)

	_, err := s.pool.Exec(ctx, query,
		sess.ID, sess.Token, sess.UserID, sess.IP, sess.UserAgent,
		sess.Values, sess.CreatedAt, sess.LastActiveAt, sess.ExpiresAt)
	if err != nil {
		return fmt.Errorf("session: insert: %w", err)
	}
	return nil
}

// Get retrieves a session by its token.
func (s *PostgresStore) Get(ctx context.Context, token string) (*Session, error) {
	query := fmt.Sprintf(`
SELECT id, token, user_id, ip, user_agent, data, created_at, last_active_at, expires_at
FROM %s WHERE token = $1`, s.table)

	sess := &Session{}
	err := s.pool.QueryRow(ctx, query, token).Scan(
		&sess.ID, &sess.Token, &sess.UserID, &sess.IP, &sess.UserAgent,
		&sess.Values, &sess.CreatedAt, &sess.LastActiveAt, &sess.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("session: select: %w", err)
	}

	if sess.IsExpired() {
		_ = s.Delete(ctx, sess.ID)
		return nil, ErrExpired
	}
	if sess.Values == nil {
		sess.Values = make(map[string]any)
	}
	return sess, nil
}

// Update saves changes to an existing session. The row is matched by ID,
// so token rotation is a plain column update.
func (s *PostgresStore) Update(ctx context.Context, sess *Session) error {
	query := fmt.Sprintf(`
UPDATE %s SET token = $2, user_id = $3, data = $4, last_active_at = $5, expires_at = $6
WHERE id = $1`, s.table)

	tag, err := s.pool.Exec(ctx, query,
		sess.ID, sess.Token, sess.UserID, sess.Values, sess.LastActiveAt, sess.ExpiresAt)
	if err != nil {
		return fmt.Errorf("session: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a session by its ID.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, s.table)
	if _, err := s.pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("session: delete: %w", err)
	}
	return nil
}

// DeleteByUserID removes all sessions for a user.
func (s *PostgresStore) DeleteByUserID(ctx context.Context, userID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1`, s.table)
	if _, err := s.pool.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("session: delete by user: %w", err)
	}
	return nil
}

// Touch updates the LastActiveAt timestamp without loading the full session.
func (s *PostgresStore) Touch(ctx context.Context, id string, lastActiveAt time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET last_active_at = $2 WHERE id = $1`, s.table)
	tag, err := s.pool.Exec(ctx, query, id, lastActiveAt)
	if err != nil {
		return fmt.Errorf("session: touch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteExpired removes all expired sessions. Wire it into a scheduled
// task to keep the table from growing unbounded.
func (s *PostgresStore) DeleteExpired(ctx context.Context) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE expires_at < now()`, s.table)
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("session: delete expired: %w", err)
	}
	return nil
}
