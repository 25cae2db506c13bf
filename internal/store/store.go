// Package store persists conversation history, summaries, bot configuration
// and uploaded-file records in PostgreSQL via pgx.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hidemium/supportbot/internal/log"
)

// DB is the subset of pgxpool.Pool the store uses. Consumer-defined so tests
// can substitute a fake.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Message is one persisted conversation turn.
type Message struct {
	ID        int64
	SessionID string
	Role      string // "user" or "bot"
	Content   string
	Mode      string
	CreatedAt time.Time
}

// UploadedFile records one ingested source document.
type UploadedFile struct {
	ID         int64
	Name       string
	ChunkCount int
	UploadedAt time.Time
}

// Store is the Postgres-backed persistence layer.
type Store struct {
	db     DB
	logger log.Logger
}

// New builds a Store on the given connection pool.
func New(db DB, logger log.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// SaveMessage appends one turn to the conversation history.
func (s *Store) SaveMessage(ctx context.Context, sessionID, role, content, mode string) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO chat_messages (session_id, role, content, mode) VALUES ($1, $2, $3, $4)`,
		sessionID, role, content, mode)
	if err != nil {
		return fmt.Errorf("saving message: %w", err)
	}
	return nil
}

// Messages returns the most recent limit turns for a session in
// chronological order.
func (s *Store) Messages(ctx context.Context, sessionID string, limit int) ([]Message, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, session_id, role, content, mode, created_at
		 FROM chat_messages WHERE session_id = $1
		 ORDER BY id DESC LIMIT $2`,
		sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("loading messages: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.Mode, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}

	// Query is newest-first for the LIMIT; callers want oldest-first.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// MessageCount returns the number of stored turns for a session.
func (s *Store) MessageCount(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM chat_messages WHERE session_id = $1`, sessionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting messages: %w", err)
	}
	return n, nil
}

// SaveSummary stores a new conversation summary for the session.
func (s *Store) SaveSummary(ctx context.Context, sessionID, summary string) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO conversation_summaries (session_id, summary) VALUES ($1, $2)`,
		sessionID, summary)
	if err != nil {
		return fmt.Errorf("saving summary: %w", err)
	}
	return nil
}

// LatestSummary returns the newest summary for the session, or "" when none
// exists yet.
func (s *Store) LatestSummary(ctx context.Context, sessionID string) (string, error) {
	var summary string
	err := s.db.QueryRow(ctx,
		`SELECT summary FROM conversation_summaries
		 WHERE session_id = $1 ORDER BY id DESC LIMIT 1`,
		sessionID).Scan(&summary)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("loading summary: %w", err)
	}
	return summary, nil
}

// ConfigValue returns the stored value for key, or "" when unset.
func (s *Store) ConfigValue(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRow(ctx,
		`SELECT value FROM bot_config WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("loading config %q: %w", key, err)
	}
	return value, nil
}

// SetConfigValue upserts a configuration key.
func (s *Store) SetConfigValue(ctx context.Context, key, value string) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO bot_config (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value)
	if err != nil {
		return fmt.Errorf("setting config %q: %w", key, err)
	}
	return nil
}

// SystemPrompt returns the operator-editable system prompt, if any.
func (s *Store) SystemPrompt(ctx context.Context) (string, error) {
	return s.ConfigValue(ctx, "system_prompt")
}

// RecordUploadedFile registers an ingested source document.
func (s *Store) RecordUploadedFile(ctx context.Context, name string, chunkCount int) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO uploaded_files (name, chunk_count) VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET chunk_count = EXCLUDED.chunk_count, uploaded_at = now()`,
		name, chunkCount)
	if err != nil {
		return fmt.Errorf("recording uploaded file: %w", err)
	}
	return nil
}

// UploadedFiles lists ingested source documents, newest first.
func (s *Store) UploadedFiles(ctx context.Context) ([]UploadedFile, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, chunk_count, uploaded_at FROM uploaded_files ORDER BY uploaded_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing uploaded files: %w", err)
	}
	defer rows.Close()

	var files []UploadedFile
	for rows.Next() {
		var f UploadedFile
		if err := rows.Scan(&f.ID, &f.Name, &f.ChunkCount, &f.UploadedAt); err != nil {
			return nil, fmt.Errorf("scanning uploaded file: %w", err)
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating uploaded files: %w", err)
	}
	return files, nil
}
