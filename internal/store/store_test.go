package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hidemium/supportbot/internal/log"
)

// fakeDB records executed SQL and serves canned rows.
type fakeDB struct {
	execSQL  []string
	execArgs [][]any
	rows     *fakeRows
	row      *fakeRow
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execSQL = append(f.execSQL, sql)
	f.execArgs = append(f.execArgs, args)
	return pgconn.CommandTag{}, nil
}

func (f *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	return f.rows, nil
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	return f.row
}

// fakeRows serves [][]any through the pgx.Rows interface.
type fakeRows struct {
	data [][]any
	pos  int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos <= len(r.data)
}
func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.pos-1]
	for i, d := range dest {
		assign(d, row[i])
	}
	return nil
}
func (r *fakeRows) Values() ([]any, error) { return nil, nil }
func (r *fakeRows) RawValues() [][]byte    { return nil }
func (r *fakeRows) Conn() *pgx.Conn        { return nil }

type fakeRow struct {
	data []any
	err  error
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		assign(d, r.data[i])
	}
	return nil
}

func assign(dest, src any) {
	switch d := dest.(type) {
	case *int64:
		*d = src.(int64)
	case *int:
		*d = src.(int)
	case *string:
		*d = src.(string)
	case *time.Time:
		*d = src.(time.Time)
	}
}

func TestSaveMessage(t *testing.T) {
	t.Parallel()

	db := &fakeDB{}
	s := New(db, log.NewNop())

	require.NoError(t, s.SaveMessage(context.Background(), "abc", "user", "hi", "social"))
	require.Len(t, db.execSQL, 1)
	assert.Contains(t, db.execSQL[0], "INSERT INTO chat_messages")
	assert.Equal(t, []any{"abc", "user", "hi", "social"}, db.execArgs[0])
}

func TestMessagesReversesToChronological(t *testing.T) {
	t.Parallel()

	now := time.Now()
	// Newest-first as the query returns them.
	db := &fakeDB{rows: &fakeRows{data: [][]any{
		{int64(3), "abc", "bot", "answer", "knowledge", now},
		{int64(2), "abc", "user", "question", "", now},
		{int64(1), "abc", "bot", "hello", "social", now},
	}}}
	s := New(db, log.NewNop())

	msgs, err := s.Messages(context.Background(), "abc", 50)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, int64(1), msgs[0].ID)
	assert.Equal(t, int64(3), msgs[2].ID)
	assert.Equal(t, "answer", msgs[2].Content)
}

func TestLatestSummaryNoRows(t *testing.T) {
	t.Parallel()

	db := &fakeDB{row: &fakeRow{err: pgx.ErrNoRows}}
	s := New(db, log.NewNop())

	summary, err := s.LatestSummary(context.Background(), "abc")
	require.NoError(t, err)
	assert.Empty(t, summary)
}

func TestConfigValue(t *testing.T) {
	t.Parallel()

	db := &fakeDB{row: &fakeRow{data: []any{"be friendly"}}}
	s := New(db, log.NewNop())

	v, err := s.ConfigValue(context.Background(), "system_prompt")
	require.NoError(t, err)
	assert.Equal(t, "be friendly", v)

	db.row = &fakeRow{err: pgx.ErrNoRows}
	v, err = s.ConfigValue(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestSetConfigValueUpserts(t *testing.T) {
	t.Parallel()

	db := &fakeDB{}
	s := New(db, log.NewNop())

	require.NoError(t, s.SetConfigValue(context.Background(), "k", "v"))
	require.Len(t, db.execSQL, 1)
	assert.Contains(t, db.execSQL[0], "ON CONFLICT (key)")
}

func TestMessageCount(t *testing.T) {
	t.Parallel()

	db := &fakeDB{row: &fakeRow{data: []any{42}}}
	s := New(db, log.NewNop())

	n, err := s.MessageCount(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, 42, n)
}
