package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hidemium/supportbot/internal/bot"
	"github.com/hidemium/supportbot/internal/classify"
	"github.com/hidemium/supportbot/internal/cskh"
	"github.com/hidemium/supportbot/internal/knowledge"
	"github.com/hidemium/supportbot/internal/llm"
	"github.com/hidemium/supportbot/internal/log"
	"github.com/hidemium/supportbot/internal/store"
)

type nopPersistence struct{}

func (nopPersistence) SaveMessage(context.Context, string, string, string, string) error { return nil }
func (nopPersistence) Messages(context.Context, string, int) ([]store.Message, error)   { return nil, nil }
func (nopPersistence) MessageCount(context.Context, string) (int, error)                { return 0, nil }
func (nopPersistence) SaveSummary(context.Context, string, string) error                { return nil }
func (nopPersistence) LatestSummary(context.Context, string) (string, error)            { return "", nil }

type nopSearch struct{}

func (nopSearch) Search(context.Context, string, ...knowledge.SearchOption) ([]knowledge.Result, error) {
	return nil, nil
}

func (nopSearch) Sources(context.Context) ([]string, error) { return nil, nil }

type nopLLM struct{}

func (nopLLM) Classify(context.Context, string) (llm.Intent, error) {
	return llm.Intent{Type: "question"}, nil
}
func (nopLLM) Translate(_ context.Context, t, _ string) (string, error) { return t, nil }
func (nopLLM) Summarize(context.Context, string) (string, error)        { return "", nil }

type fakeHistory struct {
	msgs []store.Message
}

func (f *fakeHistory) Messages(context.Context, string, int) ([]store.Message, error) {
	return f.msgs, nil
}

type fakeSources struct {
	sources []string
}

func (f *fakeSources) Sources(context.Context) ([]string, error) {
	return f.sources, nil
}

type fakeFiles struct {
	files []store.UploadedFile
}

func (f *fakeFiles) UploadedFiles(context.Context) ([]store.UploadedFile, error) {
	return f.files, nil
}

func newTestServer(t *testing.T, history HistoryStore, sources SourceLister) *Server {
	t.Helper()
	hub := cskh.NewHub(log.NewNop())
	b := bot.New(bot.Config{}, nopPersistence{}, nopSearch{}, nopLLM{}, hub,
		classify.NewBadwordFilter(""), log.NewNop())

	srv, err := NewServer(ServerConfig{
		Logger:    log.NewNop(),
		Bot:       b,
		Hub:       hub,
		Store:     history,
		Knowledge: sources,
		RateLimit: 1000,
		RateBurst: 1000,
	})
	require.NoError(t, err)
	return srv
}

func TestNewServerRequiresDeps(t *testing.T) {
	t.Parallel()

	_, err := NewServer(ServerConfig{})
	assert.Error(t, err)
}

func TestChatEndpoint(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeHistory{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat",
		strings.NewReader(`{"message": "hi"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var res bot.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, bot.ModeSocial, res.Mode)
	assert.NotEmpty(t, res.Response)
	assert.NotEmpty(t, res.SessionID, "a fresh session id is assigned")
}

func TestChatEndpointKeepsSessionID(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeHistory{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat",
		strings.NewReader(`{"session_id": "s-42", "message": "hello"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var res bot.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "s-42", res.SessionID)
}

func TestChatEndpointRejectsBadJSON(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeHistory{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatEndpointMethodNotAllowed(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeHistory{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/chat", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHistoryEndpoint(t *testing.T) {
	t.Parallel()

	history := &fakeHistory{msgs: []store.Message{
		{Role: "user", Content: "hi", CreatedAt: time.Now()},
		{Role: "bot", Content: "Hello 👋", Mode: "small_talk", CreatedAt: time.Now()},
	}}
	srv := newTestServer(t, history, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/history/s-1?limit=10", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		SessionID string           `json:"session_id"`
		Messages  []historyMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "s-1", body.SessionID)
	require.Len(t, body.Messages, 2)
	assert.Equal(t, "Hello 👋", body.Messages[1].Content)
}

func TestHistoryEndpointRejectsBadLimit(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeHistory{}, nil)

	for _, limit := range []string{"0", "-1", "9999", "abc"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/history/s-1?limit="+limit, nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "limit %s", limit)
	}
}

func TestSourcesEndpoint(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeHistory{}, &fakeSources{sources: []string{"faq.md", "guide.md"}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sources", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "faq.md")
}

func TestSourcesEndpointAbsentWithoutStore(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeHistory{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sources", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFilesEndpoint(t *testing.T) {
	t.Parallel()

	hub := cskh.NewHub(log.NewNop())
	b := bot.New(bot.Config{}, nopPersistence{}, nopSearch{}, nopLLM{}, hub,
		classify.NewBadwordFilter(""), log.NewNop())
	srv, err := NewServer(ServerConfig{
		Logger: log.NewNop(),
		Bot:    b,
		Hub:    hub,
		Store:  &fakeHistory{},
		Files: &fakeFiles{files: []store.UploadedFile{
			{Name: "faq.md", ChunkCount: 12},
		}},
		RateLimit: 1000,
		RateBurst: 1000,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/files", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "faq.md")
	assert.Contains(t, rec.Body.String(), `"chunk_count":12`)
}

func TestHealthProbes(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeHistory{}, nil)

	for _, path := range []string{"/health", "/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String(), path)
	}
}

func TestRateLimiter(t *testing.T) {
	t.Parallel()

	rl := newRateLimiter(1, 2)
	assert.True(t, rl.allow("1.2.3.4"))
	assert.True(t, rl.allow("1.2.3.4"))
	assert.False(t, rl.allow("1.2.3.4"))
	// Different IPs have independent buckets.
	assert.True(t, rl.allow("5.6.7.8"))
}

func TestRecoveryMiddleware(t *testing.T) {
	t.Parallel()

	handler := recoveryMiddleware(log.NewNop())(http.HandlerFunc(
		func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal_error")
}
