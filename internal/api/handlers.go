package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/hidemium/supportbot/internal/bot"
	"github.com/hidemium/supportbot/internal/cskh"
	"github.com/hidemium/supportbot/internal/log"
	"github.com/hidemium/supportbot/internal/store"
)

// HistoryStore is the persistence surface the history endpoint reads.
type HistoryStore interface {
	Messages(ctx context.Context, sessionID string, limit int) ([]store.Message, error)
}

// SourceLister lists the indexed documentation sources.
type SourceLister interface {
	Sources(ctx context.Context) ([]string, error)
}

// FileLister lists ingested source documents.
type FileLister interface {
	UploadedFiles(ctx context.Context) ([]store.UploadedFile, error)
}

// maxMessageBytes bounds the chat request body.
const maxMessageBytes = 16 << 10

// defaultHistoryLimit is how many turns /history returns when unspecified.
const defaultHistoryLimit = 50

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type historyMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Mode      string    `json:"mode,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type chatHandler struct {
	bot    *bot.Bot
	store  HistoryStore
	logger log.Logger
}

// send is POST /api/v1/chat. A missing session_id starts a new session.
func (h *chatHandler) send(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxMessageBytes)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body", h.logger)
		return
	}

	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}

	res, err := h.bot.Route(r.Context(), req.SessionID, req.Message)
	if err != nil {
		h.logger.Error("route failed", "session_id", req.SessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error",
			"failed to process message", h.logger)
		return
	}

	// The chat session id rides along unless a hand-off already set one.
	if res.SessionID == "" {
		res.SessionID = req.SessionID
	}
	writeJSON(w, http.StatusOK, res, h.logger)
}

// history is GET /api/v1/history/{session_id}?limit=N.
func (h *chatHandler) history(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session_id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "session_id is required", h.logger)
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			writeError(w, http.StatusBadRequest, "bad_request",
				"limit must be between 1 and 500", h.logger)
			return
		}
		limit = n
	}

	msgs, err := h.store.Messages(r.Context(), sessionID, limit)
	if err != nil {
		h.logger.Error("load history failed", "session_id", sessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error",
			"failed to load history", h.logger)
		return
	}

	out := make([]historyMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, historyMessage{
			Role:      m.Role,
			Content:   m.Content,
			Mode:      m.Mode,
			CreatedAt: m.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"messages":   out,
	}, h.logger)
}

type knowledgeHandler struct {
	store  SourceLister
	files  FileLister
	logger log.Logger
}

// sources is GET /api/v1/sources.
func (h *knowledgeHandler) sources(w http.ResponseWriter, r *http.Request) {
	sources, err := h.store.Sources(r.Context())
	if err != nil {
		h.logger.Error("list sources failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error",
			"failed to list sources", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sources": sources}, h.logger)
}

type uploadedFile struct {
	Name       string    `json:"name"`
	ChunkCount int       `json:"chunk_count"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// uploadedFiles is GET /api/v1/files.
func (h *knowledgeHandler) uploadedFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.files.UploadedFiles(r.Context())
	if err != nil {
		h.logger.Error("list uploaded files failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error",
			"failed to list files", h.logger)
		return
	}
	out := make([]uploadedFile, 0, len(files))
	for _, f := range files {
		out = append(out, uploadedFile{Name: f.Name, ChunkCount: f.ChunkCount, UploadedAt: f.UploadedAt})
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": out}, h.logger)
}

type wsHandler struct {
	hub    *cskh.Hub
	logger log.Logger
}

// operator is GET /ws/operator: the single support operator socket.
func (h *wsHandler) operator(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.logger.Warn("operator websocket accept failed", "error", err)
		return
	}
	h.hub.RunOperator(r.Context(), conn)
}

// customer is GET /ws/customer/{session_id}: one transferred customer.
func (h *wsHandler) customer(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session_id")
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.logger.Warn("customer websocket accept failed", "session_id", sessionID, "error", err)
		return
	}
	h.hub.RunCustomer(r.Context(), sessionID, conn)
}
