// Package api exposes the bot over HTTP: the chat endpoint, conversation
// history, the CSKH websockets and health probes.
package api

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hidemium/supportbot/internal/bot"
	"github.com/hidemium/supportbot/internal/cskh"
	"github.com/hidemium/supportbot/internal/log"
)

// ServerConfig contains configuration for creating the HTTP server.
type ServerConfig struct {
	Logger    log.Logger
	Bot       *bot.Bot      // Required
	Hub       *cskh.Hub     // Required
	Store     HistoryStore  // Required
	Knowledge SourceLister  // Optional: nil disables /api/v1/sources
	Files     FileLister    // Optional: nil disables /api/v1/files
	Pool      *pgxpool.Pool // Optional: nil disables DB ping in /ready
	RateLimit float64       // tokens/sec per IP (0 = default 10)
	RateBurst int           // burst per IP (0 = default 20)
}

// Server is the JSON API HTTP server.
type Server struct {
	mux *http.ServeMux
}

// NewServer creates the server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Bot == nil {
		return nil, errors.New("bot is required")
	}
	if cfg.Hub == nil {
		return nil, errors.New("cskh hub is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("store is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(log.Config{})
	}

	ch := &chatHandler{bot: cfg.Bot, store: cfg.Store, logger: logger}
	wh := &wsHandler{hub: cfg.Hub, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/chat", ch.send)
	mux.HandleFunc("GET /api/v1/history/{session_id}", ch.history)
	if cfg.Knowledge != nil || cfg.Files != nil {
		kh := &knowledgeHandler{store: cfg.Knowledge, files: cfg.Files, logger: logger}
		if cfg.Knowledge != nil {
			mux.HandleFunc("GET /api/v1/sources", kh.sources)
		}
		if cfg.Files != nil {
			mux.HandleFunc("GET /api/v1/files", kh.uploadedFiles)
		}
	}

	// Live hand-off sockets.
	mux.HandleFunc("GET /ws/operator", wh.operator)
	mux.HandleFunc("GET /ws/customer/{session_id}", wh.customer)

	limit := cfg.RateLimit
	if limit <= 0 {
		limit = 10
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 20
	}
	rl := newRateLimiter(limit, burst)

	// Middleware stack (outermost first):
	//   Recovery → RequestID → Logging → RateLimit → Routes
	// RequestID must be before Logging so request_id is available in log
	// attributes.
	var handler http.Handler = mux
	handler = rateLimitMiddleware(rl, logger)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = requestIDMiddleware()(handler)
	handler = recoveryMiddleware(logger)(handler)

	// Health probes bypass the middleware stack.
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /health", health)
	topMux.Handle("GET /ready", readiness(cfg.Pool))
	topMux.Handle("/", handler)

	return &Server{mux: topMux}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}
