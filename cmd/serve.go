package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/hidemium/supportbot/db"
	"github.com/hidemium/supportbot/internal/api"
	"github.com/hidemium/supportbot/internal/bot"
	"github.com/hidemium/supportbot/internal/classify"
	"github.com/hidemium/supportbot/internal/config"
	"github.com/hidemium/supportbot/internal/cskh"
	"github.com/hidemium/supportbot/internal/knowledge"
	"github.com/hidemium/supportbot/internal/llm"
	"github.com/hidemium/supportbot/internal/log"
	"github.com/hidemium/supportbot/internal/store"
)

// Server timeout configuration.
const (
	readHeaderTimeout = 10 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 2 * time.Minute // websocket sessions stay open
	idleTimeout       = 2 * time.Minute
	shutdownTimeout   = 30 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP chat server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// runServe initializes and starts the HTTP server.
func runServe() error {
	if err := checkRequiredEnv(); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := log.New(log.Config{JSON: true})
	logger.Info("starting supportbot", "version", AppVersion, "addr", cfg.ListenAddr)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, cfg.PostgresConnectionString())
	if err != nil {
		return fmt.Errorf("creating connection pool: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}

	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	embedder := googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel)

	st := store.New(pool, logger)
	kn := knowledge.New(pool, embedder, logger)

	var llmOpts []llm.Option
	systemPrompt, err := st.SystemPrompt(ctx)
	if err != nil {
		logger.Warn("loading system prompt", "error", err)
	} else if systemPrompt != "" {
		llmOpts = append(llmOpts, llm.WithSystemPrompt(systemPrompt))
	}

	model := llm.NewGemini(g, cfg.FullModelName(),
		time.Duration(cfg.LLMTimeoutSec)*time.Second, logger, llmOpts...)
	hub := cskh.NewHub(logger)
	badwords := classify.NewBadwordFilter(cfg.BadwordsFilePath)

	b := bot.New(bot.Config{
		SummaryMinTurns: cfg.SummaryMinTurns,
		RetrievalTopK:   cfg.RetrievalTopK,
	}, st, kn, model, hub, badwords, logger)

	apiServer, err := api.NewServer(api.ServerConfig{
		Logger:    logger,
		Bot:       b,
		Hub:       hub,
		Store:     st,
		Knowledge: kn,
		Files:     st,
		Pool:      pool,
		RateLimit: float64(cfg.RateLimit),
		RateBurst: cfg.RateBurst,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	logger.Info("HTTP server ready",
		"addr", cfg.ListenAddr,
		"api", "/api/v1/*",
		"ws", "/ws/operator, /ws/customer/{session_id}",
		"health", "/health, /ready",
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down HTTP server")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down server: %w", err)
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("HTTP server: %w", err)
	}
}

// checkRequiredEnv is a fast preflight for operators; config validation
// repeats the check with a friendlier error.
func checkRequiredEnv() error {
	if os.Getenv("GEMINI_API_KEY") == "" {
		return errors.New("GEMINI_API_KEY environment variable is required")
	}
	return nil
}
