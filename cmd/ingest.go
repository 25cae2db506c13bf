package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/hidemium/supportbot/db"
	"github.com/hidemium/supportbot/internal/config"
	"github.com/hidemium/supportbot/internal/knowledge"
	"github.com/hidemium/supportbot/internal/log"
	"github.com/hidemium/supportbot/internal/store"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Index documentation files into the knowledge base",
	Long: `Ingest splits each file into chunks, embeds them and upserts them into
the documents table. Re-ingesting a file replaces its previous chunks.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest(cmd.Context(), args)
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(ctx context.Context, paths []string) error {
	if err := checkRequiredEnv(); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := log.New(log.Config{})

	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, cfg.PostgresConnectionString())
	if err != nil {
		return fmt.Errorf("creating connection pool: %w", err)
	}
	defer pool.Close()

	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	embedder := googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel)

	kn := knowledge.New(pool, embedder, logger)
	st := store.New(pool, logger)

	for _, path := range paths {
		n, err := ingestFile(ctx, kn, st, path)
		if err != nil {
			return fmt.Errorf("ingesting %s: %w", path, err)
		}
		fmt.Printf("%s: %d chunks indexed\n", path, n)
	}
	return nil
}

func ingestFile(ctx context.Context, kn *knowledge.Store, st *store.Store, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading file: %w", err)
	}

	name := filepath.Base(path)

	// Re-ingest replaces the file's previous chunks wholesale.
	if _, err := kn.DeleteBySource(ctx, name); err != nil {
		return 0, err
	}

	chunks := splitChunks(string(data))
	now := time.Now()
	for i, chunk := range chunks {
		doc := knowledge.Document{
			ID:       fmt.Sprintf("%s#%d", name, i),
			Content:  chunk,
			Source:   name,
			Title:    chunkTitle(chunk),
			CreateAt: now,
		}
		if err := kn.Add(ctx, doc); err != nil {
			return 0, err
		}
	}

	if err := st.RecordUploadedFile(ctx, name, len(chunks)); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

// chunkTitle extracts the chunk's leading markdown heading, if it has one.
func chunkTitle(chunk string) string {
	line, _, _ := strings.Cut(chunk, "\n")
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "#") {
		return ""
	}
	return strings.TrimSpace(strings.TrimLeft(line, "# "))
}

// splitChunks breaks a document into retrieval units on horizontal rules and
// blank-line gaps, dropping fragments too short to stand alone.
func splitChunks(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var chunks []string
	for _, section := range strings.Split(text, "\n---\n") {
		for _, block := range strings.Split(section, "\n\n") {
			block = strings.TrimSpace(block)
			if len([]rune(block)) < 15 {
				continue
			}
			chunks = append(chunks, block)
		}
	}
	return chunks
}
