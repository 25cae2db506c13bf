package config

import (
	"fmt"
	"os"
	"strings"
)

// Validate validates configuration values.
// Returns sentinel errors that can be checked with errors.Is().
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	if os.Getenv("GEMINI_API_KEY") == "" {
		return fmt.Errorf("%w: GEMINI_API_KEY environment variable is required\n"+
			"Get your API key at: https://ai.google.dev/gemini-api/docs/api-key",
			ErrMissingAPIKey)
	}

	if c.ModelName == "" {
		return fmt.Errorf("%w: model_name cannot be empty", ErrInvalidModelName)
	}

	if c.EmbedderModel == "" {
		return fmt.Errorf("%w: embedder_model cannot be empty", ErrInvalidEmbedderModel)
	}

	if c.ListenAddr == "" || !strings.Contains(c.ListenAddr, ":") {
		return fmt.Errorf("%w: must be host:port or :port, got %q", ErrInvalidListenAddr, c.ListenAddr)
	}

	if c.SummaryMinTurns < 1 || c.SummaryMinTurns > 1000 {
		return fmt.Errorf("%w: must be between 1 and 1000, got %d", ErrInvalidSummaryTurns, c.SummaryMinTurns)
	}

	if c.LLMTimeoutSec < 1 || c.LLMTimeoutSec > 300 {
		return fmt.Errorf("%w: must be between 1 and 300 seconds, got %d", ErrInvalidLLMTimeout, c.LLMTimeoutSec)
	}

	if c.PostgresHost == "" {
		return fmt.Errorf("%w: host cannot be empty", ErrInvalidPostgresHost)
	}

	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: must be between 1 and 65535, got %d", ErrInvalidPostgresPort, c.PostgresPort)
	}

	if c.PostgresDBName == "" {
		return fmt.Errorf("%w: database name cannot be empty", ErrInvalidPostgresDBName)
	}

	return nil
}
