package knowledge

import "time"

// Document is one indexed documentation chunk.
type Document struct {
	ID       string
	Content  string
	Source   string // originating file name
	Title    string // section heading, empty when the chunk has none
	CreateAt time.Time
}

// Result is a single search result with similarity score.
type Result struct {
	Document   Document
	Similarity float32 // cosine similarity (0-1)
}

// SearchOption configures search behavior using the functional options
// pattern, following context.WithTimeout, grpc.Dial and friends.
type SearchOption func(*searchConfig)

// searchConfig holds internal search configuration.
type searchConfig struct {
	topK    int
	source  string
	timeout time.Duration
}

// WithTopK sets the maximum number of results to return. Default is 5.
func WithTopK(k int) SearchOption {
	return func(c *searchConfig) {
		c.topK = k
	}
}

// WithSource restricts results to chunks from the named source file.
func WithSource(source string) SearchOption {
	return func(c *searchConfig) {
		c.source = source
	}
}

// WithTimeout overrides the default 10s search timeout.
func WithTimeout(d time.Duration) SearchOption {
	return func(c *searchConfig) {
		c.timeout = d
	}
}

// buildSearchConfig applies search options and returns the final configuration.
func buildSearchConfig(opts []SearchOption) *searchConfig {
	cfg := &searchConfig{
		topK:    5,
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
