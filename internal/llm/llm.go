// Package llm wraps the Genkit Gemini model behind the narrow interface the
// routing pipeline needs: intent classification, translation and
// summarization. Every call carries a hard timeout; on timeout the in-flight
// model call is abandoned and the caller substitutes a localized busy reply.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"golang.org/x/time/rate"

	"github.com/hidemium/supportbot/internal/log"
)

// ErrBusy indicates the model call exceeded the configured timeout.
var ErrBusy = errors.New("llm busy")

// Intent is the classification result for one message.
type Intent struct {
	Type   string `json:"type"`   // "question", "social", "other"
	Intent string `json:"intent"` // finer-grained label, may be empty
}

// Client is the model surface the pipeline consumes.
type Client interface {
	// Classify labels the message with a coarse type and fine intent.
	Classify(ctx context.Context, message string) (Intent, error)
	// Translate renders text into the target language tag.
	Translate(ctx context.Context, text, lang string) (string, error)
	// Summarize condenses a conversation transcript.
	Summarize(ctx context.Context, transcript string) (string, error)
}

// Gemini implements Client over a Genkit instance.
type Gemini struct {
	g         *genkit.Genkit
	modelName string
	system    string
	timeout   time.Duration
	limiter   *rate.Limiter
	logger    log.Logger
}

// Option configures a Gemini client.
type Option func(*Gemini)

// WithSystemPrompt sets the system instruction sent with every model call.
func WithSystemPrompt(prompt string) Option {
	return func(c *Gemini) { c.system = prompt }
}

// NewGemini builds a Gemini client. modelName is provider-qualified
// ("googleai/gemini-2.5-flash"). Calls are rate limited proactively to stay
// under the provider quota: 10 req/s sustained, burst of 30.
func NewGemini(g *genkit.Genkit, modelName string, timeout time.Duration, logger log.Logger, opts ...Option) *Gemini {
	c := &Gemini{
		g:         g,
		modelName: modelName,
		timeout:   timeout,
		limiter:   rate.NewLimiter(10, 30),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type generateResult struct {
	text string
	err  error
}

// generate runs one model call under the client timeout. The inner call keeps
// running in its goroutine after a timeout; its result is discarded through
// the buffered channel so the goroutine never leaks on send.
func (c *Gemini) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: rate limit wait: %v", ErrBusy, err)
	}

	ch := make(chan generateResult, 1)
	go func() {
		genOpts := []ai.GenerateOption{
			ai.WithModelName(c.modelName),
			ai.WithPrompt(prompt),
		}
		if c.system != "" {
			genOpts = append(genOpts, ai.WithSystem(c.system))
		}
		response, err := genkit.Generate(ctx, c.g, genOpts...)
		if err != nil {
			ch <- generateResult{err: err}
			return
		}
		ch <- generateResult{text: response.Text()}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			return "", fmt.Errorf("generating response: %w", res.err)
		}
		return res.text, nil
	case <-ctx.Done():
		c.logger.Warn("model call abandoned", "timeout", c.timeout)
		return "", fmt.Errorf("%w: %v", ErrBusy, ctx.Err())
	}
}

const classifyPrompt = `Classify the user message into a type and intent.
Types: "question" (product or documentation question), "social" (greeting, chitchat, pleasantry), "other".
For "social", intent is one of: greeting, thanks, goodbye, who_are_you, what_doing, chitchat.
For "question" and "other", intent may be empty.
Reply with exactly one line: type|intent

Message: %s`

// Classify labels the message. Malformed model output degrades to
// {"question", ""} so retrieval still gets a chance.
func (c *Gemini) Classify(ctx context.Context, message string) (Intent, error) {
	text, err := c.generate(ctx, fmt.Sprintf(classifyPrompt, message))
	if err != nil {
		return Intent{}, err
	}
	return ParseIntent(text), nil
}

// ParseIntent parses the "type|intent" classification line.
func ParseIntent(text string) Intent {
	line := strings.TrimSpace(text)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	typ, intentName, _ := strings.Cut(line, "|")
	typ = strings.ToLower(strings.TrimSpace(typ))
	intentName = strings.ToLower(strings.TrimSpace(intentName))

	switch typ {
	case "question", "social", "other":
		return Intent{Type: typ, Intent: intentName}
	default:
		return Intent{Type: "question"}
	}
}

// Translate renders text into the target language. Empty text and unknown
// tags pass through untouched.
func (c *Gemini) Translate(ctx context.Context, text, lang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	langName := map[string]string{"vi": "Vietnamese", "en": "English", "zh": "Chinese", "ru": "Russian"}[lang]
	if langName == "" {
		return text, nil
	}
	prompt := fmt.Sprintf("Translate the following support answer into %s. "+
		"Keep formatting, bullets and emoji unchanged. Reply with the translation only.\n\n%s",
		langName, text)
	return c.generate(ctx, prompt)
}

// Summarize condenses a transcript into a short topic summary.
func (c *Gemini) Summarize(ctx context.Context, transcript string) (string, error) {
	prompt := "Summarize this customer support conversation in 3-4 sentences, " +
		"in the conversation's own language. Focus on what the customer asked " +
		"about and what was resolved.\n\n" + transcript
	return c.generate(ctx, prompt)
}
