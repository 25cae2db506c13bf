// Package bot implements the message routing pipeline: the classifier
// cascade that picks between canned replies, the denial state machine, live
// hand-off and the retrieval-grounded knowledge flow.
package bot

import (
	"context"
	"math/rand/v2"
	"strings"

	"github.com/hidemium/supportbot/internal/classify"
	"github.com/hidemium/supportbot/internal/cskh"
	"github.com/hidemium/supportbot/internal/intent"
	"github.com/hidemium/supportbot/internal/knowledge"
	"github.com/hidemium/supportbot/internal/llm"
	"github.com/hidemium/supportbot/internal/log"
	"github.com/hidemium/supportbot/internal/reply"
	"github.com/hidemium/supportbot/internal/session"
	"github.com/hidemium/supportbot/internal/store"
)

// Reply modes reported to the client.
const (
	ModeSocial     = "social"
	ModeSmallTalk  = "small_talk"
	ModeQuickReply = "quick_reply"
	ModeDeny       = "cskh_deny"
	ModeKnowledge  = "knowledge"
	ModeCSKH       = "cskh"
)

// Result is one bot turn as returned to the client.
type Result struct {
	Response  string `json:"response"`
	Mode      string `json:"mode,omitempty"`
	Language  string `json:"language,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// Persistence is the durable-history surface the pipeline needs.
type Persistence interface {
	SaveMessage(ctx context.Context, sessionID, role, content, mode string) error
	Messages(ctx context.Context, sessionID string, limit int) ([]store.Message, error)
	MessageCount(ctx context.Context, sessionID string) (int, error)
	SaveSummary(ctx context.Context, sessionID, summary string) error
	LatestSummary(ctx context.Context, sessionID string) (string, error)
}

// Searcher is the retrieval surface the knowledge flow consumes.
type Searcher interface {
	Search(ctx context.Context, query string, opts ...knowledge.SearchOption) ([]knowledge.Result, error)
	Sources(ctx context.Context) ([]string, error)
}

// Transferer starts a live operator hand-off.
type Transferer interface {
	Transfer(ctx context.Context, name, firstMessage string) cskh.Handoff
}

// Config tunes the pipeline.
type Config struct {
	SummaryMinTurns int // turns per participant before auto-summary
	RetrievalTopK   int
}

// Bot routes messages through the classifier cascade.
type Bot struct {
	cfg      Config
	store    Persistence
	search   Searcher
	model    llm.Client
	transfer Transferer
	sessions *session.Store
	badwords *classify.BadwordFilter
	intents  *intent.Registry
	logger   log.Logger

	// pick selects a random canned reply; injectable for tests.
	pick func(n int) int
}

// New builds a Bot.
func New(cfg Config, st Persistence, search Searcher, model llm.Client,
	transfer Transferer, badwords *classify.BadwordFilter, logger log.Logger) *Bot {
	if cfg.SummaryMinTurns <= 0 {
		cfg.SummaryMinTurns = 10
	}
	if cfg.RetrievalTopK <= 0 {
		cfg.RetrievalTopK = 20
	}
	b := &Bot{
		cfg:      cfg,
		store:    st,
		search:   search,
		model:    model,
		transfer: transfer,
		sessions: session.NewStore(),
		badwords: badwords,
		intents:  intent.NewRegistry(),
		logger:   logger,
		pick:     rand.IntN,
	}
	b.registerIntents()
	return b
}

// Intents exposes the registry for additional handler registration.
func (b *Bot) Intents() *intent.Registry { return b.intents }

func (b *Bot) registerIntents() {
	b.intents.Register("social", "", func(lang, _ string) intent.Response {
		return intent.Response{Text: reply.Social(lang, reply.KeyChitchat), Mode: ModeSocial}
	})
	for _, key := range []string{
		reply.KeyGreeting, reply.KeyThanks, reply.KeyGoodbye,
		reply.KeyChitchat, reply.KeyWhoAreYou, reply.KeyWhatDoing,
	} {
		key := key
		b.intents.Register("social", key, func(lang, _ string) intent.Response {
			return intent.Response{Text: reply.Social(lang, key), Mode: ModeSocial}
		})
	}
}

// Route runs one user message through the cascade and returns the reply.
// Classification steps run cheapest-first; the model is only consulted when
// every lexical classifier declines.
func (b *Bot) Route(ctx context.Context, sessionID, message string) (Result, error) {
	message = strings.TrimSpace(message)
	lang := classify.Language(message)

	if message == "" {
		return Result{Response: reply.EmptyPrompt}, nil
	}

	if err := b.store.SaveMessage(ctx, sessionID, "user", message, ""); err != nil {
		// History is best-effort; the turn still gets answered.
		b.logger.Warn("persist user message failed", "session_id", sessionID, "error", err)
	}

	state := b.sessions.Get(sessionID)
	b.maybeSummarize(ctx, sessionID)

	// Denial machine: a non-denial message resets it, a denial advances it.
	if classify.Denial(message) {
		return b.respond(ctx, sessionID, b.handleDeny(ctx, state, lang)), nil
	}
	state.ResetDeny()

	// Probing for the bot's sources or authorship gets a deflection before
	// the product classifier can route it to retrieval.
	if classify.SourceProbing(message) {
		return b.respond(ctx, sessionID, Result{
			Response: reply.SourceProbe(lang),
			Language: lang,
		}), nil
	}

	// Product questions go straight to retrieval.
	if classify.ProductQuestion(message) {
		return b.respond(ctx, sessionID, b.knowledgeFlow(ctx, sessionID, state, message, lang)), nil
	}

	if classify.SmallTalk(message) {
		return b.respond(ctx, sessionID, Result{
			Response: reply.Social(lang, smallTalkKey(message)),
			Mode:     ModeSmallTalk,
			Language: lang,
		}), nil
	}

	if kind, ok := classify.SocialKind(message); ok {
		return b.respond(ctx, sessionID, Result{
			Response: reply.Social(lang, kind),
			Mode:     ModeSocial,
			Language: lang,
		}), nil
	}

	if b.badwords != nil && b.badwords.Match(message) {
		deflection := reply.BadwordResponses[b.pick(len(reply.BadwordResponses))]
		return b.respond(ctx, sessionID, Result{Response: deflection, Language: lang}), nil
	}

	if classify.SupportRequest(message) {
		ho := b.transfer.Transfer(ctx, "", message)
		return b.respond(ctx, sessionID, Result{
			Response:  ho.Response,
			Mode:      ho.Mode,
			Language:  lang,
			SessionID: ho.SessionID,
		}), nil
	}

	if kind, ok := classify.QuickReplyKind(message); ok {
		return b.respond(ctx, sessionID, b.quickReply(lang, kind)), nil
	}

	// Everything lexical declined: ask the model. Classification failure
	// fails open to the knowledge flow.
	in, err := b.model.Classify(ctx, message)
	if err != nil {
		b.logger.Warn("classify failed, falling back to knowledge", "error", err)
		in = llm.Intent{Type: "question"}
	}

	if h, ok := b.intents.Lookup(in.Type, in.Intent); ok {
		r := h(lang, message)
		return b.respond(ctx, sessionID, Result{Response: r.Text, Mode: r.Mode, Language: lang}), nil
	}

	return b.respond(ctx, sessionID, b.knowledgeFlow(ctx, sessionID, state, message, lang)), nil
}

// respond persists the bot turn and returns it.
func (b *Bot) respond(ctx context.Context, sessionID string, res Result) Result {
	if err := b.store.SaveMessage(ctx, sessionID, "bot", res.Response, res.Mode); err != nil {
		b.logger.Warn("persist bot message failed", "session_id", sessionID, "error", err)
	}
	return res
}

func (b *Bot) quickReply(lang, kind string) Result {
	if kind == "who_am_i" {
		text, ok := reply.WhoAmI[lang]
		if !ok {
			text = reply.WhoAmI[reply.LangEN]
		}
		return Result{Response: text, Mode: ModeQuickReply, Language: lang}
	}
	replies, ok := reply.QuickReplies[lang]
	if !ok {
		replies = reply.QuickReplies[reply.LangEN]
	}
	return Result{Response: replies[b.pick(len(replies))], Mode: ModeQuickReply, Language: lang}
}

// smallTalkKey maps a small-talk message to the matching canned reply key.
func smallTalkKey(message string) string {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "cảm ơn") || strings.Contains(lower, "thank"):
		return reply.KeyThanks
	case strings.Contains(lower, "bye") || strings.Contains(lower, "tạm biệt"):
		return reply.KeyGoodbye
	default:
		return reply.KeyChitchat
	}
}
