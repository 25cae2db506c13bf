package bot

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/hidemium/supportbot/internal/knowledge"
	"github.com/hidemium/supportbot/internal/llm"
	"github.com/hidemium/supportbot/internal/reply"
	"github.com/hidemium/supportbot/internal/session"
)

const (
	// minAnswerLen is the rune count under which a built answer counts as
	// inadequate and the fallback kicks in.
	minAnswerLen = 30

	// maxAnswerLen caps the assembled answer.
	maxAnswerLen = 800

	// minChunkLen filters out stub chunks.
	minChunkLen = 15

	// dedupePrefixLen is the rune prefix used to spot near-duplicate chunks
	// across expanded-query result sets.
	dedupePrefixLen = 120

	// maxMergedResults caps the merged result set after expansion.
	maxMergedResults = 40

	// expandedTopK is the per-variant retrieval depth for expanded queries.
	expandedTopK = 15
)

// hidemiumExpansions are the fixed standalone variants fanned out alongside a
// Hidemium question; each one hits the index as its own query.
var hidemiumExpansions = []string{
	"Hidemium API là gì",
	"Hidemium là gì",
	"dịch vụ Hidemium API",
	"tính năng Hidemium API",
	"cách sử dụng Hidemium",
}

// placeholderChunks are separator artifacts the splitter sometimes emits.
var placeholderChunks = map[string]struct{}{
	"-": {}, "--": {}, "---": {}, "...": {},
}

var (
	// anchorPattern matches back-references like "câu 2", "câu hỏi 3" or
	// "question 2".
	anchorPattern = regexp.MustCompile(`(?i)(?:câu(?:\s+hỏi)?|question)\s+(\d+)`)

	// nonWordPattern strips punctuation while keeping letters in any script.
	// Go's \w is ASCII-only, so the class is spelled out.
	nonWordPattern = regexp.MustCompile(`[^\p{L}\p{N}_\s]+`)

	headingPattern = regexp.MustCompile(`(?m)^#+\s*`)
	boldPattern    = regexp.MustCompile(`\*\*([^*]*)\*\*`)
)

// knowledgeFlow answers a documentation question: resolve anchors, ground the
// query, retrieve, assemble an answer from the chunks and fall back when
// retrieval comes up short.
func (b *Bot) knowledgeFlow(ctx context.Context, sessionID string, state *session.State, message, lang string) Result {
	query := message
	if lang != reply.LangVI {
		// Index content is Vietnamese; ground the query in the same language.
		translated, err := b.model.Translate(ctx, message, reply.LangVI)
		switch {
		case errors.Is(err, llm.ErrBusy):
			return Result{Response: reply.Busy(lang), Mode: ModeKnowledge, Language: lang}
		case err == nil && translated != "":
			query = translated
		}
	}

	// Back-references like "câu 2" re-anchor on an earlier question.
	anchorTurn := false
	var anchorBase string
	if n, ok := detectAnchor(query); ok {
		if base := state.Anchor(n); base != "" {
			query = base + " " + query
			anchorBase = base
			anchorTurn = true
		}
	}

	// Inject the running summary only when it is about the same topic;
	// otherwise it drags retrieval toward stale context.
	if summary, err := b.store.LatestSummary(ctx, sessionID); err == nil && summary != "" {
		if sameTopic(summary, query) {
			query = summary + "\n" + query
		}
	}

	normalized := normalizeQuery(query)

	// Topic switches clear the denial machine.
	if state.LastQuery != "" && !sharesTokens(normalized, state.LastQuery) {
		state.ResetDeny()
	}

	// An anchor turn leaves last_query on the anchored question so a
	// follow-up denial re-queries the right topic; it also records no new
	// anchor, keeping "question N" stable across repeats.
	if anchorTurn {
		state.LastQuery = normalizeQuery(anchorBase)
	} else {
		state.RecordQuery(normalized)
		state.LastQuery = normalized
	}
	state.Phase = session.PhaseAnswering

	results := b.retrieve(ctx, normalized)
	answer := buildAnswerFromChunks(normalized, results)

	if utf8.RuneCountInString(answer) < minAnswerLen {
		if strings.Contains(strings.ToLower(normalized), "hidemium") {
			answer = reply.HidemiumFallback
		} else {
			answer = reply.NotFound(lang)
		}
	}

	state.LastAnswer = answer

	if lang != reply.LangVI && answer != reply.NotFound(lang) {
		if translated, err := b.model.Translate(ctx, answer, lang); err == nil && translated != "" {
			answer = translated
		}
	}

	return Result{
		Response: wrapAnswer(answer, lang),
		Mode:     ModeKnowledge,
		Language: lang,
	}
}

// retrieve fans Hidemium queries out over the fixed expansions and merges the
// result sets; other queries hit the index once. A query naming an indexed
// document skips similarity ranking and pulls that document's chunks instead.
func (b *Bot) retrieve(ctx context.Context, query string) []knowledge.Result {
	if source := b.forcedSource(ctx, query); source != "" {
		results, err := b.search.Search(ctx, query,
			knowledge.WithTopK(b.cfg.RetrievalTopK), knowledge.WithSource(source))
		if err != nil {
			b.logger.Warn("source-filtered search failed", "source", source, "error", err)
			return nil
		}
		return results
	}

	if !strings.Contains(strings.ToLower(query), "hidemium") {
		results, err := b.search.Search(ctx, query, knowledge.WithTopK(b.cfg.RetrievalTopK))
		if err != nil {
			b.logger.Warn("search failed", "error", err)
			return nil
		}
		return results
	}

	var merged []knowledge.Result
	for _, variant := range append([]string{query}, hidemiumExpansions...) {
		results, err := b.search.Search(ctx, variant, knowledge.WithTopK(expandedTopK))
		if err != nil {
			b.logger.Warn("expanded search failed", "query", variant, "error", err)
			continue
		}
		merged = append(merged, results...)
	}
	return dedupeResults(merged)
}

// minSourceKeyLen keeps trivially short document names from matching
// everything.
const minSourceKeyLen = 3

// forcedSource returns the indexed document the query names, if any. Document
// names are matched on their base name with the extension stripped.
func (b *Bot) forcedSource(ctx context.Context, query string) string {
	sources, err := b.search.Sources(ctx)
	if err != nil || len(sources) == 0 {
		return ""
	}
	lower := strings.NewReplacer("_", " ", "-", " ").Replace(strings.ToLower(query))
	for _, source := range sources {
		key := sourceKey(source)
		if utf8.RuneCountInString(key) < minSourceKeyLen {
			continue
		}
		if strings.Contains(lower, key) {
			return source
		}
	}
	return ""
}

// sourceKey normalizes a document name for matching: base name, extension
// stripped, separators collapsed to spaces.
func sourceKey(source string) string {
	key := strings.ToLower(source)
	if i := strings.LastIndexByte(key, '/'); i >= 0 {
		key = key[i+1:]
	}
	if i := strings.LastIndexByte(key, '.'); i > 0 {
		key = key[:i]
	}
	key = strings.NewReplacer("_", " ", "-", " ").Replace(key)
	return strings.Join(strings.Fields(key), " ")
}

// dedupeResults drops near-duplicate chunks by content prefix and caps the
// merged set.
func dedupeResults(results []knowledge.Result) []knowledge.Result {
	seen := make(map[string]struct{}, len(results))
	deduped := make([]knowledge.Result, 0, len(results))
	for _, r := range results {
		key := runePrefix(r.Document.Content, dedupePrefixLen)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, r)
		if len(deduped) == maxMergedResults {
			break
		}
	}
	return deduped
}

func runePrefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// detectAnchor parses a back-reference to an earlier question, returning its
// 1-based index.
func detectAnchor(query string) (int, bool) {
	m := anchorPattern.FindStringSubmatch(query)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// normalizeQuery lowercases and strips punctuation, collapsing whitespace.
func normalizeQuery(query string) string {
	cleaned := nonWordPattern.ReplaceAllString(strings.ToLower(query), " ")
	return strings.Join(strings.Fields(cleaned), " ")
}

// queryTokens returns the significant tokens of a normalized query. Tokens of
// one or two characters carry no signal for overlap scoring.
func queryTokens(query string) []string {
	var tokens []string
	for _, tok := range strings.Fields(normalizeQuery(query)) {
		if utf8.RuneCountInString(tok) > 2 {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// sameTopic reports whether both texts are about the product. A summary is
// only injected into retrieval when the current question stays on topic.
func sameTopic(a, b string) bool {
	return strings.Contains(strings.ToLower(a), "hidemium") &&
		strings.Contains(strings.ToLower(b), "hidemium")
}

// sharesTokens reports whether the two normalized queries overlap at all.
func sharesTokens(a, b string) bool {
	set := make(map[string]struct{})
	for _, tok := range queryTokens(a) {
		set[tok] = struct{}{}
	}
	for _, tok := range queryTokens(b) {
		if _, ok := set[tok]; ok {
			return true
		}
	}
	return false
}

// usableChunk reports whether a retrieved chunk can carry an answer at all:
// long enough and not a separator artifact the splitter sometimes emits.
func usableChunk(content string) bool {
	trimmed := strings.TrimSpace(content)
	if utf8.RuneCountInString(trimmed) < minChunkLen {
		return false
	}
	_, placeholder := placeholderChunks[trimmed]
	return !placeholder
}

// matchesQuery reports whether the chunk shares at least a third of the
// query's significant tokens.
func matchesQuery(query, content string) bool {
	tokens := queryTokens(query)
	if len(tokens) == 0 {
		return true
	}
	need := max(1, len(tokens)/3)
	lower := strings.ToLower(content)
	overlap := 0
	for _, tok := range tokens {
		if strings.Contains(lower, tok) {
			overlap++
			if overlap >= need {
				return true
			}
		}
	}
	return false
}

// buildAnswerFromChunks picks the best passage from the retrieved chunks.
// Token overlap with the query is a preference, not a gate: when no chunk
// overlaps, the top-ranked usable chunk still answers. The chosen passage has
// its Q/A scaffolding and markdown stripped, then gets length-capped.
func buildAnswerFromChunks(query string, results []knowledge.Result) string {
	var usable []knowledge.Result
	for _, r := range results {
		if usableChunk(r.Document.Content) {
			usable = append(usable, r)
		}
	}
	if len(usable) == 0 {
		return ""
	}

	best := usable
	var matched []knowledge.Result
	for _, r := range usable {
		if matchesQuery(query, r.Document.Content) {
			matched = append(matched, r)
		}
	}
	if len(matched) > 0 {
		best = matched
	}

	answer := cleanChunk(best[0].Document.Content)
	if utf8.RuneCountInString(answer) > maxAnswerLen {
		answer = strings.TrimSpace(runePrefix(answer, maxAnswerLen))
	}
	return answer
}

// cleanChunk extracts and tidies the answer body of one chunk.
func cleanChunk(content string) string {
	// Q/A formatted chunks: keep only the answer body.
	if i := strings.Index(content, "A:"); i >= 0 {
		content = content[i+len("A:"):]
	}

	var out []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "Q:"):
			continue
		case line == "---" || line == "***":
			continue
		case strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* "):
			line = "• " + strings.TrimSpace(line[2:])
		}
		line = headingPattern.ReplaceAllString(line, "")
		line = boldPattern.ReplaceAllString(line, "$1")
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// wrapAnswer appends the localized closing courtesy line.
func wrapAnswer(answer, lang string) string {
	closing := reply.Closing(lang)
	if strings.HasSuffix(answer, closing) {
		return answer
	}
	return answer + "\n\n" + closing
}
