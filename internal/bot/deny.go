package bot

import (
	"context"
	"strings"

	"github.com/hidemium/supportbot/internal/knowledge"
	"github.com/hidemium/supportbot/internal/reply"
	"github.com/hidemium/supportbot/internal/session"
)

// denyRequeryTopK is the retrieval depth for the second-denial requery; wide
// on purpose so the disambiguation answer can show genuinely different cases.
const denyRequeryTopK = 50

// handleDeny advances the denial machine one step:
//
//	1st denial  → ask for clarification
//	2nd denial  → offer alternative cases requeried around the last grounded
//	              query; without one there is nothing to requery, so ask what
//	              the question was about instead
//	3rd denial  → escalate to a human
func (b *Bot) handleDeny(ctx context.Context, state *session.State, lang string) Result {
	state.DenyCount++
	state.Phase = session.PhaseHandlingDeny

	switch {
	case state.DenyCount >= 3:
		state.Escalated = true
		return Result{Response: reply.Escalation(lang), Mode: ModeDeny, Language: lang}

	case state.DenyCount == 2 && state.LastQuery != "":
		return Result{Response: b.alternativeAnswer(ctx, state.LastQuery, lang), Mode: ModeDeny, Language: lang}

	case state.DenyCount == 2:
		return Result{Response: reply.DenyClarifyNoContext(lang), Mode: ModeDeny, Language: lang}

	case state.LastQuery != "":
		return Result{Response: reply.DenyClarify(lang), Mode: ModeDeny, Language: lang}

	default:
		return Result{Response: reply.DenyClarifyNoContext(lang), Mode: ModeDeny, Language: lang}
	}
}

// alternativeAnswer requeries the index around the denied query and lists the
// distinct cases found. Falls back to the static case list when retrieval
// yields nothing usable.
func (b *Bot) alternativeAnswer(ctx context.Context, lastQuery, lang string) string {
	results, err := b.search.Search(ctx, lastQuery+" các trường hợp",
		knowledge.WithTopK(denyRequeryTopK))
	if err != nil {
		b.logger.Warn("deny requery failed", "error", err)
		return staticAlternatives(lang)
	}

	var cases []string
	for _, r := range results {
		if !usableChunk(r.Document.Content) || !matchesQuery(lastQuery, r.Document.Content) {
			continue
		}
		cleaned := cleanChunk(r.Document.Content)
		if cleaned == "" {
			continue
		}
		cases = append(cases, firstLine(cleaned))
		if len(cases) == 3 {
			break
		}
	}
	if len(cases) == 0 {
		return staticAlternatives(lang)
	}

	answer := reply.AlternativeIntro(lang)
	for i, c := range cases {
		answer += reply.CaseLabel(lang, i, c)
	}
	return answer + reply.AlternativeQuestion(lang)
}

func staticAlternatives(lang string) string {
	answer := reply.HardCaseIntro(lang)
	for i, c := range reply.HardCases(lang) {
		answer += reply.CaseLabel(lang, i, c)
	}
	return answer + reply.HardCaseQuestion(lang)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
