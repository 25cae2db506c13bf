package bot

import (
	"context"
	"strings"
)

// summaryWindow is how many recent turns feed one summary.
const summaryWindow = 50

// maybeSummarize condenses the conversation once it grows past the threshold.
// The trigger fires every SummaryMinTurns exchanges (two messages each) so a
// long session re-summarizes periodically instead of on every turn. It runs
// mid-turn, after the user message is stored but before the reply, so the
// stored count is always odd; the pending reply is counted in to land the
// trigger on exchange boundaries. Summarization is best-effort; failures
// only log.
func (b *Bot) maybeSummarize(ctx context.Context, sessionID string) {
	count, err := b.store.MessageCount(ctx, sessionID)
	if err != nil {
		b.logger.Warn("message count failed", "session_id", sessionID, "error", err)
		return
	}

	interval := 2 * b.cfg.SummaryMinTurns
	pending := count + 1
	if pending < interval || pending%interval != 0 {
		return
	}

	msgs, err := b.store.Messages(ctx, sessionID, summaryWindow)
	if err != nil {
		b.logger.Warn("load messages for summary failed", "session_id", sessionID, "error", err)
		return
	}

	var sb strings.Builder
	for _, m := range msgs {
		sb.WriteString(m.Role)
		sb.WriteString(": ")
		sb.WriteString(m.Content)
		sb.WriteString("\n")
	}

	summary, err := b.model.Summarize(ctx, sb.String())
	if err != nil {
		b.logger.Warn("summarize failed", "session_id", sessionID, "error", err)
		return
	}
	if err := b.store.SaveSummary(ctx, sessionID, summary); err != nil {
		b.logger.Warn("save summary failed", "session_id", sessionID, "error", err)
		return
	}
	b.logger.Info("conversation summarized", "session_id", sessionID, "turns", count)
}
