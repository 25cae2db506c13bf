package classify

import (
	"strings"
	"unicode/utf8"
)

// quickReplyMax is the message length, in runes, above which a message can no
// longer be a canned-reply candidate.
const quickReplyMax = 150

var (
	// identityPhrases route identity questions to the who-am-i reply.
	identityPhrases = []string{
		"bạn là ai", "bot là ai", "giới thiệu bản thân",
		"who are you", "what are you", "introduce yourself",
	}

	// thanksPhrases cover variants the small-talk patterns miss, like the
	// unaccented "cám ơn" or bare "tks".
	thanksPhrases = []string{"cảm ơn", "cám ơn", "thanks", "thank you", "tks"}

	// bareGreetings are matched on the whole message only.
	bareGreetings = []string{"hi", "hello", "chào", "alo", "hey"}
)

// QuickReplyKind classifies short canned-reply candidates. It returns
// "who_am_i" for identity probes and "generic" for thanks and bare greetings;
// anything else falls through to the model, so no match means false.
func QuickReplyKind(text string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" || utf8.RuneCountInString(lower) > quickReplyMax {
		return "", false
	}
	if containsAny(lower, identityPhrases) {
		return "who_am_i", true
	}
	if containsAny(lower, thanksPhrases) {
		return "generic", true
	}
	for _, g := range bareGreetings {
		if lower == g {
			return "generic", true
		}
	}
	return "", false
}
