package classify

import (
	"regexp"
	"strings"
)

// smallTalkPatterns catch full short pleasantries that deserve a canned reply
// without touching retrieval. Greetings are not here: they belong to the
// social-starter table so they carry the social mode.
var smallTalkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*(cảm ơn|thank you|thanks|thank)\s*(bạn|nhé|nha|nhiều)?\s*[!.]*\s*$`),
	regexp.MustCompile(`(?i)^\s*(bye+|tạm biệt|goodbye)\s*[!.]*\s*$`),
	regexp.MustCompile(`(?i)^\s*(ok+|oke+|okay)\s*[!.]*\s*$`),
}

// SmallTalk reports whether the whole message is a short pleasantry.
func SmallTalk(text string) bool {
	for _, re := range smallTalkPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

var (
	greetingStarters = compileStarters(
		"chào", "xin chào", "hello", "hi", "hey", "alo",
	)

	chitchatStarters = compileStarters(
		"bạn khỏe không", "khỏe không", "how are you",
	)

	whoAreYouPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)bạn là ai`),
		regexp.MustCompile(`(?i)mày là ai`),
		regexp.MustCompile(`(?i)who are you`),
		regexp.MustCompile(`(?i)bạn tên (là )?gì`),
		regexp.MustCompile(`(?i)what('?s| is) your name`),
	}

	whatDoingPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)đang làm gì`),
		regexp.MustCompile(`(?i)làm gì đó`),
		regexp.MustCompile(`(?i)what are you doing`),
	}
)

// SocialKind classifies a conversational opener. It returns the reply key
// ("greeting", "who_are_you", "what_doing" or "chitchat") and true when the
// message is social, matching on word boundaries so "hình ảnh" does not trip
// on "hi".
func SocialKind(text string) (string, bool) {
	for _, re := range whoAreYouPatterns {
		if re.MatchString(text) {
			return "who_are_you", true
		}
	}
	for _, re := range whatDoingPatterns {
		if re.MatchString(text) {
			return "what_doing", true
		}
	}

	lower := strings.ToLower(strings.TrimSpace(text))
	if matchesStarter(lower, greetingStarters) {
		return "greeting", true
	}
	if matchesStarter(lower, chitchatStarters) {
		return "chitchat", true
	}
	return "", false
}

// compileStarters builds boundary-anchored patterns once at init.
func compileStarters(starters ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(starters))
	for _, starter := range starters {
		res = append(res, regexp.MustCompile(
			`(^|[^\p{L}\p{N}_])`+regexp.QuoteMeta(starter)+`($|[^\p{L}\p{N}_])`))
	}
	return res
}

func matchesStarter(lower string, starters []*regexp.Regexp) bool {
	for _, re := range starters {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}
