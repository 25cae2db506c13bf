package reply

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSocialFallbacks(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Chào bạn 👋", Social(LangVI, KeyGreeting))
	assert.Equal(t, "Hello 👋", Social(LangEN, KeyGreeting))

	// Unknown language falls back to English.
	assert.Equal(t, Social(LangEN, KeyThanks), Social("fr", KeyThanks))

	// Unknown key falls back to chitchat.
	assert.Equal(t, Social(LangVI, KeyChitchat), Social(LangVI, "nonsense"))
}

func TestAllLanguagesHaveSocialKeys(t *testing.T) {
	t.Parallel()

	keys := []string{KeyGreeting, KeyThanks, KeyGoodbye, KeyChitchat, KeyWhoAreYou, KeyWhatDoing}
	for lang, m := range social {
		for _, k := range keys {
			assert.NotEmpty(t, m[k], "lang %s missing key %s", lang, k)
		}
	}
}

func TestLookupTablesCoverEnglish(t *testing.T) {
	t.Parallel()

	for name, fn := range map[string]func(string) string{
		"denyClarify":   DenyClarify,
		"noContext":     DenyClarifyNoContext,
		"escalation":    Escalation,
		"altIntro":      AlternativeIntro,
		"altQuestion":   AlternativeQuestion,
		"hardCaseIntro": HardCaseIntro,
		"hardCaseQ":     HardCaseQuestion,
		"closing":       Closing,
		"notFound":      NotFound,
		"busy":          Busy,
		"sourceProbe":   SourceProbe,
	} {
		assert.NotEmpty(t, fn(LangEN), name)
		// Unknown languages must not panic or return empty.
		assert.Equal(t, fn(LangEN), fn("xx"), name)
	}
}

func TestHardCases(t *testing.T) {
	t.Parallel()

	assert.Len(t, HardCases(LangVI), 3)
	assert.Equal(t, HardCases(LangEN), HardCases("xx"))
}

func TestCaseLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "• Trường hợp A: dùng API\n", CaseLabel(LangVI, 0, "dùng API"))
	assert.Equal(t, "• Case B: use the API\n", CaseLabel(LangEN, 1, "use the API"))
}

func TestHidemiumFallbackMentionsOptions(t *testing.T) {
	t.Parallel()

	assert.True(t, strings.Contains(HidemiumFallback, "Puppeteer"))
	assert.True(t, strings.Contains(HidemiumFallback, "• "))
}
