package classify

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLanguage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "plain english", text: "how do I create a profile?", want: "en"},
		{name: "vietnamese diacritics", text: "làm sao để tạo profile?", want: "vi"},
		{name: "chinese", text: "如何创建配置文件", want: "zh"},
		{name: "russian", text: "как создать профиль", want: "ru"},
		{name: "mixed cjk wins", text: "hello 你好", want: "zh"},
		{name: "empty is english", text: "", want: "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Language(tt.text))
		})
	}
}

func TestSmallTalk(t *testing.T) {
	t.Parallel()

	assert.True(t, SmallTalk("cảm ơn nhé"))
	assert.True(t, SmallTalk("  Thanks!  "))
	assert.True(t, SmallTalk("bye"))
	assert.True(t, SmallTalk("ok"))
	assert.False(t, SmallTalk("hi"), "greetings belong to the social starters")
	assert.False(t, SmallTalk("api bị lỗi"))
}

func TestSocialKind(t *testing.T) {
	t.Parallel()

	kind, ok := SocialKind("bạn là ai vậy?")
	assert.True(t, ok)
	assert.Equal(t, "who_are_you", kind)

	kind, ok = SocialKind("what are you doing?")
	assert.True(t, ok)
	assert.Equal(t, "what_doing", kind)

	kind, ok = SocialKind("hi")
	assert.True(t, ok)
	assert.Equal(t, "greeting", kind)

	kind, ok = SocialKind("bạn khỏe không")
	assert.True(t, ok)
	assert.Equal(t, "chitchat", kind)

	// "hi" inside a longer word must not match.
	_, ok = SocialKind("hình ảnh bị lỗi")
	assert.False(t, ok)
}

func TestKeywords(t *testing.T) {
	t.Parallel()

	assert.True(t, ProductQuestion("hidemium api dùng sao?"))
	assert.True(t, ProductQuestion("what is Hidemium exactly?"))
	assert.False(t, ProductQuestion("hôm nay trời đẹp"))
	// Generic tech words without the product name stay unrouted.
	assert.False(t, ProductQuestion("how to set a PROXY"))
	assert.False(t, ProductQuestion("this tool is rapid"))

	assert.True(t, Denial("không phải, ý mình khác"))
	assert.True(t, Denial("that's wrong"))
	assert.True(t, Denial("nope"))
	assert.True(t, Denial("这个不对"))
	assert.True(t, Denial("неправильно, не то"))
	assert.False(t, Denial("đúng rồi, cảm ơn"))

	assert.True(t, SourceProbing("bạn lấy dữ liệu từ đâu vậy"))
	assert.True(t, SourceProbing("which file does this answer come from"))
	assert.False(t, SourceProbing("proxy bị chậm thì sửa sao"))

	assert.True(t, SupportRequest("cho mình gặp nhân viên hỗ trợ"))
	assert.True(t, SupportRequest("I want to talk to a human"))
	assert.True(t, SupportRequest("mua gói này thì thanh toán thế nào"))
	assert.True(t, SupportRequest("đơn hàng của mình giao chưa"))
	assert.True(t, SupportRequest("gói này giá bao nhiêu"))
	// Short triggers stay on word boundaries: "cod" must not fire in "code".
	assert.False(t, SupportRequest("code mẫu chạy sao"))
	assert.False(t, SupportRequest("automation không hoạt động"))
}

func TestQuickReplyKind(t *testing.T) {
	t.Parallel()

	kind, ok := QuickReplyKind("bạn là ai thế?")
	assert.True(t, ok)
	assert.Equal(t, "who_am_i", kind)

	kind, ok = QuickReplyKind("tks bạn nhiều")
	assert.True(t, ok)
	assert.Equal(t, "generic", kind)

	kind, ok = QuickReplyKind("Hello")
	assert.True(t, ok)
	assert.Equal(t, "generic", kind)

	// Short but unrecognized messages fall through to the model instead of
	// getting a canned reply.
	_, ok = QuickReplyKind("ừ đúng á")
	assert.False(t, ok)
	_, ok = QuickReplyKind("um okej")
	assert.False(t, ok)
	_, ok = QuickReplyKind("")
	assert.False(t, ok)
}

func TestBadwordFilterDefaults(t *testing.T) {
	t.Parallel()

	f := NewBadwordFilter("")
	assert.True(t, f.Match("đm cái tool này"))
	assert.True(t, f.Match("đồ chó chết"))
	assert.True(t, f.Match("FUCK this"))
	assert.False(t, f.Match("cảm ơn bạn nhiều"))
	// Boundary check: listed word inside a longer word does not match.
	assert.False(t, f.Match("ccosystem"))
}

func TestBadwordFilterReload(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "badwords.txt")
	require.NoError(t, os.WriteFile(path, []byte("# comment\nfoo\n\nbar\n"), 0o644))

	f := NewBadwordFilter(path)
	assert.True(t, f.Match("this is foo indeed"))
	assert.False(t, f.Match("đm")) // file replaces defaults

	// Rewrite with an mtime bump; next Match picks it up.
	require.NoError(t, os.WriteFile(path, []byte("baz\n"), 0o644))
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	assert.True(t, f.Match("baz here"))
	assert.False(t, f.Match("this is foo indeed"))
}

func TestReadWordFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("a\n# skip\n\nb\n"), 0o644))

	words, err := ReadWordFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, words)

	_, err = ReadWordFile(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
