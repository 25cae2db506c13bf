package classify

import (
	"bufio"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"
)

// defaultBadwords seeds the filter when no word file is configured or the
// file cannot be read.
var defaultBadwords = []string{
	"đm", "dm", "vcl", "vl", "cc", "clgt", "đĩ", "cặc", "lồn",
	"địt", "đụ", "chó chết", "fuck", "shit", "bitch", "asshole",
}

// BadwordFilter matches profanity on word boundaries. The word list is loaded
// from a file and transparently reloaded when the file's mtime changes, so
// operators can edit the list without a restart.
type BadwordFilter struct {
	path string

	mu      sync.Mutex
	re      *regexp.Regexp
	modTime time.Time
}

// NewBadwordFilter builds a filter backed by the word file at path. An empty
// path keeps the built-in defaults.
func NewBadwordFilter(path string) *BadwordFilter {
	f := &BadwordFilter{path: path}
	f.compile(defaultBadwords)
	f.reload()
	return f
}

func (f *BadwordFilter) compile(words []string) {
	parts := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(strings.ToLower(w))
		if w == "" {
			continue
		}
		parts = append(parts, regexp.QuoteMeta(w))
	}
	if len(parts) == 0 {
		f.re = nil
		return
	}
	// \b misses non-ASCII word edges, so boundaries are spelled out.
	f.re = regexp.MustCompile(`(^|[^\p{L}\p{N}_])(` + strings.Join(parts, "|") + `)($|[^\p{L}\p{N}_])`)
}

func (f *BadwordFilter) reload() {
	if f.path == "" {
		return
	}
	info, err := os.Stat(f.path)
	if err != nil {
		return
	}
	if info.ModTime().Equal(f.modTime) {
		return
	}
	words, err := ReadWordFile(f.path)
	if err != nil || len(words) == 0 {
		return
	}
	f.modTime = info.ModTime()
	f.compile(words)
}

// Match reports whether the message contains a listed badword.
func (f *BadwordFilter) Match(text string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reload()
	if f.re == nil {
		return false
	}
	return f.re.MatchString(strings.ToLower(text))
}

// ReadWordFile reads a newline-separated word list, skipping blanks and
// #-comments.
func ReadWordFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var words []string
	sc := bufio.NewScanner(file)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	return words, sc.Err()
}
