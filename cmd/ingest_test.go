package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitChunks(t *testing.T) {
	t.Parallel()

	text := "Q: Làm sao cấu hình proxy?\nA: Mở phần cài đặt proxy trong profile.\n---\nQ: API dùng thế nào?\nA: Xem tài liệu API tại trang developer.\n\nngắn\n\nĐoạn cuối cùng đủ dài để giữ lại."

	chunks := splitChunks(text)
	assert.Len(t, chunks, 3)
	assert.Contains(t, chunks[0], "cấu hình proxy")
	assert.Contains(t, chunks[1], "API")
	assert.Equal(t, "Đoạn cuối cùng đủ dài để giữ lại.", chunks[2])
}

func TestSplitChunksEmpty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, splitChunks(""))
	assert.Empty(t, splitChunks("\n\n---\n\n"))
}

func TestChunkTitle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Cấu hình proxy", chunkTitle("## Cấu hình proxy\nMở phần cài đặt."))
	assert.Equal(t, "", chunkTitle("Q: API dùng thế nào?\nA: Xem tài liệu."))
	assert.Equal(t, "", chunkTitle(""))
}
