package lang

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitChunksShortTextSingleChunk(t *testing.T) {
	chunks := SplitChunks("hello world", 100)
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello world", chunks[0])
}

func TestSplitChunksEmpty(t *testing.T) {
	assert.Nil(t, SplitChunks("", 100))
	assert.Nil(t, SplitChunks("   \t\n ", 100))
}

func TestSplitChunksCollapsesWhitespace(t *testing.T) {
	chunks := SplitChunks("a  b\t c\n\nd", 100)
	require.Len(t, chunks, 1)
	assert.Equal(t, "a b c d", chunks[0])
}

func TestSplitChunksPrefersSentenceBoundary(t *testing.T) {
	text := strings.Repeat("x", 60) + ". " + strings.Repeat("y", 60)
	chunks := SplitChunks(text, 100)
	require.Len(t, chunks, 2)
	assert.Equal(t, strings.Repeat("x", 60), chunks[0])
	assert.True(t, strings.HasSuffix(chunks[1], strings.Repeat("y", 60)))
}

func TestSplitChunksFallsBackToSpace(t *testing.T) {
	text := strings.Repeat("x", 70) + " " + strings.Repeat("y", 70)
	chunks := SplitChunks(text, 100)
	require.Len(t, chunks, 2)
	assert.Equal(t, strings.Repeat("x", 70), chunks[0])
	assert.Equal(t, strings.Repeat("y", 70), chunks[1])
}

func TestSplitChunksIgnoresEarlyCutPoint(t *testing.T) {
	// The only boundary sits below half the window, so the cut happens at the
	// full window length instead.
	text := strings.Repeat("x", 20) + ". " + strings.Repeat("y", 200)
	chunks := SplitChunks(text, 100)
	require.NotEmpty(t, chunks)
	assert.Equal(t, 100, len([]rune(chunks[0])))
}

func TestSplitChunksMaxLenAndOrder(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 120; i++ {
		b.WriteString("sentence number goes here. ")
	}
	text := b.String()

	chunks := SplitChunks(text, 200)
	require.True(t, len(chunks) > 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c)), 200)
	}

	// Re-joined output preserves every word in order.
	rejoined := strings.Fields(strings.Join(chunks, " "))
	assert.Equal(t, strings.Fields(text), rejoined)
}

func TestSplitChunksNonPositiveLimitFallsBack(t *testing.T) {
	// A zero or negative limit must terminate and behave like the default
	// limit instead of looping on a zero-width window.
	for _, maxLen := range []int{0, -1} {
		chunks := SplitChunks("hello world", maxLen)
		require.Len(t, chunks, 1)
		assert.Equal(t, "hello world", chunks[0])
	}

	long := strings.Repeat("sentence goes here. ", 300)
	chunks := SplitChunks(long, 0)
	require.True(t, len(chunks) > 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c)), DefaultMaxChars)
	}
}

func TestSplitChunksNeverSplitsRunes(t *testing.T) {
	text := strings.Repeat("नमस्कार ", 80)
	for _, c := range SplitChunks(text, 50) {
		assert.True(t, utf8.ValidString(c))
		assert.NotContains(t, c, string(rune(0xFFFD)))
	}
}
