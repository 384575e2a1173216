package lang

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTranslator struct {
	calls   []string
	sources []string
	failOn  int
	replies func(text string) string
}

func (f *fakeTranslator) TranslateChunk(ctx context.Context, text, source, target string) (string, error) {
	f.calls = append(f.calls, text)
	f.sources = append(f.sources, source)
	if f.failOn > 0 && len(f.calls) == f.failOn {
		return "", errors.New("upstream exploded")
	}
	if f.replies != nil {
		return f.replies(text), nil
	}
	return "[" + target + "]" + text, nil
}

func TestInferCode(t *testing.T) {
	cases := map[string]string{
		"hello there":       "en-IN",
		"नमस्कार, कसे आहात": "mr-IN",
		"আমি ভালো আছি":      "bn-IN",
		"ਸਤ ਸ੍ਰੀ ਅਕਾਲ":      "pa-IN",
		"કેમ છો":            "gu-IN",
		"ଶୁଣନ୍ତୁ":           "od-IN",
		"வணக்கம்":           "ta-IN",
		"నమస్కారం":          "te-IN",
		"ನಮಸ್ಕಾರ":           "kn-IN",
		"നമസ്കാരം":          "ml-IN",
		"السلام علیکم":      "ur-IN",
		"":                  "en-IN",
	}
	for text, want := range cases {
		assert.Equal(t, want, InferCode(text), "text %q", text)
	}
}

func TestTranslateEmptyInputSkipsUpstream(t *testing.T) {
	tr := &fakeTranslator{}
	n := NewNormalizer(tr, 2000)

	out, err := n.Translate(context.Background(), "", "auto", "en-IN")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Empty(t, tr.calls)
}

func TestTranslateSingleChunk(t *testing.T) {
	tr := &fakeTranslator{}
	n := NewNormalizer(tr, 2000)

	out, err := n.Translate(context.Background(), "hello", "en-IN", "mr-IN")
	require.NoError(t, err)
	assert.Equal(t, "[mr-IN]hello", out)
	require.Len(t, tr.calls, 1)
}

func TestTranslateChunksPreserveOrder(t *testing.T) {
	tr := &fakeTranslator{replies: func(text string) string { return text }}
	n := NewNormalizer(tr, 200)

	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("this is a sentence that keeps going. ")
	}
	in := strings.TrimSpace(b.String())

	out, err := n.Translate(context.Background(), in, "en-IN", "en-IN")
	require.NoError(t, err)
	assert.True(t, len(tr.calls) > 1)
	assert.Equal(t, strings.Fields(in), strings.Fields(out))

	for _, call := range tr.calls {
		assert.LessOrEqual(t, len([]rune(call)), 200)
	}
}

func TestTranslatePartialFailureAborts(t *testing.T) {
	tr := &fakeTranslator{failOn: 2, replies: func(text string) string { return text }}
	n := NewNormalizer(tr, 200)

	in := strings.Repeat("words keep arriving here now. ", 30)
	out, err := n.Translate(context.Background(), in, "en-IN", "mr-IN")
	require.Error(t, err)
	assert.Empty(t, out)
}

func TestTranslateAutoSourceUsesScriptHeuristic(t *testing.T) {
	tr := &fakeTranslator{}
	n := NewNormalizer(tr, 2000)

	_, err := n.Translate(context.Background(), "नमस्कार", "auto", "en-IN")
	require.NoError(t, err)
	require.Len(t, tr.calls, 1)
	assert.Equal(t, "mr-IN", tr.sources[0])
}
