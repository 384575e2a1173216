package graph

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swayam-agent/server/internal/agent/graph/tools"
)

func sanitize(t *testing.T, name, args string) map[string]any {
	t.Helper()
	out, err := sanitizeToolArguments(context.Background(), name, args)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	return m
}

func TestSanitizeTrimsSearchQuery(t *testing.T) {
	m := sanitize(t, tools.ToolWebSearch, `{"query":"  pension schemes  "}`)
	assert.Equal(t, "pension schemes", m["query"])
}

func TestSanitizeCoercesNonStringQuery(t *testing.T) {
	m := sanitize(t, tools.ToolWebSearch, `{"query": 42}`)
	assert.Equal(t, "42", m["query"])
}

func TestSanitizeClampsSchemeMaxResults(t *testing.T) {
	m := sanitize(t, tools.ToolSchemeSearch, `{"query":"q","max_results":99}`)
	assert.Equal(t, float64(10), m["max_results"])

	m = sanitize(t, tools.ToolSchemeSearch, `{"query":"q","max_results":"3"}`)
	assert.Equal(t, float64(3), m["max_results"])

	m = sanitize(t, tools.ToolSchemeSearch, `{"query":"q","max_results":"junk"}`)
	_, ok := m["max_results"]
	assert.False(t, ok)
}

func TestSanitizeLeavesNonJSONAlone(t *testing.T) {
	out, err := sanitizeToolArguments(context.Background(), tools.ToolWebSearch, "not json")
	require.NoError(t, err)
	assert.Equal(t, "not json", out)
}

func TestSanitizeTrimsFilePath(t *testing.T) {
	m := sanitize(t, tools.ToolCreateFile, `{"path":" draft.txt ","content":"x"}`)
	assert.Equal(t, "draft.txt", m["path"])
	assert.Equal(t, "x", m["content"])
}

func TestClampInt(t *testing.T) {
	assert.Equal(t, 1, clampInt(-5, 1, 10))
	assert.Equal(t, 10, clampInt(50, 1, 10))
	assert.Equal(t, 4, clampInt(4, 1, 10))
}
