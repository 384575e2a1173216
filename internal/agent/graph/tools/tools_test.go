package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/cloudwego/eino/components/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swayam-agent/server/internal/agent/session"
	"github.com/swayam-agent/server/internal/scheme"
)

func invoke(t *testing.T, bt tool.BaseTool, args any) string {
	t.Helper()
	inv, ok := bt.(tool.InvokableTool)
	require.True(t, ok)
	b, err := json.Marshal(args)
	require.NoError(t, err)
	out, err := inv.InvokableRun(context.Background(), string(b))
	require.NoError(t, err)
	return out
}

func TestResolvePathRejectsEscape(t *testing.T) {
	root := t.TempDir()

	_, err := resolvePath(root, "../outside.txt")
	assert.NoError(t, err) // Clean("/../outside.txt") stays inside root

	p, err := resolvePath(root, "notes/draft.txt")
	require.NoError(t, err)
	assert.Contains(t, p, root)

	_, err = resolvePath(root, "  ")
	assert.Error(t, err)
}

func TestFileToolsRoundTrip(t *testing.T) {
	root := t.TempDir()

	out := invoke(t, createCreateFileTool(root), FileInput{Path: "draft.txt", Content: "hello"})
	assert.Contains(t, out, "File created successfully")

	out = invoke(t, createUpdateFileTool(root), FileInput{Path: "draft.txt", Content: " world"})
	assert.Contains(t, out, "File updated successfully")

	out = invoke(t, createReadFileTool(root), FileInput{Path: "draft.txt"})
	assert.Contains(t, out, "hello world")

	out = invoke(t, createDeleteFileTool(root), FileInput{Path: "draft.txt"})
	assert.Contains(t, out, "File deleted successfully")

	out = invoke(t, createReadFileTool(root), FileInput{Path: "draft.txt"})
	assert.Contains(t, out, "Error reading file")
}

func TestSequentialThinkScaffold(t *testing.T) {
	out := invoke(t, createSequentialThinkTool(), SequentialThinkInput{Query: "compare pension schemes"})
	assert.Contains(t, out, "compare pension schemes")
	assert.Contains(t, out, "step by step")
}

func TestSchemeSearchToolDefaultsMaxResults(t *testing.T) {
	out := invoke(t, createSchemeSearchTool(), SchemeSearchInput{Query: ""})
	var parsed SchemeSearchOutput
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	assert.Equal(t, 5, parsed.Total)
}

func TestEligibilityToolFallsBackToSessionProfile(t *testing.T) {
	sess := &session.Session{ID: "s1", Profile: session.NewStore()}
	sess.Profile.MergeDelta(map[string]string{
		"name": "Asha", "age": "65", "income": "30000",
	})
	ctx := WithSession(context.Background(), sess)

	bt := createEligibilityCheckTool()
	inv, ok := bt.(tool.InvokableTool)
	require.True(t, ok)
	b, err := json.Marshal(EligibilityCheckInput{SchemeID: scheme.IDOldAgePension})
	require.NoError(t, err)
	out, err := inv.InvokableRun(ctx, string(b))
	require.NoError(t, err)

	var res scheme.CheckResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.Eligible)
}

func TestEligibilityToolWithoutSessionReportsMissing(t *testing.T) {
	out := invoke(t, createEligibilityCheckTool(), EligibilityCheckInput{SchemeID: scheme.IDOldAgePension})
	var res scheme.CheckResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.False(t, res.Eligible)
	assert.NotEmpty(t, res.Missing)
}
