package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/swayam-agent/server/internal/agent/session"
	"github.com/swayam-agent/server/internal/search"
	logx "github.com/swayam-agent/server/pkg/logger"
)

// Tool name constants shared with prompts and the arguments sanitizer.
const (
	ToolWebSearch        = "web_search"
	ToolCreateFile       = "create_file"
	ToolReadFile         = "read_file"
	ToolUpdateFile       = "update_file"
	ToolDeleteFile       = "delete_file"
	ToolSequentialThink  = "sequential_think"
	ToolSchemeSearch     = "scheme_catalog_search"
	ToolEligibilityCheck = "eligibility_check"
	ToolBuildChecklist   = "build_application_checklist"
)

// UnknownToolResult is returned verbatim for hallucinated tool names so the
// model sees a stable sentinel instead of an execution error.
const UnknownToolResult = "Unknown tool"

// Deps carries the collaborators the tool set needs. FileRoot confines the
// file tools to one directory.
type Deps struct {
	Gateway  *search.Gateway
	FileRoot string
}

// GetQueryTools returns the business tools bound to the evaluator model.
func GetQueryTools(deps Deps) []tool.BaseTool {
	return []tool.BaseTool{
		createWebSearchTool(deps.Gateway),
		createCreateFileTool(deps.FileRoot),
		createReadFileTool(deps.FileRoot),
		createUpdateFileTool(deps.FileRoot),
		createDeleteFileTool(deps.FileRoot),
		createSequentialThinkTool(),
		createSchemeSearchTool(),
		createEligibilityCheckTool(),
		createBuildChecklistTool(),
	}
}

// GetToolInfos extracts ToolInfo from each tool for model binding.
func GetToolInfos(ctx context.Context, ts []tool.BaseTool) ([]*schema.ToolInfo, error) {
	infos := make([]*schema.ToolInfo, 0, len(ts))
	for _, t := range ts {
		info, err := t.Info(ctx)
		if err != nil {
			logx.Error().Err(err).Msg("Failed to get tool info")
			return nil, fmt.Errorf("failed to get tool info: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

type sessionCtxKey struct{}

// WithSession stashes the active session so profile-aware tools can fall
// back to the stored profile when the model omits one.
func WithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, s)
}

// SessionFromContext returns the session stashed by WithSession, or nil.
func SessionFromContext(ctx context.Context) *session.Session {
	s, _ := ctx.Value(sessionCtxKey{}).(*session.Session)
	return s
}

func profileFromContext(ctx context.Context) map[string]string {
	if s := SessionFromContext(ctx); s != nil {
		return s.Profile.Profile()
	}
	return map[string]string{}
}
