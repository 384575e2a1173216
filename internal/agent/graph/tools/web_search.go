package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/swayam-agent/server/internal/search"
)

type WebSearchInput struct {
	Query string `json:"query"`
}

type WebSearchOutput struct {
	Results string `json:"results"`
}

func createWebSearchTool(gw *search.Gateway) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolWebSearch,
			Desc: "Search the web for current information about government schemes, application procedures, deadlines and offices. Results are plain text lines of 'title - url' followed by a snippet. Use when the scheme catalog is not enough.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {
					Type:     "string",
					Desc:     "Search keywords in English.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *WebSearchInput) (*WebSearchOutput, error) {
			if in.Query == "" {
				return nil, fmt.Errorf("query is required")
			}
			return &WebSearchOutput{Results: gw.Search(ctx, in.Query)}, nil
		},
	)
}
