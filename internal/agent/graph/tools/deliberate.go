package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
)

type SequentialThinkInput struct {
	Query string `json:"query"`
}

type SequentialThinkOutput struct {
	Analysis string `json:"analysis"`
}

// Deliberation stub. Returns a fixed scaffold the model can expand on;
// there is no second model call behind it.
func createSequentialThinkTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolSequentialThink,
			Desc: "Break a complicated question down step by step before answering. Use for multi-scheme comparisons or layered eligibility questions.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {
					Type:     "string",
					Desc:     "The question to analyse.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *SequentialThinkInput) (*SequentialThinkOutput, error) {
			return &SequentialThinkOutput{
				Analysis: fmt.Sprintf(
					"Sequential thinking on '%s': Let's break it down step by step. "+
						"1. Analyze the query. 2. Gather information. 3. Synthesize response. "+
						"Conclusion: This requires deeper analysis and can be expanded.",
					in.Query,
				),
			}, nil
		},
	)
}
