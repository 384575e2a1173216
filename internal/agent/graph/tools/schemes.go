package tools

import (
	"context"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/swayam-agent/server/internal/scheme"
)

type SchemeSearchInput struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results,omitempty"`
}

type SchemeSearchOutput struct {
	Schemes []scheme.Scheme `json:"schemes"`
	Total   int             `json:"total"`
}

func createSchemeSearchTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolSchemeSearch,
			Desc: "Search the local welfare scheme catalog. Names, descriptions and tags are Marathi; queries match best when translated to Marathi first. An empty query returns the whole catalog.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {
					Type:     "string",
					Desc:     "Keywords to match against scheme names, descriptions and tags, preferably in Marathi.",
					Required: true,
				},
				"max_results": {
					Type: "number",
					Desc: "Maximum number of schemes to return (default: 5).",
				},
			}),
		},
		func(ctx context.Context, in *SchemeSearchInput) (*SchemeSearchOutput, error) {
			if in.MaxResults <= 0 {
				in.MaxResults = 5
			}
			hits := scheme.Search(in.Query, in.MaxResults)
			return &SchemeSearchOutput{Schemes: hits, Total: len(hits)}, nil
		},
	)
}

type EligibilityCheckInput struct {
	SchemeID string            `json:"scheme_id"`
	Profile  map[string]string `json:"profile,omitempty"`
}

func createEligibilityCheckTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolEligibilityCheck,
			Desc: "Check whether a user profile qualifies for a scheme by id. When profile is omitted the stored session profile is used. Reasons come back in Marathi.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"scheme_id": {
					Type:     "string",
					Desc:     "Catalog scheme id, e.g. old_age_pension, ujjwala, pmay.",
					Required: true,
				},
				"profile": {
					Type: "object",
					Desc: "Optional profile override: field name to value, e.g. {\"age\": \"62\"}.",
				},
			}),
		},
		func(ctx context.Context, in *EligibilityCheckInput) (*scheme.CheckResult, error) {
			profile := in.Profile
			if len(profile) == 0 {
				profile = profileFromContext(ctx)
			}
			res := scheme.CheckEligibility(profile, in.SchemeID)
			return &res, nil
		},
	)
}

type BuildChecklistInput struct {
	SchemeID string `json:"scheme_id"`
}

type BuildChecklistOutput struct {
	Checklist string `json:"checklist"`
}

func createBuildChecklistTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolBuildChecklist,
			Desc: "Build the document checklist for applying to a scheme by id. Lines come back in Marathi, ready to read aloud.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"scheme_id": {
					Type:     "string",
					Desc:     "Catalog scheme id, e.g. old_age_pension, ujjwala, pmay.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *BuildChecklistInput) (*BuildChecklistOutput, error) {
			return &BuildChecklistOutput{Checklist: scheme.BuildChecklist(in.SchemeID)}, nil
		},
	)
}
