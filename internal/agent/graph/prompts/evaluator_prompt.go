package prompts

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/swayam-agent/server/internal/agent/graph/tools"
	"github.com/swayam-agent/server/internal/agent/model"
)

//go:embed template/evaluator_prompt.txt
var evaluatorSystemPrompt string

// RenderEvaluatorSystem renders the evaluator system prompt with the domain
// review baked in and triggers prompt callbacks.
func RenderEvaluatorSystem(ctx context.Context, persona model.PersonaConfig, review model.DomainReview, userLang string) (string, error) {
	userLang = strings.TrimSpace(userLang)
	if userLang == "" {
		userLang = "en-IN"
	}

	checksJSON, err := json.Marshal(review.Checks)
	if err != nil {
		return "", fmt.Errorf("marshal scheme checks: %w", err)
	}
	contradictionsJSON, err := json.Marshal(review.Contradictions)
	if err != nil {
		return "", fmt.Errorf("marshal contradictions: %w", err)
	}
	missingJSON, err := json.Marshal(review.MissingFields)
	if err != nil {
		return "", fmt.Errorf("marshal missing fields: %w", err)
	}

	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(evaluatorSystemPrompt),
	)
	vars := map[string]any{
		"PersonaName":        persona.Name,
		"PersonaDescription": persona.Description,
		"UserLang":           userLang,
		"Goal":               review.Plan.Goal,
		"ContradictionsJSON": string(contradictionsJSON),
		"ChecksJSON":         string(checksJSON),
		"MissingJSON":        string(missingJSON),
		"SearchTool":         tools.ToolWebSearch,
		"SchemeTool":         tools.ToolSchemeSearch,
		"EligibilityTool":    tools.ToolEligibilityCheck,
		"ChecklistTool":      tools.ToolBuildChecklist,
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("evaluator prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("evaluator prompt render: empty result")
	}
	return msgs[0].Content, nil
}
