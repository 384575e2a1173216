package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/swayam-agent/server/internal/agent/model"
)

//go:embed template/planner_prompt.txt
var plannerSystemPrompt string

// RenderPlannerSystem renders the planner system prompt via the Eino prompt
// component. Known tokens are substituted with a replacer first so the JSON
// braces in the profile snapshot cannot collide with template syntax.
func RenderPlannerSystem(ctx context.Context, persona model.PersonaConfig, profileJSON string) (string, error) {
	if strings.TrimSpace(profileJSON) == "" {
		profileJSON = "{}"
	}

	content := strings.NewReplacer(
		"{persona_name}", persona.Name,
		"{persona_description}", persona.Description,
		"{profile_json}", profileJSON,
	).Replace(plannerSystemPrompt)

	// Wrap via the prompt component using a messages placeholder to emit callbacks
	tpl := prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder("system_messages", false),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"system_messages": []*schema.Message{schema.SystemMessage(content)},
	})
	if err != nil {
		return "", fmt.Errorf("planner prompt callbacks: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("planner prompt callbacks: empty result")
	}
	return msgs[0].Content, nil
}
