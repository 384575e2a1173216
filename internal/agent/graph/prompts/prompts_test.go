package prompts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swayam-agent/server/internal/agent/model"
	"github.com/swayam-agent/server/internal/agent/session"
	"github.com/swayam-agent/server/internal/scheme"
)

func TestRenderPlannerSystemSubstitutesTokens(t *testing.T) {
	persona := model.PersonaConfig{Name: "Swayam", Description: "patient guide"}
	out, err := RenderPlannerSystem(context.Background(), persona, `{"age":"62"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "Swayam")
	assert.Contains(t, out, "patient guide")
	assert.Contains(t, out, `{"age":"62"}`)
	assert.NotContains(t, out, "{persona_name}")
	assert.NotContains(t, out, "{profile_json}")
}

func TestRenderPlannerSystemEmptyProfile(t *testing.T) {
	out, err := RenderPlannerSystem(context.Background(), model.PersonaConfig{Name: "Swayam"}, "  ")
	require.NoError(t, err)
	assert.Contains(t, out, "(JSON): {}")
}

func TestRenderEvaluatorSystemIncludesReview(t *testing.T) {
	review := model.DomainReview{
		Plan: model.Plan{Goal: "find a pension"},
		Checks: []model.SchemeCheck{
			{
				Scheme: scheme.Scheme{ID: scheme.IDOldAgePension, Name: "पेन्शन योजना"},
				Result: scheme.CheckResult{Eligible: true, Reasons: []string{}, Missing: []string{}},
			},
		},
		MissingFields: []string{"income"},
		Contradictions: []session.Contradiction{
			{Field: "age", Old: "58", New: "62"},
		},
	}

	out, err := RenderEvaluatorSystem(context.Background(), model.PersonaConfig{Name: "Swayam"}, review, "mr-IN")
	require.NoError(t, err)
	assert.Contains(t, out, "find a pension")
	assert.Contains(t, out, "mr-IN")
	assert.Contains(t, out, "old_age_pension")
	assert.Contains(t, out, `"income"`)
	assert.Contains(t, out, `"old":"58"`)
	assert.Contains(t, out, "web_search")
}

func TestRenderEvaluatorSystemDefaultsLanguage(t *testing.T) {
	out, err := RenderEvaluatorSystem(context.Background(), model.PersonaConfig{Name: "Swayam"}, model.DomainReview{}, " ")
	require.NoError(t, err)
	assert.Contains(t, out, "en-IN")
}
