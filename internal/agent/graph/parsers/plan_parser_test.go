package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlanPlainJSON(t *testing.T) {
	p := ParsePlan(`{"extracted_profile":{"age":"62"},"goal":"find pension","missing_fields":["income"],"search_query":"old age pension"}`)
	require.NotNil(t, p)
	assert.Equal(t, "62", p.ExtractedProfile["age"])
	assert.Equal(t, "find pension", p.Goal)
	assert.Equal(t, []string{"income"}, p.MissingFields)
	assert.Equal(t, "old age pension", p.SearchQuery)
}

func TestParsePlanStripsCodeFences(t *testing.T) {
	p := ParsePlan("```json\n{\"goal\":\"g\",\"search_query\":\"q\"}\n```")
	require.NotNil(t, p)
	assert.Equal(t, "g", p.Goal)
	assert.Equal(t, "q", p.SearchQuery)
	assert.NotNil(t, p.ExtractedProfile)
	assert.NotNil(t, p.MissingFields)
}

func TestParsePlanExtractsObjectFromProse(t *testing.T) {
	p := ParsePlan(`Here is the plan: {"goal":"assess {brace} safety","search_query":"x"} hope it helps`)
	require.NotNil(t, p)
	assert.Equal(t, "assess {brace} safety", p.Goal)
}

func TestParsePlanRejectsGarbage(t *testing.T) {
	assert.Nil(t, ParsePlan("no json here"))
	assert.Nil(t, ParsePlan(""))
	assert.Nil(t, ParsePlan("{unbalanced"))
	assert.Nil(t, ParsePlan(`{"goal": <bad>}`))
}

func TestDefaultPlanCarriesTranscript(t *testing.T) {
	p := DefaultPlan("माझं वय साठ आहे", "mr-IN")
	assert.Equal(t, "माझं वय साठ आहे", p.SearchQuery)
	assert.Equal(t, "mr-IN", p.ChosenLangCode)
	assert.Empty(t, p.ExtractedProfile)
	assert.Empty(t, p.MissingFields)
}
