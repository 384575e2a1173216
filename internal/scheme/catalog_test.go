package scheme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchMatchesNameAndTags(t *testing.T) {
	hits := Search("पेन्शन", 5)
	require.Len(t, hits, 1)
	assert.Equal(t, IDOldAgePension, hits[0].ID)

	hits = Search("महिला", 5)
	require.NotEmpty(t, hits)
	assert.Equal(t, IDUjjwala, hits[0].ID)
}

func TestSearchEmptyQueryReturnsCatalogCapped(t *testing.T) {
	hits := Search("", 2)
	assert.Len(t, hits, 2)
}

func TestSearchNoMatch(t *testing.T) {
	assert.Empty(t, Search("zzzz-nothing", 5))
}

func TestCheckEligibilityUnknownScheme(t *testing.T) {
	res := CheckEligibility(map[string]string{}, "no_such_scheme")
	assert.False(t, res.Eligible)
	assert.NotEmpty(t, res.Reasons)
}

func TestCheckEligibilityMissingFields(t *testing.T) {
	res := CheckEligibility(map[string]string{"name": "Radha"}, IDOldAgePension)
	assert.False(t, res.Eligible)
	assert.ElementsMatch(t, []string{"age", "income"}, res.Missing)
	assert.Empty(t, res.Reasons)
}

func TestCheckEligibilityPensionAgeRule(t *testing.T) {
	young := map[string]string{"name": "Radha", "age": "45", "income": "20000"}
	res := CheckEligibility(young, IDOldAgePension)
	assert.False(t, res.Eligible)
	assert.NotEmpty(t, res.Reasons)

	old := map[string]string{"name": "Radha", "age": "64", "income": "20000"}
	res = CheckEligibility(old, IDOldAgePension)
	assert.True(t, res.Eligible)
	assert.Empty(t, res.Missing)

	vague := map[string]string{"name": "Radha", "age": "saumya", "income": "20000"}
	res = CheckEligibility(vague, IDOldAgePension)
	assert.False(t, res.Eligible)
}

func TestCheckEligibilityUjjwalaGenderHeuristic(t *testing.T) {
	res := CheckEligibility(map[string]string{"name": "Ram", "gender": "male"}, IDUjjwala)
	assert.True(t, res.Eligible, "gender heuristic warns, it does not disqualify")
	assert.NotEmpty(t, res.Reasons)

	res = CheckEligibility(map[string]string{"name": "Radha", "gender": "महिला"}, IDUjjwala)
	assert.True(t, res.Eligible)
	assert.Empty(t, res.Reasons)
}

func TestCheckEligibilityPMAYHouseExclusion(t *testing.T) {
	owns := map[string]string{"name": "Ram", "income": "10000", "has_pucca_house": "होय"}
	res := CheckEligibility(owns, IDPMAY)
	assert.False(t, res.Eligible)

	rents := map[string]string{"name": "Ram", "income": "10000", "has_pucca_house": "no"}
	res = CheckEligibility(rents, IDPMAY)
	assert.True(t, res.Eligible)
}

func TestBuildChecklist(t *testing.T) {
	out := BuildChecklist(IDPMAY)
	assert.Contains(t, out, "प्रधानमंत्री आवास योजना")
	assert.Contains(t, out, "आधार")

	assert.Contains(t, BuildChecklist("nope"), "योजना सापडली नाही")
}
