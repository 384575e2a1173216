package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRankByOverlapOrdersByScore(t *testing.T) {
	records := []string{
		"user lives in a kaccha house",
		"user asked about weather",
		"user age is 65 and lives in pune",
	}
	got := rankByOverlap(records, "does the user qualify given age and house", 2)
	assert.Equal(t, []string{
		"user age is 65 and lives in pune",
		"user lives in a kaccha house",
	}, got)
}

func TestRankByOverlapDropsUnrelated(t *testing.T) {
	records := []string{"completely unrelated note"}
	got := rankByOverlap(records, "pension eligibility", 3)
	assert.Empty(t, got)
}

func TestRankByOverlapTiesKeepInsertionOrder(t *testing.T) {
	records := []string{"first pension note", "second pension note"}
	got := rankByOverlap(records, "pension", 2)
	assert.Equal(t, records, got)
}

func TestRankByOverlapEmptyQuery(t *testing.T) {
	assert.Nil(t, rankByOverlap([]string{"anything"}, "  ", 3))
}

func TestTokenizeStripsPunctuationAndShortTokens(t *testing.T) {
	got := tokenize(`"Pension," eligibility? a I`)
	assert.Contains(t, got, "pension")
	assert.Contains(t, got, "eligibility")
	assert.NotContains(t, got, "a")
	assert.NotContains(t, got, "i")
}
