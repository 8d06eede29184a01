package search

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/qbvs/aurora-pro/pkg/aurora/models"
)

func fixture() []models.Category {
	return []models.Category{
		{ID: models.RecommendationsID, Title: "常用推荐", Links: []models.LinkItem{
			{ID: "rec-l1", Title: "GitHub", URL: "https://github.com"},
		}},
		{ID: "dev", Title: "Dev", Links: []models.LinkItem{
			{ID: "l1", Title: "GitHub", URL: "https://github.com"},
			{ID: "l2", Title: "GitLab", URL: "https://gitlab.com"},
			{ID: "l3", Title: "Secret Wiki", URL: "https://wiki.example", IsPrivate: true},
		}},
		{ID: "hidden", Title: "Hidden", IsPrivate: true, Links: []models.LinkItem{
			{ID: "h1", Title: "Gitea Internal", URL: "https://gitea.internal"},
		}},
	}
}

func idsOf(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Link.ID
	}
	return out
}

func TestEmptyQueryReturnsNothing(t *testing.T) {
	assert.Assert(t, Links(fixture(), "", true) == nil)
}

func TestFuzzyMatchByTitle(t *testing.T) {
	results := Links(fixture(), "githb", false)
	assert.Assert(t, len(results) > 0)
	assert.Equal(t, results[0].Link.Title, "GitHub")
	assert.Equal(t, results[0].CategoryID, "dev")
}

func TestSyntheticCategoryIsSkipped(t *testing.T) {
	for _, id := range idsOf(Links(fixture(), "GitHub", true)) {
		assert.Assert(t, id != "rec-l1", "recommendation duplicate surfaced in search")
	}
}

func TestPrivateExcludedForAnonymous(t *testing.T) {
	for _, id := range idsOf(Links(fixture(), "Git", false)) {
		assert.Assert(t, id != "l3" && id != "h1", "private content leaked: %s", id)
	}
}

func TestPrivateIncludedForAdmin(t *testing.T) {
	ids := idsOf(Links(fixture(), "Gitea", true))
	assert.Assert(t, len(ids) > 0)
	assert.Equal(t, ids[0], "h1")
}
