// Package search implements the dashboard's command-palette link search.
package search

import (
	"github.com/sahilm/fuzzy"

	"github.com/qbvs/aurora-pro/pkg/aurora/models"
)

// Result is a fuzzy match against one link.
type Result struct {
	Link           models.LinkItem `json:"link"`
	CategoryID     string          `json:"categoryId"`
	CategoryTitle  string          `json:"categoryTitle"`
	MatchedIndexes []int           `json:"matchedIndexes"`
	Score          int             `json:"score"`
}

type candidate struct {
	link     models.LinkItem
	catID    string
	catTitle string
}

// candidates implements fuzzy.Source over link titles.
type candidates []candidate

func (c candidates) String(i int) string { return c[i].link.Title }
func (c candidates) Len() int            { return len(c) }

// Links searches link titles across categories, best match first. With
// includePrivate false (anonymous visitors) private categories and private
// links are excluded. The synthetic recommendations category is skipped so
// a link never matches twice.
func Links(cats []models.Category, query string, includePrivate bool) []Result {
	if query == "" {
		return nil
	}

	var pool candidates
	for _, cat := range cats {
		if cat.IsSynthetic() {
			continue
		}
		if cat.IsPrivate && !includePrivate {
			continue
		}
		for _, link := range cat.Links {
			if link.IsPrivate && !includePrivate {
				continue
			}
			pool = append(pool, candidate{link: link, catID: cat.ID, catTitle: cat.Title})
		}
	}

	matches := fuzzy.FindFrom(query, pool)
	results := make([]Result, len(matches))
	for i, m := range matches {
		c := pool[m.Index]
		results[i] = Result{
			Link:           c.link,
			CategoryID:     c.catID,
			CategoryTitle:  c.catTitle,
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	return results
}
