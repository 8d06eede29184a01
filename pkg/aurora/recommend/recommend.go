// Package recommend recomputes the derived "常用推荐" category from click
// counts across all real categories. It is pure and idempotent: the
// synthetic category is excluded from its own source pool, so running it
// on its own output changes nothing.
package recommend

import (
	"sort"
	"strings"

	"github.com/qbvs/aurora-pro/pkg/aurora/models"
)

// MaxLinks caps the synthetic category.
const MaxLinks = 8

// Title and Icon of the synthetic category.
const (
	Title = "常用推荐"
	Icon  = "Flame"
)

// NormalizeURL is the dedup key: trimmed, with a single trailing slash
// stripped, so "https://x.com" and "https://x.com/" collapse.
func NormalizeURL(u string) string {
	return strings.TrimSuffix(strings.TrimSpace(u), "/")
}

// Update returns cats with the synthetic category rebuilt from the rest.
// The input is not mutated. If a synthetic category already exists it is
// replaced in place (its position preserved); otherwise the new one is
// prepended at index 0.
func Update(cats []models.Category) []models.Category {
	// Pool every link outside the synthetic category, in category order
	// then link order, deduplicating by normalized URL. First occurrence
	// wins, so earlier categories take precedence.
	seen := make(map[string]bool)
	var pool []models.LinkItem
	for _, cat := range cats {
		if cat.IsSynthetic() {
			continue
		}
		for _, link := range cat.Links {
			key := NormalizeURL(link.URL)
			if seen[key] {
				continue
			}
			seen[key] = true
			pool = append(pool, link)
		}
	}

	// Stable sort keeps dedup (insertion) order as the tie-break for
	// equal click counts.
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].ClickCount > pool[j].ClickCount
	})

	if len(pool) > MaxLinks {
		pool = pool[:MaxLinks]
	}

	top := make([]models.LinkItem, len(pool))
	for i, link := range pool {
		link.ID = "rec-" + link.ID
		top[i] = link
	}

	synthetic := models.Category{
		ID:    models.RecommendationsID,
		Title: Title,
		Icon:  Icon,
		Links: top,
	}

	out := make([]models.Category, 0, len(cats)+1)
	replaced := false
	for _, cat := range cats {
		if cat.IsSynthetic() && !replaced {
			out = append(out, synthetic)
			replaced = true
			continue
		}
		out = append(out, cat)
	}
	if !replaced {
		out = append([]models.Category{synthetic}, out...)
	}
	return out
}
