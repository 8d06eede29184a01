// Package coredata holds the pure mutation functions behind admin edits.
// Each function takes the current category array and returns a new one;
// persistence and re-aggregation happen in the sync orchestrator's save
// choke point, never here. Operations that fail to resolve their target
// (unknown ids, bad indices) or that target the synthetic recommendations
// category return the input unchanged rather than erroring: the dashboard
// favors staying available over strict feedback.
package coredata

import (
	"github.com/google/uuid"

	"github.com/qbvs/aurora-pro/pkg/aurora/models"
)

// NewID mints a link/category id.
func NewID() string {
	return uuid.NewString()
}

func clone(cats []models.Category) []models.Category {
	out := make([]models.Category, len(cats))
	for i, cat := range cats {
		links := make([]models.LinkItem, len(cat.Links))
		copy(links, cat.Links)
		cat.Links = links
		out[i] = cat
	}
	return out
}

func findCategory(cats []models.Category, id string) int {
	for i, cat := range cats {
		if cat.ID == id {
			return i
		}
	}
	return -1
}

func findLink(cat models.Category, id string) int {
	for i, link := range cat.Links {
		if link.ID == id {
			return i
		}
	}
	return -1
}

// AddCategory appends a new empty category.
func AddCategory(cats []models.Category, title, icon string) []models.Category {
	out := clone(cats)
	return append(out, models.Category{
		ID:    "cat-" + NewID(),
		Title: title,
		Icon:  icon,
		Links: []models.LinkItem{},
	})
}

// UpdateCategory rewrites title/icon/privacy of a category. The synthetic
// category is rebuilt on every save and cannot be edited.
func UpdateCategory(cats []models.Category, id, title, icon string, isPrivate bool) []models.Category {
	i := findCategory(cats, id)
	if i < 0 || cats[i].IsSynthetic() {
		return cats
	}
	out := clone(cats)
	out[i].Title = title
	out[i].Icon = icon
	out[i].IsPrivate = isPrivate
	return out
}

// DeleteCategory removes a category and every link it contains. The
// synthetic category cannot be deleted.
func DeleteCategory(cats []models.Category, id string) []models.Category {
	i := findCategory(cats, id)
	if i < 0 || cats[i].IsSynthetic() {
		return cats
	}
	out := clone(cats)
	return append(out[:i], out[i+1:]...)
}

// AddLink appends a link to a category, minting an id if absent.
func AddLink(cats []models.Category, catID string, link models.LinkItem) []models.Category {
	i := findCategory(cats, catID)
	if i < 0 || cats[i].IsSynthetic() {
		return cats
	}
	if link.ID == "" {
		link.ID = "link-" + NewID()
	}
	out := clone(cats)
	out[i].Links = append(out[i].Links, link)
	return out
}

// UpdateLink replaces the link with link.ID inside catID.
func UpdateLink(cats []models.Category, catID string, link models.LinkItem) []models.Category {
	i := findCategory(cats, catID)
	if i < 0 || cats[i].IsSynthetic() {
		return cats
	}
	j := findLink(cats[i], link.ID)
	if j < 0 {
		return cats
	}
	out := clone(cats)
	out[i].Links[j] = link
	return out
}

// DeleteLink removes a link from a category.
func DeleteLink(cats []models.Category, catID, linkID string) []models.Category {
	i := findCategory(cats, catID)
	if i < 0 || cats[i].IsSynthetic() {
		return cats
	}
	j := findLink(cats[i], linkID)
	if j < 0 {
		return cats
	}
	out := clone(cats)
	out[i].Links = append(out[i].Links[:j], out[i].Links[j+1:]...)
	return out
}

// RecordClick increments the click count of a link anywhere outside the
// synthetic category. Clicks on a recommendation carry the rec- prefixed
// id of their source link, so recommendation clicks are counted against
// the underlying link.
func RecordClick(cats []models.Category, linkID string) []models.Category {
	const recPrefix = "rec-"
	if len(linkID) > len(recPrefix) && linkID[:len(recPrefix)] == recPrefix {
		linkID = linkID[len(recPrefix):]
	}
	for i, cat := range cats {
		if cat.IsSynthetic() {
			continue
		}
		if j := findLink(cat, linkID); j >= 0 {
			out := clone(cats)
			out[i].Links[j].ClickCount++
			return out
		}
	}
	return cats
}
