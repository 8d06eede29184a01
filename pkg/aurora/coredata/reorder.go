package coredata

import "github.com/qbvs/aurora-pro/pkg/aurora/models"

// DragSource identifies the link being dragged by its category and index.
type DragSource struct {
	CatID string `json:"catId"`
	Index int    `json:"index"`
}

// Drop moves a link from src to targetIndex in the category targetCatID,
// returning a new category array. Splice semantics: the link is removed
// first, then inserted, so for a same-category move targetIndex is
// interpreted against the post-removal array. Dragging [L1 L2 L3] from
// index 0 to index 2 therefore yields [L2 L3 L1].
//
// Invalid moves return the input unchanged: unknown category ids,
// out-of-range indices, a drop onto the same position, or either side
// being the synthetic recommendations category.
func Drop(cats []models.Category, src DragSource, targetCatID string, targetIndex int) []models.Category {
	if src.CatID == targetCatID && src.Index == targetIndex {
		return cats
	}

	si := findCategory(cats, src.CatID)
	ti := findCategory(cats, targetCatID)
	if si < 0 || ti < 0 {
		return cats
	}
	if cats[si].IsSynthetic() || cats[ti].IsSynthetic() {
		return cats
	}
	if src.Index < 0 || src.Index >= len(cats[si].Links) {
		return cats
	}

	out := clone(cats)
	link := out[si].Links[src.Index]
	out[si].Links = append(out[si].Links[:src.Index], out[si].Links[src.Index+1:]...)

	target := out[ti].Links
	if targetIndex < 0 {
		targetIndex = 0
	}
	if targetIndex > len(target) {
		targetIndex = len(target)
	}
	target = append(target, models.LinkItem{})
	copy(target[targetIndex+1:], target[targetIndex:])
	target[targetIndex] = link
	out[ti].Links = target

	return out
}
