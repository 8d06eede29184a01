// Package dashboard exposes the dashboard's data over HTTP: public browse
// and search for anonymous visitors, and the full mutation surface for the
// password-gated admin. Every mutation funnels through the sync
// orchestrator's save choke point.
package dashboard

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qbvs/aurora-pro/pkg/aurora/auth"
	"github.com/qbvs/aurora-pro/pkg/aurora/coredata"
	"github.com/qbvs/aurora-pro/pkg/aurora/importer"
	"github.com/qbvs/aurora-pro/pkg/aurora/logbuf"
	"github.com/qbvs/aurora-pro/pkg/aurora/models"
	"github.com/qbvs/aurora-pro/pkg/aurora/search"
	"github.com/qbvs/aurora-pro/pkg/aurora/syncer"
)

// Handler handles dashboard data requests
type Handler struct {
	core *syncer.Orchestrator
	diag *logbuf.Buffer
}

// NewHandler creates a new dashboard handler
func NewHandler(core *syncer.Orchestrator, diag *logbuf.Buffer) *Handler {
	return &Handler{core: core, diag: diag}
}

// filterPrivate strips private categories and links for anonymous readers.
func filterPrivate(cats []models.Category) []models.Category {
	out := make([]models.Category, 0, len(cats))
	for _, cat := range cats {
		if cat.IsPrivate {
			continue
		}
		links := make([]models.LinkItem, 0, len(cat.Links))
		for _, link := range cat.Links {
			if link.IsPrivate {
				continue
			}
			links = append(links, link)
		}
		cat.Links = links
		out = append(out, cat)
	}
	return out
}

// ListCategories returns the category array; private content is included
// only for an authenticated admin.
func (h *Handler) ListCategories(c *gin.Context) {
	cats := h.core.Categories()
	if !auth.IsAdmin(c) {
		cats = filterPrivate(cats)
	}
	c.JSON(http.StatusOK, cats)
}

// GetSettings returns the settings document. The document is opaque to
// the core, so the admin path hands back the stored bytes untouched; for
// anonymous readers the AI provider credentials are stripped out of a
// decoded copy.
func (h *Handler) GetSettings(c *gin.Context) {
	raw := h.core.Settings()
	if auth.IsAdmin(c) {
		c.Data(http.StatusOK, "application/json", raw)
		return
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		c.Data(http.StatusOK, "application/json", raw)
		return
	}
	delete(doc, "aiProviders")
	c.JSON(http.StatusOK, doc)
}

// PutSettings replaces the settings document with the request body as-is,
// unknown fields included.
func (h *Handler) PutSettings(c *gin.Context) {
	var settings json.RawMessage
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := h.core.SaveSettings(settings); err != nil {
		c.JSON(http.StatusOK, gin.H{"saved": false, "warning": "settings kept in memory only"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": true})
}

// ListEngines returns the search engine list.
func (h *Handler) ListEngines(c *gin.Context) {
	c.JSON(http.StatusOK, h.core.Engines())
}

// PutEngines replaces the search engine list.
func (h *Handler) PutEngines(c *gin.Context) {
	var engines []models.SearchEngine
	if err := c.ShouldBindJSON(&engines); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := h.core.SaveEngines(engines); err != nil {
		c.JSON(http.StatusOK, gin.H{"saved": false, "warning": "engines kept in memory only"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": true})
}

// CreateCategoryRequest creates an empty category.
type CreateCategoryRequest struct {
	Title string `json:"title" binding:"required"`
	Icon  string `json:"icon"`
}

// UpdateCategoryRequest rewrites a category's header fields.
type UpdateCategoryRequest struct {
	Title     string `json:"title" binding:"required"`
	Icon      string `json:"icon"`
	IsPrivate bool   `json:"isPrivate"`
}

// CreateCategory adds an empty category at the end of the array.
func (h *Handler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cats := coredata.AddCategory(h.core.Categories(), req.Title, req.Icon)
	h.save(c, cats, http.StatusCreated)
}

// resolveEditable finds a category that may be edited. Synthetic lookups
// and unknown ids both answer 404 so callers cannot probe private data.
func resolveEditable(cats []models.Category, id string) (int, bool) {
	for i, cat := range cats {
		if cat.ID == id {
			if cat.IsSynthetic() {
				return -1, false
			}
			return i, true
		}
	}
	return -1, false
}

// UpdateCategory rewrites title/icon/privacy.
func (h *Handler) UpdateCategory(c *gin.Context) {
	id := c.Param("id")
	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cats := h.core.Categories()
	if _, ok := resolveEditable(cats, id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}
	cats = coredata.UpdateCategory(cats, id, req.Title, req.Icon, req.IsPrivate)
	h.save(c, cats, http.StatusOK)
}

// DeleteCategory removes a category and its links.
func (h *Handler) DeleteCategory(c *gin.Context) {
	id := c.Param("id")
	cats := h.core.Categories()
	if _, ok := resolveEditable(cats, id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}
	cats = coredata.DeleteCategory(cats, id)
	h.save(c, cats, http.StatusOK)
}

// CreateLink appends a link to a category.
func (h *Handler) CreateLink(c *gin.Context) {
	id := c.Param("id")
	var link models.LinkItem
	if err := c.ShouldBindJSON(&link); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if link.URL == "" || link.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and URL are required"})
		return
	}
	cats := h.core.Categories()
	if _, ok := resolveEditable(cats, id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}
	cats = coredata.AddLink(cats, id, link)
	h.save(c, cats, http.StatusCreated)
}

// UpdateLink rewrites one link in place.
func (h *Handler) UpdateLink(c *gin.Context) {
	catID := c.Param("id")
	var link models.LinkItem
	if err := c.ShouldBindJSON(&link); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	link.ID = c.Param("linkId")
	cats := h.core.Categories()
	i, ok := resolveEditable(cats, catID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}
	if !hasLink(cats[i], link.ID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
		return
	}
	cats = coredata.UpdateLink(cats, catID, link)
	h.save(c, cats, http.StatusOK)
}

// DeleteLink removes one link.
func (h *Handler) DeleteLink(c *gin.Context) {
	catID := c.Param("id")
	linkID := c.Param("linkId")
	cats := h.core.Categories()
	i, ok := resolveEditable(cats, catID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}
	if !hasLink(cats[i], linkID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
		return
	}
	cats = coredata.DeleteLink(cats, catID, linkID)
	h.save(c, cats, http.StatusOK)
}

func hasLink(cat models.Category, linkID string) bool {
	for _, link := range cat.Links {
		if link.ID == linkID {
			return true
		}
	}
	return false
}

// ReorderRequest is the drag-and-drop payload.
type ReorderRequest struct {
	Source      coredata.DragSource `json:"source" binding:"required"`
	TargetCatID string              `json:"targetCatId" binding:"required"`
	TargetIndex int                 `json:"targetIndex"`
}

// Reorder moves a link within or between categories.
func (h *Handler) Reorder(c *gin.Context) {
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cats := h.core.Categories()
	if req.Source.CatID == models.RecommendationsID || req.TargetCatID == models.RecommendationsID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Recommendations cannot be reordered"})
		return
	}
	cats = coredata.Drop(cats, req.Source, req.TargetCatID, req.TargetIndex)
	h.save(c, cats, http.StatusOK)
}

// RecordClick increments a link's click count. Public: visitors drive the
// recommendation ranking.
func (h *Handler) RecordClick(c *gin.Context) {
	linkID := c.Param("linkId")
	cats := coredata.RecordClick(h.core.Categories(), linkID)
	h.save(c, cats, http.StatusOK)
}

// Search fuzzy-matches link titles for the command palette.
func (h *Handler) Search(c *gin.Context) {
	q := c.Query("q")
	results := search.Links(h.core.Categories(), q, auth.IsAdmin(c))
	if results == nil {
		results = []search.Result{}
	}
	c.JSON(http.StatusOK, results)
}

// SyncStatus exposes the tri-state cloud indicator and per-domain phases.
func (h *Handler) SyncStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": h.core.Status(),
		"phases": h.core.Phases(),
	})
}

// ImportResult reports an import outcome.
type ImportResult struct {
	Categories int `json:"categories"`
	Links      int `json:"links"`
}

// ImportBookmarks parses Netscape bookmark HTML from the request body and
// appends the resulting categories.
func (h *Handler) ImportBookmarks(c *gin.Context) {
	imported, err := importer.ParseBookmarks(c.Request.Body, "导入的书签")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bookmark file"})
		return
	}

	cats := h.core.Categories()
	links := 0
	for _, cat := range imported {
		if len(cat.Links) == 0 {
			continue
		}
		links += len(cat.Links)
		cats = append(cats, cat)
	}
	if _, err := h.core.SaveCategories(cats); err != nil {
		h.diag.Warnf("dashboard: import saved to memory only: %v", err)
	}
	c.JSON(http.StatusOK, ImportResult{Categories: len(imported), Links: links})
}

// Export returns the full category array, private content included.
func (h *Handler) Export(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="aurora-bookmarks.json"`)
	c.JSON(http.StatusOK, h.core.Categories())
}

// Logs returns the diagnostic ring buffer.
func (h *Handler) Logs(c *gin.Context) {
	c.JSON(http.StatusOK, h.diag.Entries())
}

// ClearLogs empties the diagnostic ring buffer.
func (h *Handler) ClearLogs(c *gin.Context) {
	h.diag.Clear()
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}

// save runs the category choke point and writes the response. A failed
// local persist degrades to unsaved (memory still updated) and surfaces a
// warning instead of failing the request.
func (h *Handler) save(c *gin.Context, cats []models.Category, status int) {
	if _, err := h.core.SaveCategories(cats); err != nil {
		c.JSON(status, gin.H{"saved": false, "warning": "changes kept in memory only"})
		return
	}
	c.JSON(status, gin.H{"saved": true})
}

// RegisterPublicRoutes registers the anonymous browse/search surface.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/categories", h.ListCategories)
	rg.GET("/settings", h.GetSettings)
	rg.GET("/engines", h.ListEngines)
	rg.GET("/search", h.Search)
	rg.GET("/sync/status", h.SyncStatus)
	rg.POST("/links/:linkId/click", h.RecordClick)
}

// RegisterAdminRoutes registers the mutation surface; callers wrap the
// group in auth.AdminMiddleware.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.PUT("/settings", h.PutSettings)
	rg.PUT("/engines", h.PutEngines)
	rg.POST("/categories", h.CreateCategory)
	rg.PUT("/categories/:id", h.UpdateCategory)
	rg.DELETE("/categories/:id", h.DeleteCategory)
	rg.POST("/categories/:id/links", h.CreateLink)
	rg.PUT("/categories/:id/links/:linkId", h.UpdateLink)
	rg.DELETE("/categories/:id/links/:linkId", h.DeleteLink)
	rg.POST("/reorder", h.Reorder)
	rg.POST("/import/bookmarks", h.ImportBookmarks)
	rg.GET("/export", h.Export)
	rg.GET("/logs", h.Logs)
	rg.DELETE("/logs", h.ClearLogs)
}
