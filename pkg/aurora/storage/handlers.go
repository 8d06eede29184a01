// Package storage serves the /api/storage proxy endpoint: the HTTP face of
// the document store that remote dashboard instances use as their cloud KV.
package storage

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qbvs/aurora-pro/pkg/aurora/localstore"
)

// Handler handles storage proxy requests
type Handler struct {
	store *localstore.Store
}

// NewHandler creates a new storage handler. A nil store models a missing
// KV binding and answers 500 on every operation.
func NewHandler(store *localstore.Store) *Handler {
	return &Handler{store: store}
}

// SetRequest is the write body. Key may instead arrive as a query param.
type SetRequest struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// Get returns the stored value for ?key=, or JSON null when absent.
func (h *Handler) Get(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing key parameter"})
		return
	}

	raw, err := h.store.GetRaw(key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if raw == nil {
		c.Data(http.StatusOK, "application/json", []byte("null"))
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

// Set stores the value from the request body under its key.
func (h *Handler) Set(c *gin.Context) {
	var req SetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	key := req.Key
	if key == "" {
		key = c.Query("key")
	}
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing key"})
		return
	}
	if req.Value == nil {
		req.Value = json.RawMessage("null")
	}

	if err := h.store.SetRaw(key, req.Value); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// methodNotAllowed answers 405 for verbs the function does not support.
func methodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
}

// RegisterRoutes registers the proxy endpoint.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/storage", h.Get)
	rg.POST("/storage", h.Set)
	for _, m := range []string{http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodHead, http.MethodOptions} {
		rg.Handle(m, "/storage", methodNotAllowed)
	}
}
