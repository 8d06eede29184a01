package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/qbvs/aurora-pro/pkg/aurora/auth"
	"github.com/qbvs/aurora-pro/pkg/aurora/coredata"
	"github.com/qbvs/aurora-pro/pkg/aurora/localstore"
	"github.com/qbvs/aurora-pro/pkg/aurora/logbuf"
	"github.com/qbvs/aurora-pro/pkg/aurora/models"
	"github.com/qbvs/aurora-pro/pkg/aurora/syncer"
)

// offlineKV keeps the orchestrator purely local in handler tests.
type offlineKV struct{}

func (offlineKV) Get(ctx context.Context, key string) (json.RawMessage, bool) { return nil, false }
func (offlineKV) Set(ctx context.Context, key string, value any) bool         { return false }
func (offlineKV) Verify(ctx context.Context) bool                             { return false }

func setupTest(t *testing.T) (*gin.Engine, *syncer.Orchestrator) {
	t.Helper()
	store, err := localstore.Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}
	seed := []models.Category{
		{ID: "pub", Title: "Public", Links: []models.LinkItem{
			{ID: "l1", Title: "GitHub", URL: "https://github.com", ClickCount: 5},
			{ID: "l2", Title: "Secret Notes", URL: "https://notes.example", IsPrivate: true},
		}},
		{ID: "priv", Title: "Private", IsPrivate: true, Links: []models.LinkItem{
			{ID: "p1", Title: "Admin Panel", URL: "https://admin.example"},
		}},
	}
	if err := store.Save(models.KeyCategories, seed); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	core := syncer.New(store, offlineKV{}, nil)
	diag := logbuf.New(10)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(core, diag)
	api := r.Group("/api")
	handler.RegisterPublicRoutes(api)
	handler.RegisterAdminRoutes(api.Group("/admin", auth.AdminMiddleware()))
	return r, core
}

func adminHeader(t *testing.T) string {
	t.Helper()
	token, err := auth.GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	return "Bearer " + token
}

func doJSON(router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body != nil {
		raw, _ := json.Marshal(body)
		buf = bytes.NewBuffer(raw)
	} else {
		buf = bytes.NewBuffer(nil)
	}
	req, _ := http.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestListCategoriesFiltersPrivateForAnonymous(t *testing.T) {
	router, _ := setupTest(t)

	resp := doJSON(router, "GET", "/api/categories", "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.Code)
	}

	var cats []models.Category
	json.Unmarshal(resp.Body.Bytes(), &cats)
	for _, cat := range cats {
		if cat.ID == "priv" {
			t.Error("Private category leaked to anonymous reader")
		}
		for _, link := range cat.Links {
			if link.IsPrivate {
				t.Errorf("Private link %q leaked to anonymous reader", link.ID)
			}
		}
	}
}

func TestListCategoriesIncludesPrivateForAdmin(t *testing.T) {
	router, _ := setupTest(t)

	resp := doJSON(router, "GET", "/api/categories", adminHeader(t), nil)
	var cats []models.Category
	json.Unmarshal(resp.Body.Bytes(), &cats)

	found := false
	for _, cat := range cats {
		if cat.ID == "priv" {
			found = true
		}
	}
	if !found {
		t.Error("Admin reader should see private categories")
	}
}

func TestMutationRequiresAuth(t *testing.T) {
	router, _ := setupTest(t)

	resp := doJSON(router, "POST", "/api/admin/categories", "", CreateCategoryRequest{Title: "X"})
	if resp.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", resp.Code)
	}
}

func TestCategoryCRUD(t *testing.T) {
	router, core := setupTest(t)
	token := adminHeader(t)

	resp := doJSON(router, "POST", "/api/admin/categories", token, CreateCategoryRequest{Title: "工具", Icon: "Wrench"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("Create: expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var created models.Category
	for _, cat := range core.Categories() {
		if cat.Title == "工具" {
			created = cat
		}
	}
	if created.ID == "" {
		t.Fatal("Created category not in core state")
	}

	resp = doJSON(router, "PUT", "/api/admin/categories/"+created.ID, token, UpdateCategoryRequest{Title: "工具箱", Icon: "Wrench", IsPrivate: true})
	if resp.Code != http.StatusOK {
		t.Fatalf("Update: expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = doJSON(router, "DELETE", "/api/admin/categories/"+created.ID, token, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("Delete: expected status 200, got %d", resp.Code)
	}
	for _, cat := range core.Categories() {
		if cat.ID == created.ID {
			t.Error("Category survived delete")
		}
	}
}

func TestSyntheticCategoryIsNotEditable(t *testing.T) {
	router, core := setupTest(t)
	token := adminHeader(t)

	before := core.Categories()

	resp := doJSON(router, "PUT", "/api/admin/categories/"+models.RecommendationsID, token, UpdateCategoryRequest{Title: "hijack"})
	if resp.Code != http.StatusNotFound {
		t.Errorf("Update rec-1: expected status 404, got %d", resp.Code)
	}
	resp = doJSON(router, "DELETE", "/api/admin/categories/"+models.RecommendationsID, token, nil)
	if resp.Code != http.StatusNotFound {
		t.Errorf("Delete rec-1: expected status 404, got %d", resp.Code)
	}
	resp = doJSON(router, "POST", "/api/admin/categories/"+models.RecommendationsID+"/links", token, models.LinkItem{Title: "X", URL: "https://x.example"})
	if resp.Code != http.StatusNotFound {
		t.Errorf("Add link to rec-1: expected status 404, got %d", resp.Code)
	}

	after := core.Categories()
	beforeJSON, _ := json.Marshal(before)
	afterJSON, _ := json.Marshal(after)
	if string(beforeJSON) != string(afterJSON) {
		t.Error("Synthetic category mutation changed state")
	}
}

func TestLinkCRUDAndReaggregation(t *testing.T) {
	router, core := setupTest(t)
	token := adminHeader(t)

	link := models.LinkItem{Title: "Figma", URL: "https://figma.com", ClickCount: 99}
	resp := doJSON(router, "POST", "/api/admin/categories/pub/links", token, link)
	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	// The save choke point must have rebuilt recommendations with the new
	// top-clicked link first.
	cats := core.Categories()
	if cats[0].ID != models.RecommendationsID {
		t.Fatalf("Expected synthetic category first, got %q", cats[0].ID)
	}
	if len(cats[0].Links) == 0 || cats[0].Links[0].Title != "Figma" {
		t.Errorf("Recommendations not rebuilt after link create: %+v", cats[0].Links)
	}
}

func TestReorderEndpoint(t *testing.T) {
	router, core := setupTest(t)
	token := adminHeader(t)

	// Seed a second public category through the API.
	doJSON(router, "POST", "/api/admin/categories", token, CreateCategoryRequest{Title: "Second"})
	var second string
	for _, cat := range core.Categories() {
		if cat.Title == "Second" {
			second = cat.ID
		}
	}

	resp := doJSON(router, "POST", "/api/admin/reorder", token, ReorderRequest{
		Source:      coredata.DragSource{CatID: "pub", Index: 0},
		TargetCatID: second,
		TargetIndex: 0,
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	for _, cat := range core.Categories() {
		if cat.ID == second {
			if len(cat.Links) != 1 || cat.Links[0].ID != "l1" {
				t.Errorf("Link not moved to target category: %+v", cat.Links)
			}
		}
	}
}

func TestReorderRejectsSynthetic(t *testing.T) {
	router, _ := setupTest(t)
	resp := doJSON(router, "POST", "/api/admin/reorder", adminHeader(t), ReorderRequest{
		Source:      coredata.DragSource{CatID: models.RecommendationsID, Index: 0},
		TargetCatID: "pub",
		TargetIndex: 0,
	})
	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.Code)
	}
}

func TestRecordClickIsPublic(t *testing.T) {
	router, core := setupTest(t)

	resp := doJSON(router, "POST", "/api/links/l1/click", "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.Code)
	}

	for _, cat := range core.Categories() {
		if cat.ID == "pub" && cat.Links[0].ClickCount != 6 {
			t.Errorf("Expected click count 6, got %d", cat.Links[0].ClickCount)
		}
	}
}

func TestSearchExcludesPrivateForAnonymous(t *testing.T) {
	router, _ := setupTest(t)

	resp := doJSON(router, "GET", "/api/search?q=Secret", "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.Code)
	}
	if strings.Contains(resp.Body.String(), "Secret Notes") {
		t.Error("Private link leaked through anonymous search")
	}

	resp = doJSON(router, "GET", "/api/search?q=Secret", adminHeader(t), nil)
	if !strings.Contains(resp.Body.String(), "Secret Notes") {
		t.Error("Admin search should reach private links")
	}
}

func TestSyncStatusEndpoint(t *testing.T) {
	router, _ := setupTest(t)

	resp := doJSON(router, "GET", "/api/sync/status", "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.Code)
	}
	var body struct {
		Status string                         `json:"status"`
		Phases map[syncer.Domain]syncer.Phase `json:"phases"`
	}
	json.Unmarshal(resp.Body.Bytes(), &body)
	if body.Status != string(syncer.StatusChecking) {
		t.Errorf("Expected checking before ConnectCloud, got %q", body.Status)
	}
	if len(body.Phases) != 3 {
		t.Errorf("Expected 3 domains, got %v", body.Phases)
	}
}

func TestImportBookmarks(t *testing.T) {
	router, core := setupTest(t)

	const bookmarkHTML = `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
  <DT><H3>Reading</H3>
  <DL><p>
    <DT><A HREF="https://blog.example">Blog</A>
  </DL><p>
</DL><p>`

	req, _ := http.NewRequest("POST", "/api/admin/import/bookmarks", strings.NewReader(bookmarkHTML))
	req.Header.Set("Authorization", adminHeader(t))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var result ImportResult
	json.Unmarshal(resp.Body.Bytes(), &result)
	if result.Links != 1 {
		t.Errorf("Expected 1 imported link, got %d", result.Links)
	}

	found := false
	for _, cat := range core.Categories() {
		if cat.Title == "Reading" {
			found = true
		}
	}
	if !found {
		t.Error("Imported category missing from core state")
	}
}

func TestExportIncludesPrivate(t *testing.T) {
	router, _ := setupTest(t)

	resp := doJSON(router, "GET", "/api/admin/export", adminHeader(t), nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "Admin Panel") {
		t.Error("Export should include private links")
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	router, _ := setupTest(t)
	token := adminHeader(t)

	// The document is opaque: fields the server has no schema for must
	// survive the round-trip alongside the known ones.
	settings := map[string]any{
		"theme":       "midnight",
		"language":    "zh-CN",
		"engineId":    "google",
		"aiProviders": []map[string]any{{"name": "openai", "key": "sk-secret"}},
		"customCss":   "body{margin:0}",
	}
	resp := doJSON(router, "PUT", "/api/admin/settings", token, settings)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	// Anonymous readers get the document without provider credentials.
	resp = doJSON(router, "GET", "/api/settings", "", nil)
	if strings.Contains(resp.Body.String(), "sk-secret") {
		t.Error("AI provider credentials leaked to anonymous reader")
	}
	if !strings.Contains(resp.Body.String(), "midnight") {
		t.Error("Theme missing from public settings")
	}
	if !strings.Contains(resp.Body.String(), "customCss") {
		t.Error("Unknown field missing from public settings")
	}

	resp = doJSON(router, "GET", "/api/settings", token, nil)
	if !strings.Contains(resp.Body.String(), "sk-secret") {
		t.Error("Admin should see the full settings document")
	}
	if !strings.Contains(resp.Body.String(), "customCss") {
		t.Error("Unknown field dropped from the stored document")
	}
}
