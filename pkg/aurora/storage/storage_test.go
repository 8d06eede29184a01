package storage

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/qbvs/aurora-pro/pkg/aurora/localstore"
)

func setupTestRouter(t *testing.T) (*gin.Engine, *localstore.Store) {
	t.Helper()
	store, err := localstore.Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(store)
	handler.RegisterRoutes(r.Group("/api"))
	return r, store
}

func TestGetMissingKeyParam(t *testing.T) {
	router, _ := setupTestRouter(t)

	req, _ := http.NewRequest("GET", "/api/storage", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestGetAbsentKeyReturnsNull(t *testing.T) {
	router, _ := setupTestRouter(t)

	req, _ := http.NewRequest("GET", "/api/storage?key=nothing", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.Code)
	}
	if resp.Body.String() != "null" {
		t.Errorf("Expected null body, got %s", resp.Body.String())
	}
}

func TestSetThenGet(t *testing.T) {
	router, _ := setupTestRouter(t)

	body := []byte(`{"key":"aurora_data_v1","value":[{"id":"a"}]}`)
	req, _ := http.NewRequest("POST", "/api/storage", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	req, _ = http.NewRequest("GET", "/api/storage?key=aurora_data_v1", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.Code)
	}
	if resp.Body.String() != `[{"id":"a"}]` {
		t.Errorf("Round-trip changed document: %s", resp.Body.String())
	}
}

func TestSetWithQueryParamKey(t *testing.T) {
	router, _ := setupTestRouter(t)

	body := []byte(`{"value":{"theme":"aurora"}}`)
	req, _ := http.NewRequest("POST", "/api/storage?key=aurora_settings_v1", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	req, _ = http.NewRequest("GET", "/api/storage?key=aurora_settings_v1", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Body.String() != `{"theme":"aurora"}` {
		t.Errorf("Expected stored value, got %s", resp.Body.String())
	}
}

func TestSetWithoutAnyKey(t *testing.T) {
	router, _ := setupTestRouter(t)

	req, _ := http.NewRequest("POST", "/api/storage", bytes.NewBufferString(`{"value":1}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.Code)
	}
}

func TestUnsupportedMethods(t *testing.T) {
	router, _ := setupTestRouter(t)

	for _, method := range []string{"PUT", "DELETE", "PATCH", "HEAD", "OPTIONS"} {
		req, _ := http.NewRequest(method, "/api/storage", nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s: expected status 405, got %d", method, resp.Code)
		}
	}
}

func TestMissingBindingAnswers500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(nil)
	handler.RegisterRoutes(r.Group("/api"))

	req, _ := http.NewRequest("GET", "/api/storage?key=k", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusInternalServerError {
		t.Errorf("GET: expected status 500, got %d", resp.Code)
	}

	req, _ = http.NewRequest("POST", "/api/storage", bytes.NewBufferString(`{"key":"k","value":1}`))
	req.Header.Set("Content-Type", "application/json")
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusInternalServerError {
		t.Errorf("POST: expected status 500, got %d", resp.Code)
	}
}
