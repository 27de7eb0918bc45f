package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-warehouse/internal/catalog/repository"
	"github.com/fekuna/omnipos-warehouse/internal/catalog/usecase"
	"github.com/fekuna/omnipos-warehouse/internal/httpx"
	"github.com/fekuna/omnipos-warehouse/internal/i18n"
	"github.com/fekuna/omnipos-warehouse/internal/logger"
	"github.com/fekuna/omnipos-warehouse/internal/rowstore"
	"github.com/fekuna/omnipos-warehouse/internal/rowstore/memory"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T) (*gin.Engine, *memory.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	require.NoError(t, rowstore.Init(context.Background(), store))

	tr, err := i18n.New("en")
	require.NoError(t, err)
	log := logger.NewNop()
	h := NewCatalogHandler(
		usecase.NewCatalogUseCase(repository.NewRowRepository(store), log),
		httpx.NewResponder(tr, log),
		log,
	)

	r := gin.New()
	h.Register(r.Group("/api"))
	return r, store
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCategories(t *testing.T) {
	r, _ := newRouter(t)

	w := do(r, http.MethodPost, "/api/categories", `{"name":"Case"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Case", created["name"])
	assert.True(t, strings.HasPrefix(created["id"].(string), "cat-"))

	w = do(r, http.MethodGet, "/api/categories", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, float64(2), list[0]["_rowIndex"])

	w = do(r, http.MethodPut, "/api/categories", `{"rowIndex":2,"name":"Cases"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	w = do(r, http.MethodDelete, "/api/categories", `{"rowIndex":2}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/api/categories", "")
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestValidationAndNotFound(t *testing.T) {
	r, _ := newRouter(t)

	w := do(r, http.MethodPost, "/api/categories", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"name is required"}`, w.Body.String())

	w = do(r, http.MethodDelete, "/api/types", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"rowIndex is required"}`, w.Body.String())

	w = do(r, http.MethodDelete, "/api/types?rowIndex=5", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodPut, "/api/products", `{"rowIndex":2}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	r, _ := newRouter(t)

	w := do(r, http.MethodPut, "/api/phones", `{}`)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "DELETE, GET, POST", w.Header().Get("Allow"))
	assert.JSONEq(t, `{"error":"Method PUT not allowed"}`, w.Body.String())

	w = do(r, http.MethodPatch, "/api/products", `{}`)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "DELETE, GET, POST, PUT", w.Header().Get("Allow"))
}

func TestProducts(t *testing.T) {
	r, store := newRouter(t)

	w := do(r, http.MethodPost, "/api/products",
		`{"name":"Clear case","categoryId":"c1","typeId":"t1","phoneId":"ph1","color":"Clear","stock":"10"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var p map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, float64(10), p["stock"])
	assert.NotEmpty(t, p["image"])

	w = do(r, http.MethodPut, "/api/products", `{"rowIndex":2,"stock":7}`)
	require.Equal(t, http.StatusOK, w.Code)

	tbl, err := store.Read(context.Background(), rowstore.Products)
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "7", tbl.Rows[0].Values[6])
	assert.Equal(t, "Clear case", tbl.Rows[0].Values[1])

	w = do(r, http.MethodPost, "/api/products", `{"name":"x","categoryId":"c1","typeId":"t1","phoneId":"ph1","color":"Red"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPut, "/api/products", `{"rowIndex":2,"stock":1.5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	tbl, err = store.Read(context.Background(), rowstore.Products)
	require.NoError(t, err)
	assert.Equal(t, "7", tbl.Rows[0].Values[6])
}
