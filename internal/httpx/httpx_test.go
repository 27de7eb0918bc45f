package httpx

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fekuna/omnipos-warehouse/internal/apperr"
	"github.com/fekuna/omnipos-warehouse/internal/i18n"
	"github.com/fekuna/omnipos-warehouse/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResponder(t *testing.T) *Responder {
	t.Helper()
	tr, err := i18n.New("en")
	require.NoError(t, err)
	return NewResponder(tr, logger.NewNop())
}

func TestStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, Status(apperr.KindValidation))
	assert.Equal(t, http.StatusNotFound, Status(apperr.KindNotFound))
	assert.Equal(t, http.StatusBadGateway, Status(apperr.KindUpstream))
	assert.Equal(t, http.StatusPreconditionRequired, Status(apperr.KindConfirmation))
	assert.Equal(t, http.StatusServiceUnavailable, Status(apperr.KindUnavailable))
	assert.Equal(t, http.StatusConflict, Status(apperr.KindBusy))
	assert.Equal(t, http.StatusInternalServerError, Status(apperr.KindInternal))
}

func TestResponder_Error(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := newResponder(t)

	engine := gin.New()
	engine.GET("/validation", func(c *gin.Context) {
		r.Error(c, apperr.Validation("FieldRequired", "name is required").
			WithData(map[string]interface{}{"Field": "name"}))
	})
	engine.GET("/internal", func(c *gin.Context) {
		r.Error(c, errors.New("db exploded"))
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/validation", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"name is required"}`, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/validation", nil)
	req.Header.Set("Accept-Language", "id-ID,id;q=0.9")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.JSONEq(t, `{"error":"name wajib diisi"}`, w.Body.String())

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/internal", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "exploded")
}

func TestResponder_Route(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := newResponder(t)

	engine := gin.New()
	r.Route(engine, "/api/types", map[string]gin.HandlerFunc{
		http.MethodGet:    func(c *gin.Context) { c.Status(http.StatusOK) },
		http.MethodPost:   func(c *gin.Context) { c.Status(http.StatusCreated) },
		http.MethodDelete: func(c *gin.Context) { c.Status(http.StatusOK) },
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/types", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/types", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "DELETE, GET, POST", w.Header().Get("Allow"))
	assert.JSONEq(t, `{"error":"Method PUT not allowed"}`, w.Body.String())
}
