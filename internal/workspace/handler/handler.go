package handler

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/fekuna/omnipos-warehouse/internal/apperr"
	"github.com/fekuna/omnipos-warehouse/internal/auth"
	catalogdto "github.com/fekuna/omnipos-warehouse/internal/catalog/dto"
	"github.com/fekuna/omnipos-warehouse/internal/export"
	"github.com/fekuna/omnipos-warehouse/internal/httpx"
	"github.com/fekuna/omnipos-warehouse/internal/logger"
	"github.com/fekuna/omnipos-warehouse/internal/workspace"
	"github.com/fekuna/omnipos-warehouse/internal/workspace/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const confirmHeader = "X-Confirm"

type WorkspaceHandler struct {
	uc     workspace.UseCase
	resp   *httpx.Responder
	logger logger.ZapLogger
}

func NewWorkspaceHandler(uc workspace.UseCase, resp *httpx.Responder, log logger.ZapLogger) *WorkspaceHandler {
	return &WorkspaceHandler{
		uc:     uc,
		resp:   resp,
		logger: log,
	}
}

// Register mounts the workspace routes. g must sit behind the auth
// middleware.
func (h *WorkspaceHandler) Register(g gin.IRoutes) {
	g.POST("/workspace/load", h.Load)
	g.GET("/workspace", h.View)
	g.PATCH("/workspace/filters", h.SetFilters)
	g.DELETE("/workspace/filters", h.ResetFilters)
	g.PATCH("/workspace/form", h.UpdateForm)

	g.POST("/workspace/categories", h.AddCategory)
	g.POST("/workspace/types", h.AddType)
	g.POST("/workspace/phones", h.AddPhone)
	g.POST("/workspace/products", h.SubmitProduct)
	g.DELETE("/workspace/categories/:id", h.DeleteCategory)
	g.DELETE("/workspace/types/:id", h.DeleteType)
	g.DELETE("/workspace/phones/:id", h.DeletePhone)

	g.GET("/workspace/cart", h.Cart)
	g.POST("/workspace/cart/items", h.AddToCart)
	g.PUT("/workspace/cart/items/:productId", h.UpdateCartQuantity)
	g.POST("/workspace/cart/checkout", h.Checkout)

	g.GET("/workspace/export.xlsx", h.Export)
}

func (h *WorkspaceHandler) Load(c *gin.Context) {
	v, err := h.uc.Load(c.Request.Context(), sessionID(c))
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *WorkspaceHandler) View(c *gin.Context) {
	v, err := h.uc.View(c.Request.Context(), sessionID(c))
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *WorkspaceHandler) SetFilters(c *gin.Context) {
	var patch dto.FilterPatch
	if !h.resp.BindJSON(c, &patch) {
		return
	}
	v, err := h.uc.SetFilters(c.Request.Context(), sessionID(c), &patch)
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *WorkspaceHandler) ResetFilters(c *gin.Context) {
	v, err := h.uc.ResetFilters(c.Request.Context(), sessionID(c))
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *WorkspaceHandler) UpdateForm(c *gin.Context) {
	var patch dto.FormPatch
	if !h.resp.BindJSON(c, &patch) {
		return
	}
	v, err := h.uc.UpdateForm(c.Request.Context(), sessionID(c), patch)
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *WorkspaceHandler) AddCategory(c *gin.Context) {
	var req dto.AddNameInput
	if !h.resp.BindJSON(c, &req) {
		return
	}
	cat, err := h.uc.AddCategory(c.Request.Context(), sessionID(c), req.Name)
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *WorkspaceHandler) AddType(c *gin.Context) {
	var req dto.AddNameInput
	if !h.resp.BindJSON(c, &req) {
		return
	}
	t, err := h.uc.AddType(c.Request.Context(), sessionID(c), req.Name)
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *WorkspaceHandler) AddPhone(c *gin.Context) {
	var req dto.AddPhoneInput
	if !h.resp.BindJSON(c, &req) {
		return
	}
	p, err := h.uc.AddPhone(c.Request.Context(), sessionID(c), &req)
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *WorkspaceHandler) SubmitProduct(c *gin.Context) {
	p, err := h.uc.SubmitProductForm(c.Request.Context(), sessionID(c))
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *WorkspaceHandler) DeleteCategory(c *gin.Context) {
	h.cascade(c, h.uc.DeleteCategory)
}

func (h *WorkspaceHandler) DeleteType(c *gin.Context) {
	h.cascade(c, h.uc.DeleteType)
}

func (h *WorkspaceHandler) DeletePhone(c *gin.Context) {
	h.cascade(c, h.uc.DeletePhone)
}

type cascadeFunc func(ctx context.Context, sessionID, id string, confirmed bool) (*catalogdto.CascadeResult, error)

func (h *WorkspaceHandler) cascade(c *gin.Context, del cascadeFunc) {
	res, err := del(c.Request.Context(), sessionID(c), c.Param("id"), confirmed(c))
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *WorkspaceHandler) Cart(c *gin.Context) {
	lines, err := h.uc.Cart(c.Request.Context(), sessionID(c))
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, lines)
}

func (h *WorkspaceHandler) AddToCart(c *gin.Context) {
	var req dto.CartItemInput
	if !h.resp.BindJSON(c, &req) {
		return
	}
	if req.ProductID == "" {
		h.resp.Error(c, apperr.Validation("FieldRequired", "productId is required").
			WithData(map[string]interface{}{"Field": "productId"}))
		return
	}
	lines, err := h.uc.AddToCart(c.Request.Context(), sessionID(c), req.ProductID)
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, lines)
}

func (h *WorkspaceHandler) UpdateCartQuantity(c *gin.Context) {
	var req dto.CartQuantityInput
	if !h.resp.BindJSON(c, &req) {
		return
	}
	if req.Quantity == nil {
		h.resp.Error(c, apperr.Validation("FieldRequired", "quantity is required").
			WithData(map[string]interface{}{"Field": "quantity"}))
		return
	}
	lines, err := h.uc.UpdateCartQuantity(c.Request.Context(), sessionID(c), c.Param("productId"), *req.Quantity)
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, lines)
}

func (h *WorkspaceHandler) Checkout(c *gin.Context) {
	res, err := h.uc.Checkout(c.Request.Context(), sessionID(c))
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *WorkspaceHandler) Export(c *gin.Context) {
	// buffer so a failure can still be reported as JSON
	var buf bytes.Buffer
	if err := h.uc.Export(c.Request.Context(), sessionID(c), &buf); err != nil {
		h.resp.Error(c, err)
		return
	}
	h.logger.Debug("exported products", zap.Int("bytes", buf.Len()))
	c.Header("Content-Disposition", "attachment; filename=products.xlsx")
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

func sessionID(c *gin.Context) string {
	return auth.GetSessionID(c.Request.Context())
}

// confirmed reports an explicit yes for a destructive request.
func confirmed(c *gin.Context) bool {
	if strings.EqualFold(c.Query("confirm"), "true") {
		return true
	}
	return strings.EqualFold(c.GetHeader(confirmHeader), "yes")
}
