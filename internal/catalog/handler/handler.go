package handler

import (
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-warehouse/internal/apperr"
	"github.com/fekuna/omnipos-warehouse/internal/catalog"
	"github.com/fekuna/omnipos-warehouse/internal/catalog/dto"
	"github.com/fekuna/omnipos-warehouse/internal/httpx"
	"github.com/fekuna/omnipos-warehouse/internal/logger"
	"github.com/fekuna/omnipos-warehouse/internal/rowstore"
	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the row-level resources. Rows are addressed by the
// _rowIndex the list endpoints return.
type CatalogHandler struct {
	uc     catalog.UseCase
	resp   *httpx.Responder
	logger logger.ZapLogger
}

func NewCatalogHandler(uc catalog.UseCase, resp *httpx.Responder, log logger.ZapLogger) *CatalogHandler {
	return &CatalogHandler{
		uc:     uc,
		resp:   resp,
		logger: log,
	}
}

func (h *CatalogHandler) Register(g gin.IRoutes) {
	h.resp.Route(g, "/categories", map[string]gin.HandlerFunc{
		http.MethodGet:    h.ListCategories,
		http.MethodPost:   h.CreateCategory,
		http.MethodPut:    h.RenameCategory,
		http.MethodDelete: h.deleteRow(rowstore.Categories),
	})
	h.resp.Route(g, "/types", map[string]gin.HandlerFunc{
		http.MethodGet:    h.ListTypes,
		http.MethodPost:   h.CreateType,
		http.MethodDelete: h.deleteRow(rowstore.Types),
	})
	h.resp.Route(g, "/phones", map[string]gin.HandlerFunc{
		http.MethodGet:    h.ListPhones,
		http.MethodPost:   h.CreatePhone,
		http.MethodDelete: h.deleteRow(rowstore.Phones),
	})
	h.resp.Route(g, "/products", map[string]gin.HandlerFunc{
		http.MethodGet:    h.ListProducts,
		http.MethodPost:   h.CreateProduct,
		http.MethodPut:    h.UpdateProductStock,
		http.MethodDelete: h.deleteRow(rowstore.Products),
	})
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	out, err := h.uc.ListCategories(c.Request.Context())
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) ListTypes(c *gin.Context) {
	out, err := h.uc.ListTypes(c.Request.Context())
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) ListPhones(c *gin.Context) {
	out, err := h.uc.ListPhones(c.Request.Context())
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) ListProducts(c *gin.Context) {
	out, err := h.uc.ListProducts(c.Request.Context())
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req dto.NameRequest
	if !h.resp.BindJSON(c, &req) {
		return
	}
	cat, err := h.uc.CreateCategory(c.Request.Context(), &dto.CreateCategoryInput{Name: req.Name})
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *CatalogHandler) CreateType(c *gin.Context) {
	var req dto.NameRequest
	if !h.resp.BindJSON(c, &req) {
		return
	}
	t, err := h.uc.CreateType(c.Request.Context(), &dto.CreateTypeInput{Name: req.Name})
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *CatalogHandler) CreatePhone(c *gin.Context) {
	var req dto.CreatePhoneRequest
	if !h.resp.BindJSON(c, &req) {
		return
	}
	p, err := h.uc.CreatePhone(c.Request.Context(), &dto.CreatePhoneInput{Name: req.Name, TypeID: req.TypeID})
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req dto.CreateProductRequest
	if !h.resp.BindJSON(c, &req) {
		return
	}
	input := &dto.CreateProductInput{
		Name:       req.Name,
		CategoryID: req.CategoryID,
		TypeID:     req.TypeID,
		PhoneID:    req.PhoneID,
		Color:      req.Color,
		Image:      req.Image,
	}
	if req.Stock != nil {
		stock := int(*req.Stock)
		input.Stock = &stock
	}

	p, err := h.uc.CreateProduct(c.Request.Context(), input)
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *CatalogHandler) RenameCategory(c *gin.Context) {
	var req dto.RowRequest
	if !h.resp.BindJSON(c, &req) {
		return
	}
	if req.RowIndex == nil {
		h.resp.Error(c, rowIndexRequired())
		return
	}
	if err := h.uc.RenameCategoryAt(c.Request.Context(), int(*req.RowIndex), req.Name); err != nil {
		h.resp.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *CatalogHandler) UpdateProductStock(c *gin.Context) {
	var req dto.RowRequest
	if !h.resp.BindJSON(c, &req) {
		return
	}
	if req.RowIndex == nil || req.Stock == nil {
		h.resp.Error(c, apperr.Validation("RowIndexAndStockRequired", "rowIndex and stock are required"))
		return
	}
	if err := h.uc.SetProductStockAt(c.Request.Context(), int(*req.RowIndex), int(*req.Stock)); err != nil {
		h.resp.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// deleteRow takes rowIndex from the JSON body, or from the query string for
// clients that cannot send a DELETE body.
func (h *CatalogHandler) deleteRow(coll rowstore.Collection) gin.HandlerFunc {
	return func(c *gin.Context) {
		rowIndex, ok := h.rowIndex(c)
		if !ok {
			return
		}
		if err := h.uc.DeleteAt(c.Request.Context(), coll, rowIndex); err != nil {
			h.resp.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func (h *CatalogHandler) rowIndex(c *gin.Context) (int, bool) {
	if q := c.Query("rowIndex"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			h.resp.Error(c, rowIndexRequired())
			return 0, false
		}
		return n, true
	}

	var req dto.RowRequest
	if c.Request.ContentLength != 0 {
		if !h.resp.BindJSON(c, &req) {
			return 0, false
		}
	}
	if req.RowIndex == nil {
		h.resp.Error(c, rowIndexRequired())
		return 0, false
	}
	return int(*req.RowIndex), true
}

func rowIndexRequired() *apperr.Error {
	return apperr.Validation("FieldRequired", "rowIndex is required").
		WithData(map[string]interface{}{"Field": "rowIndex"})
}
