package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"example.com/storefront/internal/errx"
	"example.com/storefront/internal/service"
)

type CatalogHTTP struct {
	S service.CatalogService
}

func NewCatalogHTTP(s service.CatalogService) *CatalogHTTP { return &CatalogHTTP{S: s} }

func (h *CatalogHTTP) ListCategories(c *gin.Context) {
	out, err := h.S.ListCategories(c.Request.Context(), c.Query("ordering"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *CatalogHTTP) GetCategory(c *gin.Context) {
	id, ok := idParam(c, service.ErrCategoryNotFound)
	if !ok {
		return
	}
	out, err := h.S.GetCategory(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

type categoryReq struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

func (h *CatalogHTTP) CreateCategory(c *gin.Context) {
	var req categoryReq
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.S.CreateCategory(c.Request.Context(), service.CategoryInput{Title: req.Title, Description: req.Description})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *CatalogHTTP) ListProducts(c *gin.Context) {
	q := service.ProductQuery{Search: c.Query("search"), Ordering: c.Query("ordering")}
	var err error
	if q.PriceMin, err = decimalQuery(c, "price_min"); err != nil {
		writeError(c, err)
		return
	}
	if q.PriceMax, err = decimalQuery(c, "price_max"); err != nil {
		writeError(c, err)
		return
	}
	if v := c.Query("in_stock"); v != "" {
		b, perr := strconv.ParseBool(v)
		if perr != nil {
			writeError(c, errx.Validation("in_stock", "must be true or false"))
			return
		}
		q.InStock = &b
	}
	if v := c.Query("category"); v != "" {
		id, perr := strconv.ParseUint(v, 10, 64)
		if perr != nil {
			writeError(c, errx.Validation("category", "must be a category id"))
			return
		}
		cid := uint(id)
		q.CategoryID = &cid
	}

	out, err := h.S.ListProducts(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *CatalogHTTP) GetProduct(c *gin.Context) {
	id, ok := idParam(c, service.ErrProductNotFound)
	if !ok {
		return
	}
	out, err := h.S.GetProduct(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

type productReq struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	Inventory   *int             `json:"inventory"`
	Category    *uint            `json:"category"`
}

func (h *CatalogHTTP) CreateProduct(c *gin.Context) {
	var req productReq
	if !bindJSON(c, &req) {
		return
	}
	if req.UnitPrice == nil {
		writeError(c, errx.Validation("unit_price", "this field is required"))
		return
	}
	in := service.ProductInput{UnitPrice: *req.UnitPrice}
	if req.Name != nil {
		in.Name = *req.Name
	}
	if req.Description != nil {
		in.Description = *req.Description
	}
	if req.Inventory != nil {
		in.Inventory = *req.Inventory
	}
	if req.Category != nil {
		in.CategoryID = *req.Category
	}
	out, err := h.S.CreateProduct(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *CatalogHTTP) UpdateProduct(c *gin.Context) {
	id, ok := idParam(c, service.ErrProductNotFound)
	if !ok {
		return
	}
	var req productReq
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.S.UpdateProduct(c.Request.Context(), id, service.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		UnitPrice:   req.UnitPrice,
		Inventory:   req.Inventory,
		CategoryID:  req.Category,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// ListDiscounts ignores an unparsable base_price; the preview is then null.
func (h *CatalogHTTP) ListDiscounts(c *gin.Context) {
	q := service.DiscountQuery{Search: c.Query("search"), Ordering: c.Query("ordering")}
	if bp, err := decimalQuery(c, "base_price"); err == nil {
		q.BasePrice = bp
	}
	out, err := h.S.ListDiscounts(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

type discountReq struct {
	Discount    decimal.Decimal `json:"discount"`
	Description string          `json:"description"`
	Products    []uint          `json:"products"`
}

func (h *CatalogHTTP) CreateDiscount(c *gin.Context) {
	var req discountReq
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.S.CreateDiscount(c.Request.Context(), service.DiscountInput{
		Percent:     req.Discount,
		Description: req.Description,
		ProductIDs:  req.Products,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func decimalQuery(c *gin.Context, name string) (*decimal.Decimal, error) {
	v := c.Query(name)
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, errx.Validation(name, "enter a number")
	}
	return &d, nil
}
