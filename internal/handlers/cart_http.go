package handlers

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"example.com/storefront/internal/errx"
	"example.com/storefront/internal/service"
)

var (
	errQuantityNotInteger  = errx.Validation("quantity", "quantity must be an integer")
	errProductIDNotInteger = errx.Validation("product_id", "product_id must be an integer")
)

type CartHTTP struct {
	Carts    service.CartService
	Checkout service.CheckoutService
}

func NewCartHTTP(carts service.CartService, checkout service.CheckoutService) *CartHTTP {
	return &CartHTTP{Carts: carts, Checkout: checkout}
}

func (h *CartHTTP) Create(c *gin.Context) {
	out, err := h.Carts.Create(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *CartHTTP) Get(c *gin.Context) {
	id, ok := cartIDParam(c)
	if !ok {
		return
	}
	out, err := h.Carts.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *CartHTTP) Delete(c *gin.Context) {
	id, ok := cartIDParam(c)
	if !ok {
		return
	}
	if err := h.Carts.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type addItemReq struct {
	ProductID json.RawMessage `json:"product_id"`
	Quantity  json.RawMessage `json:"quantity"`
}

type addItemResp struct {
	Detail string `json:"detail"`
	service.AddItemResult
}

func (h *CartHTTP) AddItem(c *gin.Context) {
	id, ok := cartIDParam(c)
	if !ok {
		return
	}
	var req addItemReq
	if !bindJSON(c, &req) {
		return
	}

	qty, present, ok := intField(req.Quantity)
	if !ok {
		writeError(c, errQuantityNotInteger)
		return
	}
	if !present {
		qty = 1
	}
	productID, _, ok := intField(req.ProductID)
	if !ok || productID < 0 {
		writeError(c, errProductIDNotInteger)
		return
	}

	res, err := h.Carts.AddItem(c.Request.Context(), id, uint(productID), int(qty))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, addItemResp{Detail: "item added to cart", AddItemResult: res})
}

type checkoutReq struct {
	CustomerID uint `json:"customer_id"`
}

func (h *CartHTTP) CheckoutCart(c *gin.Context) {
	id, ok := cartIDParam(c)
	if !ok {
		return
	}
	var req checkoutReq
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.Checkout.Checkout(c.Request.Context(), id, req.CustomerID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

// intField accepts a JSON integer or a string of digits. Absent and null are
// reported as not present.
func intField(raw json.RawMessage) (v int64, present, ok bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false, true
	}
	var s string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, true, false
		}
		s = strings.TrimSpace(s)
	} else {
		s = string(raw)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n > math.MaxInt32 || n < math.MinInt32 {
		return 0, true, false
	}
	return n, true, true
}
