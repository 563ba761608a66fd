package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/storefront/internal/service"
)

type OrderHTTP struct {
	S service.CheckoutService
}

func NewOrderHTTP(s service.CheckoutService) *OrderHTTP { return &OrderHTTP{S: s} }

func (h *OrderHTTP) Get(c *gin.Context) {
	id, ok := idParam(c, service.ErrOrderNotFound)
	if !ok {
		return
	}
	out, err := h.S.GetOrder(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *OrderHTTP) Pay(c *gin.Context) {
	id, ok := idParam(c, service.ErrOrderNotFound)
	if !ok {
		return
	}
	out, err := h.S.MarkPaid(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
