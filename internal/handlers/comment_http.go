package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"example.com/storefront/internal/errx"
	"example.com/storefront/internal/service"
)

type CommentHTTP struct {
	S service.CommentService
}

func NewCommentHTTP(s service.CommentService) *CommentHTTP { return &CommentHTTP{S: s} }

func (h *CommentHTTP) List(c *gin.Context) {
	q := service.CommentQuery{Search: c.Query("search"), Ordering: c.Query("ordering")}
	if v := c.Query("product"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			writeError(c, errx.Validation("product", "must be a product id"))
			return
		}
		pid := uint(id)
		q.ProductID = &pid
	}
	out, err := h.S.List(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *CommentHTTP) Get(c *gin.Context) {
	id, ok := idParam(c, service.ErrCommentNotFound)
	if !ok {
		return
	}
	out, err := h.S.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// commentReq has no status field: new comments always start waiting.
type commentReq struct {
	Product uint   `json:"product"`
	Name    string `json:"name"`
	Body    string `json:"body"`
}

func (h *CommentHTTP) Create(c *gin.Context) {
	var req commentReq
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.S.Create(c.Request.Context(), service.CommentInput{ProductID: req.Product, Name: req.Name, Body: req.Body})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *CommentHTTP) Approve(c *gin.Context) { h.moderate(c, h.S.Approve) }

func (h *CommentHTTP) Reject(c *gin.Context) { h.moderate(c, h.S.Reject) }

func (h *CommentHTTP) moderate(c *gin.Context, action func(ctx context.Context, id uint) (service.CommentView, error)) {
	id, ok := idParam(c, service.ErrCommentNotFound)
	if !ok {
		return
	}
	out, err := action(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
