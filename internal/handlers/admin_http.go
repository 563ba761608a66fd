package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/storefront/internal/service"
)

// Invalidator drops derived read caches after bulk writes.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

type AdminHTTP struct {
	Seed  service.SeedService
	Cache Invalidator // may be nil
}

func NewAdminHTTP(seed service.SeedService, cache Invalidator) *AdminHTTP {
	return &AdminHTTP{Seed: seed, Cache: cache}
}

func (h *AdminHTTP) SeedDemo(c *gin.Context) {
	res, err := h.Seed.Seed(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if res.Created && h.Cache != nil {
		h.Cache.Invalidate(c.Request.Context())
	}
	c.JSON(http.StatusOK, res)
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// NotFound answers unknown routes in the common error shape.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
}
