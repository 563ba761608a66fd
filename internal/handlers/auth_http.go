package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/storefront/internal/service"
)

const sessionMaxAge = 7 * 24 * 3600

type AuthHTTP struct {
	S service.AuthService
	// SecureCookie marks the session cookie Secure; off for local http.
	SecureCookie bool
}

func NewAuthHTTP(s service.AuthService, secureCookie bool) *AuthHTTP {
	return &AuthHTTP{S: s, SecureCookie: secureCookie}
}

type loginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHTTP) Login(c *gin.Context) {
	var req loginReq
	if !bindJSON(c, &req) {
		return
	}
	tok, err := h.S.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, tok, sessionMaxAge, "/", "", h.SecureCookie, true)
	c.JSON(http.StatusOK, gin.H{"token": tok, "token_type": "Bearer"})
}

func (h *AuthHTTP) Logout(c *gin.Context) {
	c.SetCookie(sessionCookie, "", -1, "/", "", h.SecureCookie, true)
	c.Status(http.StatusNoContent)
}
