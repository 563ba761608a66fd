package handlers

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"example.com/storefront/internal/errx"
	"example.com/storefront/internal/logx"
	"example.com/storefront/internal/service"
)

// statusOf maps an error kind to its HTTP status. Anything unrecognised is a
// server error.
func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, errx.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, errx.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errx.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, errx.ErrPermission):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, err error) {
	status := statusOf(err)
	e, ok := errx.As(err)
	if status == http.StatusInternalServerError || !ok {
		logx.Error().Err(err).
			Str("request_id", c.GetString(requestIDKey)).
			Str("path", c.FullPath()).
			Msg("request failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
		return
	}
	body := gin.H{"detail": e.Detail}
	if e.Field != "" {
		body["field"] = e.Field
	}
	c.AbortWithStatusJSON(status, body)
}

func init() {
	// Report binding failures under the json field name.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

var bindingMessages = map[string]string{
	"required": "this field is required",
	"email":    "enter a valid email address",
}

// bindError turns the first failed binding rule into a field error. Decode
// failures are reported as a malformed body.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &errx.Error{Kind: errx.ErrValidation, Detail: "malformed request body", Err: err}
	}
	fe := verrs[0]
	msg, ok := bindingMessages[fe.Tag()]
	if !ok {
		msg = "invalid value"
	}
	return &errx.Error{Kind: errx.ErrValidation, Field: fe.Field(), Detail: msg, Err: err}
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		writeError(c, bindError(err))
		return false
	}
	return true
}

// idParam reads a numeric path id; anything unparsable cannot exist, so it is
// reported with nf.
func idParam(c *gin.Context, nf error) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		writeError(c, nf)
		return 0, false
	}
	return uint(id), true
}

func cartIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, service.ErrCartNotFound)
		return uuid.Nil, false
	}
	return id, true
}
