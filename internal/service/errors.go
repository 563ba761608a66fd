package service

import (
	"errors"

	"gorm.io/gorm"

	"example.com/storefront/internal/errx"
)

var (
	ErrCartNotFound     = errx.NotFound("cart not found")
	ErrProductNotFound  = errx.NotFound("product not found")
	ErrCategoryNotFound = errx.NotFound("category not found")
	ErrCommentNotFound  = errx.NotFound("comment not found")
	ErrCustomerNotFound = errx.NotFound("customer not found")
	ErrAddressNotFound  = errx.NotFound("address not found")
	ErrOrderNotFound    = errx.NotFound("order not found")

	ErrQuantityNotPositive = errx.Validation("quantity", "quantity must be > 0")
	ErrProductIDRequired   = errx.Validation("product_id", "product_id is required")
	ErrCartEmpty           = errx.Validation("cart", "cart is empty")

	ErrAdminRequired      = errx.Permission("admin privileges required")
	ErrInvalidCredentials = errx.Permission("invalid credentials")
)

// notFound maps gorm's missing-row error onto a domain NotFound error and
// passes anything else through.
func notFound(err error, nf *errx.Error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nf
	}
	return err
}
