package model

import (
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"example.com/storefront/internal/errx"
)

const MinProductNameLen = 6

var validate = validator.New()

func (c *Category) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return errx.Validation("title", "this field is required")
	}
	return nil
}

func (p *Product) Validate() error {
	if utf8.RuneCountInString(p.Name) < MinProductNameLen {
		return errx.Validation("name", "must be at least 6 characters")
	}
	if p.UnitPrice.IsNegative() {
		return errx.Validation("unit_price", "must be >= 0")
	}
	if p.Inventory < 0 {
		return errx.Validation("inventory", "must be >= 0")
	}
	if p.CategoryID == 0 {
		return errx.Validation("category", "this field is required")
	}
	return nil
}

var hundred = decimal.NewFromInt(100)

func (d *Discount) Validate() error {
	if !d.Percent.IsPositive() || !d.Percent.LessThan(hundred) {
		return errx.Validation("discount", "discount percent must be between 0 and 100")
	}
	return nil
}

func (c *Comment) Validate() error {
	switch {
	case c.ProductID == 0:
		return errx.Validation("product", "this field is required")
	case strings.TrimSpace(c.Name) == "":
		return errx.Validation("name", "this field is required")
	case strings.TrimSpace(c.Body) == "":
		return errx.Validation("body", "this field is required")
	}
	return nil
}

func (c *Customer) Validate() error {
	if strings.TrimSpace(c.FirstName) == "" {
		return errx.Validation("first_name", "this field is required")
	}
	if strings.TrimSpace(c.LastName) == "" {
		return errx.Validation("last_name", "this field is required")
	}
	if err := validate.Var(c.Email, "required,email"); err != nil {
		return errx.Validation("email", "enter a valid email address")
	}
	return nil
}

func (a *Address) Validate() error {
	switch {
	case a.CustomerID == 0:
		return errx.Validation("customer", "this field is required")
	case strings.TrimSpace(a.City) == "":
		return errx.Validation("city", "this field is required")
	case strings.TrimSpace(a.Province) == "":
		return errx.Validation("province", "this field is required")
	case strings.TrimSpace(a.Street) == "":
		return errx.Validation("street", "this field is required")
	}
	return nil
}
