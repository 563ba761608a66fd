package service

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"example.com/storefront/internal/model"
	"example.com/storefront/internal/pricing"
)

// Views are the output records handed to the HTTP layer: a persisted entity
// decorated with precomputed aggregates and pricing.

type CategoryView struct {
	ID                uint                `json:"id"`
	Title             string              `json:"title"`
	Description       string              `json:"description"`
	ProductCount      int64               `json:"product_count"`
	InStockCount      int64               `json:"in_stock_count"`
	MinPrice          *pricing.Money `json:"min_price"`
	MaxPrice          *pricing.Money `json:"max_price"`
	AvgPrice          *pricing.Money `json:"avg_price"`
	CheapestProductID *uint          `json:"cheapest_product_id"`
	PriciestProductID *uint          `json:"priciest_product_id"`
	HasStock          bool           `json:"has_stock"`
	PriceRange        *string        `json:"price_range"`
}

func newCategoryView(c model.Category, st CategoryStats) CategoryView {
	v := CategoryView{
		ID:                c.ID,
		Title:             c.Title,
		Description:       c.Description,
		ProductCount:      st.ProductCount,
		InStockCount:      st.InStockCount,
		MinPrice:          pricing.MaybeM(st.MinPrice),
		MaxPrice:          pricing.MaybeM(st.MaxPrice),
		AvgPrice:          pricing.MaybeM(st.AvgPrice),
		CheapestProductID: st.CheapestProductID,
		PriciestProductID: st.PriciestProductID,
		HasStock:          st.InStockCount > 0,
	}
	if v.MinPrice != nil && v.MaxPrice != nil {
		r := fmt.Sprintf("%s – %s", v.MinPrice.StringFixed(2), v.MaxPrice.StringFixed(2))
		v.PriceRange = &r
	}
	return v
}

type ProductView struct {
	ID                    uint            `json:"id"`
	Name                  string          `json:"name"`
	Description           string          `json:"description"`
	ShortDescription      string          `json:"short_description"`
	UnitPrice             pricing.Money   `json:"unit_price"`
	Category              uint            `json:"category"`
	CategoryTitle         string          `json:"category_title"`
	Inventory             int             `json:"inventory"`
	IsInStock             bool            `json:"is_in_stock"`
	Slug                  string          `json:"slug"`
	Tax                   pricing.Money   `json:"tax"`
	BestDiscountPercent   decimal.Decimal `json:"best_discount_percent"`
	ApprovedCommentsCount int64           `json:"approved_comments_count"`
	TotalSold             int64           `json:"total_sold"`
	FinalPrice            pricing.Money   `json:"final_price"`
}

func newProductView(p model.Product, st ProductStats) ProductView {
	return ProductView{
		ID:                    p.ID,
		Name:                  p.Name,
		Description:           p.Description,
		ShortDescription:      shortDescription(p.Description),
		UnitPrice:             pricing.M(p.UnitPrice),
		Category:              p.CategoryID,
		CategoryTitle:         p.Category.Title,
		Inventory:             p.Inventory,
		IsInStock:             p.Inventory > 0,
		Slug:                  p.Slug,
		Tax:                   pricing.M(pricing.Tax(p.UnitPrice)),
		BestDiscountPercent:   st.BestDiscountPercent,
		ApprovedCommentsCount: st.ApprovedComments,
		TotalSold:             st.TotalSold,
		FinalPrice:            pricing.M(pricing.FinalPrice(p.UnitPrice, st.BestDiscountPercent)),
	}
}

const shortDescriptionLen = 120

func shortDescription(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= shortDescriptionLen {
		return s
	}
	r := []rune(s)[:shortDescriptionLen-3]
	return strings.TrimRight(string(r), " \t\n") + "..."
}

type DiscountView struct {
	ID                     uint            `json:"id"`
	Discount               decimal.Decimal `json:"discount"`
	Description            string          `json:"description"`
	Label                  string          `json:"label"`
	ApplicationCount       int64           `json:"application_count"`
	DiscountedPricePreview *pricing.Money  `json:"discounted_price_preview"`
}

func newDiscountView(d model.Discount, applications int64, basePrice *decimal.Decimal) DiscountView {
	v := DiscountView{
		ID:               d.ID,
		Discount:         d.Percent,
		Description:      d.Description,
		Label:            pricing.DiscountLabel(d.Percent),
		ApplicationCount: applications,
	}
	if basePrice != nil {
		preview := pricing.M(pricing.FinalPrice(*basePrice, d.Percent))
		v.DiscountedPricePreview = &preview
	}
	return v
}

type CartProductView struct {
	ID         uint            `json:"id"`
	Name       string          `json:"name"`
	Slug       string          `json:"slug"`
	UnitPrice  pricing.Money `json:"unit_price"`
	FinalPrice pricing.Money `json:"final_price"`
}

type CartItemView struct {
	ID         uint            `json:"id"`
	Product    CartProductView `json:"product"`
	Cart       uuid.UUID       `json:"cart"`
	Quantity   int             `json:"quantity"`
	TotalPrice pricing.Money   `json:"total_price"`
}

type CartView struct {
	ID         uuid.UUID      `json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	Items      []CartItemView `json:"items"`
	TotalPrice pricing.Money  `json:"total_price"`
	TotalItems int            `json:"total_items"`
}

// newCartView prices every line at the product's best discount. Items must
// have Product loaded.
func newCartView(c model.Cart, discounts map[uint]decimal.Decimal) CartView {
	v := CartView{ID: c.ID, CreatedAt: c.CreatedAt, Items: make([]CartItemView, 0, len(c.Items))}
	lines := make([]decimal.Decimal, 0, len(c.Items))
	qty := make([]int, 0, len(c.Items))
	for _, it := range c.Items {
		final := pricing.FinalPrice(it.Product.UnitPrice, discounts[it.ProductID])
		line := pricing.LineTotal(final, it.Quantity)
		v.Items = append(v.Items, CartItemView{
			ID: it.ID,
			Product: CartProductView{
				ID:         it.Product.ID,
				Name:       it.Product.Name,
				Slug:       it.Product.Slug,
				UnitPrice:  pricing.M(it.Product.UnitPrice),
				FinalPrice: pricing.M(final),
			},
			Cart:       it.CartID,
			Quantity:   it.Quantity,
			TotalPrice: pricing.M(line),
		})
		lines = append(lines, line)
		qty = append(qty, it.Quantity)
	}
	v.TotalPrice = pricing.M(pricing.CartTotal(lines))
	v.TotalItems = pricing.CartItemCount(qty)
	return v
}

type CommentView struct {
	ID        uint                `json:"id"`
	Product   uint                `json:"product"`
	Name      string              `json:"name"`
	Body      string              `json:"body"`
	CreatedAt time.Time           `json:"datetime_created"`
	Status    model.CommentStatus `json:"status"`
}

func newCommentView(c model.Comment) CommentView {
	return CommentView{
		ID:        c.ID,
		Product:   c.ProductID,
		Name:      c.Name,
		Body:      c.Body,
		CreatedAt: c.CreatedAt,
		Status:    c.Status,
	}
}

type CustomerView struct {
	ID          uint       `json:"id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Email       string     `json:"email"`
	PhoneNumber string     `json:"phone_number"`
	BirthDate   *time.Time `json:"birth_date"`
	FullName    string     `json:"full_name"`
}

func newCustomerView(c model.Customer) CustomerView {
	return CustomerView{
		ID:          c.ID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Email:       c.Email,
		PhoneNumber: c.PhoneNumber,
		BirthDate:   c.BirthDate,
		FullName:    strings.TrimSpace(c.FirstName + " " + c.LastName),
	}
}

type AddressView struct {
	ID       uint   `json:"id"`
	Customer uint   `json:"customer"`
	City     string `json:"city"`
	Province string `json:"province"`
	Street   string `json:"street"`
}

func newAddressView(a model.Address) AddressView {
	return AddressView{ID: a.ID, Customer: a.CustomerID, City: a.City, Province: a.Province, Street: a.Street}
}

type OrderItemView struct {
	ID         uint          `json:"id"`
	Product    uint          `json:"product"`
	Quantity   int           `json:"quantity"`
	UnitPrice  pricing.Money `json:"unit_price"`
	TotalPrice pricing.Money `json:"total_price"`
}

type OrderView struct {
	ID         uint              `json:"id"`
	Customer   uint              `json:"customer"`
	Status     model.OrderStatus `json:"status"`
	CreatedAt  time.Time         `json:"created_at"`
	Items      []OrderItemView   `json:"items"`
	TotalPrice pricing.Money     `json:"total_price"`
}

func newOrderView(o model.Order) OrderView {
	v := OrderView{ID: o.ID, Customer: o.CustomerID, Status: o.Status, CreatedAt: o.CreatedAt,
		Items: make([]OrderItemView, 0, len(o.Items))}
	lines := make([]decimal.Decimal, 0, len(o.Items))
	for _, it := range o.Items {
		line := pricing.LineTotal(it.UnitPrice, it.Quantity)
		v.Items = append(v.Items, OrderItemView{
			ID:         it.ID,
			Product:    it.ProductID,
			Quantity:   it.Quantity,
			UnitPrice:  pricing.M(it.UnitPrice),
			TotalPrice: pricing.M(line),
		})
		lines = append(lines, line)
	}
	v.TotalPrice = pricing.M(pricing.CartTotal(lines))
	return v
}
