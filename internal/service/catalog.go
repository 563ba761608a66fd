package service

import (
	"context"
	"sort"
	"strings"

	"github.com/mozillazg/go-slugify"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"example.com/storefront/internal/errx"
	"example.com/storefront/internal/model"
)

type CatalogService interface {
	ListCategories(ctx context.Context, ordering string) ([]CategoryView, error)
	GetCategory(ctx context.Context, id uint) (CategoryView, error)
	CreateCategory(ctx context.Context, in CategoryInput) (CategoryView, error)

	ListProducts(ctx context.Context, q ProductQuery) ([]ProductView, error)
	GetProduct(ctx context.Context, id uint) (ProductView, error)
	CreateProduct(ctx context.Context, in ProductInput) (ProductView, error)
	UpdateProduct(ctx context.Context, id uint, in ProductPatch) (ProductView, error)

	ListDiscounts(ctx context.Context, q DiscountQuery) ([]DiscountView, error)
	CreateDiscount(ctx context.Context, in DiscountInput) (DiscountView, error)
}

type CategoryInput struct {
	Title       string
	Description string
}

type ProductInput struct {
	Name        string
	Description string
	UnitPrice   decimal.Decimal
	Inventory   int
	CategoryID  uint
}

// ProductPatch carries only the fields being changed.
type ProductPatch struct {
	Name        *string
	Description *string
	UnitPrice   *decimal.Decimal
	Inventory   *int
	CategoryID  *uint
}

type ProductQuery struct {
	PriceMin   *decimal.Decimal
	PriceMax   *decimal.Decimal
	InStock    *bool
	CategoryID *uint
	Search     string
	Ordering   string
}

type DiscountQuery struct {
	Search    string
	Ordering  string
	BasePrice *decimal.Decimal
}

type DiscountInput struct {
	Percent     decimal.Decimal
	Description string
	ProductIDs  []uint
}

var (
	categoryOrdering = ordering{fields: []string{"product_count", "min_price", "max_price", "avg_price"}, def: "-product_count"}
	productOrdering  = ordering{fields: []string{"unit_price", "approved_comments_count", "total_sold", "best_discount_percent"}, def: "-total_sold"}
	discountOrdering = ordering{fields: []string{"discount", "application_count"}, def: "-discount"}
)

type catalogService struct {
	db  *gorm.DB
	agg *Aggregator
}

func NewCatalogService(db *gorm.DB) CatalogService {
	return &catalogService{db: db, agg: NewAggregator(db)}
}

func (s *catalogService) ListCategories(ctx context.Context, raw string) ([]CategoryView, error) {
	field, desc, err := categoryOrdering.parse(raw)
	if err != nil {
		return nil, err
	}

	var cats []model.Category
	if err := s.db.WithContext(ctx).Order("id").Find(&cats).Error; err != nil {
		return nil, err
	}
	views, err := s.categoryViews(ctx, cats)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i], views[j]
		var c int
		switch field {
		case "product_count":
			c = cmpInt(a.ProductCount, b.ProductCount)
		case "min_price":
			c = cmpNullMoney(a.MinPrice, b.MinPrice, desc)
		case "max_price":
			c = cmpNullMoney(a.MaxPrice, b.MaxPrice, desc)
		case "avg_price":
			c = cmpNullMoney(a.AvgPrice, b.AvgPrice, desc)
		}
		if desc {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	})
	return views, nil
}

func (s *catalogService) GetCategory(ctx context.Context, id uint) (CategoryView, error) {
	var c model.Category
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return CategoryView{}, notFound(err, ErrCategoryNotFound)
	}
	views, err := s.categoryViews(ctx, []model.Category{c})
	if err != nil {
		return CategoryView{}, err
	}
	return views[0], nil
}

func (s *catalogService) CreateCategory(ctx context.Context, in CategoryInput) (CategoryView, error) {
	if err := requireAdmin(ctx); err != nil {
		return CategoryView{}, err
	}
	c := model.Category{Title: strings.TrimSpace(in.Title), Description: in.Description}
	if err := c.Validate(); err != nil {
		return CategoryView{}, err
	}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return CategoryView{}, err
	}
	return newCategoryView(c, CategoryStats{}), nil
}

func (s *catalogService) categoryViews(ctx context.Context, cats []model.Category) ([]CategoryView, error) {
	ids := make([]uint, len(cats))
	for i, c := range cats {
		ids[i] = c.ID
	}
	stats, err := s.agg.CategoryStats(ctx, ids)
	if err != nil {
		return nil, err
	}
	views := make([]CategoryView, len(cats))
	for i, c := range cats {
		views[i] = newCategoryView(c, stats[c.ID])
	}
	return views, nil
}

func (s *catalogService) ListProducts(ctx context.Context, q ProductQuery) ([]ProductView, error) {
	field, desc, err := productOrdering.parse(q.Ordering)
	if err != nil {
		return nil, err
	}

	tx := s.db.WithContext(ctx).Model(&model.Product{}).Preload("Category")
	if q.PriceMin != nil {
		tx = tx.Where("unit_price >= ?", *q.PriceMin)
	}
	if q.PriceMax != nil {
		tx = tx.Where("unit_price <= ?", *q.PriceMax)
	}
	if q.InStock != nil {
		if *q.InStock {
			tx = tx.Where("inventory > 0")
		} else {
			tx = tx.Where("inventory <= 0")
		}
	}
	if q.CategoryID != nil {
		tx = tx.Where("category_id = ?", *q.CategoryID)
	}
	if term := strings.TrimSpace(q.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		tx = tx.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", like, like)
	}

	var products []model.Product
	if err := tx.Order("id").Find(&products).Error; err != nil {
		return nil, err
	}
	views, err := s.productViews(ctx, products)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i], views[j]
		var c int
		switch field {
		case "unit_price":
			c = a.UnitPrice.Cmp(b.UnitPrice.Decimal)
		case "approved_comments_count":
			c = cmpInt(a.ApprovedCommentsCount, b.ApprovedCommentsCount)
		case "total_sold":
			c = cmpInt(a.TotalSold, b.TotalSold)
		case "best_discount_percent":
			c = a.BestDiscountPercent.Cmp(b.BestDiscountPercent)
		}
		if desc {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	})
	return views, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id uint) (ProductView, error) {
	var p model.Product
	if err := s.db.WithContext(ctx).Preload("Category").First(&p, id).Error; err != nil {
		return ProductView{}, notFound(err, ErrProductNotFound)
	}
	views, err := s.productViews(ctx, []model.Product{p})
	if err != nil {
		return ProductView{}, err
	}
	return views[0], nil
}

func (s *catalogService) CreateProduct(ctx context.Context, in ProductInput) (ProductView, error) {
	if err := requireAdmin(ctx); err != nil {
		return ProductView{}, err
	}
	p := model.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		UnitPrice:   in.UnitPrice,
		Inventory:   in.Inventory,
		CategoryID:  in.CategoryID,
	}
	if err := p.Validate(); err != nil {
		return ProductView{}, err
	}
	if err := s.checkCategory(ctx, p.CategoryID); err != nil {
		return ProductView{}, err
	}
	p.Slug = productSlug(p.Name)
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&p).Error; err != nil {
		return ProductView{}, err
	}
	return s.GetProduct(ctx, p.ID)
}

func (s *catalogService) UpdateProduct(ctx context.Context, id uint, in ProductPatch) (ProductView, error) {
	if err := requireAdmin(ctx); err != nil {
		return ProductView{}, err
	}
	var p model.Product
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return ProductView{}, notFound(err, ErrProductNotFound)
	}
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
		p.Slug = productSlug(p.Name)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.UnitPrice != nil {
		p.UnitPrice = *in.UnitPrice
	}
	if in.Inventory != nil {
		p.Inventory = *in.Inventory
	}
	if in.CategoryID != nil {
		p.CategoryID = *in.CategoryID
		if err := s.checkCategory(ctx, p.CategoryID); err != nil {
			return ProductView{}, err
		}
	}
	if err := p.Validate(); err != nil {
		return ProductView{}, err
	}
	err := s.db.WithContext(ctx).Model(&p).
		Select("name", "slug", "description", "unit_price", "inventory", "category_id").
		Updates(&p).Error
	if err != nil {
		return ProductView{}, err
	}
	return s.GetProduct(ctx, p.ID)
}

func (s *catalogService) checkCategory(ctx context.Context, id uint) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.Category{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return errx.Validation("category", "invalid category")
	}
	return nil
}

func (s *catalogService) productViews(ctx context.Context, products []model.Product) ([]ProductView, error) {
	ids := make([]uint, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	stats, err := s.agg.ProductStats(ctx, ids)
	if err != nil {
		return nil, err
	}
	views := make([]ProductView, len(products))
	for i, p := range products {
		views[i] = newProductView(p, stats[p.ID])
	}
	return views, nil
}

func (s *catalogService) ListDiscounts(ctx context.Context, q DiscountQuery) ([]DiscountView, error) {
	field, desc, err := discountOrdering.parse(q.Ordering)
	if err != nil {
		return nil, err
	}
	tx := s.db.WithContext(ctx).Model(&model.Discount{})
	if term := strings.TrimSpace(q.Search); term != "" {
		tx = tx.Where("LOWER(description) LIKE ?", "%"+strings.ToLower(term)+"%")
	}
	var discounts []model.Discount
	if err := tx.Order("id").Find(&discounts).Error; err != nil {
		return nil, err
	}

	ids := make([]uint, len(discounts))
	for i, d := range discounts {
		ids[i] = d.ID
	}
	apps, err := s.agg.DiscountApplications(ctx, ids)
	if err != nil {
		return nil, err
	}
	views := make([]DiscountView, len(discounts))
	for i, d := range discounts {
		views[i] = newDiscountView(d, apps[d.ID], q.BasePrice)
	}

	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i], views[j]
		var c int
		switch field {
		case "discount":
			c = a.Discount.Cmp(b.Discount)
		case "application_count":
			c = cmpInt(a.ApplicationCount, b.ApplicationCount)
		}
		if desc {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	})
	return views, nil
}

func (s *catalogService) CreateDiscount(ctx context.Context, in DiscountInput) (DiscountView, error) {
	if err := requireAdmin(ctx); err != nil {
		return DiscountView{}, err
	}
	d := model.Discount{Percent: in.Percent, Description: strings.TrimSpace(in.Description)}
	if err := d.Validate(); err != nil {
		return DiscountView{}, err
	}

	ids := uniqueIDs(in.ProductIDs)
	if len(ids) > 0 {
		if err := s.db.WithContext(ctx).Find(&d.Products, ids).Error; err != nil {
			return DiscountView{}, err
		}
		if len(d.Products) != len(ids) {
			return DiscountView{}, errx.Validation("product_ids", "invalid product id")
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := d.Products
		d.Products = nil
		if err := tx.Create(&d).Error; err != nil {
			return err
		}
		if len(products) == 0 {
			return nil
		}
		return tx.Model(&d).Association("Products").Append(products)
	})
	if err != nil {
		return DiscountView{}, err
	}
	return newDiscountView(d, int64(len(ids)), nil), nil
}

func productSlug(name string) string {
	return slugify.Slugify(strings.ToLower(name))
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == 0 {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
