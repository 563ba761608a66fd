package service

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"example.com/storefront/internal/model"
)

type SeedResult struct {
	Created    bool `json:"created"`
	Categories int  `json:"categories"`
	Products   int  `json:"products"`
	Discounts  int  `json:"discounts"`
}

type SeedService interface {
	// Seed inserts the demo catalog unless any category already exists.
	Seed(ctx context.Context) (SeedResult, error)
}

type seedService struct{ db *gorm.DB }

func NewSeedService(db *gorm.DB) SeedService { return &seedService{db: db} }

type demoCategory struct {
	title    string
	products []demoProduct
}

type demoProduct struct {
	name      string
	desc      string
	price     string
	inventory int
}

var demoCatalog = []demoCategory{
	{title: "Apparel", products: []demoProduct{
		{"Blue T-Shirt", "Plain cotton tee in navy blue.", "19.99", 40},
		{"Red Hoodie", "Heavyweight fleece hoodie with front pocket.", "45.99", 12},
		{"Wool Beanie", "Ribbed knit beanie.", "14.50", 0},
	}},
	{title: "Footwear", products: []demoProduct{
		{"Running Sneakers", "Lightweight trainers with foam sole.", "69.99", 8},
		{"Leather Boots", "Waterproof ankle boots.", "129.00", 3},
	}},
	{title: "Accessories"},
}

func (s *seedService) Seed(ctx context.Context) (SeedResult, error) {
	if err := requireAdmin(ctx); err != nil {
		return SeedResult{}, err
	}

	var res SeedResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.Category{}).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return nil
		}

		var all []model.Product
		for _, dc := range demoCatalog {
			cat := model.Category{Title: dc.title}
			if err := tx.Create(&cat).Error; err != nil {
				return err
			}
			res.Categories++
			for _, dp := range dc.products {
				p := model.Product{
					Name:        dp.name,
					Slug:        productSlug(dp.name),
					Description: dp.desc,
					UnitPrice:   decimal.RequireFromString(dp.price),
					Inventory:   dp.inventory,
					CategoryID:  cat.ID,
				}
				if err := tx.Omit(clause.Associations).Create(&p).Error; err != nil {
					return err
				}
				all = append(all, p)
				res.Products++
			}
		}

		sale := model.Discount{Percent: decimal.NewFromInt(25), Description: "Season sale"}
		if err := tx.Create(&sale).Error; err != nil {
			return err
		}
		if err := tx.Model(&sale).Association("Products").Append(all[:2]); err != nil {
			return err
		}
		res.Discounts = 1
		res.Created = true
		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}
	return res, nil
}
