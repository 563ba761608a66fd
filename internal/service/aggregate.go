package service

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"example.com/storefront/internal/model"
)

// CategoryStats are read-only aggregates over a category's products. Price
// fields are null and ids nil when the category has no products.
type CategoryStats struct {
	ProductCount      int64
	InStockCount      int64
	MinPrice          decimal.NullDecimal
	MaxPrice          decimal.NullDecimal
	AvgPrice          decimal.NullDecimal
	CheapestProductID *uint
	PriciestProductID *uint
}

type ProductStats struct {
	BestDiscountPercent decimal.Decimal
	ApprovedComments    int64
	TotalSold           int64
}

// Aggregator runs the catalog aggregate queries. It never writes and takes
// no locks; results may trail concurrent writes.
type Aggregator struct {
	db *gorm.DB
}

func NewAggregator(db *gorm.DB) *Aggregator { return &Aggregator{db: db} }

func (a *Aggregator) CategoryStats(ctx context.Context, categoryIDs []uint) (map[uint]CategoryStats, error) {
	out := make(map[uint]CategoryStats, len(categoryIDs))
	if len(categoryIDs) == 0 {
		return out, nil
	}

	type categoryAggRow struct {
		CategoryID   uint
		ProductCount int64
		InStockCount int64
		MinPrice     decimal.NullDecimal
		MaxPrice     decimal.NullDecimal
		AvgPrice     decimal.NullDecimal
	}
	var rows []categoryAggRow
	err := a.db.WithContext(ctx).
		Table("categories AS c").
		Select(`c.id AS category_id,
			COUNT(DISTINCT p.id) AS product_count,
			COUNT(DISTINCT CASE WHEN p.inventory > 0 THEN p.id END) AS in_stock_count,
			MIN(p.unit_price) AS min_price,
			MAX(p.unit_price) AS max_price,
			AVG(p.unit_price) AS avg_price`).
		Joins("LEFT JOIN products AS p ON p.category_id = c.id").
		Where("c.id IN ?", categoryIDs).
		Group("c.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.CategoryID] = CategoryStats{
			ProductCount: r.ProductCount,
			InStockCount: r.InStockCount,
			MinPrice:     r.MinPrice,
			MaxPrice:     r.MaxPrice,
			AvgPrice:     r.AvgPrice,
		}
	}

	if err := a.priceExtremes(ctx, categoryIDs, out); err != nil {
		return nil, err
	}
	return out, nil
}

// priceExtremes fills cheapest/priciest ids. Rows arrive ordered by price
// then id, so the first row seen at a given price is the lowest id.
func (a *Aggregator) priceExtremes(ctx context.Context, categoryIDs []uint, out map[uint]CategoryStats) error {
	type productPriceRow struct {
		ID         uint
		CategoryID uint
		UnitPrice  decimal.Decimal
	}
	var rows []productPriceRow
	err := a.db.WithContext(ctx).
		Model(&model.Product{}).
		Select("id, category_id, unit_price").
		Where("category_id IN ?", categoryIDs).
		Order("category_id, unit_price, id").
		Scan(&rows).Error
	if err != nil {
		return err
	}

	maxPrice := make(map[uint]decimal.Decimal, len(categoryIDs))
	for _, r := range rows {
		st := out[r.CategoryID]
		id := r.ID
		if st.CheapestProductID == nil {
			st.CheapestProductID = &id
		}
		if cur, ok := maxPrice[r.CategoryID]; !ok || r.UnitPrice.GreaterThan(cur) {
			maxPrice[r.CategoryID] = r.UnitPrice
			st.PriciestProductID = &id
		}
		out[r.CategoryID] = st
	}
	return nil
}

func (a *Aggregator) ProductStats(ctx context.Context, productIDs []uint) (map[uint]ProductStats, error) {
	out := make(map[uint]ProductStats, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}
	for _, id := range productIDs {
		out[id] = ProductStats{BestDiscountPercent: decimal.Zero}
	}

	best, err := a.BestDiscounts(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	for id, pct := range best {
		st := out[id]
		st.BestDiscountPercent = pct
		out[id] = st
	}

	type productCountRow struct {
		ProductID uint
		N         int64
	}
	var comments []productCountRow
	err = a.db.WithContext(ctx).
		Model(&model.Comment{}).
		Select("product_id, COUNT(DISTINCT id) AS n").
		Where("product_id IN ? AND status = ?", productIDs, string(model.CommentApproved)).
		Group("product_id").
		Scan(&comments).Error
	if err != nil {
		return nil, err
	}
	for _, r := range comments {
		st := out[r.ProductID]
		st.ApprovedComments = r.N
		out[r.ProductID] = st
	}

	var sold []productCountRow
	err = a.db.WithContext(ctx).
		Table("order_items AS oi").
		Select("oi.product_id AS product_id, COALESCE(SUM(oi.quantity), 0) AS n").
		Joins("JOIN orders AS o ON o.id = oi.order_id").
		Where("oi.product_id IN ? AND o.status = ?", productIDs, string(model.OrderPaid)).
		Group("oi.product_id").
		Scan(&sold).Error
	if err != nil {
		return nil, err
	}
	for _, r := range sold {
		st := out[r.ProductID]
		st.TotalSold = r.N
		out[r.ProductID] = st
	}
	return out, nil
}

// BestDiscounts returns the highest attached discount per product; products
// without discounts are absent from the map.
func (a *Aggregator) BestDiscounts(ctx context.Context, productIDs []uint) (map[uint]decimal.Decimal, error) {
	out := make(map[uint]decimal.Decimal, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}
	type bestDiscountRow struct {
		ProductID uint
		Best      decimal.NullDecimal
	}
	var rows []bestDiscountRow
	err := a.db.WithContext(ctx).
		Table("product_discounts AS pd").
		Select("pd.product_id AS product_id, MAX(d.discount) AS best").
		Joins("JOIN discounts AS d ON d.id = pd.discount_id").
		Where("pd.product_id IN ?", productIDs).
		Group("pd.product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		if r.Best.Valid {
			out[r.ProductID] = r.Best.Decimal
		}
	}
	return out, nil
}

// DiscountApplications counts distinct products per discount.
func (a *Aggregator) DiscountApplications(ctx context.Context, discountIDs []uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(discountIDs))
	if len(discountIDs) == 0 {
		return out, nil
	}
	type discountCountRow struct {
		DiscountID uint
		N          int64
	}
	var rows []discountCountRow
	err := a.db.WithContext(ctx).
		Table("product_discounts").
		Select("discount_id, COUNT(DISTINCT product_id) AS n").
		Where("discount_id IN ?", discountIDs).
		Group("discount_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.DiscountID] = r.N
	}
	return out, nil
}
