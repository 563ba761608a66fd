package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/storefront/internal/model"
)

func TestCategoryStats(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	shirts := mkCategory(t, db, "Shirts")
	p10 := mkProduct(t, db, shirts.ID, "Cheap shirt", "10.00", 5)
	mkProduct(t, db, shirts.ID, "Middle shirt", "20.00", 0)
	p30 := mkProduct(t, db, shirts.ID, "Pricey shirt", "30.00", 1)
	empty := mkCategory(t, db, "Empty")

	stats, err := NewAggregator(db).CategoryStats(ctx, []uint{shirts.ID, empty.ID})
	require.NoError(t, err)

	st := stats[shirts.ID]
	assert.EqualValues(t, 3, st.ProductCount)
	assert.EqualValues(t, 2, st.InStockCount)
	require.True(t, st.MinPrice.Valid)
	requireDec(t, "10.00", st.MinPrice.Decimal)
	requireDec(t, "30.00", st.MaxPrice.Decimal)
	requireDec(t, "20.00", st.AvgPrice.Decimal)
	require.NotNil(t, st.CheapestProductID)
	require.NotNil(t, st.PriciestProductID)
	assert.Equal(t, p10.ID, *st.CheapestProductID)
	assert.Equal(t, p30.ID, *st.PriciestProductID)

	es := stats[empty.ID]
	assert.Zero(t, es.ProductCount)
	assert.Zero(t, es.InStockCount)
	assert.False(t, es.MinPrice.Valid)
	assert.False(t, es.MaxPrice.Valid)
	assert.False(t, es.AvgPrice.Valid)
	assert.Nil(t, es.CheapestProductID)
	assert.Nil(t, es.PriciestProductID)
}

func TestCategoryStats_TiesPickLowestID(t *testing.T) {
	db := newTestDB(t)
	cat := mkCategory(t, db, "Ties")
	a := mkProduct(t, db, cat.ID, "Product A", "5.00", 1)
	mkProduct(t, db, cat.ID, "Product B", "5.00", 1)
	c := mkProduct(t, db, cat.ID, "Product C", "9.00", 1)
	mkProduct(t, db, cat.ID, "Product D", "9.00", 1)

	stats, err := NewAggregator(db).CategoryStats(context.Background(), []uint{cat.ID})
	require.NoError(t, err)
	assert.Equal(t, a.ID, *stats[cat.ID].CheapestProductID)
	assert.Equal(t, c.ID, *stats[cat.ID].PriciestProductID)
}

func TestCategoryStats_Idempotent(t *testing.T) {
	db := newTestDB(t)
	cat := mkCategory(t, db, "Stable")
	mkProduct(t, db, cat.ID, "Product A", "1.25", 1)
	mkProduct(t, db, cat.ID, "Product B", "3.75", 0)

	agg := NewAggregator(db)
	first, err := agg.CategoryStats(context.Background(), []uint{cat.ID})
	require.NoError(t, err)
	second, err := agg.CategoryStats(context.Background(), []uint{cat.ID})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestProductStats(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	cat := mkCategory(t, db, "Stats")
	p := mkProduct(t, db, cat.ID, "Tracked item", "100.00", 3)
	bare := mkProduct(t, db, cat.ID, "Bare product", "1.00", 0)

	mkDiscount(t, db, "10", p)
	mkDiscount(t, db, "25", p)

	mkComment(t, db, p.ID, model.CommentApproved)
	mkComment(t, db, p.ID, model.CommentApproved)
	mkComment(t, db, p.ID, model.CommentWaiting)
	mkComment(t, db, p.ID, model.CommentNotApproved)

	cust := mkCustomer(t, db, "buyer@example.com")
	mkOrder(t, db, cust.ID, model.OrderPaid, model.OrderItem{ProductID: p.ID, Quantity: 3, UnitPrice: dec("75")})
	mkOrder(t, db, cust.ID, model.OrderPaid, model.OrderItem{ProductID: p.ID, Quantity: 2, UnitPrice: dec("75")})
	mkOrder(t, db, cust.ID, model.OrderUnpaid, model.OrderItem{ProductID: p.ID, Quantity: 7, UnitPrice: dec("75")})

	stats, err := NewAggregator(db).ProductStats(ctx, []uint{p.ID, bare.ID})
	require.NoError(t, err)

	st := stats[p.ID]
	requireDec(t, "25", st.BestDiscountPercent)
	assert.EqualValues(t, 2, st.ApprovedComments)
	assert.EqualValues(t, 5, st.TotalSold)

	bs := stats[bare.ID]
	requireDec(t, "0", bs.BestDiscountPercent)
	assert.Zero(t, bs.ApprovedComments)
	assert.Zero(t, bs.TotalSold)
}

func TestDiscountApplications(t *testing.T) {
	db := newTestDB(t)
	cat := mkCategory(t, db, "Apps")
	a := mkProduct(t, db, cat.ID, "Product A", "1.00", 1)
	b := mkProduct(t, db, cat.ID, "Product B", "2.00", 1)
	wide := mkDiscount(t, db, "10", a, b)
	unused := mkDiscount(t, db, "15")

	apps, err := NewAggregator(db).DiscountApplications(context.Background(), []uint{wide.ID, unused.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, apps[wide.ID])
	assert.Zero(t, apps[unused.ID])
}

func TestAggregator_EmptyIDs(t *testing.T) {
	db := newTestDB(t)
	agg := NewAggregator(db)

	cs, err := agg.CategoryStats(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, cs)

	ps, err := agg.ProductStats(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, ps)
}
