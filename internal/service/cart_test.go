package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"example.com/storefront/internal/errx"
	"example.com/storefront/internal/events"
	"example.com/storefront/internal/model"
)

type CartServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	pub     *recorder
	svc     CartService
	product model.Product
}

func (s *CartServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.pub = &recorder{}
	s.svc = NewCartService(s.db, s.pub)
	cat := mkCategory(s.T(), s.db, "Cart things")
	s.product = mkProduct(s.T(), s.db, cat.ID, "Cart product", "100.00", 10)
}

func (s *CartServiceTestSuite) TestAddItemCreatesThenIncrements() {
	ctx := context.Background()
	cartID := mkCart(s.T(), s.db)

	first, err := s.svc.AddItem(ctx, cartID, s.product.ID, 3)
	s.Require().NoError(err)
	s.Equal(3, first.Quantity)

	second, err := s.svc.AddItem(ctx, cartID, s.product.ID, 2)
	s.Require().NoError(err)
	s.Equal(first.ItemID, second.ItemID)
	s.Equal(5, second.Quantity)

	var n int64
	s.Require().NoError(s.db.Model(&model.CartItem{}).Where("cart_id = ?", cartID).Count(&n).Error)
	s.EqualValues(1, n)

	s.Require().Len(second.Cart.Items, 1)
	s.Equal(5, second.Cart.TotalItems)
	requireDec(s.T(), "500.00", second.Cart.TotalPrice)
	s.Equal([]string{events.CartItemAdded, events.CartItemAdded}, s.pub.types())
}

func (s *CartServiceTestSuite) TestAddItemPricesAtBestDiscount() {
	mkDiscount(s.T(), s.db, "25", s.product)
	cartID := mkCart(s.T(), s.db)

	res, err := s.svc.AddItem(context.Background(), cartID, s.product.ID, 2)
	s.Require().NoError(err)
	item := res.Cart.Items[0]
	requireDec(s.T(), "75.00", item.Product.FinalPrice)
	requireDec(s.T(), "150.00", item.TotalPrice)
	requireDec(s.T(), "150.00", res.Cart.TotalPrice)
}

func (s *CartServiceTestSuite) TestAddItemValidation() {
	ctx := context.Background()
	cartID := mkCart(s.T(), s.db)

	for _, qty := range []int{0, -1} {
		_, err := s.svc.AddItem(ctx, cartID, s.product.ID, qty)
		s.ErrorIs(err, errx.ErrValidation)
		s.ErrorIs(err, ErrQuantityNotPositive)
	}

	_, err := s.svc.AddItem(ctx, cartID, 0, 1)
	s.ErrorIs(err, ErrProductIDRequired)

	_, err = s.svc.AddItem(ctx, uuid.New(), s.product.ID, 1)
	s.ErrorIs(err, errx.ErrNotFound)
	s.ErrorIs(err, ErrCartNotFound)

	_, err = s.svc.AddItem(ctx, cartID, s.product.ID+100, 1)
	s.ErrorIs(err, ErrProductNotFound)

	var n int64
	s.Require().NoError(s.db.Model(&model.CartItem{}).Count(&n).Error)
	s.Zero(n)
	s.Empty(s.pub.types())
}

func (s *CartServiceTestSuite) TestCreateGetDelete() {
	ctx := context.Background()
	created, err := s.svc.Create(ctx)
	s.Require().NoError(err)
	s.NotEqual(uuid.Nil, created.ID)
	s.Empty(created.Items)
	requireDec(s.T(), "0", created.TotalPrice)

	_, err = s.svc.AddItem(ctx, created.ID, s.product.ID, 1)
	s.Require().NoError(err)

	got, err := s.svc.Get(ctx, created.ID)
	s.Require().NoError(err)
	s.Len(got.Items, 1)

	s.Require().NoError(s.svc.Delete(ctx, created.ID))
	_, err = s.svc.Get(ctx, created.ID)
	s.ErrorIs(err, ErrCartNotFound)
	s.ErrorIs(s.svc.Delete(ctx, created.ID), ErrCartNotFound)
}

func TestCartServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CartServiceTestSuite))
}

func TestAddItem_ConcurrentIncrementsAreNotLost(t *testing.T) {
	db := newTestDB(t)
	cat := mkCategory(t, db, "Concurrent")
	p := mkProduct(t, db, cat.ID, "Hot product", "1.00", 100)
	cartID := mkCart(t, db)
	svc := NewCartService(db, nil)

	const n = 20
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			_, err := svc.AddItem(context.Background(), cartID, p.ID, 1)
			return err
		})
	}
	require.NoError(t, g.Wait())

	var items []model.CartItem
	require.NoError(t, db.Where("cart_id = ?", cartID).Find(&items).Error)
	require.Len(t, items, 1)
	assert.Equal(t, n, items[0].Quantity)
}

func TestAddItem_ErrorsAreClientErrors(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db, nil)
	_, err := svc.AddItem(context.Background(), uuid.New(), 1, 1)

	e, ok := errx.As(err)
	require.True(t, ok)
	assert.True(t, errors.Is(e, errx.ErrNotFound))
	assert.Equal(t, "cart not found", e.Detail)
}
