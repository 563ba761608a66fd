package service

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"example.com/storefront/internal/errx"
	"example.com/storefront/internal/events"
	"example.com/storefront/internal/model"
	"example.com/storefront/internal/pricing"
)

type CheckoutService interface {
	Checkout(ctx context.Context, cartID uuid.UUID, customerID uint) (OrderView, error)
	MarkPaid(ctx context.Context, orderID uint) (OrderView, error)
	GetOrder(ctx context.Context, orderID uint) (OrderView, error)
}

type checkoutService struct {
	db  *gorm.DB
	pub events.Publisher
}

func NewCheckoutService(db *gorm.DB, pub events.Publisher) CheckoutService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &checkoutService{db: db, pub: pub}
}

// Checkout turns the cart into an unpaid order, pricing every line at its
// final price at this moment, and empties the cart.
func (s *checkoutService) Checkout(ctx context.Context, cartID uuid.UUID, customerID uint) (OrderView, error) {
	if customerID == 0 {
		return OrderView{}, errx.Validation("customer", "customer is required")
	}

	var order model.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &model.Customer{}, "id = ?", customerID, ErrCustomerNotFound); err != nil {
			return err
		}

		var cart model.Cart
		err := tx.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("cart_items.id") }).
			Preload("Items.Product").
			First(&cart, "id = ?", cartID).Error
		if err != nil {
			return notFound(err, ErrCartNotFound)
		}
		if len(cart.Items) == 0 {
			return ErrCartEmpty
		}

		ids := make([]uint, len(cart.Items))
		for i, it := range cart.Items {
			ids[i] = it.ProductID
		}
		best, err := NewAggregator(tx).BestDiscounts(ctx, ids)
		if err != nil {
			return err
		}

		order = model.Order{CustomerID: customerID, Status: model.OrderUnpaid}
		for _, it := range cart.Items {
			order.Items = append(order.Items, model.OrderItem{
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				UnitPrice: pricing.FinalPrice(it.Product.UnitPrice, best[it.ProductID]),
			})
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		return tx.Where("cart_id = ?", cartID).Delete(&model.CartItem{}).Error
	})
	if err != nil {
		return OrderView{}, err
	}

	v := newOrderView(order)
	publish(ctx, s.pub, events.Event{
		Type: events.OrderPlaced,
		Key:  strconv.FormatUint(uint64(order.ID), 10),
		Payload: map[string]any{
			"order_id":    order.ID,
			"customer_id": customerID,
			"cart_id":     cartID,
			"total_price": v.TotalPrice,
		},
	})
	return v, nil
}

func (s *checkoutService) MarkPaid(ctx context.Context, orderID uint) (OrderView, error) {
	if err := requireAdmin(ctx); err != nil {
		return OrderView{}, err
	}
	db := s.db.WithContext(ctx)
	res := db.Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, string(model.OrderUnpaid)).
		Update("status", string(model.OrderPaid))
	if res.Error != nil {
		return OrderView{}, res.Error
	}
	if res.RowsAffected == 0 {
		var o model.Order
		if err := db.First(&o, orderID).Error; err != nil {
			return OrderView{}, notFound(err, ErrOrderNotFound)
		}
		return OrderView{}, errx.Conflict("status", "order is "+string(o.Status)+", not unpaid")
	}

	v, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return OrderView{}, err
	}
	publish(ctx, s.pub, events.Event{
		Type:    events.OrderPaid,
		Key:     strconv.FormatUint(uint64(orderID), 10),
		Payload: map[string]any{"order_id": orderID, "total_price": v.TotalPrice},
	})
	return v, nil
}

func (s *checkoutService) GetOrder(ctx context.Context, orderID uint) (OrderView, error) {
	var o model.Order
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id") }).
		First(&o, orderID).Error
	if err != nil {
		return OrderView{}, notFound(err, ErrOrderNotFound)
	}
	return newOrderView(o), nil
}
