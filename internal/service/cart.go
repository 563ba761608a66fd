package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"example.com/storefront/internal/events"
	"example.com/storefront/internal/model"
)

type CartService interface {
	Create(ctx context.Context) (CartView, error)
	Get(ctx context.Context, id uuid.UUID) (CartView, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddItem(ctx context.Context, cartID uuid.UUID, productID uint, qty int) (AddItemResult, error)
}

type AddItemResult struct {
	ItemID   uint     `json:"item_id"`
	Quantity int      `json:"quantity"`
	Cart     CartView `json:"cart"`
}

type cartService struct {
	db  *gorm.DB
	pub events.Publisher
}

func NewCartService(db *gorm.DB, pub events.Publisher) CartService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &cartService{db: db, pub: pub}
}

func (s *cartService) Create(ctx context.Context) (CartView, error) {
	c := model.Cart{ID: uuid.New()}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return CartView{}, err
	}
	return newCartView(c, nil), nil
}

func (s *cartService) Get(ctx context.Context, id uuid.UUID) (CartView, error) {
	return loadCartView(ctx, s.db, id)
}

func (s *cartService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", id).Delete(&model.CartItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Cart{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCartNotFound
		}
		return nil
	})
}

// AddItem creates the (cart, product) line or increments it in place. The
// increment is a single upsert statement so concurrent calls never lose an
// update.
func (s *cartService) AddItem(ctx context.Context, cartID uuid.UUID, productID uint, qty int) (AddItemResult, error) {
	if qty <= 0 {
		return AddItemResult{}, ErrQuantityNotPositive
	}
	if productID == 0 {
		return AddItemResult{}, ErrProductIDRequired
	}

	db := s.db.WithContext(ctx)
	if err := exists(db, &model.Cart{}, "id = ?", cartID, ErrCartNotFound); err != nil {
		return AddItemResult{}, err
	}
	if err := exists(db, &model.Product{}, "id = ?", productID, ErrProductNotFound); err != nil {
		return AddItemResult{}, err
	}

	item := model.CartItem{CartID: cartID, ProductID: productID, Quantity: qty}
	err := db.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
			"updated_at": time.Now(),
		}),
	}).Create(&item).Error
	if err != nil {
		return AddItemResult{}, err
	}

	var saved model.CartItem
	if err := db.Where("cart_id = ? AND product_id = ?", cartID, productID).First(&saved).Error; err != nil {
		return AddItemResult{}, err
	}

	cart, err := loadCartView(ctx, s.db, cartID)
	if err != nil {
		return AddItemResult{}, err
	}

	publish(ctx, s.pub, events.Event{
		Type: events.CartItemAdded,
		Key:  cartID.String(),
		Payload: map[string]any{
			"cart_id":    cartID,
			"product_id": productID,
			"added":      qty,
			"quantity":   saved.Quantity,
		},
	})

	return AddItemResult{ItemID: saved.ID, Quantity: saved.Quantity, Cart: cart}, nil
}

func loadCartView(ctx context.Context, db *gorm.DB, id uuid.UUID) (CartView, error) {
	var c model.Cart
	err := db.WithContext(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("cart_items.id") }).
		Preload("Items.Product").
		First(&c, "id = ?", id).Error
	if err != nil {
		return CartView{}, notFound(err, ErrCartNotFound)
	}

	ids := make([]uint, len(c.Items))
	for i, it := range c.Items {
		ids[i] = it.ProductID
	}
	best, err := NewAggregator(db).BestDiscounts(ctx, ids)
	if err != nil {
		return CartView{}, err
	}
	return newCartView(c, best), nil
}

func exists(db *gorm.DB, m any, query string, arg any, nf error) error {
	var n int64
	if err := db.Model(m).Where(query, arg).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return nf
	}
	return nil
}
