package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"example.com/storefront/internal/events"
	"example.com/storefront/internal/model"
)

// newTestDB opens a migrated sqlite database in a temp dir. One connection
// keeps sqlite writers from tripping over each other.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "store.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

func adminCtx() context.Context {
	return WithPrincipal(context.Background(), Principal{UserID: 1, IsAdmin: true})
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// requireDec accepts a decimal.Decimal or a pricing.Money.
func requireDec(t *testing.T, want string, got interface{ Equal(decimal.Decimal) bool }) {
	t.Helper()
	require.Truef(t, got.Equal(dec(want)), "want %s, got %v", want, got)
}

func mkCategory(t *testing.T, db *gorm.DB, title string) model.Category {
	t.Helper()
	c := model.Category{Title: title}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func mkProduct(t *testing.T, db *gorm.DB, categoryID uint, name, price string, inventory int) model.Product {
	t.Helper()
	p := model.Product{Name: name, Slug: name, UnitPrice: dec(price), Inventory: inventory, CategoryID: categoryID}
	require.NoError(t, db.Omit("Category", "Discounts").Create(&p).Error)
	return p
}

func mkDiscount(t *testing.T, db *gorm.DB, pct string, products ...model.Product) model.Discount {
	t.Helper()
	d := model.Discount{Percent: dec(pct), Description: "promo " + pct}
	require.NoError(t, db.Create(&d).Error)
	if len(products) > 0 {
		require.NoError(t, db.Model(&d).Association("Products").Append(products))
	}
	return d
}

func mkCart(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	c := model.Cart{ID: uuid.New()}
	require.NoError(t, db.Create(&c).Error)
	return c.ID
}

func mkCustomer(t *testing.T, db *gorm.DB, email string) model.Customer {
	t.Helper()
	c := model.Customer{FirstName: "Ada", LastName: "Lovelace", Email: email}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func mkComment(t *testing.T, db *gorm.DB, productID uint, status model.CommentStatus) model.Comment {
	t.Helper()
	c := model.Comment{ProductID: productID, Name: "reader", Body: "nice", Status: status}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func mkOrder(t *testing.T, db *gorm.DB, customerID uint, status model.OrderStatus, items ...model.OrderItem) model.Order {
	t.Helper()
	o := model.Order{CustomerID: customerID, Status: status, Items: items}
	require.NoError(t, db.Create(&o).Error)
	return o
}

// recorder captures published events.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) Publish(_ context.Context, ev events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev.Type)
	return nil
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) Close() error { return nil }
