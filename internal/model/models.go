package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Category struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"size:255;not null"`
	Description string `gorm:"type:text"`
	Products    []Product
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Product struct {
	ID          uint            `gorm:"primaryKey"`
	Name        string          `gorm:"size:255;not null"`
	Slug        string          `gorm:"size:255;index"`
	Description string          `gorm:"type:text"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Inventory   int             `gorm:"not null;default:0"`
	CategoryID  uint            `gorm:"not null;index"`
	Category    Category
	Discounts   []Discount `gorm:"many2many:product_discounts;"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Discount struct {
	ID          uint            `gorm:"primaryKey"`
	Percent     decimal.Decimal `gorm:"column:discount;type:numeric(5,2);not null"`
	Description string          `gorm:"size:255"`
	Products    []Product       `gorm:"many2many:product_discounts;"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Cart struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

// CartItem is unique per (cart, product); AddItem upserts against that index.
type CartItem struct {
	ID        uint      `gorm:"primaryKey"`
	CartID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_cart_product"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_items_cart_product"`
	Quantity  int       `gorm:"not null"`
	Product   Product
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CommentStatus string

const (
	CommentWaiting     CommentStatus = "waiting"
	CommentApproved    CommentStatus = "approved"
	CommentNotApproved CommentStatus = "not_approved"
)

type Comment struct {
	ID        uint          `gorm:"primaryKey"`
	ProductID uint          `gorm:"not null;index"`
	Name      string        `gorm:"size:255;not null"`
	Body      string        `gorm:"type:text;not null"`
	Status    CommentStatus `gorm:"size:16;not null;default:waiting;index"`
	CreatedAt time.Time
}

type Customer struct {
	ID          uint   `gorm:"primaryKey"`
	FirstName   string `gorm:"size:255;not null"`
	LastName    string `gorm:"size:255;not null"`
	Email       string `gorm:"size:255;uniqueIndex;not null"`
	PhoneNumber string `gorm:"size:32"`
	BirthDate   *time.Time
	CreatedAt   time.Time
}

// Address: one per customer, checked by the service before writing.
type Address struct {
	ID         uint   `gorm:"primaryKey"`
	CustomerID uint   `gorm:"not null;index"`
	City       string `gorm:"size:255;not null"`
	Province   string `gorm:"size:255;not null"`
	Street     string `gorm:"size:255;not null"`
}

type OrderStatus string

const (
	OrderUnpaid   OrderStatus = "unpaid"
	OrderPaid     OrderStatus = "paid"
	OrderCanceled OrderStatus = "canceled"
)

type Order struct {
	ID         uint        `gorm:"primaryKey"`
	CustomerID uint        `gorm:"not null;index"`
	Status     OrderStatus `gorm:"size:16;not null;default:unpaid;index"`
	Items      []OrderItem `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type OrderItem struct {
	ID        uint            `gorm:"primaryKey"`
	OrderID   uint            `gorm:"not null;index"`
	ProductID uint            `gorm:"not null;index"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(10,2);not null"`
}

// User is a staff account; IsAdmin gates moderation and catalog writes.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"column:password_hash;not null"`
	IsAdmin      bool   `gorm:"not null;default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (User) TableName() string { return "users" }

// All lists every table for AutoMigrate, parents first.
func All() []any {
	return []any{
		&Category{},
		&Product{},
		&Discount{},
		&Cart{},
		&CartItem{},
		&Comment{},
		&Customer{},
		&Address{},
		&Order{},
		&OrderItem{},
		&User{},
	}
}
