package service

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"example.com/storefront/internal/errx"
	"example.com/storefront/internal/model"
)

type CustomerService interface {
	CreateCustomer(ctx context.Context, in CustomerInput) (CustomerView, error)
	GetCustomer(ctx context.Context, id uint) (CustomerView, error)
	CreateAddress(ctx context.Context, in AddressInput) (AddressView, error)
	UpdateAddress(ctx context.Context, id uint, in AddressInput) (AddressView, error)
}

type CustomerInput struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	BirthDate   *time.Time
}

type AddressInput struct {
	CustomerID uint
	City       string
	Province   string
	Street     string
}

var ErrAddressExists = errx.Conflict("customer", "customer already has an address")

type customerService struct{ db *gorm.DB }

func NewCustomerService(db *gorm.DB) CustomerService { return &customerService{db: db} }

func (s *customerService) CreateCustomer(ctx context.Context, in CustomerInput) (CustomerView, error) {
	c := model.Customer{
		FirstName:   strings.TrimSpace(in.FirstName),
		LastName:    strings.TrimSpace(in.LastName),
		Email:       strings.ToLower(strings.TrimSpace(in.Email)),
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
		BirthDate:   in.BirthDate,
	}
	if err := c.Validate(); err != nil {
		return CustomerView{}, err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.Customer{}).Where("email = ?", c.Email).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return errx.Conflict("email", "customer with this email already exists")
		}
		return tx.Create(&c).Error
	})
	if err != nil {
		return CustomerView{}, err
	}
	return newCustomerView(c), nil
}

func (s *customerService) GetCustomer(ctx context.Context, id uint) (CustomerView, error) {
	var c model.Customer
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return CustomerView{}, notFound(err, ErrCustomerNotFound)
	}
	return newCustomerView(c), nil
}

func (s *customerService) CreateAddress(ctx context.Context, in AddressInput) (AddressView, error) {
	a := addressFrom(in)
	if err := a.Validate(); err != nil {
		return AddressView{}, err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkAddressSlot(tx, a.CustomerID, 0); err != nil {
			return err
		}
		return tx.Create(&a).Error
	})
	if err != nil {
		return AddressView{}, err
	}
	return newAddressView(a), nil
}

func (s *customerService) UpdateAddress(ctx context.Context, id uint, in AddressInput) (AddressView, error) {
	a := addressFrom(in)
	a.ID = id
	if err := a.Validate(); err != nil {
		return AddressView{}, err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &model.Address{}, "id = ?", id, ErrAddressNotFound); err != nil {
			return err
		}
		if err := checkAddressSlot(tx, a.CustomerID, id); err != nil {
			return err
		}
		return tx.Model(&a).Select("customer_id", "city", "province", "street").Updates(&a).Error
	})
	if err != nil {
		return AddressView{}, err
	}
	return newAddressView(a), nil
}

func addressFrom(in AddressInput) model.Address {
	return model.Address{
		CustomerID: in.CustomerID,
		City:       strings.TrimSpace(in.City),
		Province:   strings.TrimSpace(in.Province),
		Street:     strings.TrimSpace(in.Street),
	}
}

// checkAddressSlot fails when the customer is unknown or already has an
// address other than self.
func checkAddressSlot(tx *gorm.DB, customerID, self uint) error {
	if err := exists(tx, &model.Customer{}, "id = ?", customerID, ErrCustomerNotFound); err != nil {
		return err
	}
	var n int64
	if err := tx.Model(&model.Address{}).Where("customer_id = ? AND id <> ?", customerID, self).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return ErrAddressExists
	}
	return nil
}
