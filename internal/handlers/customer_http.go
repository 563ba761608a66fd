package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"example.com/storefront/internal/errx"
	"example.com/storefront/internal/service"
)

const dateLayout = "2006-01-02"

type CustomerHTTP struct {
	S service.CustomerService
}

func NewCustomerHTTP(s service.CustomerService) *CustomerHTTP { return &CustomerHTTP{S: s} }

type customerReq struct {
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phone_number"`
	BirthDate   string `json:"birth_date"`
}

func (h *CustomerHTTP) CreateCustomer(c *gin.Context) {
	var req customerReq
	if !bindJSON(c, &req) {
		return
	}
	in := service.CustomerInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	}
	if req.BirthDate != "" {
		d, err := time.Parse(dateLayout, req.BirthDate)
		if err != nil {
			writeError(c, errx.Validation("birth_date", "use YYYY-MM-DD"))
			return
		}
		in.BirthDate = &d
	}
	out, err := h.S.CreateCustomer(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *CustomerHTTP) GetCustomer(c *gin.Context) {
	id, ok := idParam(c, service.ErrCustomerNotFound)
	if !ok {
		return
	}
	out, err := h.S.GetCustomer(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

type addressReq struct {
	Customer uint   `json:"customer" binding:"required"`
	City     string `json:"city" binding:"required"`
	Province string `json:"province" binding:"required"`
	Street   string `json:"street" binding:"required"`
}

func (r addressReq) input() service.AddressInput {
	return service.AddressInput{CustomerID: r.Customer, City: r.City, Province: r.Province, Street: r.Street}
}

func (h *CustomerHTTP) CreateAddress(c *gin.Context) {
	var req addressReq
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.S.CreateAddress(c.Request.Context(), req.input())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *CustomerHTTP) UpdateAddress(c *gin.Context) {
	id, ok := idParam(c, service.ErrAddressNotFound)
	if !ok {
		return
	}
	var req addressReq
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.S.UpdateAddress(c.Request.Context(), id, req.input())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
