package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Brand       string          `json:"brand"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url"`
	Category    string          `json:"category"`
	Volume      string          `json:"volume"`
	Notes       []string        `json:"notes"`
	Rating      float64         `json:"rating"`
	CreatedAt   time.Time       `json:"created_at"`
}

type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Subtotal is the line price: product price times quantity.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type CustomerInfo struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
}

// OrderData is the snapshot taken at checkout. It is never mutated once built.
type OrderData struct {
	OrderID      string          `json:"orderId"`
	CustomerInfo CustomerInfo    `json:"customerInfo"`
	Items        []CartItem      `json:"items"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
	OrderDate    time.Time       `json:"orderDate"`
}

// PendingOrder is an order that no relay channel accepted and that waits for
// manual delivery.
type PendingOrder struct {
	OrderData
	Timestamp int64  `json:"timestamp"`
	Status    string `json:"status"`
}

const (
	PendingStatusEmail = "pending_email"
)
