package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// ShippingMethod is the delivery speed chosen at checkout.
type ShippingMethod string

const (
	ShippingStandard  ShippingMethod = "standard"
	ShippingExpress   ShippingMethod = "express"
	ShippingOvernight ShippingMethod = "overnight"
)

// Valid reports whether m is a known shipping method.
func (m ShippingMethod) Valid() bool {
	switch m {
	case ShippingStandard, ShippingExpress, ShippingOvernight:
		return true
	}
	return false
}

// Order represents a customer order.
//
// Contact and shipping fields are copied from the address at creation time and are
// never updated afterwards; only Status and UpdatedAt change over the order's life.
type Order struct {
	ID             string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID         string          `json:"user_id" gorm:"type:varchar(36);not null;index"`
	AddressID      *string         `json:"address_id,omitempty" gorm:"type:varchar(36)"`
	Status         OrderStatus     `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	TotalAmount    decimal.Decimal `json:"total_amount" gorm:"type:decimal(10,2);not null"`
	FirstName      string          `json:"first_name" gorm:"type:varchar(100);not null"`
	LastName       string          `json:"last_name" gorm:"type:varchar(100);not null"`
	Email          string          `json:"email" gorm:"type:varchar(255);not null"`
	Phone          string          `json:"phone" gorm:"type:varchar(30);not null"`
	StreetAddress  string          `json:"street_address" gorm:"type:varchar(255);not null"`
	City           string          `json:"city" gorm:"type:varchar(100);not null"`
	State          string          `json:"state" gorm:"type:varchar(100);not null"`
	Zip            string          `json:"zip" gorm:"type:varchar(20);not null"`
	Country        string          `json:"country" gorm:"type:varchar(100);not null"`
	ShippingMethod ShippingMethod  `json:"shipping_method" gorm:"type:varchar(20);not null"`
	ShippingCost   decimal.Decimal `json:"shipping_cost" gorm:"type:decimal(10,2);not null"`
	Items          []OrderItem     `json:"items" gorm:"foreignKey:OrderID"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// OrderItem represents a single item within an order.
type OrderItem struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID     string          `json:"order_id" gorm:"type:varchar(36);not null;index"`
	ProductID   string          `json:"product_id" gorm:"type:varchar(36);not null;index"`
	ProductName string          `json:"product_name" gorm:"type:varchar(200);not null"`
	Quantity    int             `json:"quantity" gorm:"not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"` // Price at the time of order
	CreatedAt   time.Time       `json:"created_at"`
}

// Subtotal is Price × Quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
