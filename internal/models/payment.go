package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatusSucceeded is the processor status that marks an order as paid.
const PaymentStatusSucceeded = "succeeded"

// Payment is a payment attempt recorded against an order. An order may have many.
type Payment struct {
	ID         string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID    string          `json:"order_id" gorm:"type:varchar(36);not null;index"`
	ExternalID string          `json:"external_id" gorm:"type:varchar(255);not null;index"`
	Method     string          `json:"method" gorm:"type:varchar(50);not null"`
	Amount     decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null"`
	Currency   string          `json:"currency" gorm:"type:varchar(10);not null"`
	Status     string          `json:"status" gorm:"type:varchar(30);not null"`
	Metadata   string          `json:"metadata,omitempty" gorm:"type:text"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
