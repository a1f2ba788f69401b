package models

import "time"

// Address is a saved shipping destination belonging to a user.
// A user has at most one address with IsDefault set.
type Address struct {
	ID            string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID        string    `json:"user_id" gorm:"type:varchar(36);not null;index;uniqueIndex:idx_addresses_single_default,where:is_default"`
	FirstName     string    `json:"first_name" gorm:"type:varchar(100);not null"`
	LastName      string    `json:"last_name" gorm:"type:varchar(100);not null"`
	Email         string    `json:"email" gorm:"type:varchar(255);not null"`
	Phone         string    `json:"phone" gorm:"type:varchar(30);not null"`
	StreetAddress string    `json:"street_address" gorm:"type:varchar(255);not null"`
	City          string    `json:"city" gorm:"type:varchar(100);not null"`
	State         string    `json:"state" gorm:"type:varchar(100);not null"`
	Zip           string    `json:"zip" gorm:"type:varchar(20);not null"`
	Country       string    `json:"country" gorm:"type:varchar(100);not null"`
	IsDefault     bool      `json:"is_default" gorm:"not null;default:false"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
