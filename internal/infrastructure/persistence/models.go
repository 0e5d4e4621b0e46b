package persistence

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserModel maps the users table. Clients, trainers and staff share it.
type UserModel struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	Name         string    `gorm:"size:200;not null"`
	Email        string    `gorm:"size:200;not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;size:255;not null"`
	Role         string    `gorm:"size:20;not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ProductModel maps the products table
type ProductModel struct {
	ID    int64           `gorm:"primaryKey;autoIncrement"`
	Name  string          `gorm:"size:200;not null"`
	Price decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Stock int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// TransactionModel maps the transactions table (one row per product sale)
type TransactionModel struct {
	ID              int64           `gorm:"primaryKey;autoIncrement"`
	ClientID        int64           `gorm:"not null;index"`
	ProductID       int64           `gorm:"not null;index"`
	TransactionDate time.Time       `gorm:"column:transaction_date;not null;index"`
	Amount          decimal.Decimal `gorm:"type:decimal(10,2);not null"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "transactions"
}

// MembershipPaymentModel maps the membership_payments table
type MembershipPaymentModel struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	ClientID    int64           `gorm:"not null;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PaymentDate time.Time       `gorm:"column:payment_date;not null;index"`
}

// TableName returns the table name for GORM
func (MembershipPaymentModel) TableName() string {
	return "membership_payments"
}
