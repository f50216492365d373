package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentStatusPaid    = "PAID"
	PaymentStatusPending = "PENDING"
	PaymentStatusFailed  = "FAILED"
)

// Payment is one fee receipt issued to a student.
type Payment struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	StudentID       uint            `gorm:"index;not null" json:"studentId"`
	Amount          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	PaymentMethod   string          `gorm:"size:32" json:"paymentMethod"`
	TransactionID   string          `gorm:"size:64" json:"transactionId"`
	PaymentDate     time.Time       `gorm:"index" json:"paymentDate"`
	Status          string          `gorm:"size:16;index" json:"status"`
	Description     string          `gorm:"size:255" json:"description"`
	ReceiptNumber   string          `gorm:"size:64;uniqueIndex" json:"receiptNumber"`
	IsManualReceipt bool            `gorm:"not null;default:false" json:"isManualReceipt"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// ReceiptSequence is a named counter row. Receipt numbers are allocated by
// incrementing Value inside the payment transaction.
type ReceiptSequence struct {
	Name      string `gorm:"primaryKey;size:32"`
	Value     int64  `gorm:"not null"`
	UpdatedAt time.Time
}
