package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// PaymentStatus is the settlement state of a scheduled payment.
type PaymentStatus string

const (
	StatusScheduled PaymentStatus = "SCHEDULED"
	StatusProcessed PaymentStatus = "PROCESSED"
	StatusFailed    PaymentStatus = "FAILED"
)

// Payment is a finance-scheduled disbursement against an approved claim.
type Payment struct {
	ID                 snowflake.ID  `gorm:"primaryKey" json:"id"`
	ClaimID            snowflake.ID  `gorm:"column:claim_id;not null;index" json:"claim_id"`
	InvoiceNumber      string        `gorm:"column:invoice_number;not null" json:"invoice_number"`
	PaymentAmountCents int64         `gorm:"column:payment_amount_cents;not null" json:"payment_amount_cents"`
	PaymentDate        *time.Time    `gorm:"column:payment_date" json:"payment_date,omitempty"`
	PaymentStatus      PaymentStatus `gorm:"column:payment_status;not null;index" json:"payment_status"`
	ProcessedByID      *snowflake.ID `gorm:"column:processed_by_id" json:"processed_by_id,omitempty"`
	CreatedAt          time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }
