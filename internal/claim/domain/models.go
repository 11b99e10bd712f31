package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// ClaimStatus is the closed set of claim lifecycle states.
type ClaimStatus string

const (
	StatusSubmitted         ClaimStatus = "SUBMITTED"
	StatusUnderReviewCS     ClaimStatus = "UNDER_REVIEW_CS"
	StatusUnderReviewClaims ClaimStatus = "UNDER_REVIEW_CLAIMS"
	StatusPendingMDApproval ClaimStatus = "PENDING_MD_APPROVAL"
	StatusApproved          ClaimStatus = "APPROVED"
	StatusPartiallyApproved ClaimStatus = "PARTIALLY_APPROVED"
	StatusRejected          ClaimStatus = "REJECTED"
	StatusPendingPayment    ClaimStatus = "PENDING_PAYMENT"
	StatusPaid              ClaimStatus = "PAID"
)

// Payable reports whether FINANCE may schedule a payment for this status.
func (s ClaimStatus) Payable() bool {
	return s == StatusApproved || s == StatusPartiallyApproved
}

// Claim is a reimbursement request filed against a policy.
type Claim struct {
	ID                   snowflake.ID      `gorm:"primaryKey" json:"id"`
	ReferenceNumber      string            `gorm:"column:reference_number;not null;uniqueIndex" json:"reference_number"`
	PolicyID             snowflake.ID      `gorm:"column:policy_id;not null;index" json:"policy_id"`
	Provider             string            `gorm:"column:provider" json:"provider,omitempty"`
	Reason               string            `gorm:"column:reason;type:text" json:"reason,omitempty"`
	RequestedAmountCents int64             `gorm:"column:requested_amount_cents;not null" json:"requested_amount_cents"`
	ApprovedAmountCents  *int64            `gorm:"column:approved_amount_cents" json:"approved_amount_cents,omitempty"`
	Status               ClaimStatus       `gorm:"column:status;not null;index" json:"status"`
	SubmissionDate       time.Time         `gorm:"column:submission_date;not null" json:"submission_date"`
	Metadata             datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt            time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt            time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Claim) TableName() string { return "claims" }

// ClaimAttachment records one uploaded document for a claim.
type ClaimAttachment struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	ClaimID     snowflake.ID `gorm:"column:claim_id;not null;index" json:"claim_id"`
	FileName    string       `gorm:"column:file_name;not null" json:"file_name"`
	ContentType string       `gorm:"column:content_type" json:"content_type,omitempty"`
	SizeBytes   int64        `gorm:"column:size_bytes;not null" json:"size_bytes"`
	StoragePath string       `gorm:"column:storage_path;not null" json:"-"`
	CreatedAt   time.Time    `gorm:"column:created_at;not null" json:"created_at"`
}

// TableName sets the database table name.
func (ClaimAttachment) TableName() string { return "claim_attachments" }
