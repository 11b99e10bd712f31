package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// ReviewType names the workflow stage a review belongs to.
type ReviewType string

const (
	TypeCustomerService ReviewType = "CUSTOMER_SERVICE"
	TypeClaims          ReviewType = "CLAIMS"
	TypeMD              ReviewType = "MD"
)

// ReviewDecision is the outcome a reviewer records.
type ReviewDecision string

const (
	DecisionApproved          ReviewDecision = "APPROVED"
	DecisionPartiallyApproved ReviewDecision = "PARTIALLY_APPROVED"
	DecisionRejected          ReviewDecision = "REJECTED"
	DecisionNeedsMoreInfo     ReviewDecision = "NEEDS_MORE_INFO"
)

// ReviewItemStatus is the per-line outcome on an MD review.
type ReviewItemStatus string

const (
	ItemApproved ReviewItemStatus = "APPROVED"
	ItemRejected ReviewItemStatus = "REJECTED"
)

// Review records one stage decision on a claim. Reviewer and type are fixed
// at creation; only comments and rejection reason may be patched afterwards.
type Review struct {
	ID              snowflake.ID   `gorm:"primaryKey" json:"id"`
	ClaimID         snowflake.ID   `gorm:"column:claim_id;not null;index" json:"claim_id"`
	ReviewerID      snowflake.ID   `gorm:"column:reviewer_id;not null;index" json:"reviewer_id"`
	ReviewType      ReviewType     `gorm:"column:review_type;not null" json:"review_type"`
	Decision        ReviewDecision `gorm:"column:decision;not null" json:"decision"`
	Comments        string         `gorm:"column:comments;type:text" json:"comments,omitempty"`
	RejectionReason string         `gorm:"column:rejection_reason;type:text" json:"rejection_reason,omitempty"`
	ReviewedAt      time.Time      `gorm:"column:reviewed_at;not null" json:"reviewed_at"`
	CreatedAt       time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Review) TableName() string { return "reviews" }

// ReviewItem is one claim line judged inside a review.
type ReviewItem struct {
	ID                   snowflake.ID     `gorm:"primaryKey" json:"id"`
	ReviewID             snowflake.ID     `gorm:"column:review_id;not null;index" json:"review_id"`
	ItemName             string           `gorm:"column:item_name;not null" json:"item_name"`
	RequestedAmountCents int64            `gorm:"column:requested_amount_cents;not null" json:"requested_amount_cents"`
	ApprovedAmountCents  *int64           `gorm:"column:approved_amount_cents" json:"approved_amount_cents,omitempty"`
	Status               ReviewItemStatus `gorm:"column:status;not null" json:"status"`
	RejectionReason      string           `gorm:"column:rejection_reason;type:text" json:"rejection_reason,omitempty"`
	CreatedAt            time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt            time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (ReviewItem) TableName() string { return "review_items" }
