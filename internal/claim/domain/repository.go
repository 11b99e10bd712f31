package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/smallbiznis/claimdesk/pkg/db/pagination"
)

type ListClaimFilter struct {
	// PolicyholderID scopes through the claim -> policy join when non-zero.
	PolicyholderID snowflake.ID
	PolicyID       snowflake.ID
	Status         ClaimStatus
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, claim *Claim) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Claim, error)
	FindByReference(ctx context.Context, db *gorm.DB, reference string) (*Claim, error)
	// OwnerID resolves the policyholder behind a claim via the policy join.
	OwnerID(ctx context.Context, db *gorm.DB, claimID snowflake.ID) (snowflake.ID, error)
	List(ctx context.Context, db *gorm.DB, filter ListClaimFilter, page pagination.Pagination) ([]*Claim, error)
	UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status ClaimStatus) error
	SetApprovedAmount(ctx context.Context, db *gorm.DB, id snowflake.ID, approvedCents int64) error

	InsertAttachment(ctx context.Context, db *gorm.DB, attachment *ClaimAttachment) error
	ListAttachments(ctx context.Context, db *gorm.DB, claimID snowflake.ID) ([]*ClaimAttachment, error)
	FindAttachmentByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ClaimAttachment, error)
}
