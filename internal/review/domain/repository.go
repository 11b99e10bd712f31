package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/smallbiznis/claimdesk/pkg/db/pagination"
)

type ListReviewFilter struct {
	ClaimID    snowflake.ID
	ReviewType ReviewType
	// PolicyholderID scopes through review -> claim -> policy when non-zero.
	PolicyholderID snowflake.ID
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, review *Review) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Review, error)
	List(ctx context.Context, db *gorm.DB, filter ListReviewFilter, page pagination.Pagination) ([]*Review, error)
	UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error

	InsertItem(ctx context.Context, db *gorm.DB, item *ReviewItem) error
	FindItemByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ReviewItem, error)
	ListItems(ctx context.Context, db *gorm.DB, reviewID snowflake.ID) ([]*ReviewItem, error)
	UpdateItemFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
	// SumApprovedForClaim totals approved item amounts across every review of
	// the claim, nulls counted as zero.
	SumApprovedForClaim(ctx context.Context, db *gorm.DB, claimID snowflake.ID) (int64, error)
}
