package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/smallbiznis/claimdesk/internal/review/domain"
	"github.com/smallbiznis/claimdesk/pkg/db/option"
	"github.com/smallbiznis/claimdesk/pkg/db/pagination"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, review *domain.Review) error {
	return db.WithContext(ctx).Create(review).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Review, error) {
	var review domain.Review
	err := db.WithContext(ctx).Where("id = ?", id).First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &review, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListReviewFilter, page pagination.Pagination) ([]*domain.Review, error) {
	var reviews []*domain.Review
	stmt := db.WithContext(ctx).Model(&domain.Review{})
	if filter.ClaimID != 0 {
		stmt = stmt.Where("reviews.claim_id = ?", filter.ClaimID)
	}
	if filter.ReviewType != "" {
		stmt = stmt.Where("reviews.review_type = ?", filter.ReviewType)
	}
	if filter.PolicyholderID != 0 {
		stmt = stmt.
			Joins("JOIN claims ON claims.id = reviews.claim_id").
			Joins("JOIN policies ON policies.id = claims.policy_id").
			Where("policies.policyholder_id = ?", filter.PolicyholderID)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("reviews.created_at desc, reviews.id desc").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *repo) UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	res := db.WithContext(ctx).Model(&domain.Review{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) InsertItem(ctx context.Context, db *gorm.DB, item *domain.ReviewItem) error {
	return db.WithContext(ctx).Create(item).Error
}

func (r *repo) FindItemByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.ReviewItem, error) {
	var item domain.ReviewItem
	err := db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) ListItems(ctx context.Context, db *gorm.DB, reviewID snowflake.ID) ([]*domain.ReviewItem, error) {
	var items []*domain.ReviewItem
	err := db.WithContext(ctx).
		Where("review_id = ?", reviewID).
		Order("created_at asc, id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) UpdateItemFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	res := db.WithContext(ctx).Model(&domain.ReviewItem{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) SumApprovedForClaim(ctx context.Context, db *gorm.DB, claimID snowflake.ID) (int64, error) {
	var row struct {
		Total int64 `gorm:"column:total"`
	}
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(COALESCE(review_items.approved_amount_cents, 0)), 0) AS total
		 FROM review_items
		 JOIN reviews ON reviews.id = review_items.review_id
		 WHERE reviews.claim_id = ?`,
		claimID,
	).Scan(&row).Error
	if err != nil {
		return 0, err
	}
	return row.Total, nil
}
