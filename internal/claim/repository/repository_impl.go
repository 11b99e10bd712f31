package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/smallbiznis/claimdesk/internal/claim/domain"
	"github.com/smallbiznis/claimdesk/pkg/db/option"
	"github.com/smallbiznis/claimdesk/pkg/db/pagination"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, claim *domain.Claim) error {
	return db.WithContext(ctx).Create(claim).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Claim, error) {
	var claim domain.Claim
	err := db.WithContext(ctx).Where("id = ?", id).First(&claim).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &claim, nil
}

func (r *repo) FindByReference(ctx context.Context, db *gorm.DB, reference string) (*domain.Claim, error) {
	var claim domain.Claim
	err := db.WithContext(ctx).Where("reference_number = ?", reference).First(&claim).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &claim, nil
}

func (r *repo) OwnerID(ctx context.Context, db *gorm.DB, claimID snowflake.ID) (snowflake.ID, error) {
	var row struct {
		PolicyholderID snowflake.ID `gorm:"column:policyholder_id"`
	}
	err := db.WithContext(ctx).Raw(
		`SELECT policies.policyholder_id
		 FROM claims
		 JOIN policies ON policies.id = claims.policy_id
		 WHERE claims.id = ?`,
		claimID,
	).Scan(&row).Error
	if err != nil {
		return 0, err
	}
	if row.PolicyholderID == 0 {
		return 0, domain.ErrNotFound
	}
	return row.PolicyholderID, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListClaimFilter, page pagination.Pagination) ([]*domain.Claim, error) {
	var claims []*domain.Claim
	stmt := db.WithContext(ctx).Model(&domain.Claim{})
	if filter.PolicyholderID != 0 {
		stmt = stmt.
			Joins("JOIN policies ON policies.id = claims.policy_id").
			Where("policies.policyholder_id = ?", filter.PolicyholderID)
	}
	if filter.PolicyID != 0 {
		stmt = stmt.Where("claims.policy_id = ?", filter.PolicyID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("claims.status = ?", filter.Status)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("claims.created_at desc, claims.id desc").
		Find(&claims).Error
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (r *repo) UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	res := db.WithContext(ctx).Model(&domain.Claim{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.ClaimStatus) error {
	return r.UpdateFields(ctx, db, id, map[string]any{"status": status})
}

func (r *repo) SetApprovedAmount(ctx context.Context, db *gorm.DB, id snowflake.ID, approvedCents int64) error {
	return r.UpdateFields(ctx, db, id, map[string]any{"approved_amount_cents": approvedCents})
}

func (r *repo) InsertAttachment(ctx context.Context, db *gorm.DB, attachment *domain.ClaimAttachment) error {
	return db.WithContext(ctx).Create(attachment).Error
}

func (r *repo) ListAttachments(ctx context.Context, db *gorm.DB, claimID snowflake.ID) ([]*domain.ClaimAttachment, error) {
	var attachments []*domain.ClaimAttachment
	err := db.WithContext(ctx).
		Where("claim_id = ?", claimID).
		Order("created_at asc, id asc").
		Find(&attachments).Error
	if err != nil {
		return nil, err
	}
	return attachments, nil
}

func (r *repo) FindAttachmentByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.ClaimAttachment, error) {
	var attachment domain.ClaimAttachment
	err := db.WithContext(ctx).Where("id = ?", id).First(&attachment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &attachment, nil
}
