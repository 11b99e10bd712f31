package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/smallbiznis/claimdesk/internal/payment/domain"
	"github.com/smallbiznis/claimdesk/pkg/db/option"
	"github.com/smallbiznis/claimdesk/pkg/db/pagination"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Create(payment).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Payment, error) {
	var payment domain.Payment
	err := db.WithContext(ctx).Where("id = ?", id).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListPaymentFilter, page pagination.Pagination) ([]*domain.Payment, error) {
	var payments []*domain.Payment
	stmt := db.WithContext(ctx).Model(&domain.Payment{})
	if filter.ClaimID != 0 {
		stmt = stmt.Where("payments.claim_id = ?", filter.ClaimID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("payments.payment_status = ?", filter.Status)
	}
	if filter.PolicyholderID != 0 {
		stmt = stmt.
			Joins("JOIN claims ON claims.id = payments.claim_id").
			Joins("JOIN policies ON policies.id = claims.policy_id").
			Where("policies.policyholder_id = ?", filter.PolicyholderID)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("payments.created_at desc, payments.id desc").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *repo) UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	res := db.WithContext(ctx).Model(&domain.Payment{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
