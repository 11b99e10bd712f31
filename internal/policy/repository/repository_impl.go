package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/smallbiznis/claimdesk/internal/policy/domain"
	"github.com/smallbiznis/claimdesk/pkg/db"
	"github.com/smallbiznis/claimdesk/pkg/db/option"
	"github.com/smallbiznis/claimdesk/pkg/db/pagination"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, gdb *gorm.DB, policy *domain.Policy) error {
	if err := gdb.WithContext(ctx).Create(policy).Error; err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.ErrPolicyExists
		}
		return err
	}
	return nil
}

func (r *repo) FindByID(ctx context.Context, gdb *gorm.DB, id snowflake.ID) (*domain.Policy, error) {
	var policy domain.Policy
	err := gdb.WithContext(ctx).Where("id = ?", id).First(&policy).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &policy, nil
}

func (r *repo) FindByMemberNumber(ctx context.Context, gdb *gorm.DB, memberNumber string) (*domain.Policy, error) {
	var policy domain.Policy
	err := gdb.WithContext(ctx).Where("member_number = ?", memberNumber).First(&policy).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &policy, nil
}

func (r *repo) List(ctx context.Context, gdb *gorm.DB, filter domain.ListPolicyFilter, page pagination.Pagination) ([]*domain.Policy, error) {
	var policies []*domain.Policy
	stmt := gdb.WithContext(ctx).Model(&domain.Policy{})
	if filter.PolicyholderID != 0 {
		stmt = stmt.Where("policyholder_id = ?", filter.PolicyholderID)
	}
	if filter.EmployerID != 0 {
		stmt = stmt.Where("employer_id = ?", filter.EmployerID)
	}
	if filter.MemberNumber != "" {
		stmt = stmt.Where("member_number = ?", filter.MemberNumber)
	}
	if filter.ActiveOnly {
		stmt = stmt.Where("is_active = ?", true)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&policies).Error
	if err != nil {
		return nil, err
	}
	return policies, nil
}

func (r *repo) UpdateFields(ctx context.Context, gdb *gorm.DB, id snowflake.ID, fields map[string]any) error {
	res := gdb.WithContext(ctx).Model(&domain.Policy{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, gdb *gorm.DB, id snowflake.ID) error {
	res := gdb.WithContext(ctx).Where("id = ?", id).Delete(&domain.Policy{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
