package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/smallbiznis/claimdesk/internal/employer/domain"
	"github.com/smallbiznis/claimdesk/pkg/db/option"
	"github.com/smallbiznis/claimdesk/pkg/db/pagination"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, employer *domain.Employer) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO employers (id, name, contact_email, address, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		employer.ID,
		employer.Name,
		employer.ContactEmail,
		employer.Address,
		employer.Metadata,
		employer.CreatedAt,
		employer.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Employer, error) {
	var employer domain.Employer
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, contact_email, address, metadata, created_at, updated_at
		 FROM employers WHERE id = ?`,
		id,
	).Scan(&employer).Error
	if err != nil {
		return nil, err
	}
	if employer.ID == 0 {
		return nil, nil
	}
	return &employer, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListEmployerFilter, page pagination.Pagination) ([]*domain.Employer, error) {
	var employers []*domain.Employer
	stmt := db.WithContext(ctx).Model(&domain.Employer{})
	if filter.Name != "" {
		stmt = stmt.Where("name = ?", filter.Name)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&employers).Error
	if err != nil {
		return nil, err
	}
	return employers, nil
}

func (r *repo) UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	res := db.WithContext(ctx).Model(&domain.Employer{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Employer{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
