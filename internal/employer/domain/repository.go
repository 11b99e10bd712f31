package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/smallbiznis/claimdesk/pkg/db/pagination"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, employer *Employer) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Employer, error)
	List(ctx context.Context, db *gorm.DB, filter ListEmployerFilter, page pagination.Pagination) ([]*Employer, error)
	UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
