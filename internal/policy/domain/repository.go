package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/smallbiznis/claimdesk/pkg/db/pagination"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, policy *Policy) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Policy, error)
	FindByMemberNumber(ctx context.Context, db *gorm.DB, memberNumber string) (*Policy, error)
	List(ctx context.Context, db *gorm.DB, filter ListPolicyFilter, page pagination.Pagination) ([]*Policy, error)
	UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
