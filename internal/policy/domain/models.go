package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Policy ties a policyholder to an employer plan. Claims are always filed
// against a policy, and ownership checks walk claim -> policy -> user.
type Policy struct {
	ID             snowflake.ID      `gorm:"primaryKey" json:"id"`
	MemberNumber   string            `gorm:"column:member_number;not null;uniqueIndex" json:"member_number"`
	PlanType       string            `gorm:"column:plan_type" json:"plan_type,omitempty"`
	PolicyholderID snowflake.ID      `gorm:"column:policyholder_id;not null;index" json:"policyholder_id"`
	EmployerID     snowflake.ID      `gorm:"column:employer_id;not null;index" json:"employer_id"`
	StartDate      time.Time         `gorm:"column:start_date;not null" json:"start_date"`
	EndDate        time.Time         `gorm:"column:end_date;not null" json:"end_date"`
	IsActive       bool              `gorm:"column:is_active;not null;default:true" json:"is_active"`
	Metadata       datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Policy) TableName() string { return "policies" }
