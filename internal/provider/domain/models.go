package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Provider is a medical provider claims can reference as the place of service.
type Provider struct {
	ID           snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name         string            `gorm:"not null" json:"name"`
	Specialty    string            `gorm:"column:specialty" json:"specialty,omitempty"`
	ContactEmail string            `gorm:"column:contact_email" json:"contact_email,omitempty"`
	Address      string            `gorm:"column:address" json:"address,omitempty"`
	Metadata     datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Provider) TableName() string { return "providers" }
