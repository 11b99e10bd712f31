package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/smallbiznis/claimdesk/pkg/db/pagination"
)

type Type string

const (
	TypeEmail Type = "EMAIL"
	TypeSMS   Type = "SMS"
	TypeInApp Type = "IN_APP"
)

// Notification is an in-app message for a user, usually tied to a claim.
type Notification struct {
	ID        snowflake.ID  `gorm:"primaryKey" json:"id"`
	UserID    snowflake.ID  `gorm:"column:user_id;not null;index" json:"user_id"`
	ClaimID   *snowflake.ID `gorm:"column:claim_id;index" json:"claim_id,omitempty"`
	Title     string        `gorm:"column:title;not null" json:"title"`
	Message   string        `gorm:"column:message;type:text;not null" json:"message"`
	Type      Type          `gorm:"column:type;not null" json:"type"`
	IsRead    bool          `gorm:"column:is_read;not null;default:false" json:"is_read"`
	CreatedAt time.Time     `gorm:"column:created_at;not null;index" json:"created_at"`
}

// TableName sets the database table name.
func (Notification) TableName() string { return "notifications" }

type ListNotificationFilter struct {
	UserID     snowflake.ID
	UnreadOnly bool
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, notification *Notification) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Notification, error)
	List(ctx context.Context, db *gorm.DB, filter ListNotificationFilter, page pagination.Pagination) ([]*Notification, error)
	MarkRead(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}

type ListNotificationRequest struct {
	PageToken  string
	PageSize   int32
	UnreadOnly bool
}

type ListNotificationResponse struct {
	pagination.PageInfo
	Notifications []Notification `json:"notifications"`
}

type Service interface {
	// NotifyClaimEvent records an in-app notification and sends a best-effort
	// email. Failures are logged, never returned to the workflow that fired it.
	NotifyClaimEvent(ctx context.Context, userID snowflake.ID, claimID *snowflake.ID, title, message string)
	List(ctx context.Context, req ListNotificationRequest) (ListNotificationResponse, error)
	MarkRead(ctx context.Context, id string) (Notification, error)
}

var (
	ErrInvalidID = errors.New("invalid_id")
	ErrNotFound  = errors.New("not_found")
)
