package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, rawToken string) error
	Authenticate(ctx context.Context, rawToken string) (*User, *Session, error)
	ChangePassword(ctx context.Context, userID snowflake.ID, currentPassword, newPassword string) error
	GetUser(ctx context.Context, id snowflake.ID) (*User, error)
	ListUsers(ctx context.Context, filter ListUserFilter) ([]*User, error)
	UpdateUser(ctx context.Context, id snowflake.ID, req UpdateUserRequest) (*User, error)
	DeleteUser(ctx context.Context, id snowflake.ID) error
}

type CreateUserRequest struct {
	Email    string
	Password string
	FullName string
	Role     Role
}

type UpdateUserRequest struct {
	FullName *string
	Role     *Role
	IsActive *bool
}

type LoginRequest struct {
	Email     string
	Password  string
	UserAgent string
	IPAddress string
}

type LoginResult struct {
	User      *User
	RawToken  string
	ExpiresAt time.Time
	SessionID snowflake.ID
}
