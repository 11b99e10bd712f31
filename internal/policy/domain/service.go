package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/smallbiznis/claimdesk/pkg/db/pagination"
)

type CreatePolicyRequest struct {
	MemberNumber   string
	PlanType       string
	PolicyholderID string
	EmployerID     string
	StartDate      time.Time
	EndDate        time.Time
}

type UpdatePolicyRequest struct {
	ID        string
	PlanType  *string
	StartDate *time.Time
	EndDate   *time.Time
	IsActive  *bool
}

type ListPolicyRequest struct {
	PageToken      string
	PageSize       int32
	PolicyholderID string
	EmployerID     string
	MemberNumber   string
	ActiveOnly     bool
}

type ListPolicyFilter struct {
	PolicyholderID snowflake.ID
	EmployerID     snowflake.ID
	MemberNumber   string
	ActiveOnly     bool
}

type ListPolicyResponse struct {
	pagination.PageInfo
	Policies []Policy `json:"policies"`
}

type GetPolicyRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreatePolicyRequest) (Policy, error)
	List(context.Context, ListPolicyRequest) (ListPolicyResponse, error)
	GetByID(context.Context, GetPolicyRequest) (Policy, error)
	Update(context.Context, UpdatePolicyRequest) (Policy, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidMemberNumber = errors.New("invalid_member_number")
	ErrInvalidUser         = errors.New("invalid_user")
	ErrInvalidEmployer     = errors.New("invalid_employer")
	ErrInvalidCoverage     = errors.New("invalid_coverage_window")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("not_found")
	ErrPolicyExists        = errors.New("policy_exists")
)
