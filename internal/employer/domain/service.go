package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/claimdesk/pkg/db/pagination"
)

type CreateEmployerRequest struct {
	Name         string
	ContactEmail string
	Address      string
}

type UpdateEmployerRequest struct {
	ID           string
	Name         *string
	ContactEmail *string
	Address      *string
}

type ListEmployerRequest struct {
	PageToken string
	PageSize  int32
	Name      string
}

type ListEmployerFilter struct {
	Name string
}

type ListEmployerResponse struct {
	pagination.PageInfo
	Employers []Employer `json:"employers"`
}

type GetEmployerRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateEmployerRequest) (Employer, error)
	List(context.Context, ListEmployerRequest) (ListEmployerResponse, error)
	GetByID(context.Context, GetEmployerRequest) (Employer, error)
	Update(context.Context, UpdateEmployerRequest) (Employer, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidEmail = errors.New("invalid_email")
	ErrInvalidID    = errors.New("invalid_id")
	ErrNotFound     = errors.New("not_found")
)
