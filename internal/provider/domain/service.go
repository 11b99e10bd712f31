package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/claimdesk/pkg/db/pagination"
)

type CreateProviderRequest struct {
	Name         string
	Specialty    string
	ContactEmail string
	Address      string
}

type UpdateProviderRequest struct {
	ID           string
	Name         *string
	Specialty    *string
	ContactEmail *string
	Address      *string
}

type ListProviderRequest struct {
	PageToken string
	PageSize  int32
	Name      string
	Specialty string
}

type ListProviderFilter struct {
	Name      string
	Specialty string
}

type ListProviderResponse struct {
	pagination.PageInfo
	Providers []Provider `json:"providers"`
}

type GetProviderRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateProviderRequest) (Provider, error)
	List(context.Context, ListProviderRequest) (ListProviderResponse, error)
	GetByID(context.Context, GetProviderRequest) (Provider, error)
	Update(context.Context, UpdateProviderRequest) (Provider, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidEmail = errors.New("invalid_email")
	ErrInvalidID    = errors.New("invalid_id")
	ErrNotFound     = errors.New("not_found")
)
