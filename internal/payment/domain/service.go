package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/claimdesk/pkg/db/pagination"
)

type CreatePaymentRequest struct {
	ClaimID            string
	InvoiceNumber      string
	PaymentAmountCents int64
	PaymentDate        *time.Time
}

type UpdatePaymentRequest struct {
	ID            string
	InvoiceNumber *string
	PaymentDate   *time.Time
	PaymentStatus *PaymentStatus
}

type ListPaymentRequest struct {
	PageToken string
	PageSize  int32
	ClaimID   string
	Status    string
}

type ListPaymentResponse struct {
	pagination.PageInfo
	Payments []Payment `json:"payments"`
}

type GetPaymentRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreatePaymentRequest) (Payment, error)
	GetByID(context.Context, GetPaymentRequest) (Payment, error)
	List(context.Context, ListPaymentRequest) (ListPaymentResponse, error)
	Update(context.Context, UpdatePaymentRequest) (Payment, error)
}

var (
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidInvoice   = errors.New("invalid_invoice_number")
	ErrInvalidAmount    = errors.New("invalid_amount")
	ErrInvalidStatus    = errors.New("invalid_payment_status")
	ErrClaimNotPayable  = errors.New("claim_not_payable")
	ErrNotFound         = errors.New("not_found")
	ErrPermissionDenied = errors.New("permission_denied")
)
