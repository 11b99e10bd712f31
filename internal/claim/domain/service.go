package domain

import (
	"context"
	"errors"
	"io"

	"github.com/smallbiznis/claimdesk/pkg/db/pagination"
)

// AttachmentUpload carries one incoming multipart file.
type AttachmentUpload struct {
	FileName    string
	ContentType string
	SizeBytes   int64
	Reader      io.Reader
}

type CreateClaimRequest struct {
	PolicyID             string
	Provider             string
	Reason               string
	RequestedAmountCents int64
	Attachments          []AttachmentUpload
}

type UpdateClaimRequest struct {
	ID                   string
	Provider             *string
	Reason               *string
	RequestedAmountCents *int64
}

type ListClaimRequest struct {
	PageToken string
	PageSize  int32
	PolicyID  string
	Status    string
}

type ListClaimResponse struct {
	pagination.PageInfo
	Claims []Claim `json:"claims"`
}

type GetClaimRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateClaimRequest) (Claim, error)
	List(context.Context, ListClaimRequest) (ListClaimResponse, error)
	GetByID(context.Context, GetClaimRequest) (Claim, error)
	Update(context.Context, UpdateClaimRequest) (Claim, error)
	AddAttachment(ctx context.Context, claimID string, upload AttachmentUpload) (ClaimAttachment, error)
	ListAttachments(ctx context.Context, claimID string) ([]ClaimAttachment, error)
}

var (
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidPolicy      = errors.New("invalid_policy")
	ErrPolicyInactive     = errors.New("policy_inactive")
	ErrInvalidAmount      = errors.New("invalid_amount")
	ErrInvalidStatus      = errors.New("invalid_status")
	ErrNotFound           = errors.New("not_found")
	ErrPermissionDenied   = errors.New("permission_denied")
	ErrClaimLocked        = errors.New("claim_locked")
	ErrAttachmentTooLarge = errors.New("attachment_too_large")
	ErrAttachmentType     = errors.New("attachment_type_not_allowed")
)
