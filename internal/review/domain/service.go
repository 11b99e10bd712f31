package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/claimdesk/pkg/db/pagination"
)

type CreateReviewRequest struct {
	ClaimID         string
	ReviewType      ReviewType
	Decision        ReviewDecision
	Comments        string
	RejectionReason string
}

type UpdateReviewRequest struct {
	ID              string
	Comments        *string
	RejectionReason *string
}

type CreateReviewItemRequest struct {
	ReviewID             string
	ItemName             string
	RequestedAmountCents int64
	ApprovedAmountCents  *int64
	Status               ReviewItemStatus
	RejectionReason      string
}

type UpdateReviewItemRequest struct {
	ReviewID            string
	ItemID              string
	ApprovedAmountCents *int64
	Status              *ReviewItemStatus
	RejectionReason     *string
}

type ListReviewRequest struct {
	PageToken  string
	PageSize   int32
	ClaimID    string
	ReviewType string
}

type ListReviewResponse struct {
	pagination.PageInfo
	Reviews []Review `json:"reviews"`
}

type GetReviewRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateReviewRequest) (Review, error)
	GetByID(context.Context, GetReviewRequest) (Review, error)
	List(context.Context, ListReviewRequest) (ListReviewResponse, error)
	Update(context.Context, UpdateReviewRequest) (Review, error)
	AddItem(context.Context, CreateReviewItemRequest) (ReviewItem, error)
	UpdateItem(context.Context, UpdateReviewItemRequest) (ReviewItem, error)
	ListItems(ctx context.Context, reviewID string) ([]ReviewItem, error)
}

var (
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidType      = errors.New("invalid_review_type")
	ErrInvalidDecision  = errors.New("invalid_decision")
	ErrStageMismatch    = errors.New("stage_mismatch")
	ErrInvalidItem      = errors.New("invalid_item")
	ErrAmountExceeds    = errors.New("approved_amount_exceeds_requested")
	ErrNotFound         = errors.New("not_found")
	ErrPermissionDenied = errors.New("permission_denied")
)
