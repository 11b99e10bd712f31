package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditdomain "github.com/smallbiznis/claimdesk/internal/audit/domain"
	authdomain "github.com/smallbiznis/claimdesk/internal/auth/domain"
	claimdomain "github.com/smallbiznis/claimdesk/internal/claim/domain"
	notificationdomain "github.com/smallbiznis/claimdesk/internal/notification/domain"
	"github.com/smallbiznis/claimdesk/internal/principal"
	"github.com/smallbiznis/claimdesk/internal/review/domain"
	"github.com/smallbiznis/claimdesk/pkg/db/pagination"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	Claims   claimdomain.Repository
	Audit    auditdomain.Service
	Notifier notificationdomain.Service
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	claims   claimdomain.Repository
	audit    auditdomain.Service
	notifier notificationdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("review.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		claims:   p.Claims,
		audit:    p.Audit,
		notifier: p.Notifier,
	}
}

// roleForType maps a review stage to the one role allowed to decide it.
func roleForType(reviewType domain.ReviewType) (authdomain.Role, bool) {
	switch reviewType {
	case domain.TypeCustomerService:
		return authdomain.RoleCustomerService, true
	case domain.TypeClaims:
		return authdomain.RoleClaims, true
	case domain.TypeMD:
		return authdomain.RoleMD, true
	default:
		return "", false
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateReviewRequest) (domain.Review, error) {
	p, ok := principal.FromContext(ctx)
	if !ok {
		return domain.Review{}, domain.ErrPermissionDenied
	}

	requiredRole, ok := roleForType(req.ReviewType)
	if !ok {
		return domain.Review{}, domain.ErrInvalidType
	}
	if p.Role != requiredRole {
		return domain.Review{}, domain.ErrPermissionDenied
	}

	claimID, err := snowflake.ParseString(strings.TrimSpace(req.ClaimID))
	if err != nil || claimID == 0 {
		return domain.Review{}, domain.ErrInvalidID
	}

	now := time.Now().UTC()
	review := domain.Review{
		ID:              s.genID.Generate(),
		ClaimID:         claimID,
		ReviewerID:      p.UserID,
		ReviewType:      req.ReviewType,
		Decision:        req.Decision,
		Comments:        strings.TrimSpace(req.Comments),
		RejectionReason: strings.TrimSpace(req.RejectionReason),
		ReviewedAt:      now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	var previous, next claimdomain.ClaimStatus
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		claim, err := s.claims.FindByID(ctx, tx, claimID)
		if err != nil {
			return err
		}
		if claim == nil {
			return domain.ErrNotFound
		}

		previous = claim.Status
		next, err = domain.NextStatus(claim.Status, req.ReviewType, req.Decision)
		if err != nil {
			return err
		}

		if err := s.repo.Insert(ctx, tx, &review); err != nil {
			return err
		}
		if next != previous {
			if err := s.claims.UpdateStatus(ctx, tx, claimID, next); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Review{}, err
	}

	reviewID := review.ID.String()
	_ = s.audit.AuditLog(ctx, "", nil, "review.created", "review", &reviewID, map[string]any{
		"claim_id":        claimID.String(),
		"review_type":     string(req.ReviewType),
		"decision":        string(req.Decision),
		"previous_status": string(previous),
		"next_status":     string(next),
	})
	s.notifyOwner(ctx, claimID, req.Decision, next)

	s.log.Info("review created",
		zap.String("review_id", reviewID),
		zap.String("claim_id", claimID.String()),
		zap.String("decision", string(req.Decision)),
	)
	return review, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetReviewRequest) (domain.Review, error) {
	review, err := s.loadScoped(ctx, req.ID)
	if err != nil {
		return domain.Review{}, err
	}
	return *review, nil
}

func (s *Service) List(ctx context.Context, req domain.ListReviewRequest) (domain.ListReviewResponse, error) {
	filter := domain.ListReviewFilter{}
	if raw := strings.TrimSpace(req.ClaimID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil || id == 0 {
			return domain.ListReviewResponse{}, domain.ErrInvalidID
		}
		filter.ClaimID = id
	}
	if raw := strings.TrimSpace(req.ReviewType); raw != "" {
		filter.ReviewType = domain.ReviewType(raw)
	}

	if p, ok := principal.FromContext(ctx); ok {
		switch p.Role {
		case authdomain.RolePolicyholder:
			filter.PolicyholderID = p.UserID
		case authdomain.RoleCustomerService:
			filter.ReviewType = domain.TypeCustomerService
		case authdomain.RoleClaims:
			filter.ReviewType = domain.TypeClaims
		case authdomain.RoleMD:
			filter.ReviewType = domain.TypeMD
		}
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListReviewResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(review *domain.Review) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        review.ID.String(),
			CreatedAt: review.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	reviews := make([]domain.Review, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		reviews = append(reviews, *item)
	}

	resp := domain.ListReviewResponse{Reviews: reviews}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateReviewRequest) (domain.Review, error) {
	review, err := s.loadScoped(ctx, req.ID)
	if err != nil {
		return domain.Review{}, err
	}

	p, ok := principal.FromContext(ctx)
	if !ok || review.ReviewerID != p.UserID {
		return domain.Review{}, domain.ErrPermissionDenied
	}

	// Decision, reviewer and type are immutable; only the narrative fields
	// may be amended.
	fields := map[string]any{}
	if req.Comments != nil {
		fields["comments"] = strings.TrimSpace(*req.Comments)
	}
	if req.RejectionReason != nil {
		fields["rejection_reason"] = strings.TrimSpace(*req.RejectionReason)
	}
	if len(fields) > 0 {
		fields["updated_at"] = time.Now().UTC()
		if err := s.repo.UpdateFields(ctx, s.db, review.ID, fields); err != nil {
			return domain.Review{}, err
		}
	}

	updated, err := s.repo.FindByID(ctx, s.db, review.ID)
	if err != nil {
		return domain.Review{}, err
	}
	if updated == nil {
		return domain.Review{}, domain.ErrNotFound
	}
	return *updated, nil
}

func (s *Service) AddItem(ctx context.Context, req domain.CreateReviewItemRequest) (domain.ReviewItem, error) {
	review, err := s.loadScoped(ctx, req.ReviewID)
	if err != nil {
		return domain.ReviewItem{}, err
	}

	p, ok := principal.FromContext(ctx)
	if !ok || review.ReviewerID != p.UserID {
		return domain.ReviewItem{}, domain.ErrPermissionDenied
	}

	itemName := strings.TrimSpace(req.ItemName)
	if itemName == "" || req.RequestedAmountCents <= 0 {
		return domain.ReviewItem{}, domain.ErrInvalidItem
	}
	switch req.Status {
	case domain.ItemApproved, domain.ItemRejected:
	default:
		return domain.ReviewItem{}, domain.ErrInvalidItem
	}
	if req.ApprovedAmountCents != nil {
		if *req.ApprovedAmountCents < 0 {
			return domain.ReviewItem{}, domain.ErrInvalidItem
		}
		if *req.ApprovedAmountCents > req.RequestedAmountCents {
			return domain.ReviewItem{}, domain.ErrAmountExceeds
		}
	}

	now := time.Now().UTC()
	item := domain.ReviewItem{
		ID:                   s.genID.Generate(),
		ReviewID:             review.ID,
		ItemName:             itemName,
		RequestedAmountCents: req.RequestedAmountCents,
		ApprovedAmountCents:  req.ApprovedAmountCents,
		Status:               req.Status,
		RejectionReason:      strings.TrimSpace(req.RejectionReason),
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.InsertItem(ctx, tx, &item); err != nil {
			return err
		}
		return s.resumApproved(ctx, tx, review.ClaimID)
	})
	if err != nil {
		return domain.ReviewItem{}, err
	}

	itemID := item.ID.String()
	_ = s.audit.AuditLog(ctx, "", nil, "review.item_added", "review_item", &itemID, map[string]any{
		"review_id": review.ID.String(),
		"claim_id":  review.ClaimID.String(),
	})
	return item, nil
}

func (s *Service) UpdateItem(ctx context.Context, req domain.UpdateReviewItemRequest) (domain.ReviewItem, error) {
	review, err := s.loadScoped(ctx, req.ReviewID)
	if err != nil {
		return domain.ReviewItem{}, err
	}

	p, ok := principal.FromContext(ctx)
	if !ok || review.ReviewerID != p.UserID {
		return domain.ReviewItem{}, domain.ErrPermissionDenied
	}

	itemID, err := snowflake.ParseString(strings.TrimSpace(req.ItemID))
	if err != nil || itemID == 0 {
		return domain.ReviewItem{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindItemByID(ctx, s.db, itemID)
	if err != nil {
		return domain.ReviewItem{}, err
	}
	if item == nil || item.ReviewID != review.ID {
		return domain.ReviewItem{}, domain.ErrNotFound
	}

	fields := map[string]any{}
	if req.ApprovedAmountCents != nil {
		if *req.ApprovedAmountCents < 0 {
			return domain.ReviewItem{}, domain.ErrInvalidItem
		}
		if *req.ApprovedAmountCents > item.RequestedAmountCents {
			return domain.ReviewItem{}, domain.ErrAmountExceeds
		}
		fields["approved_amount_cents"] = *req.ApprovedAmountCents
	}
	if req.Status != nil {
		switch *req.Status {
		case domain.ItemApproved, domain.ItemRejected:
		default:
			return domain.ReviewItem{}, domain.ErrInvalidItem
		}
		fields["status"] = *req.Status
	}
	if req.RejectionReason != nil {
		fields["rejection_reason"] = strings.TrimSpace(*req.RejectionReason)
	}

	if len(fields) > 0 {
		fields["updated_at"] = time.Now().UTC()
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := s.repo.UpdateItemFields(ctx, tx, itemID, fields); err != nil {
				return err
			}
			return s.resumApproved(ctx, tx, review.ClaimID)
		})
		if err != nil {
			return domain.ReviewItem{}, err
		}
	}

	updated, err := s.repo.FindItemByID(ctx, s.db, itemID)
	if err != nil {
		return domain.ReviewItem{}, err
	}
	if updated == nil {
		return domain.ReviewItem{}, domain.ErrNotFound
	}
	return *updated, nil
}

func (s *Service) ListItems(ctx context.Context, rawReviewID string) ([]domain.ReviewItem, error) {
	review, err := s.loadScoped(ctx, rawReviewID)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.ListItems(ctx, s.db, review.ID)
	if err != nil {
		return nil, err
	}
	items := make([]domain.ReviewItem, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		items = append(items, *row)
	}
	return items, nil
}

// resumApproved recomputes the claim's approved amount from every item of
// every review, inside the caller's transaction.
func (s *Service) resumApproved(ctx context.Context, tx *gorm.DB, claimID snowflake.ID) error {
	total, err := s.repo.SumApprovedForClaim(ctx, tx, claimID)
	if err != nil {
		return err
	}
	return s.claims.SetApprovedAmount(ctx, tx, claimID, total)
}

func (s *Service) loadScoped(ctx context.Context, rawID string) (*domain.Review, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidID
	}

	review, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, domain.ErrNotFound
	}

	if p, ok := principal.FromContext(ctx); ok && p.Role == authdomain.RolePolicyholder {
		ownerID, err := s.claims.OwnerID(ctx, s.db, review.ClaimID)
		if err != nil {
			return nil, err
		}
		if ownerID != p.UserID {
			return nil, domain.ErrPermissionDenied
		}
	}
	return review, nil
}

func (s *Service) notifyOwner(ctx context.Context, claimID snowflake.ID, decision domain.ReviewDecision, status claimdomain.ClaimStatus) {
	ownerID, err := s.claims.OwnerID(ctx, s.db, claimID)
	if err != nil {
		s.log.Warn("resolve claim owner for notification", zap.Error(err))
		return
	}

	var title, message string
	switch decision {
	case domain.DecisionNeedsMoreInfo:
		title = "More information needed"
		message = "A reviewer has requested more information on your claim."
	case domain.DecisionRejected:
		title = "Claim rejected"
		message = "Your claim has been rejected. See the review for details."
	default:
		title = "Claim review update"
		message = fmt.Sprintf("Your claim moved to status %s.", status)
	}
	s.notifier.NotifyClaimEvent(ctx, ownerID, &claimID, title, message)
}
