package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	auditdomain "github.com/smallbiznis/claimdesk/internal/audit/domain"
	authdomain "github.com/smallbiznis/claimdesk/internal/auth/domain"
	"github.com/smallbiznis/claimdesk/internal/claim/domain"
	"github.com/smallbiznis/claimdesk/internal/config"
	notificationdomain "github.com/smallbiznis/claimdesk/internal/notification/domain"
	policydomain "github.com/smallbiznis/claimdesk/internal/policy/domain"
	"github.com/smallbiznis/claimdesk/internal/principal"
	"github.com/smallbiznis/claimdesk/internal/storage"
	"github.com/smallbiznis/claimdesk/pkg/db/pagination"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	Policies policydomain.Repository
	Store    storage.Store
	Holder   *config.ClaimsConfigHolder
	Audit    auditdomain.Service
	Notifier notificationdomain.Service
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	policies policydomain.Repository
	store    storage.Store
	holder   *config.ClaimsConfigHolder
	audit    auditdomain.Service
	notifier notificationdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("claim.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		policies: p.Policies,
		store:    p.Store,
		holder:   p.Holder,
		audit:    p.Audit,
		notifier: p.Notifier,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateClaimRequest) (domain.Claim, error) {
	policyID, err := snowflake.ParseString(strings.TrimSpace(req.PolicyID))
	if err != nil || policyID == 0 {
		return domain.Claim{}, domain.ErrInvalidPolicy
	}

	policy, err := s.policies.FindByID(ctx, s.db, policyID)
	if err != nil {
		return domain.Claim{}, err
	}
	if policy == nil {
		return domain.Claim{}, domain.ErrInvalidPolicy
	}
	if !policy.IsActive {
		return domain.Claim{}, domain.ErrPolicyInactive
	}

	p, ok := principal.FromContext(ctx)
	if !ok {
		return domain.Claim{}, domain.ErrPermissionDenied
	}
	if p.Role == authdomain.RolePolicyholder && policy.PolicyholderID != p.UserID {
		return domain.Claim{}, domain.ErrPermissionDenied
	}

	if req.RequestedAmountCents <= 0 {
		return domain.Claim{}, domain.ErrInvalidAmount
	}

	uploads := s.holder.Current().Uploads
	for _, upload := range req.Attachments {
		if err := validateUpload(upload, uploads); err != nil {
			return domain.Claim{}, err
		}
	}

	now := time.Now().UTC()
	claim := domain.Claim{
		ID:                   s.genID.Generate(),
		ReferenceNumber:      newReferenceNumber(),
		PolicyID:             policyID,
		Provider:             strings.TrimSpace(req.Provider),
		Reason:               strings.TrimSpace(req.Reason),
		RequestedAmountCents: req.RequestedAmountCents,
		Status:               domain.StatusSubmitted,
		SubmissionDate:       now,
		Metadata:             datatypes.JSONMap{},
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	attachments := make([]*domain.ClaimAttachment, 0, len(req.Attachments))
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &claim); err != nil {
			return err
		}
		for _, upload := range req.Attachments {
			attachment, err := s.saveAttachment(ctx, tx, claim.ID, upload, uploads)
			if err != nil {
				return err
			}
			attachments = append(attachments, attachment)
		}
		return nil
	})
	if err != nil {
		return domain.Claim{}, err
	}

	claimID := claim.ID.String()
	_ = s.audit.AuditLog(ctx, "", nil, "claim.created", "claim", &claimID, map[string]any{
		"reference_number":       claim.ReferenceNumber,
		"policy_id":              policyID.String(),
		"requested_amount_cents": claim.RequestedAmountCents,
		"attachments":            len(attachments),
	})
	s.notifier.NotifyClaimEvent(ctx, policy.PolicyholderID, &claim.ID,
		"Claim submitted",
		fmt.Sprintf("Your claim %s has been received and is awaiting review.", claim.ReferenceNumber),
	)

	s.log.Info("claim created",
		zap.String("claim_id", claimID),
		zap.String("reference_number", claim.ReferenceNumber),
	)
	return claim, nil
}

func (s *Service) List(ctx context.Context, req domain.ListClaimRequest) (domain.ListClaimResponse, error) {
	filter := domain.ListClaimFilter{}
	if raw := strings.TrimSpace(req.PolicyID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil || id == 0 {
			return domain.ListClaimResponse{}, domain.ErrInvalidPolicy
		}
		filter.PolicyID = id
	}
	if raw := strings.TrimSpace(req.Status); raw != "" {
		filter.Status = domain.ClaimStatus(raw)
	}

	if p, ok := principal.FromContext(ctx); ok && p.Role == authdomain.RolePolicyholder {
		filter.PolicyholderID = p.UserID
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
		return domain.ListClaimResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(claim *domain.Claim) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        claim.ID.String(),
			CreatedAt: claim.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	claims := make([]domain.Claim, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		claims = append(claims, *item)
	}

	resp := domain.ListClaimResponse{Claims: claims}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetClaimRequest) (domain.Claim, error) {
	claim, err := s.loadScoped(ctx, req.ID)
	if err != nil {
		return domain.Claim{}, err
	}
	return *claim, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateClaimRequest) (domain.Claim, error) {
	claim, err := s.loadScoped(ctx, req.ID)
	if err != nil {
		return domain.Claim{}, err
	}

	// Core fields may only change while the claim sits with customer
	// service; later stages review a fixed request.
	if claim.Status != domain.StatusSubmitted && claim.Status != domain.StatusUnderReviewCS {
		return domain.Claim{}, domain.ErrClaimLocked
	}

	fields := map[string]any{}
	if req.Provider != nil {
		fields["provider"] = strings.TrimSpace(*req.Provider)
	}
	if req.Reason != nil {
		fields["reason"] = strings.TrimSpace(*req.Reason)
	}
	if req.RequestedAmountCents != nil {
		if *req.RequestedAmountCents <= 0 {
			return domain.Claim{}, domain.ErrInvalidAmount
		}
		fields["requested_amount_cents"] = *req.RequestedAmountCents
	}
	if len(fields) > 0 {
		fields["updated_at"] = time.Now().UTC()
		if err := s.repo.UpdateFields(ctx, s.db, claim.ID, fields); err != nil {
			return domain.Claim{}, err
		}
		claimID := claim.ID.String()
		_ = s.audit.AuditLog(ctx, "", nil, "claim.updated", "claim", &claimID, map[string]any{
			"fields": fieldNames(fields),
		})
	}

	updated, err := s.repo.FindByID(ctx, s.db, claim.ID)
	if err != nil {
		return domain.Claim{}, err
	}
	if updated == nil {
		return domain.Claim{}, domain.ErrNotFound
	}
	return *updated, nil
}

func (s *Service) AddAttachment(ctx context.Context, rawClaimID string, upload domain.AttachmentUpload) (domain.ClaimAttachment, error) {
	claim, err := s.loadScoped(ctx, rawClaimID)
	if err != nil {
		return domain.ClaimAttachment{}, err
	}
	if claim.Status == domain.StatusRejected || claim.Status == domain.StatusPaid {
		return domain.ClaimAttachment{}, domain.ErrClaimLocked
	}

	uploads := s.holder.Current().Uploads
	if err := validateUpload(upload, uploads); err != nil {
		return domain.ClaimAttachment{}, err
	}

	attachment, err := s.saveAttachment(ctx, s.db, claim.ID, upload, uploads)
	if err != nil {
		return domain.ClaimAttachment{}, err
	}

	claimID := claim.ID.String()
	_ = s.audit.AuditLog(ctx, "", nil, "claim.attachment_added", "claim", &claimID, map[string]any{
		"file_name":  attachment.FileName,
		"size_bytes": attachment.SizeBytes,
	})
	return *attachment, nil
}

func (s *Service) ListAttachments(ctx context.Context, rawClaimID string) ([]domain.ClaimAttachment, error) {
	claim, err := s.loadScoped(ctx, rawClaimID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.ListAttachments(ctx, s.db, claim.ID)
	if err != nil {
		return nil, err
	}
	attachments := make([]domain.ClaimAttachment, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		attachments = append(attachments, *item)
	}
	return attachments, nil
}

// loadScoped fetches a claim and applies policyholder ownership scoping.
func (s *Service) loadScoped(ctx context.Context, rawID string) (*domain.Claim, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidID
	}

	claim, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if claim == nil {
		return nil, domain.ErrNotFound
	}

	if p, ok := principal.FromContext(ctx); ok && p.Role == authdomain.RolePolicyholder {
		ownerID, err := s.repo.OwnerID(ctx, s.db, claim.ID)
		if err != nil {
			return nil, err
		}
		if ownerID != p.UserID {
			return nil, domain.ErrPermissionDenied
		}
	}
	return claim, nil
}

func (s *Service) saveAttachment(ctx context.Context, tx *gorm.DB, claimID snowflake.ID, upload domain.AttachmentUpload, policy config.UploadPolicy) (*domain.ClaimAttachment, error) {
	// Cap the copy one byte past the limit so oversized streams are caught
	// even when the declared size lied.
	limited := io.LimitReader(upload.Reader, policy.MaxSizeBytes+1)
	stored, err := s.store.Save(ctx, claimID, upload.FileName, limited)
	if err != nil {
		return nil, err
	}
	if stored.SizeBytes > policy.MaxSizeBytes {
		_ = s.store.Remove(ctx, stored.Path)
		return nil, domain.ErrAttachmentTooLarge
	}

	attachment := &domain.ClaimAttachment{
		ID:          s.genID.Generate(),
		ClaimID:     claimID,
		FileName:    filepath.Base(upload.FileName),
		ContentType: upload.ContentType,
		SizeBytes:   stored.SizeBytes,
		StoragePath: stored.Path,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.InsertAttachment(ctx, tx, attachment); err != nil {
		_ = s.store.Remove(ctx, stored.Path)
		return nil, err
	}
	return attachment, nil
}

func validateUpload(upload domain.AttachmentUpload, policy config.UploadPolicy) error {
	if upload.SizeBytes > policy.MaxSizeBytes {
		return domain.ErrAttachmentTooLarge
	}
	ext := strings.ToLower(filepath.Ext(upload.FileName))
	for _, allowed := range policy.AllowedExtensions {
		if ext == allowed {
			return nil
		}
	}
	return domain.ErrAttachmentType
}

func fieldNames(fields map[string]any) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		if name == "updated_at" {
			continue
		}
		names = append(names, name)
	}
	return names
}

func newReferenceNumber() string {
	raw := uuid.New()
	return fmt.Sprintf("CLM-%08X", uint32(raw.ID()))
}
