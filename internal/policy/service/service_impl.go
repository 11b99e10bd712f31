package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	authdomain "github.com/smallbiznis/claimdesk/internal/auth/domain"
	"github.com/smallbiznis/claimdesk/internal/policy/domain"
	"github.com/smallbiznis/claimdesk/internal/principal"
	"github.com/smallbiznis/claimdesk/pkg/db/pagination"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("policy.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreatePolicyRequest) (domain.Policy, error) {
	memberNumber := strings.TrimSpace(req.MemberNumber)
	if memberNumber == "" {
		return domain.Policy{}, domain.ErrInvalidMemberNumber
	}

	policyholderID, err := snowflake.ParseString(strings.TrimSpace(req.PolicyholderID))
	if err != nil || policyholderID == 0 {
		return domain.Policy{}, domain.ErrInvalidUser
	}
	employerID, err := snowflake.ParseString(strings.TrimSpace(req.EmployerID))
	if err != nil || employerID == 0 {
		return domain.Policy{}, domain.ErrInvalidEmployer
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() || !req.EndDate.After(req.StartDate) {
		return domain.Policy{}, domain.ErrInvalidCoverage
	}

	now := time.Now().UTC()
	policy := domain.Policy{
		ID:             s.genID.Generate(),
		MemberNumber:   memberNumber,
		PlanType:       strings.TrimSpace(req.PlanType),
		PolicyholderID: policyholderID,
		EmployerID:     employerID,
		StartDate:      req.StartDate.UTC(),
		EndDate:        req.EndDate.UTC(),
		IsActive:       true,
		Metadata:       datatypes.JSONMap{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Insert(ctx, s.db, &policy); err != nil {
		return domain.Policy{}, err
	}
	return policy, nil
}

func (s *Service) List(ctx context.Context, req domain.ListPolicyRequest) (domain.ListPolicyResponse, error) {
	filter := domain.ListPolicyFilter{
		MemberNumber: strings.TrimSpace(req.MemberNumber),
		ActiveOnly:   req.ActiveOnly,
	}
	if raw := strings.TrimSpace(req.PolicyholderID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil || id == 0 {
			return domain.ListPolicyResponse{}, domain.ErrInvalidUser
		}
		filter.PolicyholderID = id
	}
	if raw := strings.TrimSpace(req.EmployerID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil || id == 0 {
			return domain.ListPolicyResponse{}, domain.ErrInvalidEmployer
		}
		filter.EmployerID = id
	}

	// Policyholders only ever see their own policies.
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
		return domain.ListPolicyResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(policy *domain.Policy) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        policy.ID.String(),
			CreatedAt: policy.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	policies := make([]domain.Policy, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		policies = append(policies, *item)
	}

	resp := domain.ListPolicyResponse{Policies: policies}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetPolicyRequest) (domain.Policy, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Policy{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Policy{}, err
	}
	if item == nil {
		return domain.Policy{}, domain.ErrNotFound
	}

	if p, ok := principal.FromContext(ctx); ok && p.Role == authdomain.RolePolicyholder && item.PolicyholderID != p.UserID {
		return domain.Policy{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdatePolicyRequest) (domain.Policy, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Policy{}, err
	}

	current, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Policy{}, err
	}
	if current == nil {
		return domain.Policy{}, domain.ErrNotFound
	}

	fields := map[string]any{}
	startDate := current.StartDate
	endDate := current.EndDate
	if req.StartDate != nil {
		startDate = req.StartDate.UTC()
		fields["start_date"] = startDate
	}
	if req.EndDate != nil {
		endDate = req.EndDate.UTC()
		fields["end_date"] = endDate
	}
	if !endDate.After(startDate) {
		return domain.Policy{}, domain.ErrInvalidCoverage
	}
	if req.PlanType != nil {
		fields["plan_type"] = strings.TrimSpace(*req.PlanType)
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if len(fields) > 0 {
		fields["updated_at"] = time.Now().UTC()
		if err := s.repo.UpdateFields(ctx, s.db, id, fields); err != nil {
			return domain.Policy{}, err
		}
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Policy{}, err
	}
	if item == nil {
		return domain.Policy{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Delete(ctx context.Context, rawID string) error {
	id, err := s.parseID(rawID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, s.db, id)
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
