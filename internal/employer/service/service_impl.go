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

	"github.com/smallbiznis/claimdesk/internal/employer/domain"
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
		log:   p.Log.Named("employer.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateEmployerRequest) (domain.Employer, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Employer{}, domain.ErrInvalidName
	}

	email := strings.TrimSpace(req.ContactEmail)
	if email != "" && !strings.Contains(email, "@") {
		return domain.Employer{}, domain.ErrInvalidEmail
	}

	now := time.Now().UTC()
	employer := domain.Employer{
		ID:           s.genID.Generate(),
		Name:         name,
		ContactEmail: email,
		Address:      strings.TrimSpace(req.Address),
		Metadata:     datatypes.JSONMap{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &employer); err != nil {
		return domain.Employer{}, err
	}
	return employer, nil
}

func (s *Service) List(ctx context.Context, req domain.ListEmployerRequest) (domain.ListEmployerResponse, error) {
	filter := domain.ListEmployerFilter{
		Name: strings.TrimSpace(req.Name),
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
		return domain.ListEmployerResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(employer *domain.Employer) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        employer.ID.String(),
			CreatedAt: employer.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	employers := make([]domain.Employer, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		employers = append(employers, *item)
	}

	resp := domain.ListEmployerResponse{Employers: employers}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetEmployerRequest) (domain.Employer, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Employer{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Employer{}, err
	}
	if item == nil {
		return domain.Employer{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateEmployerRequest) (domain.Employer, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Employer{}, err
	}

	fields := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Employer{}, domain.ErrInvalidName
		}
		fields["name"] = name
	}
	if req.ContactEmail != nil {
		email := strings.TrimSpace(*req.ContactEmail)
		if email != "" && !strings.Contains(email, "@") {
			return domain.Employer{}, domain.ErrInvalidEmail
		}
		fields["contact_email"] = email
	}
	if req.Address != nil {
		fields["address"] = strings.TrimSpace(*req.Address)
	}
	if len(fields) > 0 {
		fields["updated_at"] = time.Now().UTC()
		if err := s.repo.UpdateFields(ctx, s.db, id, fields); err != nil {
			return domain.Employer{}, err
		}
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Employer{}, err
	}
	if item == nil {
		return domain.Employer{}, domain.ErrNotFound
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
