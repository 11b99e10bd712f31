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

	"github.com/smallbiznis/claimdesk/internal/provider/domain"
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
		log:   p.Log.Named("provider.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateProviderRequest) (domain.Provider, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Provider{}, domain.ErrInvalidName
	}

	email := strings.TrimSpace(req.ContactEmail)
	if email != "" && !strings.Contains(email, "@") {
		return domain.Provider{}, domain.ErrInvalidEmail
	}

	now := time.Now().UTC()
	provider := domain.Provider{
		ID:           s.genID.Generate(),
		Name:         name,
		Specialty:    strings.TrimSpace(req.Specialty),
		ContactEmail: email,
		Address:      strings.TrimSpace(req.Address),
		Metadata:     datatypes.JSONMap{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &provider); err != nil {
		return domain.Provider{}, err
	}
	return provider, nil
}

func (s *Service) List(ctx context.Context, req domain.ListProviderRequest) (domain.ListProviderResponse, error) {
	filter := domain.ListProviderFilter{
		Name:      strings.TrimSpace(req.Name),
		Specialty: strings.TrimSpace(req.Specialty),
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
		return domain.ListProviderResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(provider *domain.Provider) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        provider.ID.String(),
			CreatedAt: provider.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	providers := make([]domain.Provider, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		providers = append(providers, *item)
	}

	resp := domain.ListProviderResponse{Providers: providers}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetProviderRequest) (domain.Provider, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Provider{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Provider{}, err
	}
	if item == nil {
		return domain.Provider{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateProviderRequest) (domain.Provider, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Provider{}, err
	}

	fields := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Provider{}, domain.ErrInvalidName
		}
		fields["name"] = name
	}
	if req.Specialty != nil {
		fields["specialty"] = strings.TrimSpace(*req.Specialty)
	}
	if req.ContactEmail != nil {
		email := strings.TrimSpace(*req.ContactEmail)
		if email != "" && !strings.Contains(email, "@") {
			return domain.Provider{}, domain.ErrInvalidEmail
		}
		fields["contact_email"] = email
	}
	if req.Address != nil {
		fields["address"] = strings.TrimSpace(*req.Address)
	}
	if len(fields) > 0 {
		fields["updated_at"] = time.Now().UTC()
		if err := s.repo.UpdateFields(ctx, s.db, id, fields); err != nil {
			return domain.Provider{}, err
		}
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Provider{}, err
	}
	if item == nil {
		return domain.Provider{}, domain.ErrNotFound
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
