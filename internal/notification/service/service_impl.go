package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authdomain "github.com/smallbiznis/claimdesk/internal/auth/domain"
	"github.com/smallbiznis/claimdesk/internal/config"
	"github.com/smallbiznis/claimdesk/internal/notification/domain"
	"github.com/smallbiznis/claimdesk/internal/principal"
	"github.com/smallbiznis/claimdesk/internal/providers/email"
	"github.com/smallbiznis/claimdesk/pkg/db/pagination"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Repo   domain.Repository
	Users  authdomain.Repository
	Email  email.Provider
	Holder *config.ClaimsConfigHolder
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	repo   domain.Repository
	users  authdomain.Repository
	email  email.Provider
	holder *config.ClaimsConfigHolder
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("notification.service"),
		genID:  p.GenID,
		repo:   p.Repo,
		users:  p.Users,
		email:  p.Email,
		holder: p.Holder,
	}
}

func (s *Service) NotifyClaimEvent(ctx context.Context, userID snowflake.ID, claimID *snowflake.ID, title, message string) {
	policy := s.holder.Current().Notifications

	if policy.InAppEnabled {
		notification := domain.Notification{
			ID:        s.genID.Generate(),
			UserID:    userID,
			ClaimID:   claimID,
			Title:     title,
			Message:   message,
			Type:      domain.TypeInApp,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.repo.Insert(ctx, s.db, &notification); err != nil {
			s.log.Warn("insert notification", zap.Error(err))
		}
	}

	if policy.EmailEnabled {
		user, err := s.users.FindByID(ctx, userID)
		if err != nil {
			s.log.Warn("notification recipient lookup", zap.Error(err))
			return
		}
		// Delivery must never block or fail the claim workflow.
		go func(address, subject, body string) {
			sendCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := s.email.Send(sendCtx, []string{address}, subject, body); err != nil {
				s.log.Warn("send notification email",
					zap.String("subject", subject),
					zap.Error(err),
				)
			}
		}(user.Email, title, message)
	}
}

func (s *Service) List(ctx context.Context, req domain.ListNotificationRequest) (domain.ListNotificationResponse, error) {
	p, ok := principal.FromContext(ctx)
	if !ok {
		return domain.ListNotificationResponse{}, domain.ErrNotFound
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, domain.ListNotificationFilter{
		UserID:     p.UserID,
		UnreadOnly: req.UnreadOnly,
	}, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListNotificationResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(notification *domain.Notification) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        notification.ID.String(),
			CreatedAt: notification.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	notifications := make([]domain.Notification, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		notifications = append(notifications, *item)
	}

	resp := domain.ListNotificationResponse{Notifications: notifications}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) MarkRead(ctx context.Context, rawID string) (domain.Notification, error) {
	p, ok := principal.FromContext(ctx)
	if !ok {
		return domain.Notification{}, domain.ErrNotFound
	}

	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil || id == 0 {
		return domain.Notification{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Notification{}, err
	}
	if item == nil || item.UserID != p.UserID {
		return domain.Notification{}, domain.ErrNotFound
	}

	if !item.IsRead {
		if err := s.repo.MarkRead(ctx, s.db, id); err != nil {
			return domain.Notification{}, err
		}
		item.IsRead = true
	}
	return *item, nil
}
