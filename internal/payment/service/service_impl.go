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
	"github.com/smallbiznis/claimdesk/internal/payment/domain"
	"github.com/smallbiznis/claimdesk/internal/principal"
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
		log:      p.Log.Named("payment.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		claims:   p.Claims,
		audit:    p.Audit,
		notifier: p.Notifier,
	}
}

func financeActor(ctx context.Context) (principal.Principal, error) {
	p, ok := principal.FromContext(ctx)
	if !ok {
		return principal.Principal{}, domain.ErrPermissionDenied
	}
	if p.Role != authdomain.RoleFinance && p.Role != authdomain.RoleAdmin {
		return principal.Principal{}, domain.ErrPermissionDenied
	}
	return p, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreatePaymentRequest) (domain.Payment, error) {
	if _, err := financeActor(ctx); err != nil {
		return domain.Payment{}, err
	}

	claimID, err := snowflake.ParseString(strings.TrimSpace(req.ClaimID))
	if err != nil || claimID == 0 {
		return domain.Payment{}, domain.ErrInvalidID
	}
	invoiceNumber := strings.TrimSpace(req.InvoiceNumber)
	if invoiceNumber == "" {
		return domain.Payment{}, domain.ErrInvalidInvoice
	}
	if req.PaymentAmountCents <= 0 {
		return domain.Payment{}, domain.ErrInvalidAmount
	}

	now := time.Now().UTC()
	payment := domain.Payment{
		ID:                 s.genID.Generate(),
		ClaimID:            claimID,
		InvoiceNumber:      invoiceNumber,
		PaymentAmountCents: req.PaymentAmountCents,
		PaymentDate:        req.PaymentDate,
		PaymentStatus:      domain.StatusScheduled,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		claim, err := s.claims.FindByID(ctx, tx, claimID)
		if err != nil {
			return err
		}
		if claim == nil {
			return domain.ErrNotFound
		}
		if !claim.Status.Payable() {
			return domain.ErrClaimNotPayable
		}
		if err := s.repo.Insert(ctx, tx, &payment); err != nil {
			return err
		}
		return s.claims.UpdateStatus(ctx, tx, claimID, claimdomain.StatusPendingPayment)
	})
	if err != nil {
		return domain.Payment{}, err
	}

	paymentID := payment.ID.String()
	_ = s.audit.AuditLog(ctx, "", nil, "payment.created", "payment", &paymentID, map[string]any{
		"claim_id":             claimID.String(),
		"invoice_number":       invoiceNumber,
		"payment_amount_cents": req.PaymentAmountCents,
	})
	s.notifyOwner(ctx, claimID,
		"Payment scheduled",
		fmt.Sprintf("A payment for invoice %s has been scheduled for your claim.", invoiceNumber),
	)

	s.log.Info("payment created",
		zap.String("payment_id", paymentID),
		zap.String("claim_id", claimID.String()),
	)
	return payment, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetPaymentRequest) (domain.Payment, error) {
	payment, err := s.loadScoped(ctx, req.ID)
	if err != nil {
		return domain.Payment{}, err
	}
	return *payment, nil
}

func (s *Service) List(ctx context.Context, req domain.ListPaymentRequest) (domain.ListPaymentResponse, error) {
	filter := domain.ListPaymentFilter{}
	if raw := strings.TrimSpace(req.ClaimID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil || id == 0 {
			return domain.ListPaymentResponse{}, domain.ErrInvalidID
		}
		filter.ClaimID = id
	}
	if raw := strings.TrimSpace(req.Status); raw != "" {
		filter.Status = domain.PaymentStatus(raw)
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
		return domain.ListPaymentResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(payment *domain.Payment) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        payment.ID.String(),
			CreatedAt: payment.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	payments := make([]domain.Payment, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		payments = append(payments, *item)
	}

	resp := domain.ListPaymentResponse{Payments: payments}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdatePaymentRequest) (domain.Payment, error) {
	actor, err := financeActor(ctx)
	if err != nil {
		return domain.Payment{}, err
	}

	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil || id == 0 {
		return domain.Payment{}, domain.ErrInvalidID
	}

	payment, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Payment{}, err
	}
	if payment == nil {
		return domain.Payment{}, domain.ErrNotFound
	}

	fields := map[string]any{}
	if req.InvoiceNumber != nil {
		invoiceNumber := strings.TrimSpace(*req.InvoiceNumber)
		if invoiceNumber == "" {
			return domain.Payment{}, domain.ErrInvalidInvoice
		}
		fields["invoice_number"] = invoiceNumber
	}
	if req.PaymentDate != nil {
		fields["payment_date"] = req.PaymentDate.UTC()
	}

	processed := false
	if req.PaymentStatus != nil {
		switch *req.PaymentStatus {
		case domain.StatusScheduled, domain.StatusProcessed, domain.StatusFailed:
		default:
			return domain.Payment{}, domain.ErrInvalidStatus
		}
		fields["payment_status"] = *req.PaymentStatus
		if *req.PaymentStatus == domain.StatusProcessed && payment.PaymentStatus != domain.StatusProcessed {
			processed = true
			fields["processed_by_id"] = actor.UserID
			if req.PaymentDate == nil && payment.PaymentDate == nil {
				fields["payment_date"] = time.Now().UTC()
			}
		}
	}

	if len(fields) > 0 {
		fields["updated_at"] = time.Now().UTC()
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := s.repo.UpdateFields(ctx, tx, id, fields); err != nil {
				return err
			}
			if processed {
				claim, err := s.claims.FindByID(ctx, tx, payment.ClaimID)
				if err != nil {
					return err
				}
				if claim == nil {
					return domain.ErrNotFound
				}
				// Already-paid claims stay paid; processing is idempotent.
				if claim.Status != claimdomain.StatusPaid {
					return s.claims.UpdateStatus(ctx, tx, payment.ClaimID, claimdomain.StatusPaid)
				}
			}
			return nil
		})
		if err != nil {
			return domain.Payment{}, err
		}
	}

	if processed {
		paymentID := id.String()
		_ = s.audit.AuditLog(ctx, "", nil, "payment.processed", "payment", &paymentID, map[string]any{
			"claim_id": payment.ClaimID.String(),
		})
		s.notifyOwner(ctx, payment.ClaimID,
			"Payment processed",
			"The payment for your claim has been processed.",
		)
	}

	updated, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Payment{}, err
	}
	if updated == nil {
		return domain.Payment{}, domain.ErrNotFound
	}
	return *updated, nil
}

func (s *Service) loadScoped(ctx context.Context, rawID string) (*domain.Payment, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidID
	}

	payment, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, domain.ErrNotFound
	}

	if p, ok := principal.FromContext(ctx); ok && p.Role == authdomain.RolePolicyholder {
		ownerID, err := s.claims.OwnerID(ctx, s.db, payment.ClaimID)
		if err != nil {
			return nil, err
		}
		if ownerID != p.UserID {
			return nil, domain.ErrPermissionDenied
		}
	}
	return payment, nil
}

func (s *Service) notifyOwner(ctx context.Context, claimID snowflake.ID, title, message string) {
	ownerID, err := s.claims.OwnerID(ctx, s.db, claimID)
	if err != nil {
		s.log.Warn("resolve claim owner for notification", zap.Error(err))
		return
	}
	s.notifier.NotifyClaimEvent(ctx, ownerID, &claimID, title, message)
}
