package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	auditdomain "github.com/smallbiznis/claimdesk/internal/audit/domain"
	authdomain "github.com/smallbiznis/claimdesk/internal/auth/domain"
	claimdomain "github.com/smallbiznis/claimdesk/internal/claim/domain"
	claimrepository "github.com/smallbiznis/claimdesk/internal/claim/repository"
	notificationdomain "github.com/smallbiznis/claimdesk/internal/notification/domain"
	"github.com/smallbiznis/claimdesk/internal/payment/domain"
	"github.com/smallbiznis/claimdesk/internal/payment/repository"
	policydomain "github.com/smallbiznis/claimdesk/internal/policy/domain"
	"github.com/smallbiznis/claimdesk/internal/principal"
)

type nopAudit struct{}

func (nopAudit) AuditLog(ctx context.Context, actorType string, actorID *string, action string, targetType string, targetID *string, metadata map[string]any) error {
	return nil
}

func (nopAudit) List(ctx context.Context, req auditdomain.ListAuditLogRequest) (auditdomain.ListAuditLogResponse, error) {
	return auditdomain.ListAuditLogResponse{}, nil
}

type nopNotifier struct{}

func (nopNotifier) NotifyClaimEvent(ctx context.Context, userID snowflake.ID, claimID *snowflake.ID, title, message string) {
}

func (nopNotifier) List(ctx context.Context, req notificationdomain.ListNotificationRequest) (notificationdomain.ListNotificationResponse, error) {
	return notificationdomain.ListNotificationResponse{}, nil
}

func (nopNotifier) MarkRead(ctx context.Context, id string) (notificationdomain.Notification, error) {
	return notificationdomain.Notification{}, nil
}

type fixture struct {
	db      *gorm.DB
	svc     *Service
	node    *snowflake.Node
	claimID snowflake.ID
}

func newFixture(t *testing.T, claimStatus claimdomain.ClaimStatus) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&policydomain.Policy{},
		&claimdomain.Claim{},
		&domain.Payment{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := &Service{
		db:       db,
		log:      zaptest.NewLogger(t),
		genID:    node,
		repo:     repository.Provide(),
		claims:   claimrepository.Provide(),
		audit:    nopAudit{},
		notifier: nopNotifier{},
	}

	now := time.Now().UTC()
	policy := policydomain.Policy{
		ID:             node.Generate(),
		MemberNumber:   "MBR-0002",
		PlanType:       "SILVER",
		PolicyholderID: node.Generate(),
		EmployerID:     node.Generate(),
		StartDate:      now.AddDate(-1, 0, 0),
		EndDate:        now.AddDate(1, 0, 0),
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, db.Create(&policy).Error)

	approved := int64(180_00)
	claim := claimdomain.Claim{
		ID:                   node.Generate(),
		ReferenceNumber:      "CLM-TEST0002",
		PolicyID:             policy.ID,
		Provider:             "City Hospital",
		Reason:               "surgery",
		RequestedAmountCents: 200_00,
		ApprovedAmountCents:  &approved,
		Status:               claimStatus,
		SubmissionDate:       now,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	require.NoError(t, db.Create(&claim).Error)

	return &fixture{db: db, svc: svc, node: node, claimID: claim.ID}
}

func financeCtx(node *snowflake.Node) context.Context {
	return principal.WithContext(context.Background(), principal.Principal{
		UserID: node.Generate(),
		Role:   authdomain.RoleFinance,
	})
}

func (f *fixture) claimStatus(t *testing.T) claimdomain.ClaimStatus {
	t.Helper()
	var claim claimdomain.Claim
	require.NoError(t, f.db.First(&claim, "id = ?", f.claimID).Error)
	return claim.Status
}

func TestCreatePaymentSchedulesAndLocksClaim(t *testing.T) {
	f := newFixture(t, claimdomain.StatusApproved)

	payment, err := f.svc.Create(financeCtx(f.node), domain.CreatePaymentRequest{
		ClaimID:            f.claimID.String(),
		InvoiceNumber:      "INV-2026-001",
		PaymentAmountCents: 180_00,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusScheduled, payment.PaymentStatus)
	assert.Equal(t, claimdomain.StatusPendingPayment, f.claimStatus(t))
}

func TestCreatePaymentRequiresPayableClaim(t *testing.T) {
	f := newFixture(t, claimdomain.StatusUnderReviewClaims)

	_, err := f.svc.Create(financeCtx(f.node), domain.CreatePaymentRequest{
		ClaimID:            f.claimID.String(),
		InvoiceNumber:      "INV-2026-002",
		PaymentAmountCents: 180_00,
	})
	assert.ErrorIs(t, err, domain.ErrClaimNotPayable)
	assert.Equal(t, claimdomain.StatusUnderReviewClaims, f.claimStatus(t))
}

func TestCreatePaymentRequiresFinanceRole(t *testing.T) {
	f := newFixture(t, claimdomain.StatusApproved)

	ctx := principal.WithContext(context.Background(), principal.Principal{
		UserID: f.node.Generate(),
		Role:   authdomain.RoleCustomerService,
	})
	_, err := f.svc.Create(ctx, domain.CreatePaymentRequest{
		ClaimID:            f.claimID.String(),
		InvoiceNumber:      "INV-2026-003",
		PaymentAmountCents: 180_00,
	})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}

func TestProcessPaymentMarksClaimPaid(t *testing.T) {
	f := newFixture(t, claimdomain.StatusPartiallyApproved)
	ctx := financeCtx(f.node)

	payment, err := f.svc.Create(ctx, domain.CreatePaymentRequest{
		ClaimID:            f.claimID.String(),
		InvoiceNumber:      "INV-2026-004",
		PaymentAmountCents: 180_00,
	})
	require.NoError(t, err)

	processed := domain.StatusProcessed
	updated, err := f.svc.Update(ctx, domain.UpdatePaymentRequest{
		ID:            payment.ID.String(),
		PaymentStatus: &processed,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessed, updated.PaymentStatus)
	require.NotNil(t, updated.ProcessedByID)
	require.NotNil(t, updated.PaymentDate)
	assert.Equal(t, claimdomain.StatusPaid, f.claimStatus(t))

	// Re-processing is idempotent; the claim stays PAID.
	again, err := f.svc.Update(ctx, domain.UpdatePaymentRequest{
		ID:            payment.ID.String(),
		PaymentStatus: &processed,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessed, again.PaymentStatus)
	assert.Equal(t, claimdomain.StatusPaid, f.claimStatus(t))
}

func TestUpdatePaymentRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t, claimdomain.StatusApproved)
	ctx := financeCtx(f.node)

	payment, err := f.svc.Create(ctx, domain.CreatePaymentRequest{
		ClaimID:            f.claimID.String(),
		InvoiceNumber:      "INV-2026-005",
		PaymentAmountCents: 180_00,
	})
	require.NoError(t, err)

	bogus := domain.PaymentStatus("VOIDED")
	_, err = f.svc.Update(ctx, domain.UpdatePaymentRequest{
		ID:            payment.ID.String(),
		PaymentStatus: &bogus,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}
