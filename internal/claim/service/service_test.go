package service

import (
	"context"
	"strings"
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
	"github.com/smallbiznis/claimdesk/internal/claim/domain"
	"github.com/smallbiznis/claimdesk/internal/claim/repository"
	"github.com/smallbiznis/claimdesk/internal/config"
	notificationdomain "github.com/smallbiznis/claimdesk/internal/notification/domain"
	policydomain "github.com/smallbiznis/claimdesk/internal/policy/domain"
	policyrepository "github.com/smallbiznis/claimdesk/internal/policy/repository"
	"github.com/smallbiznis/claimdesk/internal/principal"
	"github.com/smallbiznis/claimdesk/internal/storage"
)

type nopAudit struct{}

func (nopAudit) AuditLog(ctx context.Context, actorType string, actorID *string, action string, targetType string, targetID *string, metadata map[string]any) error {
	return nil
}

func (nopAudit) List(ctx context.Context, req auditdomain.ListAuditLogRequest) (auditdomain.ListAuditLogResponse, error) {
	return auditdomain.ListAuditLogResponse{}, nil
}

type recordingNotifier struct {
	titles []string
}

func (n *recordingNotifier) NotifyClaimEvent(ctx context.Context, userID snowflake.ID, claimID *snowflake.ID, title, message string) {
	n.titles = append(n.titles, title)
}

func (n *recordingNotifier) List(ctx context.Context, req notificationdomain.ListNotificationRequest) (notificationdomain.ListNotificationResponse, error) {
	return notificationdomain.ListNotificationResponse{}, nil
}

func (n *recordingNotifier) MarkRead(ctx context.Context, id string) (notificationdomain.Notification, error) {
	return notificationdomain.Notification{}, nil
}

type fixture struct {
	db       *gorm.DB
	svc      *Service
	node     *snowflake.Node
	notifier *recordingNotifier
	ownerID  snowflake.ID
	policyID snowflake.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&policydomain.Policy{},
		&domain.Claim{},
		&domain.ClaimAttachment{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	store, err := storage.NewDiskStore(t.TempDir())
	require.NoError(t, err)

	holder, err := config.NewClaimsConfigHolder()
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	svc := &Service{
		db:       db,
		log:      zaptest.NewLogger(t),
		genID:    node,
		repo:     repository.Provide(),
		policies: policyrepository.Provide(),
		store:    store,
		holder:   holder,
		audit:    nopAudit{},
		notifier: notifier,
	}

	now := time.Now().UTC()
	ownerID := node.Generate()
	policy := policydomain.Policy{
		ID:             node.Generate(),
		MemberNumber:   "MBR-0003",
		PlanType:       "GOLD",
		PolicyholderID: ownerID,
		EmployerID:     node.Generate(),
		StartDate:      now.AddDate(-1, 0, 0),
		EndDate:        now.AddDate(1, 0, 0),
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, db.Create(&policy).Error)

	return &fixture{
		db:       db,
		svc:      svc,
		node:     node,
		notifier: notifier,
		ownerID:  ownerID,
		policyID: policy.ID,
	}
}

func (f *fixture) ownerCtx() context.Context {
	return principal.WithContext(context.Background(), principal.Principal{
		UserID: f.ownerID,
		Role:   authdomain.RolePolicyholder,
	})
}

func TestCreateClaimSubmitsWithAttachment(t *testing.T) {
	f := newFixture(t)

	claim, err := f.svc.Create(f.ownerCtx(), domain.CreateClaimRequest{
		PolicyID:             f.policyID.String(),
		Provider:             "City Hospital",
		Reason:               "outpatient treatment",
		RequestedAmountCents: 250_00,
		Attachments: []domain.AttachmentUpload{
			{
				FileName:    "invoice.pdf",
				ContentType: "application/pdf",
				SizeBytes:   11,
				Reader:      strings.NewReader("pdf-content"),
			},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSubmitted, claim.Status)
	assert.True(t, strings.HasPrefix(claim.ReferenceNumber, "CLM-"))
	assert.NotEmpty(t, f.notifier.titles)

	attachments, err := f.svc.ListAttachments(f.ownerCtx(), claim.ID.String())
	require.NoError(t, err)
	require.Len(t, attachments, 1)
	assert.Equal(t, "invoice.pdf", attachments[0].FileName)
	assert.Equal(t, int64(11), attachments[0].SizeBytes)
}

func TestCreateClaimRejectsInactivePolicy(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Model(&policydomain.Policy{}).
		Where("id = ?", f.policyID).
		Update("is_active", false).Error)

	_, err := f.svc.Create(f.ownerCtx(), domain.CreateClaimRequest{
		PolicyID:             f.policyID.String(),
		Provider:             "City Hospital",
		Reason:               "outpatient treatment",
		RequestedAmountCents: 250_00,
	})
	assert.ErrorIs(t, err, domain.ErrPolicyInactive)
}

func TestCreateClaimRequiresPolicyOwnership(t *testing.T) {
	f := newFixture(t)

	strangerCtx := principal.WithContext(context.Background(), principal.Principal{
		UserID: f.node.Generate(),
		Role:   authdomain.RolePolicyholder,
	})
	_, err := f.svc.Create(strangerCtx, domain.CreateClaimRequest{
		PolicyID:             f.policyID.String(),
		Provider:             "City Hospital",
		Reason:               "outpatient treatment",
		RequestedAmountCents: 250_00,
	})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}

func TestCreateClaimRejectsNonPositiveAmount(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(f.ownerCtx(), domain.CreateClaimRequest{
		PolicyID:             f.policyID.String(),
		Provider:             "City Hospital",
		Reason:               "outpatient treatment",
		RequestedAmountCents: 0,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestCreateClaimValidatesAttachments(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(f.ownerCtx(), domain.CreateClaimRequest{
		PolicyID:             f.policyID.String(),
		Provider:             "City Hospital",
		Reason:               "outpatient treatment",
		RequestedAmountCents: 250_00,
		Attachments: []domain.AttachmentUpload{
			{FileName: "malware.exe", SizeBytes: 10, Reader: strings.NewReader("nope")},
		},
	})
	assert.ErrorIs(t, err, domain.ErrAttachmentType)

	_, err = f.svc.Create(f.ownerCtx(), domain.CreateClaimRequest{
		PolicyID:             f.policyID.String(),
		Provider:             "City Hospital",
		Reason:               "outpatient treatment",
		RequestedAmountCents: 250_00,
		Attachments: []domain.AttachmentUpload{
			{FileName: "scan.pdf", SizeBytes: 100 * 1024 * 1024, Reader: strings.NewReader("huge")},
		},
	})
	assert.ErrorIs(t, err, domain.ErrAttachmentTooLarge)
}

func TestGetClaimScopedToPolicyholder(t *testing.T) {
	f := newFixture(t)

	claim, err := f.svc.Create(f.ownerCtx(), domain.CreateClaimRequest{
		PolicyID:             f.policyID.String(),
		Provider:             "City Hospital",
		Reason:               "outpatient treatment",
		RequestedAmountCents: 250_00,
	})
	require.NoError(t, err)

	strangerCtx := principal.WithContext(context.Background(), principal.Principal{
		UserID: f.node.Generate(),
		Role:   authdomain.RolePolicyholder,
	})
	_, err = f.svc.GetByID(strangerCtx, domain.GetClaimRequest{ID: claim.ID.String()})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	got, err := f.svc.GetByID(f.ownerCtx(), domain.GetClaimRequest{ID: claim.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, claim.ID, got.ID)
}

func TestUpdateClaimLockedAfterCustomerService(t *testing.T) {
	f := newFixture(t)

	claim, err := f.svc.Create(f.ownerCtx(), domain.CreateClaimRequest{
		PolicyID:             f.policyID.String(),
		Provider:             "City Hospital",
		Reason:               "outpatient treatment",
		RequestedAmountCents: 250_00,
	})
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&domain.Claim{}).
		Where("id = ?", claim.ID).
		Update("status", domain.StatusUnderReviewClaims).Error)

	reason := "amended reason"
	_, err = f.svc.Update(f.ownerCtx(), domain.UpdateClaimRequest{
		ID:     claim.ID.String(),
		Reason: &reason,
	})
	assert.ErrorIs(t, err, domain.ErrClaimLocked)
}
