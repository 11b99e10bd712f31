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
	policydomain "github.com/smallbiznis/claimdesk/internal/policy/domain"
	"github.com/smallbiznis/claimdesk/internal/principal"
	"github.com/smallbiznis/claimdesk/internal/review/domain"
	"github.com/smallbiznis/claimdesk/internal/review/repository"
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
	claimID  snowflake.ID
}

func newFixture(t *testing.T, claimStatus claimdomain.ClaimStatus) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&policydomain.Policy{},
		&claimdomain.Claim{},
		&domain.Review{},
		&domain.ReviewItem{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	svc := &Service{
		db:       db,
		log:      zaptest.NewLogger(t),
		genID:    node,
		repo:     repository.Provide(),
		claims:   claimrepository.Provide(),
		audit:    nopAudit{},
		notifier: notifier,
	}

	now := time.Now().UTC()
	ownerID := node.Generate()
	policy := policydomain.Policy{
		ID:             node.Generate(),
		MemberNumber:   "MBR-0001",
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

	claim := claimdomain.Claim{
		ID:                   node.Generate(),
		ReferenceNumber:      "CLM-TEST0001",
		PolicyID:             policy.ID,
		Provider:             "City Hospital",
		Reason:               "outpatient treatment",
		RequestedAmountCents: 250_00,
		Status:               claimStatus,
		SubmissionDate:       now,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	require.NoError(t, db.Create(&claim).Error)

	return &fixture{
		db:       db,
		svc:      svc,
		node:     node,
		notifier: notifier,
		ownerID:  ownerID,
		claimID:  claim.ID,
	}
}

func reviewerCtx(node *snowflake.Node, role authdomain.Role) context.Context {
	return principal.WithContext(context.Background(), principal.Principal{
		UserID: node.Generate(),
		Role:   role,
	})
}

func (f *fixture) claimStatus(t *testing.T) claimdomain.ClaimStatus {
	t.Helper()
	var claim claimdomain.Claim
	require.NoError(t, f.db.First(&claim, "id = ?", f.claimID).Error)
	return claim.Status
}

func TestCreateReviewAdvancesClaim(t *testing.T) {
	f := newFixture(t, claimdomain.StatusSubmitted)

	ctx := reviewerCtx(f.node, authdomain.RoleCustomerService)
	review, err := f.svc.Create(ctx, domain.CreateReviewRequest{
		ClaimID:    f.claimID.String(),
		ReviewType: domain.TypeCustomerService,
		Decision:   domain.DecisionApproved,
		Comments:   "documents complete",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TypeCustomerService, review.ReviewType)
	assert.Equal(t, claimdomain.StatusUnderReviewClaims, f.claimStatus(t))
	assert.NotEmpty(t, f.notifier.titles)
}

func TestCreateReviewNeedsMoreInfoKeepsStatus(t *testing.T) {
	f := newFixture(t, claimdomain.StatusUnderReviewClaims)

	ctx := reviewerCtx(f.node, authdomain.RoleClaims)
	_, err := f.svc.Create(ctx, domain.CreateReviewRequest{
		ClaimID:    f.claimID.String(),
		ReviewType: domain.TypeClaims,
		Decision:   domain.DecisionNeedsMoreInfo,
	})
	require.NoError(t, err)
	assert.Equal(t, claimdomain.StatusUnderReviewClaims, f.claimStatus(t))
}

func TestCreateReviewRoleMustMatchType(t *testing.T) {
	f := newFixture(t, claimdomain.StatusSubmitted)

	ctx := reviewerCtx(f.node, authdomain.RoleMD)
	_, err := f.svc.Create(ctx, domain.CreateReviewRequest{
		ClaimID:    f.claimID.String(),
		ReviewType: domain.TypeCustomerService,
		Decision:   domain.DecisionApproved,
	})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}

func TestCreateReviewStageMismatchLeavesClaimUntouched(t *testing.T) {
	f := newFixture(t, claimdomain.StatusSubmitted)

	ctx := reviewerCtx(f.node, authdomain.RoleMD)
	_, err := f.svc.Create(ctx, domain.CreateReviewRequest{
		ClaimID:    f.claimID.String(),
		ReviewType: domain.TypeMD,
		Decision:   domain.DecisionApproved,
	})
	assert.ErrorIs(t, err, domain.ErrStageMismatch)
	assert.Equal(t, claimdomain.StatusSubmitted, f.claimStatus(t))

	var count int64
	require.NoError(t, f.db.Model(&domain.Review{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAddItemRejectsApprovedOverRequested(t *testing.T) {
	f := newFixture(t, claimdomain.StatusPendingMDApproval)

	ctx := reviewerCtx(f.node, authdomain.RoleMD)
	review, err := f.svc.Create(ctx, domain.CreateReviewRequest{
		ClaimID:    f.claimID.String(),
		ReviewType: domain.TypeMD,
		Decision:   domain.DecisionPartiallyApproved,
	})
	require.NoError(t, err)

	approved := int64(300_00)
	_, err = f.svc.AddItem(ctx, domain.CreateReviewItemRequest{
		ReviewID:             review.ID.String(),
		ItemName:             "consultation",
		RequestedAmountCents: 200_00,
		ApprovedAmountCents:  &approved,
		Status:               domain.ItemApproved,
	})
	assert.ErrorIs(t, err, domain.ErrAmountExceeds)
}

func TestAddItemAggregatesApprovedAmount(t *testing.T) {
	f := newFixture(t, claimdomain.StatusPendingMDApproval)

	ctx := reviewerCtx(f.node, authdomain.RoleMD)
	review, err := f.svc.Create(ctx, domain.CreateReviewRequest{
		ClaimID:    f.claimID.String(),
		ReviewType: domain.TypeMD,
		Decision:   domain.DecisionPartiallyApproved,
	})
	require.NoError(t, err)

	first := int64(120_00)
	_, err = f.svc.AddItem(ctx, domain.CreateReviewItemRequest{
		ReviewID:             review.ID.String(),
		ItemName:             "consultation",
		RequestedAmountCents: 150_00,
		ApprovedAmountCents:  &first,
		Status:               domain.ItemApproved,
	})
	require.NoError(t, err)

	second := int64(50_00)
	item, err := f.svc.AddItem(ctx, domain.CreateReviewItemRequest{
		ReviewID:             review.ID.String(),
		ItemName:             "medication",
		RequestedAmountCents: 100_00,
		ApprovedAmountCents:  &second,
		Status:               domain.ItemApproved,
	})
	require.NoError(t, err)

	var claim claimdomain.Claim
	require.NoError(t, f.db.First(&claim, "id = ?", f.claimID).Error)
	require.NotNil(t, claim.ApprovedAmountCents)
	assert.Equal(t, first+second, *claim.ApprovedAmountCents)

	// Lowering an item's approved amount recomputes the total.
	lowered := int64(20_00)
	_, err = f.svc.UpdateItem(ctx, domain.UpdateReviewItemRequest{
		ReviewID:            review.ID.String(),
		ItemID:              item.ID.String(),
		ApprovedAmountCents: &lowered,
	})
	require.NoError(t, err)

	require.NoError(t, f.db.First(&claim, "id = ?", f.claimID).Error)
	require.NotNil(t, claim.ApprovedAmountCents)
	assert.Equal(t, first+lowered, *claim.ApprovedAmountCents)
}

func TestAddItemOnlyByReviewOwner(t *testing.T) {
	f := newFixture(t, claimdomain.StatusPendingMDApproval)

	ctx := reviewerCtx(f.node, authdomain.RoleMD)
	review, err := f.svc.Create(ctx, domain.CreateReviewRequest{
		ClaimID:    f.claimID.String(),
		ReviewType: domain.TypeMD,
		Decision:   domain.DecisionApproved,
	})
	require.NoError(t, err)

	otherCtx := reviewerCtx(f.node, authdomain.RoleMD)
	approved := int64(50_00)
	_, err = f.svc.AddItem(otherCtx, domain.CreateReviewItemRequest{
		ReviewID:             review.ID.String(),
		ItemName:             "consultation",
		RequestedAmountCents: 100_00,
		ApprovedAmountCents:  &approved,
		Status:               domain.ItemApproved,
	})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}

func TestReviewChainFromSubmissionToPartialApproval(t *testing.T) {
	f := newFixture(t, claimdomain.StatusSubmitted)

	csCtx := reviewerCtx(f.node, authdomain.RoleCustomerService)
	_, err := f.svc.Create(csCtx, domain.CreateReviewRequest{
		ClaimID:    f.claimID.String(),
		ReviewType: domain.TypeCustomerService,
		Decision:   domain.DecisionApproved,
	})
	require.NoError(t, err)
	require.Equal(t, claimdomain.StatusUnderReviewClaims, f.claimStatus(t))

	claimsCtx := reviewerCtx(f.node, authdomain.RoleClaims)
	_, err = f.svc.Create(claimsCtx, domain.CreateReviewRequest{
		ClaimID:    f.claimID.String(),
		ReviewType: domain.TypeClaims,
		Decision:   domain.DecisionApproved,
	})
	require.NoError(t, err)
	require.Equal(t, claimdomain.StatusPendingMDApproval, f.claimStatus(t))

	mdCtx := reviewerCtx(f.node, authdomain.RoleMD)
	mdReview, err := f.svc.Create(mdCtx, domain.CreateReviewRequest{
		ClaimID:    f.claimID.String(),
		ReviewType: domain.TypeMD,
		Decision:   domain.DecisionPartiallyApproved,
	})
	require.NoError(t, err)
	require.Equal(t, claimdomain.StatusPartiallyApproved, f.claimStatus(t))

	approved := int64(180_00)
	_, err = f.svc.AddItem(mdCtx, domain.CreateReviewItemRequest{
		ReviewID:             mdReview.ID.String(),
		ItemName:             "surgery",
		RequestedAmountCents: 250_00,
		ApprovedAmountCents:  &approved,
		Status:               domain.ItemApproved,
	})
	require.NoError(t, err)

	var claim claimdomain.Claim
	require.NoError(t, f.db.First(&claim, "id = ?", f.claimID).Error)
	require.NotNil(t, claim.ApprovedAmountCents)
	assert.Equal(t, approved, *claim.ApprovedAmountCents)
}

func TestPolicyholderCannotReadOthersReview(t *testing.T) {
	f := newFixture(t, claimdomain.StatusSubmitted)

	ctx := reviewerCtx(f.node, authdomain.RoleCustomerService)
	review, err := f.svc.Create(ctx, domain.CreateReviewRequest{
		ClaimID:    f.claimID.String(),
		ReviewType: domain.TypeCustomerService,
		Decision:   domain.DecisionApproved,
	})
	require.NoError(t, err)

	strangerCtx := principal.WithContext(context.Background(), principal.Principal{
		UserID: f.node.Generate(),
		Role:   authdomain.RolePolicyholder,
	})
	_, err = f.svc.GetByID(strangerCtx, domain.GetReviewRequest{ID: review.ID.String()})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	ownerCtx := principal.WithContext(context.Background(), principal.Principal{
		UserID: f.ownerID,
		Role:   authdomain.RolePolicyholder,
	})
	got, err := f.svc.GetByID(ownerCtx, domain.GetReviewRequest{ID: review.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, review.ID, got.ID)
}
