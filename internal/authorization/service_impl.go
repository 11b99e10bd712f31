package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authdomain "github.com/smallbiznis/claimdesk/internal/auth/domain"
)

//go:embed model.conf
var modelText string

const (
	ObjectClaim        = "claim"
	ObjectReview       = "review"
	ObjectReviewItem   = "review_item"
	ObjectPayment      = "payment"
	ObjectPolicy       = "policy"
	ObjectEmployer     = "employer"
	ObjectProvider     = "provider"
	ObjectUser         = "user"
	ObjectNotification = "notification"
	ObjectAuditLog     = "audit_log"
)

const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	db       *gorm.DB
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		db:       p.DB,
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

// Authorize answers whether the role may perform action on object. Ownership
// scoping (a policyholder seeing only their own claims) is the services' job;
// this layer decides the coarse role capability.
func (s *ServiceImpl) Authorize(ctx context.Context, role authdomain.Role, object string, action string) error {
	if !authdomain.ValidRole(role) {
		return ErrInvalidActor
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	subject := roleSubject(role)
	allowed, err := s.enforcer.Enforce(subject, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Debug("authorization denied",
			zap.String("subject", subject),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

func roleSubject(role authdomain.Role) string {
	return fmt.Sprintf("role:%s", strings.ToLower(string(role)))
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Policyholders submit and track their own claims. Row-level
		// scoping is enforced by the claim and payment services.
		{"role:policyholder", ObjectClaim, ActionView},
		{"role:policyholder", ObjectClaim, ActionCreate},
		{"role:policyholder", ObjectClaim, ActionUpdate},
		{"role:policyholder", ObjectReview, ActionView},
		{"role:policyholder", ObjectPayment, ActionView},
		{"role:policyholder", ObjectPolicy, ActionView},
		{"role:policyholder", ObjectNotification, ActionView},
		{"role:policyholder", ObjectNotification, ActionUpdate},

		// HR administers policies and employer rosters.
		{"role:hr", ObjectClaim, ActionView},
		{"role:hr", ObjectPolicy, ActionView},
		{"role:hr", ObjectPolicy, ActionCreate},
		{"role:hr", ObjectPolicy, ActionUpdate},
		{"role:hr", ObjectPolicy, ActionDelete},
		{"role:hr", ObjectEmployer, ActionView},
		{"role:hr", ObjectEmployer, ActionUpdate},
		{"role:hr", ObjectProvider, ActionView},
		{"role:hr", ObjectUser, ActionView},
		{"role:hr", ObjectNotification, ActionView},
		{"role:hr", ObjectNotification, ActionUpdate},

		// Finance schedules and settles payments.
		{"role:finance", ObjectClaim, ActionView},
		{"role:finance", ObjectPayment, ActionView},
		{"role:finance", ObjectPayment, ActionCreate},
		{"role:finance", ObjectPayment, ActionUpdate},
		{"role:finance", ObjectNotification, ActionView},
		{"role:finance", ObjectNotification, ActionUpdate},
	}

	// The three reviewer roles share one capability set; which stage a
	// reviewer may decide is enforced in the review service.
	for _, reviewer := range []string{"role:customer_service", "role:claims", "role:md"} {
		policies = append(policies,
			[]string{reviewer, ObjectClaim, ActionView},
			[]string{reviewer, ObjectClaim, ActionUpdate},
			[]string{reviewer, ObjectReview, ActionView},
			[]string{reviewer, ObjectReview, ActionCreate},
			[]string{reviewer, ObjectReview, ActionUpdate},
			[]string{reviewer, ObjectReviewItem, ActionView},
			[]string{reviewer, ObjectReviewItem, ActionCreate},
			[]string{reviewer, ObjectReviewItem, ActionUpdate},
			[]string{reviewer, ObjectPolicy, ActionView},
			[]string{reviewer, ObjectProvider, ActionView},
			[]string{reviewer, ObjectNotification, ActionView},
			[]string{reviewer, ObjectNotification, ActionUpdate},
		)
	}

	// Admin does everything except authoring reviews, which stays with
	// the three reviewer roles.
	for _, object := range []string{
		ObjectClaim, ObjectPolicy, ObjectEmployer, ObjectProvider, ObjectUser,
	} {
		for _, action := range []string{ActionView, ActionCreate, ActionUpdate, ActionDelete} {
			policies = append(policies, []string{"role:admin", object, action})
		}
	}
	policies = append(policies,
		[]string{"role:admin", ObjectReview, ActionView},
		[]string{"role:admin", ObjectReviewItem, ActionView},
		[]string{"role:admin", ObjectPayment, ActionView},
		[]string{"role:admin", ObjectPayment, ActionCreate},
		[]string{"role:admin", ObjectPayment, ActionUpdate},
		[]string{"role:admin", ObjectNotification, ActionView},
		[]string{"role:admin", ObjectNotification, ActionUpdate},
		[]string{"role:admin", ObjectAuditLog, ActionView},
	)

	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
