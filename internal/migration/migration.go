// Package migration creates the schema on startup so the service is usable
// out of the box for local and self-hosted environments.
package migration

import (
	"errors"

	"gorm.io/gorm"

	auditdomain "github.com/smallbiznis/claimdesk/internal/audit/domain"
	authdomain "github.com/smallbiznis/claimdesk/internal/auth/domain"
	claimdomain "github.com/smallbiznis/claimdesk/internal/claim/domain"
	employerdomain "github.com/smallbiznis/claimdesk/internal/employer/domain"
	notificationdomain "github.com/smallbiznis/claimdesk/internal/notification/domain"
	paymentdomain "github.com/smallbiznis/claimdesk/internal/payment/domain"
	policydomain "github.com/smallbiznis/claimdesk/internal/policy/domain"
	providerdomain "github.com/smallbiznis/claimdesk/internal/provider/domain"
	reviewdomain "github.com/smallbiznis/claimdesk/internal/review/domain"
)

func RunMigrations(db *gorm.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}
	return db.AutoMigrate(
		&authdomain.User{},
		&authdomain.Session{},
		&employerdomain.Employer{},
		&providerdomain.Provider{},
		&policydomain.Policy{},
		&claimdomain.Claim{},
		&claimdomain.ClaimAttachment{},
		&reviewdomain.Review{},
		&reviewdomain.ReviewItem{},
		&paymentdomain.Payment{},
		&notificationdomain.Notification{},
		&auditdomain.AuditLog{},
	)
}
