package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/smallbiznis/claimdesk/internal/config"
	"github.com/smallbiznis/claimdesk/internal/seed"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if err := RunMigrations(conn); err != nil {
			return err
		}
		return seed.EnsureAdmin(conn, cfg)
	}),
)
