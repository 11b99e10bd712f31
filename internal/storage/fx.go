package storage

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/claimdesk/internal/config"
)

var Module = fx.Module("storage",
	fx.Provide(func(cfg config.Config) (Store, error) {
		return NewDiskStore(cfg.UploadDirectory)
	}),
)
