package notification

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/claimdesk/internal/notification/repository"
	"github.com/smallbiznis/claimdesk/internal/notification/service"
)

var Module = fx.Module("notification.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
