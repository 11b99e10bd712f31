package employer

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/claimdesk/internal/employer/repository"
	"github.com/smallbiznis/claimdesk/internal/employer/service"
)

var Module = fx.Module("employer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
