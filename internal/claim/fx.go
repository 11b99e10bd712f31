package claim

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/claimdesk/internal/claim/repository"
	"github.com/smallbiznis/claimdesk/internal/claim/service"
)

var Module = fx.Module("claim.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
