package provider

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/claimdesk/internal/provider/repository"
	"github.com/smallbiznis/claimdesk/internal/provider/service"
)

var Module = fx.Module("provider.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
