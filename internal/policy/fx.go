package policy

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/claimdesk/internal/policy/repository"
	"github.com/smallbiznis/claimdesk/internal/policy/service"
)

var Module = fx.Module("policy.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
