package review

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/claimdesk/internal/review/repository"
	"github.com/smallbiznis/claimdesk/internal/review/service"
)

var Module = fx.Module("review.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
