package payment

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/claimdesk/internal/payment/repository"
	"github.com/smallbiznis/claimdesk/internal/payment/service"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
