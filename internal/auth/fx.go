package auth

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/claimdesk/internal/auth/repository"
	"github.com/smallbiznis/claimdesk/internal/auth/service"
)

var Module = fx.Module("auth",
	fx.Provide(
		repository.NewUserRepository,
		repository.NewSessionRepository,
		service.New,
	),
)
