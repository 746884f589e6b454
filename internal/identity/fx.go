package identity

import (
	"github.com/lexdraftlabs/lexdraft/internal/identity/repository"
	"github.com/lexdraftlabs/lexdraft/internal/identity/service"
	"go.uber.org/fx"
)

var Module = fx.Module("identity",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
