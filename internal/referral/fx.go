package referral

import (
	"github.com/lexdraftlabs/lexdraft/internal/referral/repository"
	"github.com/lexdraftlabs/lexdraft/internal/referral/service"
	"go.uber.org/fx"
)

var Module = fx.Module("referral",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
