package subscription

import (
	"github.com/lexdraftlabs/lexdraft/internal/subscription/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("subscription",
	fx.Provide(repository.Provide),
)
