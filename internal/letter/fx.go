package letter

import (
	"github.com/lexdraftlabs/lexdraft/internal/letter/repository"
	"github.com/lexdraftlabs/lexdraft/internal/letter/service"
	"go.uber.org/fx"
)

var Module = fx.Module("letter",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
