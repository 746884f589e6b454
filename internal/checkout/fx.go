package checkout

import (
	checkoutdomain "github.com/lexdraftlabs/lexdraft/internal/checkout/domain"
	"github.com/lexdraftlabs/lexdraft/internal/checkout/service"
	checkoutstripe "github.com/lexdraftlabs/lexdraft/internal/checkout/stripe"
	"go.uber.org/fx"
)

var Module = fx.Module("checkout",
	fx.Provide(
		checkoutstripe.NewCreator,
		func(c *checkoutstripe.Creator) checkoutdomain.SessionCreator { return c },
	),
	fx.Provide(service.NewService),
)
