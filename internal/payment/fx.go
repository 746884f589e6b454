package payment

import (
	"github.com/lexdraftlabs/lexdraft/internal/payment/adapters"
	"github.com/lexdraftlabs/lexdraft/internal/payment/adapters/stripe"
	"github.com/lexdraftlabs/lexdraft/internal/payment/repository"
	paymentservice "github.com/lexdraftlabs/lexdraft/internal/payment/service"
	"github.com/lexdraftlabs/lexdraft/internal/payment/webhook"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(func() *adapters.Registry {
		return adapters.NewRegistry(
			stripe.NewFactory(),
		)
	}),
	fx.Provide(paymentservice.NewService),
	fx.Provide(webhook.NewService),
)
