package gemini

import (
	"github.com/lexdraftlabs/lexdraft/internal/config"
	letterdomain "github.com/lexdraftlabs/lexdraft/internal/letter/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("providers.gemini",
	fx.Provide(
		func(cfg config.Config, log *zap.Logger) *Client { return New(cfg, log) },
		func(c *Client) letterdomain.Generator { return c },
	),
)
