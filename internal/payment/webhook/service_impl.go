package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/lexdraftlabs/lexdraft/internal/config"
	"github.com/lexdraftlabs/lexdraft/internal/payment/adapters"
	paymentdomain "github.com/lexdraftlabs/lexdraft/internal/payment/domain"
	paymentservice "github.com/lexdraftlabs/lexdraft/internal/payment/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log        *zap.Logger
	PaymentSvc *paymentservice.Service
	Adapters   *adapters.Registry
	Cfg        config.Config
}

// Service verifies incoming provider webhooks and hands the parsed
// event to the reconciler.
type Service struct {
	log        *zap.Logger
	paymentSvc *paymentservice.Service
	adapters   *adapters.Registry
	secrets    map[string]string
}

func NewService(p Params) paymentdomain.Service {
	return &Service{
		log:        p.Log.Named("payment.webhook"),
		paymentSvc: p.PaymentSvc,
		adapters:   p.Adapters,
		secrets: map[string]string{
			"stripe": strings.TrimSpace(p.Cfg.StripeWebhookSecret),
		},
	}
}

func (s *Service) IngestWebhook(ctx context.Context, provider string, payload []byte, headers http.Header) error {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return paymentdomain.ErrInvalidProvider
	}
	if !json.Valid(payload) {
		return paymentdomain.ErrInvalidPayload
	}

	secret, ok := s.secrets[provider]
	if !ok {
		return paymentdomain.ErrProviderNotFound
	}

	adapter, err := s.adapters.NewAdapter(paymentdomain.AdapterConfig{
		Provider:      provider,
		WebhookSecret: secret,
	})
	if err != nil {
		return err
	}

	if err := adapter.Verify(ctx, payload, headers); err != nil {
		s.log.Warn("webhook signature rejected", zap.String("provider", provider))
		return err
	}

	event, err := adapter.Parse(ctx, payload)
	if err != nil {
		return err
	}
	event.Provider = provider
	if event.RawPayload == nil {
		event.RawPayload = payload
	}

	return s.paymentSvc.ProcessEvent(ctx, event, payload)
}
