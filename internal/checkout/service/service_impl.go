package service

import (
	"context"
	"strings"

	"github.com/lexdraftlabs/lexdraft/internal/checkout/domain"
	"github.com/lexdraftlabs/lexdraft/internal/config"
	identitydomain "github.com/lexdraftlabs/lexdraft/internal/identity/domain"
	obsmetrics "github.com/lexdraftlabs/lexdraft/internal/observability/metrics"
	referraldomain "github.com/lexdraftlabs/lexdraft/internal/referral/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Cfg          config.Config
	Pricing      *config.PricingHolder
	ReferralRepo referraldomain.Repository
	Creator      domain.SessionCreator
	ObsMetrics   *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	cfg          config.Config
	pricing      *config.PricingHolder
	referralRepo referraldomain.Repository
	creator      domain.SessionCreator
	obsMetrics   *obsmetrics.Metrics
}

func NewService(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("checkout.service"),
		cfg:          p.Cfg,
		pricing:      p.Pricing,
		referralRepo: p.ReferralRepo,
		creator:      p.Creator,
		obsMetrics:   p.ObsMetrics,
	}
}

// CreateSession validates the plan and coupon, prices the line item and
// hands off to the provider. Nothing is persisted here; fulfillment is
// driven entirely by the provider's webhooks.
func (s *Service) CreateSession(ctx context.Context, user *identitydomain.Profile, req domain.CreateSessionRequest) (*domain.Session, error) {
	plan, ok := s.pricing.Plan(strings.TrimSpace(req.Plan))
	if !ok {
		return nil, domain.ErrInvalidPlan
	}

	metadata := map[string]string{
		"user_id": user.ID.String(),
		"plan":    plan.ID,
	}

	amount := plan.PriceCents
	couponCode := strings.ToUpper(strings.TrimSpace(req.CouponCode))
	if couponCode != "" {
		coupon, err := s.referralRepo.FindActiveByCode(ctx, s.db, couponCode)
		if err != nil {
			return nil, err
		}
		if coupon == nil {
			return nil, domain.ErrInvalidCoupon
		}

		discount := plan.PriceCents * coupon.PercentOff / 100
		amount -= discount
		if amount < 0 {
			amount = 0
		}

		metadata["coupon_code"] = coupon.Code
		if coupon.EmployeeID != nil {
			metadata["employee_id"] = coupon.EmployeeID.String()
		}
	}

	spec := domain.SessionSpec{
		Mode:            plan.Mode,
		Interval:        plan.Interval,
		PlanName:        plan.Name,
		PlanDescription: plan.Description,
		UnitAmountCents: amount,
		Currency:        "usd",
		CustomerEmail:   user.Email,
		SuccessURL:      firstNonEmpty(req.SuccessURL, s.cfg.CheckoutSuccessURL),
		CancelURL:       firstNonEmpty(req.CancelURL, s.cfg.CheckoutCancelURL),
		Metadata:        metadata,
	}

	session, err := s.creator.CreateSession(ctx, spec)
	if err != nil {
		return nil, err
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordCheckoutSession(plan.ID)
	}
	s.log.Info("checkout session created",
		zap.String("plan", plan.ID),
		zap.String("user_id", user.ID.String()),
		zap.Int64("amount_cents", amount),
	)
	return session, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
