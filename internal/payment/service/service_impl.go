package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	identitydomain "github.com/lexdraftlabs/lexdraft/internal/identity/domain"
	obsmetrics "github.com/lexdraftlabs/lexdraft/internal/observability/metrics"
	paymentdomain "github.com/lexdraftlabs/lexdraft/internal/payment/domain"
	referraldomain "github.com/lexdraftlabs/lexdraft/internal/referral/domain"
	subscriptiondomain "github.com/lexdraftlabs/lexdraft/internal/subscription/domain"
	"github.com/lexdraftlabs/lexdraft/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Repo          paymentdomain.Repository
	Profiles      identitydomain.Repository
	Subscriptions subscriptiondomain.Repository
	Referrals     referraldomain.Repository
	Metrics       *obsmetrics.Metrics `optional:"true"`
}

// Service reconciles provider payment events against local state.
type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	repo          paymentdomain.Repository
	profiles      identitydomain.Repository
	subscriptions subscriptiondomain.Repository
	referrals     referraldomain.Repository
	metrics       *obsmetrics.Metrics
}

func NewService(p Params) *Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("payment.service"),
		genID:         p.GenID,
		repo:          p.Repo,
		profiles:      p.Profiles,
		subscriptions: p.Subscriptions,
		referrals:     p.Referrals,
		metrics:       p.Metrics,
	}
}

// ProcessEvent records the event exactly once and applies its side
// effects inside a single transaction. Replays of a processed event
// return ErrEventAlreadyProcessed.
func (s *Service) ProcessEvent(ctx context.Context, event *paymentdomain.PaymentEvent, payload []byte) error {
	if event == nil {
		return paymentdomain.ErrInvalidEvent
	}
	event.Provider = strings.ToLower(strings.TrimSpace(event.Provider))
	if event.Provider == "" {
		return paymentdomain.ErrInvalidProvider
	}
	if !json.Valid(payload) {
		return paymentdomain.ErrInvalidPayload
	}
	if err := validateEvent(event); err != nil {
		return err
	}

	now := time.Now().UTC()
	received := paymentdomain.EventRecord{
		ID:              s.genID.Generate(),
		Provider:        event.Provider,
		ProviderEventID: event.ProviderEventID,
		EventType:       event.Type,
		Payload:         datatypes.JSON(payload),
		ReceivedAt:      now,
	}

	inserted, err := s.repo.InsertEvent(ctx, s.db, &received)
	if err != nil {
		return err
	}
	stored := &received
	if !inserted {
		stored, err = s.repo.FindEvent(ctx, s.db, event.Provider, event.ProviderEventID)
		if err != nil {
			return err
		}
		if stored == nil {
			return paymentdomain.ErrInvalidEvent
		}
		if stored.ProcessedAt != nil {
			return paymentdomain.ErrEventAlreadyProcessed
		}
	}

	outcome := "processed"
	if event.Type == paymentdomain.EventTypeIgnored {
		outcome = "ignored"
	} else {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			switch event.Type {
			case paymentdomain.EventTypeCheckoutCompleted:
				return s.applyCheckout(ctx, tx, event)
			case paymentdomain.EventTypePaymentSucceeded:
				return s.applyPaymentSucceeded(ctx, tx, event)
			case paymentdomain.EventTypePaymentFailed:
				return s.applyPaymentFailed(ctx, tx, event)
			default:
				return paymentdomain.ErrInvalidEvent
			}
		})
		if err != nil {
			return err
		}
	}

	if err := s.repo.MarkProcessed(ctx, s.db, stored.ID, now); err != nil {
		return err
	}

	s.metrics.RecordPaymentEvent(event.Provider, event.Type, outcome)
	return nil
}

func validateEvent(event *paymentdomain.PaymentEvent) error {
	event.ProviderEventID = strings.TrimSpace(event.ProviderEventID)
	if event.ProviderEventID == "" {
		return paymentdomain.ErrInvalidEvent
	}
	event.Type = strings.TrimSpace(event.Type)
	if event.Type == "" {
		return paymentdomain.ErrInvalidEvent
	}
	if event.OccurredAt.IsZero() {
		return paymentdomain.ErrInvalidEvent
	}

	switch event.Type {
	case paymentdomain.EventTypeCheckoutCompleted:
		if event.UserID == 0 || strings.TrimSpace(event.Plan) == "" {
			return paymentdomain.ErrInvalidMetadata
		}
		if strings.TrimSpace(event.SessionID) == "" {
			return paymentdomain.ErrInvalidEvent
		}
	case paymentdomain.EventTypePaymentSucceeded, paymentdomain.EventTypePaymentFailed:
		if strings.TrimSpace(event.SubscriptionID) == "" {
			return paymentdomain.ErrInvalidEvent
		}
	case paymentdomain.EventTypeIgnored:
	default:
		return paymentdomain.ErrInvalidEvent
	}
	return nil
}

// applyCheckout activates the plan, records the transaction and, when a
// valid coupon rode along, credits the referring employee. The coupon is
// re-fetched here rather than trusted from checkout metadata.
func (s *Service) applyCheckout(ctx context.Context, tx *gorm.DB, event *paymentdomain.PaymentEvent) error {
	sub := &subscriptiondomain.Subscription{
		ID:                     s.genID.Generate(),
		UserID:                 event.UserID,
		Plan:                   event.Plan,
		Status:                 subscriptiondomain.StatusActive,
		Provider:               event.Provider,
		ProviderSessionID:      event.SessionID,
		ProviderSubscriptionID: event.SubscriptionID,
	}
	if err := s.subscriptions.Insert(ctx, tx, sub); err != nil {
		if db.IsDuplicateKeyErr(err) {
			// Same session delivered under a second event id. The
			// first delivery already settled everything.
			s.log.Info("checkout session already reconciled",
				zap.String("provider", event.Provider),
				zap.String("session_id", event.SessionID),
			)
			return nil
		}
		return err
	}

	if err := s.profiles.SetSubscriptionState(ctx, tx, event.UserID, true, &event.Plan); err != nil {
		return err
	}

	coupon, err := s.resolveCoupon(ctx, tx, event)
	if err != nil {
		return err
	}

	txn := &subscriptiondomain.Transaction{
		ID:                s.genID.Generate(),
		UserID:            event.UserID,
		SubscriptionID:    sub.ID,
		Plan:              event.Plan,
		AmountCents:       event.AmountTotal,
		Currency:          event.Currency,
		Provider:          event.Provider,
		ProviderSessionID: event.SessionID,
	}
	if code := strings.TrimSpace(event.CouponCode); code != "" {
		txn.CouponCode = &code
	}
	if coupon != nil {
		couponID := coupon.ID
		txn.CouponID = &couponID
		txn.EmployeeID = coupon.EmployeeID
	}
	if err := s.subscriptions.InsertTransaction(ctx, tx, txn); err != nil {
		return err
	}

	if coupon == nil {
		return nil
	}
	return s.creditReferral(ctx, tx, event, coupon, sub.ID)
}

// resolveCoupon looks up the coupon named in the checkout metadata. An
// unknown or inactive code is logged and dropped; the purchase itself
// still settles.
func (s *Service) resolveCoupon(ctx context.Context, tx *gorm.DB, event *paymentdomain.PaymentEvent) (*referraldomain.Coupon, error) {
	code := strings.TrimSpace(event.CouponCode)
	if code == "" {
		return nil, nil
	}

	coupon, err := s.referrals.FindActiveByCode(ctx, tx, code)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		s.log.Warn("checkout carried unknown coupon code",
			zap.String("coupon_code", code),
			zap.String("session_id", event.SessionID),
		)
	}
	return coupon, nil
}

func (s *Service) creditReferral(ctx context.Context, tx *gorm.DB, event *paymentdomain.PaymentEvent, coupon *referraldomain.Coupon, subscriptionID snowflake.ID) error {
	revenue := float64(event.AmountTotal) / 100
	commission := revenue * referraldomain.CommissionRate

	usage := &referraldomain.CouponUsage{
		ID:             s.genID.Generate(),
		CouponID:       coupon.ID,
		CouponCode:     coupon.Code,
		EmployeeID:     coupon.EmployeeID,
		UserID:         event.UserID,
		SubscriptionID: subscriptionID,
		Revenue:        revenue,
		Commission:     commission,
	}
	if err := s.referrals.InsertUsage(ctx, tx, usage); err != nil {
		return err
	}

	if coupon.EmployeeID != nil && *coupon.EmployeeID != 0 {
		if err := s.profiles.AccrueReferral(ctx, tx, *coupon.EmployeeID, 1, commission); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) applyPaymentSucceeded(ctx context.Context, tx *gorm.DB, event *paymentdomain.PaymentEvent) error {
	sub, err := s.subscriptions.FindByProviderSubscriptionID(ctx, tx, event.Provider, event.SubscriptionID)
	if err != nil {
		return err
	}
	if sub == nil {
		s.log.Warn("renewal for unknown subscription",
			zap.String("provider", event.Provider),
			zap.String("subscription_id", event.SubscriptionID),
		)
		return nil
	}

	if err := s.subscriptions.UpdateStatus(ctx, tx, sub.ID, subscriptiondomain.StatusActive); err != nil {
		return err
	}
	return s.profiles.SetSubscriptionState(ctx, tx, sub.UserID, true, &sub.Plan)
}

func (s *Service) applyPaymentFailed(ctx context.Context, tx *gorm.DB, event *paymentdomain.PaymentEvent) error {
	sub, err := s.subscriptions.FindByProviderSubscriptionID(ctx, tx, event.Provider, event.SubscriptionID)
	if err != nil {
		return err
	}
	if sub == nil {
		s.log.Warn("payment failure for unknown subscription",
			zap.String("provider", event.Provider),
			zap.String("subscription_id", event.SubscriptionID),
		)
		return nil
	}

	if err := s.subscriptions.UpdateStatus(ctx, tx, sub.ID, subscriptiondomain.StatusCancelled); err != nil {
		return err
	}

	// The profile's derived columns follow whatever active subscriptions
	// remain, so cancelling one plan never strips access granted by another.
	plans, err := s.subscriptions.ActivePlans(ctx, tx, sub.UserID)
	if err != nil {
		return err
	}
	if len(plans) > 0 {
		return s.profiles.SetSubscriptionState(ctx, tx, sub.UserID, true, &plans[0])
	}
	return s.profiles.SetSubscriptionState(ctx, tx, sub.UserID, false, nil)
}
