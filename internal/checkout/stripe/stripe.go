package stripe

import (
	"context"
	"strings"

	checkoutdomain "github.com/lexdraftlabs/lexdraft/internal/checkout/domain"
	"github.com/lexdraftlabs/lexdraft/internal/config"
	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
)

// Creator hosts checkouts on Stripe Checkout.
type Creator struct{}

func NewCreator(cfg config.Config) *Creator {
	stripe.Key = strings.TrimSpace(cfg.StripeSecretKey)
	return &Creator{}
}

func (c *Creator) CreateSession(ctx context.Context, spec checkoutdomain.SessionSpec) (*checkoutdomain.Session, error) {
	priceData := &stripe.CheckoutSessionLineItemPriceDataParams{
		Currency: stripe.String(spec.Currency),
		ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name:        stripe.String(spec.PlanName),
			Description: stripe.String(spec.PlanDescription),
		},
		UnitAmount: stripe.Int64(spec.UnitAmountCents),
	}
	if spec.Mode == config.PlanModeSubscription {
		priceData.Recurring = &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
			Interval: stripe.String(spec.Interval),
		}
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(spec.Mode),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(spec.SuccessURL),
		CancelURL:          stripe.String(spec.CancelURL),
		CustomerEmail:      stripe.String(spec.CustomerEmail),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: priceData,
				Quantity:  stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	for key, value := range spec.Metadata {
		params.AddMetadata(key, value)
	}

	sess, err := session.New(params)
	if err != nil {
		return nil, err
	}
	return &checkoutdomain.Session{ID: sess.ID, URL: sess.URL}, nil
}

var _ checkoutdomain.SessionCreator = (*Creator)(nil)
