package domain

import (
	"context"
	"errors"

	identitydomain "github.com/lexdraftlabs/lexdraft/internal/identity/domain"
)

var (
	ErrInvalidPlan   = errors.New("invalid_plan")
	ErrInvalidCoupon = errors.New("invalid_coupon")
)

type CreateSessionRequest struct {
	Plan       string `json:"plan"`
	CouponCode string `json:"coupon_code"`
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
}

// Session is the provider-hosted checkout the caller is redirected to.
type Session struct {
	ID  string `json:"session_id"`
	URL string `json:"url"`
}

// SessionSpec is everything the provider needs to host the checkout.
// UnitAmountCents is already net of any coupon discount.
type SessionSpec struct {
	Mode            string
	Interval        string
	PlanName        string
	PlanDescription string
	UnitAmountCents int64
	Currency        string
	CustomerEmail   string
	SuccessURL      string
	CancelURL       string
	Metadata        map[string]string
}

// SessionCreator talks to the payment provider.
type SessionCreator interface {
	CreateSession(ctx context.Context, spec SessionSpec) (*Session, error)
}

type Service interface {
	CreateSession(ctx context.Context, user *identitydomain.Profile, req CreateSessionRequest) (*Session, error)
}
