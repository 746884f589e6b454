package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	StatusActive    = "active"
	StatusCancelled = "cancelled"
)

type Subscription struct {
	ID                     snowflake.ID `json:"id" gorm:"primaryKey"`
	UserID                 snowflake.ID `json:"user_id" gorm:"not null;index"`
	Plan                   string       `json:"plan" gorm:"type:text;not null"`
	Status                 string       `json:"status" gorm:"type:text;not null"`
	Provider               string       `json:"provider" gorm:"type:text;not null;default:stripe"`
	ProviderSessionID      string       `json:"provider_session_id" gorm:"type:text;uniqueIndex"`
	ProviderSubscriptionID string       `json:"provider_subscription_id" gorm:"type:text;index"`
	CreatedAt              time.Time    `json:"created_at"`
	UpdatedAt              time.Time    `json:"updated_at"`
}

func (Subscription) TableName() string { return "subscriptions" }

// Transaction is the immutable record of one settled checkout. Coupon and
// employee references are resolved at reconciliation time so every
// commission can be traced back to the subscription it settled.
type Transaction struct {
	ID                snowflake.ID  `json:"id" gorm:"primaryKey"`
	UserID            snowflake.ID  `json:"user_id" gorm:"not null;index"`
	SubscriptionID    snowflake.ID  `json:"subscription_id" gorm:"not null;index"`
	Plan              string        `json:"plan" gorm:"type:text;not null"`
	AmountCents       int64         `json:"amount_cents" gorm:"not null"`
	Currency          string        `json:"currency" gorm:"type:text;not null;default:usd"`
	CouponID          *snowflake.ID `json:"coupon_id"`
	CouponCode        *string       `json:"coupon_code" gorm:"type:text"`
	EmployeeID        *snowflake.ID `json:"employee_id"`
	CommissionPaid    bool          `json:"commission_paid" gorm:"not null;default:false"`
	Provider          string        `json:"provider" gorm:"type:text;not null;default:stripe"`
	ProviderSessionID string        `json:"provider_session_id" gorm:"type:text"`
	CreatedAt         time.Time     `json:"created_at"`
}

func (Transaction) TableName() string { return "transactions" }
