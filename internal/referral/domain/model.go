package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	// DefaultPercentOff is the discount attached to every employee coupon.
	DefaultPercentOff = 20

	// CommissionRate is the employee's cut of the gross revenue in major units.
	CommissionRate = 0.05
)

var (
	ErrInvalidCoupon = errors.New("invalid_coupon")
	ErrNotFound      = errors.New("coupon_not_found")
)

type Coupon struct {
	ID         snowflake.ID  `json:"id" gorm:"primaryKey"`
	Code       string        `json:"code" gorm:"type:text;not null;uniqueIndex"`
	PercentOff int64         `json:"percent_off" gorm:"not null"`
	EmployeeID *snowflake.ID `json:"employee_id"`
	Active     bool          `json:"active" gorm:"not null;default:true"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

func (Coupon) TableName() string { return "coupons" }

// CouponUsage records one reconciled purchase attributed to a coupon.
// Revenue and commission are kept in major currency units.
type CouponUsage struct {
	ID             snowflake.ID  `json:"id" gorm:"primaryKey"`
	CouponID       snowflake.ID  `json:"coupon_id" gorm:"not null;index"`
	CouponCode     string        `json:"coupon_code" gorm:"type:text;not null;index"`
	EmployeeID     *snowflake.ID `json:"employee_id" gorm:"index"`
	UserID         snowflake.ID  `json:"user_id" gorm:"not null"`
	SubscriptionID snowflake.ID  `json:"subscription_id" gorm:"not null;index"`
	Revenue        float64       `json:"revenue" gorm:"not null;default:0"`
	Commission     float64       `json:"commission" gorm:"not null;default:0"`
	CreatedAt      time.Time     `json:"created_at"`
}

func (CouponUsage) TableName() string { return "coupon_usage" }

// Summary aggregates a coupon's reconciled usage for the employee dashboard.
type Summary struct {
	CouponCode     string  `json:"coupon_code"`
	Uses           int64   `json:"uses"`
	Revenue        float64 `json:"revenue"`
	Commission     float64 `json:"commission"`
	Points         int64   `json:"points"`
	CommissionOwed float64 `json:"commission_owed"`
}
