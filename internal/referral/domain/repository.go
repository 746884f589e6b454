package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, coupon *Coupon) error

	// FindActiveByCode is the authoritative lookup the reconciler uses;
	// checkout metadata is never trusted for discount or attribution.
	FindActiveByCode(ctx context.Context, db *gorm.DB, code string) (*Coupon, error)

	FindByEmployee(ctx context.Context, db *gorm.DB, employeeID snowflake.ID) (*Coupon, error)
	InsertUsage(ctx context.Context, db *gorm.DB, usage *CouponUsage) error
	UsageStats(ctx context.Context, db *gorm.DB, couponCode string) (uses int64, revenue float64, commission float64, err error)
}

type Service interface {
	EmployeeSummary(ctx context.Context, employeeID snowflake.ID) (*Summary, error)
}
