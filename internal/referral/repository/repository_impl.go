package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/lexdraftlabs/lexdraft/internal/referral/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, coupon *domain.Coupon) error {
	return db.WithContext(ctx).Create(coupon).Error
}

func (r *repo) FindActiveByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Coupon, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, nil
	}
	var item domain.Coupon
	err := db.WithContext(ctx).
		Where("code = ? AND active = ?", code, true).
		Limit(1).
		Find(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) FindByEmployee(ctx context.Context, db *gorm.DB, employeeID snowflake.ID) (*domain.Coupon, error) {
	var item domain.Coupon
	err := db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Limit(1).
		Find(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) InsertUsage(ctx context.Context, db *gorm.DB, usage *domain.CouponUsage) error {
	return db.WithContext(ctx).Create(usage).Error
}

func (r *repo) UsageStats(ctx context.Context, db *gorm.DB, couponCode string) (int64, float64, float64, error) {
	var row struct {
		Uses       int64
		Revenue    float64
		Commission float64
	}
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) AS uses,
			COALESCE(SUM(revenue), 0) AS revenue,
			COALESCE(SUM(commission), 0) AS commission
		 FROM coupon_usage
		 WHERE coupon_code = ?`,
		strings.ToUpper(strings.TrimSpace(couponCode)),
	).Scan(&row).Error
	if err != nil {
		return 0, 0, 0, err
	}
	return row.Uses, row.Revenue, row.Commission, nil
}
