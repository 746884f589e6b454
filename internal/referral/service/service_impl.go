package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	identitydomain "github.com/lexdraftlabs/lexdraft/internal/identity/domain"
	"github.com/lexdraftlabs/lexdraft/internal/referral/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Repo         domain.Repository
	IdentityRepo identitydomain.Repository
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	repo         domain.Repository
	identityRepo identitydomain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("referral.service"),
		repo:         p.Repo,
		identityRepo: p.IdentityRepo,
	}
}

// EmployeeSummary aggregates the coupon's reconciled usage plus the
// accrued counters mirrored on the employee row.
func (s *Service) EmployeeSummary(ctx context.Context, employeeID snowflake.ID) (*domain.Summary, error) {
	coupon, err := s.repo.FindByEmployee(ctx, s.db, employeeID)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, domain.ErrNotFound
	}

	uses, revenue, commission, err := s.repo.UsageStats(ctx, s.db, coupon.Code)
	if err != nil {
		return nil, err
	}

	summary := &domain.Summary{
		CouponCode: coupon.Code,
		Uses:       uses,
		Revenue:    revenue,
		Commission: commission,
	}

	meta, err := s.identityRepo.FindEmployeeMeta(ctx, s.db, employeeID)
	if err != nil {
		return nil, err
	}
	if meta != nil {
		summary.Points = meta.Points
		summary.CommissionOwed = meta.CommissionEarned
	}

	return summary, nil
}
