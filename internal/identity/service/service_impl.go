package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/lexdraftlabs/lexdraft/internal/auth"
	"github.com/lexdraftlabs/lexdraft/internal/identity/domain"
	referraldomain "github.com/lexdraftlabs/lexdraft/internal/referral/domain"
	"github.com/lexdraftlabs/lexdraft/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const couponPrefix = "SAVE20"

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Repo         domain.Repository
	ReferralRepo referraldomain.Repository
	Tokens       *auth.Manager
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	repo         domain.Repository
	referralRepo referraldomain.Repository
	tokens       *auth.Manager
}

func NewService(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("identity.service"),
		genID:        p.GenID,
		repo:         p.Repo,
		referralRepo: p.ReferralRepo,
		tokens:       p.Tokens,
	}
}

func (s *Service) Signup(ctx context.Context, req domain.SignupRequest) (*domain.AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Name)
	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = domain.RoleUser
	}
	if email == "" || name == "" || len(req.Password) < 8 || !domain.ValidRole(role) {
		return nil, domain.ErrInvalidRequest
	}

	existing, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	profile := &domain.Profile{
		ID:           s.genID.Generate(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         role,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, profile); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrUserExists
			}
			return err
		}
		if role != domain.RoleEmployee {
			return nil
		}

		code := DeriveCouponCode(name)
		employeeID := profile.ID
		coupon := &referraldomain.Coupon{
			ID:         s.genID.Generate(),
			Code:       code,
			PercentOff: referraldomain.DefaultPercentOff,
			EmployeeID: &employeeID,
			Active:     true,
		}
		if err := s.referralRepo.Insert(ctx, tx, coupon); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrCouponCodeTaken
			}
			return err
		}
		meta := &domain.EmployeeMeta{
			ProfileID:  profile.ID,
			CouponCode: code,
		}
		if err := s.repo.InsertEmployeeMeta(ctx, tx, meta); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrCouponCodeTaken
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(profile.ID, profile.Role)
	if err != nil {
		return nil, err
	}

	s.log.Info("profile created",
		zap.String("profile_id", profile.ID.String()),
		zap.String("role", profile.Role),
	)
	return &domain.AuthResult{Profile: profile, Token: token}, nil
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	profile, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		// Burn a comparison anyway so missing accounts cost the same.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$0000000000000000000000"), []byte(req.Password))
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(req.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(profile.ID, profile.Role)
	if err != nil {
		return nil, err
	}
	return &domain.AuthResult{Profile: profile, Token: token}, nil
}

func (s *Service) GetProfile(ctx context.Context, id snowflake.ID) (*domain.Profile, error) {
	profile, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, domain.ErrNotFound
	}
	return profile, nil
}

// DeriveCouponCode builds the employee coupon code from the display name:
// the fixed prefix plus the first six characters of the upper-cased name
// with all whitespace removed.
func DeriveCouponCode(name string) string {
	stripped := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		default:
			return r
		}
	}, strings.ToUpper(name))

	runes := []rune(stripped)
	if len(runes) > 6 {
		runes = runes[:6]
	}
	return couponPrefix + string(runes)
}
