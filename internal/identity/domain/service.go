package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/lexdraftlabs/lexdraft/pkg/db/pagination"
	"gorm.io/gorm"
)

type SignupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult carries the profile and its freshly issued bearer token.
type AuthResult struct {
	Profile *Profile `json:"profile"`
	Token   string   `json:"token"`
}

type Service interface {
	Signup(ctx context.Context, req SignupRequest) (*AuthResult, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResult, error)
	GetProfile(ctx context.Context, id snowflake.ID) (*Profile, error)
}

type Repository interface {
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*Profile, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Profile, error)
	Insert(ctx context.Context, db *gorm.DB, profile *Profile) error
	InsertEmployeeMeta(ctx context.Context, db *gorm.DB, meta *EmployeeMeta) error
	FindEmployeeMeta(ctx context.Context, db *gorm.DB, profileID snowflake.ID) (*EmployeeMeta, error)

	// SetSubscriptionState overwrites the derived subscription columns.
	SetSubscriptionState(ctx context.Context, db *gorm.DB, id snowflake.ID, subscribed bool, plan *string) error

	// AccrueReferral applies relative increments so concurrent webhook
	// deliveries never lose updates.
	AccrueReferral(ctx context.Context, db *gorm.DB, id snowflake.ID, points int64, commission float64) error

	List(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]Profile, *pagination.PageInfo, error)
}
