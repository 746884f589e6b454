package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	RoleUser     = "user"
	RoleEmployee = "employee"
	RoleAdmin    = "admin"
)

type Profile struct {
	ID               snowflake.ID `json:"id" gorm:"primaryKey"`
	Email            string       `json:"email" gorm:"type:text;not null;uniqueIndex"`
	Name             string       `json:"name" gorm:"type:text;not null"`
	PasswordHash     string       `json:"-" gorm:"type:text;not null"`
	Role             string       `json:"role" gorm:"type:text;not null;default:user"`
	IsSubscribed     bool         `json:"is_subscribed" gorm:"not null;default:false"`
	SubscriptionPlan *string      `json:"subscription_plan" gorm:"type:text"`
	Points           int64        `json:"points" gorm:"not null;default:0"`
	CommissionEarned float64      `json:"commission_earned" gorm:"not null;default:0"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }

// EmployeeMeta mirrors the referral counters on the profile so the
// employee dashboard can be served from one narrow row.
type EmployeeMeta struct {
	ProfileID        snowflake.ID `json:"profile_id" gorm:"primaryKey"`
	CouponCode       string       `json:"coupon_code" gorm:"type:text;not null;uniqueIndex"`
	Points           int64        `json:"points" gorm:"not null;default:0"`
	CommissionEarned float64      `json:"commission_earned" gorm:"not null;default:0"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

func (EmployeeMeta) TableName() string { return "employees_meta" }

func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleEmployee, RoleAdmin:
		return true
	default:
		return false
	}
}
