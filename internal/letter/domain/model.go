package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	StatusReceived    = "received"
	StatusUnderReview = "under_review"
	StatusPosted      = "posted"
)

type Letter struct {
	ID            snowflake.ID   `json:"id" gorm:"primaryKey"`
	UserID        snowflake.ID   `json:"user_id" gorm:"not null;index"`
	Title         string         `json:"title" gorm:"type:text;not null"`
	Content       string         `json:"content" gorm:"type:text;not null"`
	SenderName    string         `json:"sender_name" gorm:"type:text"`
	SenderAddress string         `json:"sender_address" gorm:"type:text"`
	AttorneyName  string         `json:"attorney_name" gorm:"type:text"`
	RecipientName string         `json:"recipient_name" gorm:"type:text"`
	Matter        string         `json:"matter" gorm:"type:text"`
	Resolution    string         `json:"resolution" gorm:"type:text"`
	Status        string         `json:"status" gorm:"type:text;not null;default:received"`
	AIMeta        datatypes.JSON `json:"ai_meta" gorm:"type:jsonb"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func (Letter) TableName() string { return "letters" }

// ValidStatusTransition gates the admin review flow.
func ValidStatusTransition(from, to string) bool {
	switch from {
	case StatusReceived:
		return to == StatusUnderReview
	case StatusUnderReview:
		return to == StatusPosted
	default:
		return false
	}
}
