package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrInvalidRequest    = errors.New("invalid_request")
	ErrGenerationFailed  = errors.New("generation_failed")
	ErrGenerationParse   = errors.New("generation_parse")
	ErrGenerationTimeout = errors.New("generation_timeout")
	ErrNotFound          = errors.New("letter_not_found")
	ErrInvalidTransition = errors.New("invalid_status_transition")
)

// GenerateRequest carries the caller's drafting inputs. SenderName,
// AttorneyName, RecipientName, Matter and Resolution are required.
type GenerateRequest struct {
	Title         string `json:"title"`
	SenderName    string `json:"sender_name"`
	SenderAddress string `json:"sender_address"`
	AttorneyName  string `json:"attorney_name"`
	RecipientName string `json:"recipient_name"`
	Matter        string `json:"matter"`
	Resolution    string `json:"resolution"`
	Jurisdiction  string `json:"jurisdiction"`
	Tone          string `json:"tone"`
	Date          string `json:"date"`
	ExtraNotes    string `json:"extra_notes"`
}

// Generator produces raw model text for a drafting prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Service interface {
	Generate(ctx context.Context, userID snowflake.ID, req GenerateRequest) (*Letter, error)
	ListForUser(ctx context.Context, userID snowflake.ID) ([]Letter, error)
	UpdateStatus(ctx context.Context, id snowflake.ID, status string) (*Letter, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, letter *Letter) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Letter, error)
	ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]Letter, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status string) error
}
