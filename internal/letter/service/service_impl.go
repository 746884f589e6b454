package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/lexdraftlabs/lexdraft/internal/letter/domain"
	obsmetrics "github.com/lexdraftlabs/lexdraft/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       domain.Repository
	Generator  domain.Generator
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       domain.Repository
	generator  domain.Generator
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("letter.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		generator:  p.Generator,
		obsMetrics: p.ObsMetrics,
	}
}

// aiOutput is the subset of the generated object that feeds persisted
// columns. The full object is stored in ai_meta.
type aiOutput struct {
	Title         string `json:"title"`
	Content       string `json:"content"`
	SenderName    string `json:"sender_name"`
	SenderAddress string `json:"sender_address"`
	AttorneyName  string `json:"attorney_name"`
	RecipientName string `json:"recipient_name"`
	Matter        string `json:"matter"`
	Resolution    string `json:"resolution"`
}

func (s *Service) Generate(ctx context.Context, userID snowflake.ID, req domain.GenerateRequest) (*domain.Letter, error) {
	if err := validateRequest(req); err != nil {
		s.recordOutcome("invalid_request")
		return nil, err
	}

	prompt := buildPrompt(req, time.Now())
	raw, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.recordOutcome("generation_error")
		return nil, err
	}

	jsonText, err := extractFirstJSON(raw)
	if err != nil {
		s.recordOutcome("parse_error")
		return nil, err
	}

	var out aiOutput
	if err := json.Unmarshal([]byte(jsonText), &out); err != nil {
		s.recordOutcome("parse_error")
		return nil, domain.ErrGenerationParse
	}
	if strings.TrimSpace(out.Content) == "" || strings.TrimSpace(out.Title) == "" {
		s.recordOutcome("parse_error")
		return nil, domain.ErrGenerationParse
	}

	letter := &domain.Letter{
		ID:            s.genID.Generate(),
		UserID:        userID,
		Title:         firstNonEmpty(out.Title, req.Title, "Untitled Letter"),
		Content:       out.Content,
		SenderName:    firstNonEmpty(out.SenderName, req.SenderName),
		SenderAddress: firstNonEmpty(out.SenderAddress, req.SenderAddress),
		AttorneyName:  firstNonEmpty(out.AttorneyName, req.AttorneyName),
		RecipientName: firstNonEmpty(out.RecipientName, req.RecipientName),
		Matter:        firstNonEmpty(out.Matter, req.Matter),
		Resolution:    firstNonEmpty(out.Resolution, req.Resolution),
		Status:        domain.StatusReceived,
		AIMeta:        datatypes.JSON(jsonText),
	}

	if err := s.repo.Insert(ctx, s.db, letter); err != nil {
		s.recordOutcome("store_error")
		return nil, err
	}

	s.recordOutcome("ok")
	s.log.Info("letter drafted",
		zap.String("letter_id", letter.ID.String()),
		zap.String("user_id", userID.String()),
	)
	return letter, nil
}

func (s *Service) ListForUser(ctx context.Context, userID snowflake.ID) ([]domain.Letter, error) {
	return s.repo.ListByUser(ctx, s.db, userID)
}

func (s *Service) UpdateStatus(ctx context.Context, id snowflake.ID, status string) (*domain.Letter, error) {
	letter, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if letter == nil {
		return nil, domain.ErrNotFound
	}
	if !domain.ValidStatusTransition(letter.Status, status) {
		return nil, domain.ErrInvalidTransition
	}
	if err := s.repo.UpdateStatus(ctx, s.db, id, status); err != nil {
		return nil, err
	}
	letter.Status = status
	return letter, nil
}

func validateRequest(req domain.GenerateRequest) error {
	required := []string{
		req.SenderName,
		req.AttorneyName,
		req.RecipientName,
		req.Matter,
		req.Resolution,
	}
	for _, value := range required {
		if strings.TrimSpace(value) == "" {
			return domain.ErrInvalidRequest
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func (s *Service) recordOutcome(outcome string) {
	if s.obsMetrics != nil {
		s.obsMetrics.RecordLetterGenerated(outcome)
	}
}
