package repository

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/lexdraftlabs/lexdraft/internal/identity/domain"
	"github.com/lexdraftlabs/lexdraft/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.Profile, error) {
	var item domain.Profile
	err := db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
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

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Profile, error) {
	var item domain.Profile
	err := db.WithContext(ctx).
		Where("id = ?", id).
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

func (r *repo) Insert(ctx context.Context, db *gorm.DB, profile *domain.Profile) error {
	return db.WithContext(ctx).Create(profile).Error
}

func (r *repo) InsertEmployeeMeta(ctx context.Context, db *gorm.DB, meta *domain.EmployeeMeta) error {
	return db.WithContext(ctx).Create(meta).Error
}

func (r *repo) FindEmployeeMeta(ctx context.Context, db *gorm.DB, profileID snowflake.ID) (*domain.EmployeeMeta, error) {
	var item domain.EmployeeMeta
	err := db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Limit(1).
		Find(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ProfileID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) SetSubscriptionState(ctx context.Context, db *gorm.DB, id snowflake.ID, subscribed bool, plan *string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE profiles
		 SET is_subscribed = ?, subscription_plan = ?, updated_at = ?
		 WHERE id = ?`,
		subscribed,
		plan,
		time.Now().UTC(),
		id,
	).Error
}

func (r *repo) AccrueReferral(ctx context.Context, db *gorm.DB, id snowflake.ID, points int64, commission float64) error {
	now := time.Now().UTC()
	if err := db.WithContext(ctx).Exec(
		`UPDATE profiles
		 SET points = points + ?, commission_earned = commission_earned + ?, updated_at = ?
		 WHERE id = ?`,
		points,
		commission,
		now,
		id,
	).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).Exec(
		`UPDATE employees_meta
		 SET points = points + ?, commission_earned = commission_earned + ?, updated_at = ?
		 WHERE profile_id = ?`,
		points,
		commission,
		now,
		id,
	).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]domain.Profile, *pagination.PageInfo, error) {
	limit := page.Limit()
	q := db.WithContext(ctx).
		Order("id DESC").
		Limit(limit + 1)
	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, nil, err
		}
		id, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return nil, nil, pagination.ErrInvalidPageToken
		}
		q = q.Where("id < ?", id)
	}

	var items []domain.Profile
	if err := q.Find(&items).Error; err != nil {
		return nil, nil, err
	}
	return pagination.BuildCursorPageInfo(items, limit, func(p domain.Profile) pagination.Cursor {
		return pagination.Cursor{ID: p.ID.String()}
	})
}
