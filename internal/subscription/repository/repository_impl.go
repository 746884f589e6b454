package repository

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/lexdraftlabs/lexdraft/internal/subscription/domain"
	"github.com/lexdraftlabs/lexdraft/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, sub *domain.Subscription) error {
	return db.WithContext(ctx).Create(sub).Error
}

func (r *repo) FindByProviderSubscriptionID(ctx context.Context, db *gorm.DB, provider, providerSubscriptionID string) (*domain.Subscription, error) {
	providerSubscriptionID = strings.TrimSpace(providerSubscriptionID)
	if providerSubscriptionID == "" {
		return nil, nil
	}
	var item domain.Subscription
	err := db.WithContext(ctx).
		Where("provider = ? AND provider_subscription_id = ?", provider, providerSubscriptionID).
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

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE subscriptions
		 SET status = ?, updated_at = ?
		 WHERE id = ?`,
		status,
		time.Now().UTC(),
		id,
	).Error
}

func (r *repo) ActivePlans(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]string, error) {
	var plans []string
	err := db.WithContext(ctx).Raw(
		`SELECT plan
		 FROM subscriptions
		 WHERE user_id = ? AND status = ?
		 ORDER BY created_at DESC`,
		userID,
		domain.StatusActive,
	).Scan(&plans).Error
	if err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *repo) InsertTransaction(ctx context.Context, db *gorm.DB, txn *domain.Transaction) error {
	return db.WithContext(ctx).Create(txn).Error
}

func (r *repo) ListTransactions(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]domain.Transaction, *pagination.PageInfo, error) {
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

	var items []domain.Transaction
	if err := q.Find(&items).Error; err != nil {
		return nil, nil, err
	}
	return pagination.BuildCursorPageInfo(items, limit, func(t domain.Transaction) pagination.Cursor {
		return pagination.Cursor{ID: t.ID.String()}
	})
}
