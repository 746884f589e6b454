package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/lexdraftlabs/lexdraft/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, sub *Subscription) error
	FindByProviderSubscriptionID(ctx context.Context, db *gorm.DB, provider, providerSubscriptionID string) (*Subscription, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status string) error

	// ActivePlans lists the plans of a user's remaining active
	// subscriptions, newest first. The profile's derived subscription
	// columns are recomputed from this.
	ActivePlans(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]string, error)

	InsertTransaction(ctx context.Context, db *gorm.DB, txn *Transaction) error
	ListTransactions(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]Transaction, *pagination.PageInfo, error)
}
