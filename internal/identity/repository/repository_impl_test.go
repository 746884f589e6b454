package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/lexdraftlabs/lexdraft/pkg/db/pagination"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestListPagesThroughProfiles(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	node := newNode(t)
	repo := Provide()

	for i := 0; i < 5; i++ {
		seedProfile(t, db, node, fmt.Sprintf("user%d@example.com", i))
	}

	first, info, err := repo.List(ctx, db, pagination.Pagination{PageSize: 2})
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(first) != 2 || !info.HasMore || info.NextPageToken == "" {
		t.Fatalf("expected a full first page with a next token, got %d rows, has_more=%v", len(first), info.HasMore)
	}
	// Newest rows come first.
	if first[0].Email != "user4@example.com" {
		t.Fatalf("expected newest profile first, got %s", first[0].Email)
	}

	second, info, err := repo.List(ctx, db, pagination.Pagination{PageSize: 2, PageToken: info.NextPageToken})
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(second) != 2 || !info.HasMore {
		t.Fatalf("expected a full second page, got %d rows, has_more=%v", len(second), info.HasMore)
	}
	if second[0].ID >= first[1].ID {
		t.Fatalf("expected second page to continue past the first")
	}

	last, info, err := repo.List(ctx, db, pagination.Pagination{PageSize: 2, PageToken: info.NextPageToken})
	if err != nil {
		t.Fatalf("last page: %v", err)
	}
	if len(last) != 1 || info.HasMore || info.NextPageToken != "" {
		t.Fatalf("expected a final short page, got %d rows, has_more=%v", len(last), info.HasMore)
	}
}

func TestListRejectsBadPageToken(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := Provide()

	_, _, err := repo.List(ctx, db, pagination.Pagination{PageToken: "%%%not-a-token%%%"})
	if !errors.Is(err, pagination.ErrInvalidPageToken) {
		t.Fatalf("expected ErrInvalidPageToken, got %v", err)
	}
}

func newNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(45)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return node
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_identityrepo_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	if err := db.Exec(
		`CREATE TABLE profiles (
			id BIGINT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'user',
			is_subscribed BOOLEAN NOT NULL DEFAULT FALSE,
			subscription_plan TEXT,
			points BIGINT NOT NULL DEFAULT 0,
			commission_earned REAL NOT NULL DEFAULT 0,
			created_at TIMESTAMP,
			updated_at TIMESTAMP
		)`,
	).Error; err != nil {
		t.Fatalf("schema exec failed: %v", err)
	}

	return db
}

func seedProfile(t *testing.T, db *gorm.DB, node *snowflake.Node, email string) {
	t.Helper()
	now := time.Now().UTC()
	if err := db.Exec(
		"INSERT INTO profiles (id, email, name, password_hash, role, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		node.Generate(), email, "Test User", "x", "user", now, now,
	).Error; err != nil {
		t.Fatalf("seed profile: %v", err)
	}
}
