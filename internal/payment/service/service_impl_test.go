package service_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"net/http"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/lexdraftlabs/lexdraft/internal/config"
	identityrepo "github.com/lexdraftlabs/lexdraft/internal/identity/repository"
	"github.com/lexdraftlabs/lexdraft/internal/payment/adapters"
	"github.com/lexdraftlabs/lexdraft/internal/payment/adapters/stripe"
	paymentdomain "github.com/lexdraftlabs/lexdraft/internal/payment/domain"
	paymentrepo "github.com/lexdraftlabs/lexdraft/internal/payment/repository"
	paymentservice "github.com/lexdraftlabs/lexdraft/internal/payment/service"
	paymentwebhook "github.com/lexdraftlabs/lexdraft/internal/payment/webhook"
	referralrepo "github.com/lexdraftlabs/lexdraft/internal/referral/repository"
	subscriptionrepo "github.com/lexdraftlabs/lexdraft/internal/subscription/repository"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const stripeSecret = "whsec_test"

func TestCheckoutWithCouponCreditsEmployee(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	node := newNode(t, 10)
	webhookSvc := newWebhookService(t, db, node)

	userID := seedUser(t, db, node, "buyer@example.com")
	employeeID := seedEmployee(t, db, node, "jane@example.com", "SAVE20JANEDO")

	payload := checkoutPayload("evt_1", "cs_1", "sub_1", userID, "four_letters", "SAVE20JANEDO", employeeID, 23920)
	if err := webhookSvc.IngestWebhook(ctx, "stripe", payload, signedHeader(payload)); err != nil {
		t.Fatalf("ingest webhook: %v", err)
	}

	assertCount(t, db, "SELECT COUNT(1) FROM payment_events", 1)
	assertCount(t, db, "SELECT COUNT(1) FROM subscriptions", 1)
	assertCount(t, db, "SELECT COUNT(1) FROM transactions", 1)
	assertCount(t, db, "SELECT COUNT(1) FROM coupon_usage", 1)

	var processedAt *time.Time
	if err := db.Raw("SELECT processed_at FROM payment_events LIMIT 1").Scan(&processedAt).Error; err != nil {
		t.Fatalf("scan processed_at: %v", err)
	}
	if processedAt == nil {
		t.Fatalf("expected processed_at to be set")
	}

	var subscribed bool
	var plan string
	if err := db.Raw("SELECT is_subscribed, subscription_plan FROM profiles WHERE id = ?", userID).Row().Scan(&subscribed, &plan); err != nil {
		t.Fatalf("scan profile: %v", err)
	}
	if !subscribed || plan != "four_letters" {
		t.Fatalf("expected active four_letters profile, got subscribed=%v plan=%s", subscribed, plan)
	}

	// 23920 cents settles 239.20 revenue and a 5 percent commission.
	var points int64
	var commission float64
	if err := db.Raw("SELECT points, commission_earned FROM profiles WHERE id = ?", employeeID).Row().Scan(&points, &commission); err != nil {
		t.Fatalf("scan employee profile: %v", err)
	}
	if points != 1 {
		t.Fatalf("expected 1 point, got %d", points)
	}
	if math.Abs(commission-11.96) > 1e-9 {
		t.Fatalf("expected commission 11.96, got %f", commission)
	}

	if err := db.Raw("SELECT points, commission_earned FROM employees_meta WHERE profile_id = ?", employeeID).Row().Scan(&points, &commission); err != nil {
		t.Fatalf("scan employees_meta: %v", err)
	}
	if points != 1 || math.Abs(commission-11.96) > 1e-9 {
		t.Fatalf("expected mirrored counters, got points=%d commission=%f", points, commission)
	}

	// The transaction and usage rows link back to the subscription and
	// coupon settled by this event.
	var subscriptionID int64
	if err := db.Raw("SELECT id FROM subscriptions WHERE provider_session_id = 'cs_1'").Scan(&subscriptionID).Error; err != nil {
		t.Fatalf("scan subscription id: %v", err)
	}
	var couponID int64
	if err := db.Raw("SELECT id FROM coupons WHERE code = 'SAVE20JANEDO'").Scan(&couponID).Error; err != nil {
		t.Fatalf("scan coupon id: %v", err)
	}

	var txnSubscriptionID, txnCouponID, txnEmployeeID int64
	var commissionPaid bool
	if err := db.Raw(
		"SELECT subscription_id, coupon_id, employee_id, commission_paid FROM transactions LIMIT 1",
	).Row().Scan(&txnSubscriptionID, &txnCouponID, &txnEmployeeID, &commissionPaid); err != nil {
		t.Fatalf("scan transaction linkage: %v", err)
	}
	if txnSubscriptionID != subscriptionID {
		t.Fatalf("expected transaction to reference subscription %d, got %d", subscriptionID, txnSubscriptionID)
	}
	if txnCouponID != couponID {
		t.Fatalf("expected transaction to reference coupon %d, got %d", couponID, txnCouponID)
	}
	if txnEmployeeID != int64(employeeID) {
		t.Fatalf("expected transaction to reference employee %d, got %d", int64(employeeID), txnEmployeeID)
	}
	if commissionPaid {
		t.Fatalf("expected commission to start unpaid")
	}

	var usageSubscriptionID int64
	if err := db.Raw("SELECT subscription_id FROM coupon_usage LIMIT 1").Scan(&usageSubscriptionID).Error; err != nil {
		t.Fatalf("scan usage linkage: %v", err)
	}
	if usageSubscriptionID != subscriptionID {
		t.Fatalf("expected usage to reference subscription %d, got %d", subscriptionID, usageSubscriptionID)
	}
}

func TestDuplicateEventIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	node := newNode(t, 11)
	webhookSvc := newWebhookService(t, db, node)

	userID := seedUser(t, db, node, "buyer@example.com")
	employeeID := seedEmployee(t, db, node, "jane@example.com", "SAVE20JANEDO")

	payload := checkoutPayload("evt_1", "cs_1", "sub_1", userID, "four_letters", "SAVE20JANEDO", employeeID, 23920)
	if err := webhookSvc.IngestWebhook(ctx, "stripe", payload, signedHeader(payload)); err != nil {
		t.Fatalf("first ingest: %v", err)
	}
	err := webhookSvc.IngestWebhook(ctx, "stripe", payload, signedHeader(payload))
	if !errors.Is(err, paymentdomain.ErrEventAlreadyProcessed) {
		t.Fatalf("expected ErrEventAlreadyProcessed, got %v", err)
	}

	assertCount(t, db, "SELECT COUNT(1) FROM payment_events", 1)
	assertCount(t, db, "SELECT COUNT(1) FROM subscriptions", 1)
	assertCount(t, db, "SELECT COUNT(1) FROM transactions", 1)
	assertCount(t, db, "SELECT COUNT(1) FROM coupon_usage", 1)

	var points int64
	if err := db.Raw("SELECT points FROM profiles WHERE id = ?", employeeID).Scan(&points).Error; err != nil {
		t.Fatalf("scan points: %v", err)
	}
	if points != 1 {
		t.Fatalf("expected a single credited point, got %d", points)
	}
}

func TestSameSessionUnderNewEventID(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	node := newNode(t, 12)
	webhookSvc := newWebhookService(t, db, node)

	userID := seedUser(t, db, node, "buyer@example.com")
	employeeID := seedEmployee(t, db, node, "jane@example.com", "SAVE20JANEDO")

	first := checkoutPayload("evt_1", "cs_1", "sub_1", userID, "four_letters", "SAVE20JANEDO", employeeID, 23920)
	if err := webhookSvc.IngestWebhook(ctx, "stripe", first, signedHeader(first)); err != nil {
		t.Fatalf("first ingest: %v", err)
	}

	// Providers can redeliver the same session under a fresh event id.
	second := checkoutPayload("evt_2", "cs_1", "sub_1", userID, "four_letters", "SAVE20JANEDO", employeeID, 23920)
	if err := webhookSvc.IngestWebhook(ctx, "stripe", second, signedHeader(second)); err != nil {
		t.Fatalf("second ingest: %v", err)
	}

	assertCount(t, db, "SELECT COUNT(1) FROM payment_events", 2)
	assertCount(t, db, "SELECT COUNT(1) FROM subscriptions", 1)
	assertCount(t, db, "SELECT COUNT(1) FROM transactions", 1)
	assertCount(t, db, "SELECT COUNT(1) FROM coupon_usage", 1)

	var points int64
	if err := db.Raw("SELECT points FROM profiles WHERE id = ?", employeeID).Scan(&points).Error; err != nil {
		t.Fatalf("scan points: %v", err)
	}
	if points != 1 {
		t.Fatalf("expected a single credited point, got %d", points)
	}
}

func TestCheckoutWithUnknownCouponSkipsAttribution(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	node := newNode(t, 13)
	webhookSvc := newWebhookService(t, db, node)

	userID := seedUser(t, db, node, "buyer@example.com")

	payload := checkoutPayload("evt_1", "cs_1", "sub_1", userID, "one_letter", "SAVE20NOBODY", 0, 29900)
	if err := webhookSvc.IngestWebhook(ctx, "stripe", payload, signedHeader(payload)); err != nil {
		t.Fatalf("ingest webhook: %v", err)
	}

	assertCount(t, db, "SELECT COUNT(1) FROM transactions", 1)
	assertCount(t, db, "SELECT COUNT(1) FROM coupon_usage", 0)
}

func TestPaymentFailedRecomputesFromRemainingSubscriptions(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	node := newNode(t, 14)
	webhookSvc := newWebhookService(t, db, node)

	userID := seedUser(t, db, node, "buyer@example.com")

	first := checkoutPayload("evt_1", "cs_1", "sub_1", userID, "four_letters", "", 0, 29900)
	if err := webhookSvc.IngestWebhook(ctx, "stripe", first, signedHeader(first)); err != nil {
		t.Fatalf("first checkout: %v", err)
	}
	second := checkoutPayload("evt_2", "cs_2", "sub_2", userID, "eight_letters", "", 0, 59900)
	if err := webhookSvc.IngestWebhook(ctx, "stripe", second, signedHeader(second)); err != nil {
		t.Fatalf("second checkout: %v", err)
	}

	failed := invoicePayload("evt_3", "invoice.payment_failed", "sub_2")
	if err := webhookSvc.IngestWebhook(ctx, "stripe", failed, signedHeader(failed)); err != nil {
		t.Fatalf("payment failed ingest: %v", err)
	}

	var subscribed bool
	var plan *string
	if err := db.Raw("SELECT is_subscribed, subscription_plan FROM profiles WHERE id = ?", userID).Row().Scan(&subscribed, &plan); err != nil {
		t.Fatalf("scan profile: %v", err)
	}
	if !subscribed || plan == nil || *plan != "four_letters" {
		t.Fatalf("expected fallback to four_letters, got subscribed=%v plan=%v", subscribed, plan)
	}

	failedLast := invoicePayload("evt_4", "invoice.payment_failed", "sub_1")
	if err := webhookSvc.IngestWebhook(ctx, "stripe", failedLast, signedHeader(failedLast)); err != nil {
		t.Fatalf("last payment failed ingest: %v", err)
	}

	if err := db.Raw("SELECT is_subscribed, subscription_plan FROM profiles WHERE id = ?", userID).Row().Scan(&subscribed, &plan); err != nil {
		t.Fatalf("scan profile: %v", err)
	}
	if subscribed || plan != nil {
		t.Fatalf("expected cleared subscription state, got subscribed=%v plan=%v", subscribed, plan)
	}

	assertCount(t, db, "SELECT COUNT(1) FROM subscriptions WHERE status = 'cancelled'", 2)
}

func TestPaymentSucceededReaffirmsSubscription(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	node := newNode(t, 15)
	webhookSvc := newWebhookService(t, db, node)

	userID := seedUser(t, db, node, "buyer@example.com")

	checkout := checkoutPayload("evt_1", "cs_1", "sub_1", userID, "four_letters", "", 0, 29900)
	if err := webhookSvc.IngestWebhook(ctx, "stripe", checkout, signedHeader(checkout)); err != nil {
		t.Fatalf("checkout ingest: %v", err)
	}
	failed := invoicePayload("evt_2", "invoice.payment_failed", "sub_1")
	if err := webhookSvc.IngestWebhook(ctx, "stripe", failed, signedHeader(failed)); err != nil {
		t.Fatalf("payment failed ingest: %v", err)
	}
	renewed := invoicePayload("evt_3", "invoice.payment_succeeded", "sub_1")
	if err := webhookSvc.IngestWebhook(ctx, "stripe", renewed, signedHeader(renewed)); err != nil {
		t.Fatalf("payment succeeded ingest: %v", err)
	}

	var status string
	if err := db.Raw("SELECT status FROM subscriptions WHERE provider_subscription_id = 'sub_1'").Scan(&status).Error; err != nil {
		t.Fatalf("scan status: %v", err)
	}
	if status != "active" {
		t.Fatalf("expected reactivated subscription, got %s", status)
	}

	var subscribed bool
	if err := db.Raw("SELECT is_subscribed FROM profiles WHERE id = ?", userID).Scan(&subscribed).Error; err != nil {
		t.Fatalf("scan profile: %v", err)
	}
	if !subscribed {
		t.Fatalf("expected subscribed profile after renewal")
	}
}

func TestUnknownEventTypeIsRecordedAndAcknowledged(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	node := newNode(t, 16)
	webhookSvc := newWebhookService(t, db, node)

	payload := []byte(`{"id":"evt_other","type":"customer.created","created":1700000000,"data":{"object":{}}}`)
	if err := webhookSvc.IngestWebhook(ctx, "stripe", payload, signedHeader(payload)); err != nil {
		t.Fatalf("ingest webhook: %v", err)
	}

	assertCount(t, db, "SELECT COUNT(1) FROM payment_events", 1)
	assertCount(t, db, "SELECT COUNT(1) FROM subscriptions", 0)

	var eventType string
	if err := db.Raw("SELECT event_type FROM payment_events LIMIT 1").Scan(&eventType).Error; err != nil {
		t.Fatalf("scan event_type: %v", err)
	}
	if eventType != paymentdomain.EventTypeIgnored {
		t.Fatalf("expected ignored event, got %s", eventType)
	}
}

func TestBadSignatureIsRejected(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	node := newNode(t, 17)
	webhookSvc := newWebhookService(t, db, node)

	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{}}}`)
	header := http.Header{}
	header.Set("Stripe-Signature", buildStripeSignatureHeader("wrong_secret", payload, time.Now().Unix()))

	err := webhookSvc.IngestWebhook(ctx, "stripe", payload, header)
	if !errors.Is(err, paymentdomain.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
	assertCount(t, db, "SELECT COUNT(1) FROM payment_events", 0)
}

func newNode(t *testing.T, id int64) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(id)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return node
}

func newWebhookService(t *testing.T, db *gorm.DB, node *snowflake.Node) paymentdomain.Service {
	t.Helper()

	paymentSvc := paymentservice.NewService(paymentservice.Params{
		DB:            db,
		Log:           zap.NewNop(),
		GenID:         node,
		Repo:          paymentrepo.Provide(),
		Profiles:      identityrepo.Provide(),
		Subscriptions: subscriptionrepo.Provide(),
		Referrals:     referralrepo.Provide(),
	})

	return paymentwebhook.NewService(paymentwebhook.Params{
		Log:        zap.NewNop(),
		PaymentSvc: paymentSvc,
		Adapters:   adapters.NewRegistry(stripe.NewFactory()),
		Cfg:        config.Config{StripeWebhookSecret: stripeSecret},
	})
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	schema := []string{
		`CREATE TABLE profiles (
			id BIGINT PRIMARY KEY,
			email TEXT NOT NULL,
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
		`CREATE UNIQUE INDEX ux_profiles_email ON profiles(email)`,
		`CREATE TABLE employees_meta (
			profile_id BIGINT PRIMARY KEY,
			coupon_code TEXT NOT NULL,
			points BIGINT NOT NULL DEFAULT 0,
			commission_earned REAL NOT NULL DEFAULT 0,
			created_at TIMESTAMP,
			updated_at TIMESTAMP
		)`,
		`CREATE UNIQUE INDEX ux_employees_meta_coupon_code ON employees_meta(coupon_code)`,
		`CREATE TABLE coupons (
			id BIGINT PRIMARY KEY,
			code TEXT NOT NULL,
			percent_off BIGINT NOT NULL,
			employee_id BIGINT,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP,
			updated_at TIMESTAMP
		)`,
		`CREATE UNIQUE INDEX ux_coupons_code ON coupons(code)`,
		`CREATE TABLE coupon_usage (
			id BIGINT PRIMARY KEY,
			coupon_id BIGINT NOT NULL,
			coupon_code TEXT NOT NULL,
			employee_id BIGINT,
			user_id BIGINT NOT NULL,
			subscription_id BIGINT NOT NULL,
			revenue REAL NOT NULL DEFAULT 0,
			commission REAL NOT NULL DEFAULT 0,
			created_at TIMESTAMP
		)`,
		`CREATE TABLE subscriptions (
			id BIGINT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			plan TEXT NOT NULL,
			status TEXT NOT NULL,
			provider TEXT NOT NULL DEFAULT 'stripe',
			provider_session_id TEXT,
			provider_subscription_id TEXT,
			created_at TIMESTAMP,
			updated_at TIMESTAMP
		)`,
		`CREATE UNIQUE INDEX ux_subscriptions_provider_session_id ON subscriptions(provider_session_id)`,
		`CREATE TABLE transactions (
			id BIGINT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			subscription_id BIGINT NOT NULL,
			plan TEXT NOT NULL,
			amount_cents BIGINT NOT NULL,
			currency TEXT NOT NULL DEFAULT 'usd',
			coupon_id BIGINT,
			coupon_code TEXT,
			employee_id BIGINT,
			commission_paid BOOLEAN NOT NULL DEFAULT FALSE,
			provider TEXT NOT NULL DEFAULT 'stripe',
			provider_session_id TEXT,
			created_at TIMESTAMP
		)`,
		`CREATE TABLE payment_events (
			id BIGINT PRIMARY KEY,
			provider TEXT NOT NULL,
			provider_event_id TEXT NOT NULL,
			event_type TEXT NOT NULL,
			payload TEXT NOT NULL,
			received_at TIMESTAMP NOT NULL,
			processed_at TIMESTAMP
		)`,
		`CREATE UNIQUE INDEX ux_payment_events_provider_event_id ON payment_events(provider, provider_event_id)`,
	}

	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("schema exec failed: %v", err)
		}
	}

	return db
}

func seedUser(t *testing.T, db *gorm.DB, node *snowflake.Node, email string) snowflake.ID {
	t.Helper()
	id := node.Generate()
	if err := db.Exec(
		"INSERT INTO profiles (id, email, name, password_hash, role, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		id, email, "Test User", "x", "user", time.Now().UTC(), time.Now().UTC(),
	).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return id
}

func seedEmployee(t *testing.T, db *gorm.DB, node *snowflake.Node, email, couponCode string) snowflake.ID {
	t.Helper()
	id := node.Generate()
	now := time.Now().UTC()
	if err := db.Exec(
		"INSERT INTO profiles (id, email, name, password_hash, role, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		id, email, "Jane Doe", "x", "employee", now, now,
	).Error; err != nil {
		t.Fatalf("seed employee profile: %v", err)
	}
	if err := db.Exec(
		"INSERT INTO employees_meta (profile_id, coupon_code, created_at, updated_at) VALUES (?, ?, ?, ?)",
		id, couponCode, now, now,
	).Error; err != nil {
		t.Fatalf("seed employee meta: %v", err)
	}
	if err := db.Exec(
		"INSERT INTO coupons (id, code, percent_off, employee_id, active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		node.Generate(), couponCode, 20, id, true, now, now,
	).Error; err != nil {
		t.Fatalf("seed coupon: %v", err)
	}
	return id
}

func checkoutPayload(eventID, sessionID, subscriptionID string, userID snowflake.ID, plan, couponCode string, employeeID snowflake.ID, amountTotal int64) []byte {
	now := time.Now().UTC().Unix()
	metadata := fmt.Sprintf(`"user_id":"%s","plan":"%s"`, userID, plan)
	if couponCode != "" {
		metadata += fmt.Sprintf(`,"coupon_code":"%s"`, couponCode)
	}
	if employeeID != 0 {
		metadata += fmt.Sprintf(`,"employee_id":"%s"`, employeeID)
	}
	return []byte(fmt.Sprintf(
		`{"id":"%s","type":"checkout.session.completed","created":%d,"data":{"object":{"id":"%s","subscription":"%s","amount_total":%d,"currency":"usd","created":%d,"metadata":{%s}}}}`,
		eventID, now, sessionID, subscriptionID, amountTotal, now, metadata,
	))
}

func invoicePayload(eventID, eventType, subscriptionID string) []byte {
	now := time.Now().UTC().Unix()
	return []byte(fmt.Sprintf(
		`{"id":"%s","type":"%s","created":%d,"data":{"object":{"id":"in_1","subscription":"%s","amount_paid":29900,"currency":"usd","created":%d}}}`,
		eventID, eventType, now, subscriptionID, now,
	))
}

func signedHeader(payload []byte) http.Header {
	header := http.Header{}
	header.Set("Stripe-Signature", buildStripeSignatureHeader(stripeSecret, payload, time.Now().Unix()))
	return header
}

func buildStripeSignatureHeader(secret string, payload []byte, timestamp int64) string {
	signedPayload := fmt.Sprintf("%d.%s", timestamp, string(payload))
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(signedPayload))
	signature := hex.EncodeToString(mac.Sum(nil))
	return fmt.Sprintf("t=%d,v1=%s", timestamp, signature)
}

func assertCount(t *testing.T, db *gorm.DB, query string, expected int64) {
	t.Helper()

	var count int64
	if err := db.Raw(query).Scan(&count).Error; err != nil {
		t.Fatalf("query count: %v", err)
	}
	if count != expected {
		t.Fatalf("expected %d, got %d", expected, count)
	}
}
