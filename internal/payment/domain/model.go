package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type EventRecord struct {
	ID              snowflake.ID   `json:"id" gorm:"primaryKey"`
	Provider        string         `json:"provider" gorm:"type:text;not null;uniqueIndex:uq_payment_events_provider_event"`
	ProviderEventID string         `json:"provider_event_id" gorm:"type:text;not null;uniqueIndex:uq_payment_events_provider_event"`
	EventType       string         `json:"event_type" gorm:"type:text;not null"`
	Payload         datatypes.JSON `json:"payload" gorm:"type:jsonb"`
	ReceivedAt      time.Time      `json:"received_at" gorm:"not null"`
	ProcessedAt     *time.Time     `json:"processed_at"`
}

func (EventRecord) TableName() string { return "payment_events" }

const (
	EventTypeCheckoutCompleted = "checkout_completed"
	EventTypePaymentSucceeded  = "payment_succeeded"
	EventTypePaymentFailed     = "payment_failed"

	// EventTypeIgnored marks provider event types this system does not
	// act on. They are still recorded and acknowledged.
	EventTypeIgnored = "ignored"
)

// PaymentEvent is the canonical event parsed by provider adapters.
type PaymentEvent struct {
	Provider        string
	ProviderEventID string
	Type            string

	// SessionID is the hosted checkout session (checkout events only).
	SessionID string
	// SubscriptionID is the provider's recurring subscription reference.
	SubscriptionID string

	AmountTotal int64
	Currency    string

	// Reconciliation metadata echoed back from checkout.
	UserID     snowflake.ID
	Plan       string
	CouponCode string
	EmployeeID snowflake.ID

	OccurredAt time.Time
	RawPayload []byte
}
