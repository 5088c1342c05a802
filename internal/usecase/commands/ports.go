package commands

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// GatewayOrder is the provider-side order opened for an online booking.
type GatewayOrder struct {
	OrderID  string
	Amount   int32
	Currency string
}

// RefundResult is the provider's answer to a refund request.
type RefundResult struct {
	RefundID string
	Amount   int32
	Status   string
}

// PaymentGateway is the opaque payment provider. Implementations live in
// infra; the orchestrator only sees order handles and refund results.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount int32, receipt string) (*GatewayOrder, error)
	VerifySignature(orderID, paymentID, signature string) bool
	Refund(ctx context.Context, paymentID string, amount int32) (*RefundResult, error)
}

// Lifecycle event types published to the notification topic.
const (
	EventBookingCreated   = "booking.created"
	EventBookingConfirmed = "booking.confirmed"
	EventBookingRejected  = "booking.rejected"
	EventBookingCompleted = "booking.completed"
	EventBookingCancelled = "booking.cancelled"
)

// BookingEvent is the payload published after a committed transition.
type BookingEvent struct {
	Type        string    `json:"type"`
	BookingID   uuid.UUID `json:"booking_id"`
	HospitalID  uuid.UUID `json:"hospital_id"`
	UserID      uuid.UUID `json:"user_id"`
	TokenNumber string    `json:"token_number"`
	Status      string    `json:"status"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Notifier publishes lifecycle events. Called strictly after commit; a
// failed publish is logged and never affects the booking.
type Notifier interface {
	Publish(ctx context.Context, event BookingEvent) error
}

// SlotHold is a short-lived duplicate-submit guard on one slot bucket,
// scoped per user. Best effort: losing the hold store never blocks
// booking, the serialized transaction remains the authority.
type SlotHold interface {
	Acquire(ctx context.Context, hospitalID, userID uuid.UUID, day time.Time, slotStartMin int) (bool, error)
	Release(ctx context.Context, hospitalID, userID uuid.UUID, day time.Time, slotStartMin int) error
}
