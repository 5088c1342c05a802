package booking

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrTokenAlreadySet   = errors.New("token number is immutable once assigned")
)

// Payment is the booking's embedded payment sub-record.
type Payment struct {
	method       PaymentMethod
	status       PaymentStatus
	breakdown    FeeBreakdown
	orderID      *string
	paymentID    *string
	refundID     *string
	refundAmount *int32
	refundStatus *string
}

func NewPayment(method PaymentMethod, breakdown FeeBreakdown) Payment {
	return Payment{
		method:    method,
		status:    PaymentPending,
		breakdown: breakdown,
	}
}

func ReconstructPayment(
	method PaymentMethod,
	status PaymentStatus,
	breakdown FeeBreakdown,
	orderID, paymentID, refundID *string,
	refundAmount *int32,
	refundStatus *string,
) Payment {
	return Payment{
		method:       method,
		status:       status,
		breakdown:    breakdown,
		orderID:      orderID,
		paymentID:    paymentID,
		refundID:     refundID,
		refundAmount: refundAmount,
		refundStatus: refundStatus,
	}
}

func (p Payment) Method() PaymentMethod   { return p.method }
func (p Payment) Status() PaymentStatus   { return p.status }
func (p Payment) Breakdown() FeeBreakdown { return p.breakdown }
func (p Payment) OrderID() *string        { return p.orderID }
func (p Payment) PaymentID() *string      { return p.paymentID }
func (p Payment) RefundID() *string       { return p.refundID }
func (p Payment) RefundAmount() *int32    { return p.refundAmount }
func (p Payment) RefundStatus() *string   { return p.refundStatus }

// Booking is the aggregate root of the lifecycle. All status and
// payment mutation goes through its methods; repositories only persist
// what the entity decided.
type Booking struct {
	id              uuid.UUID
	hospitalID      uuid.UUID
	userID          uuid.UUID
	appointment     AppointmentTime
	token           TokenNumber
	status          Status
	emergency       bool
	payment         Payment
	rejectionReason *RejectionReason
	notes           Note
	createdAt       time.Time
	updatedAt       time.Time
}

func ReconstructBooking(
	id, hospitalID, userID uuid.UUID,
	appointment AppointmentTime,
	token TokenNumber,
	status Status,
	emergency bool,
	payment Payment,
	rejectionReason *RejectionReason,
	notes Note,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:              id,
		hospitalID:      hospitalID,
		userID:          userID,
		appointment:     appointment,
		token:           token,
		status:          status,
		emergency:       emergency,
		payment:         payment,
		rejectionReason: rejectionReason,
		notes:           notes,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

func (b *Booking) ID() uuid.UUID                     { return b.id }
func (b *Booking) HospitalID() uuid.UUID             { return b.hospitalID }
func (b *Booking) UserID() uuid.UUID                 { return b.userID }
func (b *Booking) Appointment() AppointmentTime      { return b.appointment }
func (b *Booking) Token() TokenNumber                { return b.token }
func (b *Booking) Status() Status                    { return b.status }
func (b *Booking) IsEmergency() bool                 { return b.emergency }
func (b *Booking) Payment() Payment                  { return b.payment }
func (b *Booking) RejectionReason() *RejectionReason { return b.rejectionReason }
func (b *Booking) Notes() Note                       { return b.notes }
func (b *Booking) CreatedAt() time.Time              { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time              { return b.updatedAt }

// transition is the single gate for status changes.
func (b *Booking) transition(to Status) error {
	if !b.status.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, b.status, to)
	}
	b.status = to
	return nil
}

// Confirm moves a pending booking to confirmed: payment verified,
// hospital accepted, or COD accepted at the desk.
func (b *Booking) Confirm() error {
	return b.transition(StatusConfirmed)
}

// Reject moves a pending booking to rejected. The reason is mandatory
// and validated before the transition is attempted.
func (b *Booking) Reject(reason RejectionReason) error {
	if err := b.transition(StatusRejected); err != nil {
		return err
	}
	b.rejectionReason = &reason
	return nil
}

// Complete marks a confirmed booking as done, with optional notes.
func (b *Booking) Complete(notes Note) error {
	if err := b.transition(StatusCompleted); err != nil {
		return err
	}
	if !notes.IsEmpty() {
		b.notes = notes
	}
	return nil
}

// Cancel moves a pending or confirmed booking to cancelled. Callers
// must settle any required refund before invoking this; see
// RequiresRefund.
func (b *Booking) Cancel() error {
	return b.transition(StatusCancelled)
}

// RequiresRefund reports whether cancelling this booking must first
// succeed at refunding: online method with a completed payment.
func (b *Booking) RequiresRefund() bool {
	return b.payment.method == PaymentMethodOnline && b.payment.status == PaymentCompleted
}

// AssignToken sets the token exactly once, at creation time.
func (b *Booking) AssignToken(t TokenNumber) error {
	if !b.token.IsZero() {
		return ErrTokenAlreadySet
	}
	b.token = t
	return nil
}

// AttachOrder records the gateway order reference for an online booking.
func (b *Booking) AttachOrder(orderID string) {
	b.payment.orderID = &orderID
}

// CompletePayment records a verified gateway payment.
func (b *Booking) CompletePayment(paymentID string) {
	b.payment.paymentID = &paymentID
	b.payment.status = PaymentCompleted
}

// FailPayment records a failed gateway payment attempt.
func (b *Booking) FailPayment() {
	b.payment.status = PaymentFailed
}

// ApplyRefund attaches the gateway refund result after a successful
// refund call and marks the payment refunded.
func (b *Booking) ApplyRefund(refundID string, amount int32, status string) {
	b.payment.refundID = &refundID
	b.payment.refundAmount = &amount
	b.payment.refundStatus = &status
	b.payment.status = PaymentRefunded
}
