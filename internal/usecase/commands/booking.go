package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"medibook/internal/domain/booking"
	"medibook/internal/domain/hospital"
	"medibook/internal/domain/user"
	"medibook/internal/infra"
	"medibook/internal/pkg/clock"
	"medibook/internal/pkg/errs"
	"medibook/internal/usecase/queries"
	"medibook/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrBookingInProgress = errs.New("another booking for this slot is in progress")
	ErrBookingNotOwned   = errs.New("booking not owned by caller")
)

const expiryBatchSize = 100

type CreateBookingRequest struct {
	HospitalID    uuid.UUID
	Date          string
	TimeSlot      string
	Emergency     bool
	PaymentMethod string
}

type BookingCommands interface {
	Create(ctx context.Context, req CreateBookingRequest, userID uuid.UUID) (*queries.BookingView, error)
	Confirm(ctx context.Context, id uuid.UUID) error
	Reject(ctx context.Context, id uuid.UUID, reason string) error
	Complete(ctx context.Context, id uuid.UUID, notes string) error
	Cancel(ctx context.Context, id uuid.UUID, actorID uuid.UUID, role user.Role) error
	VerifyPayment(ctx context.Context, id uuid.UUID, orderID, paymentID, signature string) error
	ExpireStalePending(ctx context.Context) (int, error)
}

type bookingUseCaseImpl struct {
	uow            shared.UnitOfWork
	factory        *booking.Factory
	gateway        PaymentGateway
	notifier       Notifier
	holds          SlotHold
	bookingQueries queries.BookingQueries
	clock          clock.Clock
	paymentExpiry  time.Duration
}

func NewBookingUseCase(
	uow shared.UnitOfWork,
	factory *booking.Factory,
	gateway PaymentGateway,
	notifier Notifier,
	holds SlotHold,
	bookingQueries queries.BookingQueries,
	clk clock.Clock,
	paymentExpiry time.Duration,
) BookingCommands {
	return &bookingUseCaseImpl{
		uow:            uow,
		factory:        factory,
		gateway:        gateway,
		notifier:       notifier,
		holds:          holds,
		bookingQueries: bookingQueries,
		clock:          clk,
		paymentExpiry:  paymentExpiry,
	}
}

func (uc *bookingUseCaseImpl) Create(ctx context.Context, req CreateBookingRequest, userID uuid.UUID) (*queries.BookingView, error) {
	method := booking.PaymentMethod(req.PaymentMethod)
	if !method.IsValid() {
		return nil, errs.ErrInvalidPaymentMethod
	}

	h, err := uc.loadHospital(ctx, req.HospitalID)
	if err != nil {
		return nil, err
	}

	entity, err := uc.factory.CreateBooking(h, booking.Request{
		UserID:    userID,
		Date:      req.Date,
		TimeSlot:  req.TimeSlot,
		Emergency: req.Emergency,
		Method:    method,
	})
	if err != nil {
		return nil, mapDomainErr(err)
	}

	bucket, err := h.Timings().BucketFor(entity.Appointment().At(), h.SlotDurationMin())
	if err != nil {
		return nil, errs.Mark(err, errs.ErrOutsideOperatingHours)
	}
	day := entity.Appointment().CivilDate()
	startMin := bucket.Start.Hour()*60 + bucket.Start.Minute()

	// Duplicate-submit guard; the store being down must not block booking.
	held, holdErr := uc.holds.Acquire(ctx, h.ID(), userID, day, startMin)
	if holdErr != nil {
		slog.Warn("slot hold unavailable, proceeding without it", "error", holdErr.Error())
	} else if !held {
		return nil, ErrBookingInProgress
	} else {
		defer func() {
			if releaseErr := uc.holds.Release(ctx, h.ID(), userID, day, startMin); releaseErr != nil {
				slog.Warn("failed to release slot hold", "error", releaseErr.Error())
			}
		}()
	}

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if lockErr := tx.Bookings().AcquireDayLock(ctx, tx.DB(), h.ID(), day); lockErr != nil {
			return errs.Mark(lockErr, errs.ErrDatabaseOperationFailed)
		}

		dayCount, cntErr := tx.Bookings().CountActiveForDay(ctx, tx.DB(), h.ID(), day)
		if cntErr != nil {
			return errs.Mark(cntErr, errs.ErrDatabaseOperationFailed)
		}
		if dayCount >= h.MaxBookingsPerDay() {
			return errs.ErrDailyCapReached
		}

		slotCount, cntErr := tx.Bookings().CountActiveInWindow(ctx, tx.DB(), h.ID(), bucket.Start, bucket.End)
		if cntErr != nil {
			return errs.Mark(cntErr, errs.ErrDatabaseOperationFailed)
		}
		if slotCount >= h.PatientsPerSlot() {
			return errs.ErrSlotFull
		}

		seq, seqErr := tx.Bookings().NextTokenSeq(ctx, tx.DB(), h.ID(), day)
		if seqErr != nil {
			return errs.Mark(seqErr, errs.ErrDatabaseOperationFailed)
		}
		token, tokErr := booking.AllocateToken(h.TokenPrefix(), seq, entity.IsEmergency())
		if tokErr != nil {
			return errs.Mark(tokErr, errs.ErrDomainValidationFailed)
		}
		if assignErr := entity.AssignToken(token); assignErr != nil {
			return errs.Mark(assignErr, errs.ErrDomainValidationFailed)
		}

		if createErr := tx.Bookings().Create(ctx, tx.DB(), entity); createErr != nil {
			if infra.IsKind(createErr, infra.KindDuplicateKey) {
				return errs.Mark(createErr, errs.ErrSlotFull)
			}
			return errs.Mark(createErr, errs.ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if method == booking.PaymentMethodOnline {
		if orderErr := uc.openGatewayOrder(ctx, entity); orderErr != nil {
			return nil, orderErr
		}
	}

	uc.publish(ctx, EventBookingCreated, entity)

	return uc.bookingQueries.GetByIDSystem(ctx, entity.ID())
}

// openGatewayOrder attaches a provider order to a freshly created online
// booking. If the provider refuses, the booking row is deleted again so
// the slot is not held by an unpayable booking.
func (uc *bookingUseCaseImpl) openGatewayOrder(ctx context.Context, entity *booking.Booking) error {
	order, err := uc.gateway.CreateOrder(ctx, entity.Payment().Breakdown().Total, entity.ID().String())
	if err != nil {
		compErr := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			return tx.Bookings().Delete(ctx, tx.DB(), entity.ID())
		})
		if compErr != nil {
			slog.Error("compensating delete failed after gateway refusal",
				"booking_id", entity.ID().String(),
				"error", compErr.Error())
		}
		return errs.Mark(err, errs.ErrGatewayOrderFailed)
	}

	entity.AttachOrder(order.OrderID)
	return uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if updErr := tx.Bookings().Update(ctx, tx.DB(), entity); updErr != nil {
			return errs.Mark(updErr, errs.ErrDatabaseOperationFailed)
		}
		return nil
	})
}

func (uc *bookingUseCaseImpl) Confirm(ctx context.Context, id uuid.UUID) error {
	entity, err := uc.applyTransition(ctx, id, func(b *booking.Booking) error {
		return b.Confirm()
	})
	if err != nil {
		return err
	}
	uc.publish(ctx, EventBookingConfirmed, entity)
	return nil
}

func (uc *bookingUseCaseImpl) Reject(ctx context.Context, id uuid.UUID, reason string) error {
	rr, err := booking.NewRejectionReason(reason)
	if err != nil {
		return errs.Mark(err, errs.ErrMissingRejectionReason)
	}

	entity, err := uc.applyTransition(ctx, id, func(b *booking.Booking) error {
		return b.Reject(rr)
	})
	if err != nil {
		return err
	}
	uc.publish(ctx, EventBookingRejected, entity)
	return nil
}

func (uc *bookingUseCaseImpl) Complete(ctx context.Context, id uuid.UUID, notes string) error {
	entity, err := uc.applyTransition(ctx, id, func(b *booking.Booking) error {
		return b.Complete(booking.NewNote(notes))
	})
	if err != nil {
		return err
	}
	uc.publish(ctx, EventBookingCompleted, entity)
	return nil
}

// Cancel refunds first when the booking was paid online: a refund the
// provider refuses leaves the booking exactly as it was.
func (uc *bookingUseCaseImpl) Cancel(ctx context.Context, id uuid.UUID, actorID uuid.UUID, role user.Role) error {
	current, err := uc.loadBooking(ctx, id)
	if err != nil {
		return err
	}
	if role == user.RolePatient && current.UserID() != actorID {
		return ErrBookingNotOwned
	}
	if !current.Status().CanTransitionTo(booking.StatusCancelled) {
		return errs.Mark(booking.ErrIllegalTransition, errs.ErrIllegalTransition)
	}

	var refund *RefundResult
	if current.RequiresRefund() {
		paymentID := current.Payment().PaymentID()
		if paymentID == nil {
			return errs.Mark(errs.New("completed payment missing payment id"), errs.ErrGatewayRefundFailed)
		}
		refund, err = uc.gateway.Refund(ctx, *paymentID, current.Payment().Breakdown().Total)
		if err != nil {
			return errs.Mark(err, errs.ErrGatewayRefundFailed)
		}
	}

	entity, err := uc.applyTransition(ctx, id, func(b *booking.Booking) error {
		if refund != nil {
			b.ApplyRefund(refund.RefundID, refund.Amount, refund.Status)
		}
		return b.Cancel()
	})
	if err != nil {
		return err
	}
	uc.publish(ctx, EventBookingCancelled, entity)
	return nil
}

func (uc *bookingUseCaseImpl) VerifyPayment(ctx context.Context, id uuid.UUID, orderID, paymentID, signature string) error {
	current, err := uc.loadBooking(ctx, id)
	if err != nil {
		return err
	}
	storedOrder := current.Payment().OrderID()
	if storedOrder == nil || *storedOrder != orderID {
		return errs.ErrPaymentNotVerified
	}
	if !uc.gateway.VerifySignature(orderID, paymentID, signature) {
		return errs.ErrPaymentNotVerified
	}

	entity, err := uc.applyTransition(ctx, id, func(b *booking.Booking) error {
		b.CompletePayment(paymentID)
		return b.Confirm()
	})
	if err != nil {
		return err
	}
	uc.publish(ctx, EventBookingConfirmed, entity)
	return nil
}

// ExpireStalePending cancels unpaid online bookings older than the
// payment window, through the same state machine as a manual cancel.
func (uc *bookingUseCaseImpl) ExpireStalePending(ctx context.Context) (int, error) {
	cutoff := uc.clock.Now().Add(-uc.paymentExpiry)

	var expired []*booking.Booking
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		stale, findErr := tx.Bookings().FindStalePendingOnline(ctx, tx.DB(), cutoff, expiryBatchSize)
		if findErr != nil {
			return errs.Mark(findErr, errs.ErrDatabaseOperationFailed)
		}
		for _, b := range stale {
			if cancelErr := b.Cancel(); cancelErr != nil {
				return errs.Mark(cancelErr, errs.ErrIllegalTransition)
			}
			if updErr := tx.Bookings().Update(ctx, tx.DB(), b); updErr != nil {
				return errs.Mark(updErr, errs.ErrDatabaseOperationFailed)
			}
			expired = append(expired, b)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, b := range expired {
		uc.publish(ctx, EventBookingCancelled, b)
	}
	return len(expired), nil
}

// applyTransition loads, mutates through the entity, and persists in one
// retryable transaction. The mutated entity is returned for post-commit
// notification.
func (uc *bookingUseCaseImpl) applyTransition(ctx context.Context, id uuid.UUID, mutate func(*booking.Booking) error) (*booking.Booking, error) {
	var entity *booking.Booking
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, loadErr := tx.Reads().BookingByID(ctx, id)
		if loadErr != nil {
			if infra.IsKind(loadErr, infra.KindNotFound) {
				return errs.Mark(loadErr, errs.ErrBookingNotFound)
			}
			return errs.Mark(loadErr, errs.ErrDatabaseOperationFailed)
		}

		if mutErr := mutate(b); mutErr != nil {
			if errors.Is(mutErr, booking.ErrIllegalTransition) {
				return errs.Mark(mutErr, errs.ErrIllegalTransition)
			}
			return errs.Mark(mutErr, errs.ErrDomainValidationFailed)
		}

		if updErr := tx.Bookings().Update(ctx, tx.DB(), b); updErr != nil {
			return errs.Mark(updErr, errs.ErrDatabaseOperationFailed)
		}
		entity = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func (uc *bookingUseCaseImpl) loadHospital(ctx context.Context, id uuid.UUID) (*hospital.Hospital, error) {
	h, err := uc.uow.CommandReads().HospitalByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrHospitalNotFound)
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return h, nil
}

func (uc *bookingUseCaseImpl) loadBooking(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	b, err := uc.uow.CommandReads().BookingByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrBookingNotFound)
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return b, nil
}

func (uc *bookingUseCaseImpl) publish(ctx context.Context, eventType string, b *booking.Booking) {
	event := BookingEvent{
		Type:        eventType,
		BookingID:   b.ID(),
		HospitalID:  b.HospitalID(),
		UserID:      b.UserID(),
		TokenNumber: b.Token().String(),
		Status:      b.Status().String(),
		OccurredAt:  uc.clock.Now(),
	}
	if err := uc.notifier.Publish(ctx, event); err != nil {
		slog.Error("failed to publish booking event",
			"event", eventType,
			"booking_id", b.ID().String(),
			"error", err.Error())
	}
}

func mapDomainErr(err error) error {
	switch {
	case errors.Is(err, booking.ErrHospitalUnavailable):
		return errs.Mark(err, errs.ErrHospitalUnavailable)
	case errors.Is(err, booking.ErrNoEmergencyService):
		return errs.Mark(err, errs.ErrNoEmergencyService)
	case errors.Is(err, booking.ErrInvalidDateFormat):
		return errs.Mark(err, errs.ErrInvalidAppointmentDate)
	case errors.Is(err, booking.ErrInvalidTimeFormat):
		return errs.Mark(err, errs.ErrInvalidAppointmentTime)
	case errors.Is(err, booking.ErrPastAppointment):
		return errs.Mark(err, errs.ErrPastAppointment)
	default:
		return errs.Mark(err, errs.ErrDomainValidationFailed)
	}
}
