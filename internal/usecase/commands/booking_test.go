//go:build unit

package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"medibook/internal/domain/booking"
	"medibook/internal/domain/hospital"
	"medibook/internal/domain/user"
	"medibook/internal/infra"
	"medibook/internal/infra/db"
	"medibook/internal/pkg/clock"
	"medibook/internal/pkg/errs"
	"medibook/internal/usecase/commands"
	"medibook/internal/usecase/shared"
	"medibook/tests/common/builder"
	commandsmock "medibook/tests/mock/commands"
	queriesmock "medibook/tests/mock/queries"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

// ================================================================================
// In-memory unit of work
// ================================================================================

// fakeState backs the fake unit of work. Counts are preset rather than
// derived so each case can stage capacity exactly at the boundary.
type fakeState struct {
	hospitals map[uuid.UUID]*hospital.Hospital
	bookings  map[uuid.UUID]*booking.Booking

	dayCount   int
	slotCount  int
	nextSeq    int
	stale      []*booking.Booking
	legacyDays []time.Time
	rewritten  int64

	lockedDays []time.Time

	createErr error

	created []*booking.Booking
	updated int
	deleted []uuid.UUID
}

func newFakeState() *fakeState {
	return &fakeState{
		hospitals: make(map[uuid.UUID]*hospital.Hospital),
		bookings:  make(map[uuid.UUID]*booking.Booking),
		nextSeq:   1,
	}
}

func notFoundErr(msg string) error {
	return infra.WrapRepoErr(msg, errors.New("no rows in result set"), infra.KindNotFound)
}

type fakeUoW struct{ st *fakeState }

func (u *fakeUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, &fakeTx{st: u.st})
}

func (u *fakeUoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error {
	return fn(ctx, nil)
}

func (u *fakeUoW) WithDB(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error {
	return fn(ctx, nil)
}

func (u *fakeUoW) CommandReads() shared.CommandReads {
	return &fakeReads{st: u.st}
}

type fakeTx struct{ st *fakeState }

func (t *fakeTx) Bookings() shared.BookingRepository { return &fakeBookingRepo{st: t.st} }
func (t *fakeTx) Reads() shared.CommandReads         { return &fakeReads{st: t.st} }
func (t *fakeTx) DB() db.DBTX                        { return nil }

type fakeReads struct{ st *fakeState }

func (r *fakeReads) HospitalByID(_ context.Context, id uuid.UUID) (*hospital.Hospital, error) {
	h, ok := r.st.hospitals[id]
	if !ok {
		return nil, notFoundErr("hospital not found")
	}
	return h, nil
}

func (r *fakeReads) BookingByID(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	b, ok := r.st.bookings[id]
	if !ok {
		return nil, notFoundErr("booking not found")
	}
	return b, nil
}

type fakeBookingRepo struct{ st *fakeState }

func (r *fakeBookingRepo) Create(_ context.Context, _ db.DBTX, b *booking.Booking) error {
	if r.st.createErr != nil {
		return r.st.createErr
	}
	r.st.bookings[b.ID()] = b
	r.st.created = append(r.st.created, b)
	return nil
}

func (r *fakeBookingRepo) Update(_ context.Context, _ db.DBTX, b *booking.Booking) error {
	r.st.bookings[b.ID()] = b
	r.st.updated++
	return nil
}

func (r *fakeBookingRepo) Delete(_ context.Context, _ db.DBTX, id uuid.UUID) error {
	delete(r.st.bookings, id)
	r.st.deleted = append(r.st.deleted, id)
	return nil
}

func (r *fakeBookingRepo) AcquireDayLock(_ context.Context, _ db.DBTX, _ uuid.UUID, day time.Time) error {
	r.st.lockedDays = append(r.st.lockedDays, day)
	return nil
}

func (r *fakeBookingRepo) CountActiveForDay(_ context.Context, _ db.DBTX, _ uuid.UUID, _ time.Time) (int, error) {
	return r.st.dayCount, nil
}

func (r *fakeBookingRepo) CountActiveInWindow(_ context.Context, _ db.DBTX, _ uuid.UUID, _, _ time.Time) (int, error) {
	return r.st.slotCount, nil
}

func (r *fakeBookingRepo) NextTokenSeq(_ context.Context, _ db.DBTX, _ uuid.UUID, _ time.Time) (int, error) {
	return r.st.nextSeq, nil
}

func (r *fakeBookingRepo) FindStalePendingOnline(_ context.Context, _ db.DBTX, _ time.Time, _ int32) ([]*booking.Booking, error) {
	return r.st.stale, nil
}

func (r *fakeBookingRepo) LegacyTokenDays(_ context.Context, _ db.DBTX, _ uuid.UUID) ([]time.Time, error) {
	return r.st.legacyDays, nil
}

func (r *fakeBookingRepo) RewriteLegacyTokens(_ context.Context, _ db.DBTX, _ uuid.UUID, _ string) (int64, error) {
	return r.st.rewritten, nil
}

// eventOfType matches a published booking event by its type field.
type eventOfType string

func (m eventOfType) Matches(x any) bool {
	ev, ok := x.(commands.BookingEvent)
	return ok && ev.Type == string(m)
}

func (m eventOfType) String() string {
	return "booking event of type " + string(m)
}

// ================================================================================
// Suite
// ================================================================================

type BookingCommandsTestSuite struct {
	suite.Suite
	mockCtrl *gomock.Controller
}

type scenario struct {
	st       *fakeState
	gateway  *commandsmock.MockPaymentGateway
	notifier *commandsmock.MockNotifier
	holds    *commandsmock.MockSlotHold
	queries  *queriesmock.MockBookingQueries
	clk      *clock.MockClock
	uc       commands.BookingCommands
}

// Fixed time well before the appointment the builders default to.
var testNow = time.Date(2026, 12, 20, 10, 0, 0, 0, time.UTC)

func (s *BookingCommandsTestSuite) newScenario() *scenario {
	st := newFakeState()
	sc := &scenario{
		st:       st,
		gateway:  commandsmock.NewMockPaymentGateway(s.mockCtrl),
		notifier: commandsmock.NewMockNotifier(s.mockCtrl),
		holds:    commandsmock.NewMockSlotHold(s.mockCtrl),
		queries:  queriesmock.NewMockBookingQueries(s.mockCtrl),
		clk:      clock.NewMockClock(testNow),
	}
	factory := booking.NewFactory(sc.clk, time.UTC)
	sc.uc = commands.NewBookingUseCase(
		&fakeUoW{st: st}, factory, sc.gateway, sc.notifier, sc.holds, sc.queries, sc.clk, 30*time.Minute,
	)
	return sc
}

func (s *BookingCommandsTestSuite) addHospital(sc *scenario, b *builder.HospitalBuilder) *hospital.Hospital {
	h, err := b.BuildEntity()
	s.Require().NoError(err)
	sc.st.hospitals[h.ID()] = h
	return h
}

// addBooking stages a persisted booking in the given status.
func (s *BookingCommandsTestSuite) addBooking(sc *scenario, userID uuid.UUID, status booking.Status, payment booking.Payment) *booking.Booking {
	appointment := booking.ReconstructAppointmentTime(
		time.Date(2026, 12, 26, 9, 30, 0, 0, time.UTC), "09:30 AM", time.UTC)
	b := booking.ReconstructBooking(
		uuid.New(), uuid.New(), userID,
		appointment,
		booking.ReconstructToken("CIT001"),
		status, false, payment, nil, booking.NewNote(""),
		testNow, testNow,
	)
	sc.st.bookings[b.ID()] = b
	return b
}

func codPayment() booking.Payment {
	return booking.NewPayment(booking.PaymentMethodCOD, booking.FeeBreakdown{PlatformFee: 30, Tax: 5, Total: 35})
}

func onlinePayment(status booking.PaymentStatus, orderID, paymentID *string) booking.Payment {
	return booking.ReconstructPayment(
		booking.PaymentMethodOnline, status,
		booking.FeeBreakdown{PlatformFee: 30, Tax: 5, Total: 35},
		orderID, paymentID, nil, nil, nil,
	)
}

func strPtr(s string) *string { return &s }

func (s *BookingCommandsTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
}

func (s *BookingCommandsTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestBookingCommandsSuite(t *testing.T) {
	suite.Run(t, new(BookingCommandsTestSuite))
}

// ================================================================================
// Create
// ================================================================================

func createReq(hospitalID uuid.UUID, emergency bool, method string) commands.CreateBookingRequest {
	return commands.CreateBookingRequest{
		HospitalID:    hospitalID,
		Date:          "26-12-2026",
		TimeSlot:      "09:30 AM",
		Emergency:     emergency,
		PaymentMethod: method,
	}
}

func (s *BookingCommandsTestSuite) expectHoldCycle(sc *scenario, hospitalID, userID uuid.UUID) {
	sc.holds.EXPECT().Acquire(gomock.Any(), hospitalID, userID, gomock.Any(), gomock.Any()).
		Return(true, nil).Times(1)
	sc.holds.EXPECT().Release(gomock.Any(), hospitalID, userID, gomock.Any(), gomock.Any()).
		Return(nil).Times(1)
}

func (s *BookingCommandsTestSuite) TestCreate() {
	ctx := context.Background()
	userID := uuid.New()

	s.Run("cod booking gets the next sequential token", func() {
		sc := s.newScenario()
		h := s.addHospital(sc, builder.NewHospitalBuilder().WithName("City General Hospital"))
		s.expectHoldCycle(sc, h.ID(), userID)
		sc.notifier.EXPECT().Publish(gomock.Any(), eventOfType(commands.EventBookingCreated)).
			Return(nil).Times(1)
		view := builder.NewBookingViewBuilder().BuildView()
		sc.queries.EXPECT().GetByIDSystem(gomock.Any(), gomock.Any()).Return(view, nil).Times(1)

		got, err := sc.uc.Create(ctx, createReq(h.ID(), false, "cod"), userID)

		s.NoError(err)
		s.Equal(view, got)
		s.Require().Len(sc.st.created, 1)
		stored := sc.st.created[0]
		s.Equal("CIT001", stored.Token().String())
		s.Equal(booking.StatusPending, stored.Status())
		s.Equal(int32(35), stored.Payment().Breakdown().Total)
	})

	s.Run("emergency booking carries the marker and the surcharge", func() {
		sc := s.newScenario()
		h := s.addHospital(sc, builder.NewHospitalBuilder().WithName("City General Hospital"))
		sc.st.nextSeq = 4
		s.expectHoldCycle(sc, h.ID(), userID)
		sc.notifier.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).Times(1)
		sc.queries.EXPECT().GetByIDSystem(gomock.Any(), gomock.Any()).
			Return(builder.NewBookingViewBuilder().BuildView(), nil).Times(1)

		_, err := sc.uc.Create(ctx, createReq(h.ID(), true, "cod"), userID)

		s.NoError(err)
		s.Require().Len(sc.st.created, 1)
		s.Equal("CITE004", sc.st.created[0].Token().String())
		s.Equal(int32(59), sc.st.created[0].Payment().Breakdown().Total)
	})

	s.Run("rejects unknown payment method before touching storage", func() {
		sc := s.newScenario()

		_, err := sc.uc.Create(ctx, createReq(uuid.New(), false, "upi"), userID)
		s.ErrorIs(err, errs.ErrInvalidPaymentMethod)
	})

	s.Run("rejects booking at an unknown hospital", func() {
		sc := s.newScenario()

		_, err := sc.uc.Create(ctx, createReq(uuid.New(), false, "cod"), userID)
		s.ErrorIs(err, errs.ErrHospitalNotFound)
	})

	s.Run("rejects booking at a closed hospital", func() {
		sc := s.newScenario()
		h := s.addHospital(sc, builder.NewHospitalBuilder().WithOpen(false))

		_, err := sc.uc.Create(ctx, createReq(h.ID(), false, "cod"), userID)
		s.ErrorIs(err, errs.ErrHospitalUnavailable)
	})

	s.Run("rejects emergency booking where emergency is not offered", func() {
		sc := s.newScenario()
		h := s.addHospital(sc, builder.NewHospitalBuilder().WithEmergencyAvailable(false))

		_, err := sc.uc.Create(ctx, createReq(h.ID(), true, "cod"), userID)
		s.ErrorIs(err, errs.ErrNoEmergencyService)
	})

	s.Run("rejects appointment in the past", func() {
		sc := s.newScenario()
		h := s.addHospital(sc, builder.NewHospitalBuilder())

		req := createReq(h.ID(), false, "cod")
		req.Date = "19-12-2026"

		_, err := sc.uc.Create(ctx, req, userID)
		s.ErrorIs(err, errs.ErrPastAppointment)
	})

	s.Run("rejects slot outside operating hours", func() {
		sc := s.newScenario()
		h := s.addHospital(sc, builder.NewHospitalBuilder().WithHours(540, 1080))

		req := createReq(h.ID(), false, "cod")
		req.TimeSlot = "08:00 AM"

		_, err := sc.uc.Create(ctx, req, userID)
		s.ErrorIs(err, errs.ErrOutsideOperatingHours)
	})

	s.Run("rejects when the slot bucket is full", func() {
		sc := s.newScenario()
		h := s.addHospital(sc, builder.NewHospitalBuilder().WithPatientsPerSlot(3))
		sc.st.slotCount = 3
		s.expectHoldCycle(sc, h.ID(), userID)

		_, err := sc.uc.Create(ctx, createReq(h.ID(), false, "cod"), userID)

		s.ErrorIs(err, errs.ErrSlotFull)
		s.Empty(sc.st.created)
	})

	s.Run("rejects when the daily cap is reached", func() {
		sc := s.newScenario()
		h := s.addHospital(sc, builder.NewHospitalBuilder().WithMaxBookingsPerDay(50))
		sc.st.dayCount = 50
		s.expectHoldCycle(sc, h.ID(), userID)

		_, err := sc.uc.Create(ctx, createReq(h.ID(), false, "cod"), userID)
		s.ErrorIs(err, errs.ErrDailyCapReached)
	})

	s.Run("maps a duplicate key on insert to slot full", func() {
		sc := s.newScenario()
		h := s.addHospital(sc, builder.NewHospitalBuilder())
		sc.st.createErr = infra.WrapRepoErr("insert booking", errors.New("duplicate key"), infra.KindDuplicateKey)
		s.expectHoldCycle(sc, h.ID(), userID)

		_, err := sc.uc.Create(ctx, createReq(h.ID(), false, "cod"), userID)
		s.ErrorIs(err, errs.ErrSlotFull)
	})

	s.Run("rejects a duplicate submit while a hold is taken", func() {
		sc := s.newScenario()
		h := s.addHospital(sc, builder.NewHospitalBuilder())
		sc.holds.EXPECT().Acquire(gomock.Any(), h.ID(), userID, gomock.Any(), gomock.Any()).
			Return(false, nil).Times(1)

		_, err := sc.uc.Create(ctx, createReq(h.ID(), false, "cod"), userID)

		s.ErrorIs(err, commands.ErrBookingInProgress)
		s.Empty(sc.st.created)
	})

	s.Run("proceeds when the hold store is unavailable", func() {
		sc := s.newScenario()
		h := s.addHospital(sc, builder.NewHospitalBuilder())
		sc.holds.EXPECT().Acquire(gomock.Any(), h.ID(), userID, gomock.Any(), gomock.Any()).
			Return(false, errors.New("connection refused")).Times(1)
		sc.notifier.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).Times(1)
		sc.queries.EXPECT().GetByIDSystem(gomock.Any(), gomock.Any()).
			Return(builder.NewBookingViewBuilder().BuildView(), nil).Times(1)

		_, err := sc.uc.Create(ctx, createReq(h.ID(), false, "cod"), userID)

		s.NoError(err)
		s.Len(sc.st.created, 1)
	})

	s.Run("online booking attaches the gateway order", func() {
		sc := s.newScenario()
		h := s.addHospital(sc, builder.NewHospitalBuilder())
		s.expectHoldCycle(sc, h.ID(), userID)
		sc.gateway.EXPECT().CreateOrder(gomock.Any(), int32(35), gomock.Any()).
			Return(&commands.GatewayOrder{OrderID: "order_abc", Amount: 35, Currency: "INR"}, nil).Times(1)
		sc.notifier.EXPECT().Publish(gomock.Any(), eventOfType(commands.EventBookingCreated)).
			Return(nil).Times(1)
		sc.queries.EXPECT().GetByIDSystem(gomock.Any(), gomock.Any()).
			Return(builder.NewBookingViewBuilder().BuildView(), nil).Times(1)

		_, err := sc.uc.Create(ctx, createReq(h.ID(), false, "online"), userID)

		s.NoError(err)
		s.Require().Len(sc.st.created, 1)
		stored := sc.st.created[0]
		s.Require().NotNil(stored.Payment().OrderID())
		s.Equal("order_abc", *stored.Payment().OrderID())
		s.GreaterOrEqual(sc.st.updated, 1)
	})

	s.Run("online booking is deleted again when the gateway refuses", func() {
		sc := s.newScenario()
		h := s.addHospital(sc, builder.NewHospitalBuilder())
		s.expectHoldCycle(sc, h.ID(), userID)
		sc.gateway.EXPECT().CreateOrder(gomock.Any(), int32(35), gomock.Any()).
			Return(nil, errors.New("provider down")).Times(1)

		_, err := sc.uc.Create(ctx, createReq(h.ID(), false, "online"), userID)

		s.ErrorIs(err, errs.ErrGatewayOrderFailed)
		s.Require().Len(sc.st.created, 1)
		s.Equal([]uuid.UUID{sc.st.created[0].ID()}, sc.st.deleted)
		s.Empty(sc.st.bookings)
	})
}

// ================================================================================
// Transitions
// ================================================================================

func (s *BookingCommandsTestSuite) TestConfirm() {
	ctx := context.Background()

	s.Run("confirms a pending booking", func() {
		sc := s.newScenario()
		b := s.addBooking(sc, uuid.New(), booking.StatusPending, codPayment())
		sc.notifier.EXPECT().Publish(gomock.Any(), eventOfType(commands.EventBookingConfirmed)).
			Return(nil).Times(1)

		s.NoError(sc.uc.Confirm(ctx, b.ID()))
		s.Equal(booking.StatusConfirmed, sc.st.bookings[b.ID()].Status())
		s.Equal(1, sc.st.updated)
	})

	s.Run("refuses to confirm a completed booking", func() {
		sc := s.newScenario()
		b := s.addBooking(sc, uuid.New(), booking.StatusCompleted, codPayment())

		err := sc.uc.Confirm(ctx, b.ID())
		s.ErrorIs(err, errs.ErrIllegalTransition)
		s.Zero(sc.st.updated)
	})

	s.Run("reports a missing booking", func() {
		sc := s.newScenario()

		err := sc.uc.Confirm(ctx, uuid.New())
		s.ErrorIs(err, errs.ErrBookingNotFound)
	})
}

func (s *BookingCommandsTestSuite) TestReject() {
	ctx := context.Background()

	s.Run("rejects a pending booking and records the reason", func() {
		sc := s.newScenario()
		b := s.addBooking(sc, uuid.New(), booking.StatusPending, codPayment())
		sc.notifier.EXPECT().Publish(gomock.Any(), eventOfType(commands.EventBookingRejected)).
			Return(nil).Times(1)

		s.NoError(sc.uc.Reject(ctx, b.ID(), "Doctor unavailable"))

		got := sc.st.bookings[b.ID()]
		s.Equal(booking.StatusRejected, got.Status())
		s.Require().NotNil(got.RejectionReason())
		s.Equal("Doctor unavailable", got.RejectionReason().String())
	})

	s.Run("requires a non-blank reason", func() {
		sc := s.newScenario()
		b := s.addBooking(sc, uuid.New(), booking.StatusPending, codPayment())

		err := sc.uc.Reject(ctx, b.ID(), "   ")
		s.ErrorIs(err, errs.ErrMissingRejectionReason)
		s.Equal(booking.StatusPending, sc.st.bookings[b.ID()].Status())
	})
}

func (s *BookingCommandsTestSuite) TestComplete() {
	ctx := context.Background()

	s.Run("completes a confirmed booking with notes", func() {
		sc := s.newScenario()
		b := s.addBooking(sc, uuid.New(), booking.StatusConfirmed, codPayment())
		sc.notifier.EXPECT().Publish(gomock.Any(), eventOfType(commands.EventBookingCompleted)).
			Return(nil).Times(1)

		s.NoError(sc.uc.Complete(ctx, b.ID(), "Follow up in two weeks"))

		got := sc.st.bookings[b.ID()]
		s.Equal(booking.StatusCompleted, got.Status())
		s.Equal("Follow up in two weeks", got.Notes().String())
	})

	s.Run("refuses to complete a pending booking", func() {
		sc := s.newScenario()
		b := s.addBooking(sc, uuid.New(), booking.StatusPending, codPayment())

		err := sc.uc.Complete(ctx, b.ID(), "")
		s.ErrorIs(err, errs.ErrIllegalTransition)
	})
}

// ================================================================================
// Cancel
// ================================================================================

func (s *BookingCommandsTestSuite) TestCancel() {
	ctx := context.Background()

	s.Run("patient cancels their own cod booking", func() {
		sc := s.newScenario()
		patientID := uuid.New()
		b := s.addBooking(sc, patientID, booking.StatusPending, codPayment())
		sc.notifier.EXPECT().Publish(gomock.Any(), eventOfType(commands.EventBookingCancelled)).
			Return(nil).Times(1)

		s.NoError(sc.uc.Cancel(ctx, b.ID(), patientID, user.RolePatient))
		s.Equal(booking.StatusCancelled, sc.st.bookings[b.ID()].Status())
	})

	s.Run("patient cannot cancel a booking they do not own", func() {
		sc := s.newScenario()
		b := s.addBooking(sc, uuid.New(), booking.StatusPending, codPayment())

		err := sc.uc.Cancel(ctx, b.ID(), uuid.New(), user.RolePatient)
		s.ErrorIs(err, commands.ErrBookingNotOwned)
		s.Equal(booking.StatusPending, sc.st.bookings[b.ID()].Status())
	})

	s.Run("admin can cancel any booking", func() {
		sc := s.newScenario()
		b := s.addBooking(sc, uuid.New(), booking.StatusPending, codPayment())
		sc.notifier.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).Times(1)

		s.NoError(sc.uc.Cancel(ctx, b.ID(), uuid.New(), user.RoleAdmin))
	})

	s.Run("refunds a paid online booking before cancelling", func() {
		sc := s.newScenario()
		patientID := uuid.New()
		b := s.addBooking(sc, patientID, booking.StatusConfirmed,
			onlinePayment(booking.PaymentCompleted, strPtr("order_abc"), strPtr("pay_xyz")))
		sc.gateway.EXPECT().Refund(gomock.Any(), "pay_xyz", int32(35)).
			Return(&commands.RefundResult{RefundID: "rfnd_1", Amount: 35, Status: "processed"}, nil).Times(1)
		sc.notifier.EXPECT().Publish(gomock.Any(), eventOfType(commands.EventBookingCancelled)).
			Return(nil).Times(1)

		s.NoError(sc.uc.Cancel(ctx, b.ID(), patientID, user.RolePatient))

		got := sc.st.bookings[b.ID()]
		s.Equal(booking.StatusCancelled, got.Status())
		s.Require().NotNil(got.Payment().RefundID())
		s.Equal("rfnd_1", *got.Payment().RefundID())
		s.Equal(booking.PaymentRefunded, got.Payment().Status())
	})

	s.Run("a refused refund leaves the booking untouched", func() {
		sc := s.newScenario()
		patientID := uuid.New()
		b := s.addBooking(sc, patientID, booking.StatusConfirmed,
			onlinePayment(booking.PaymentCompleted, strPtr("order_abc"), strPtr("pay_xyz")))
		sc.gateway.EXPECT().Refund(gomock.Any(), "pay_xyz", int32(35)).
			Return(nil, errors.New("provider down")).Times(1)

		err := sc.uc.Cancel(ctx, b.ID(), patientID, user.RolePatient)

		s.ErrorIs(err, errs.ErrGatewayRefundFailed)
		got := sc.st.bookings[b.ID()]
		s.Equal(booking.StatusConfirmed, got.Status())
		s.Nil(got.Payment().RefundID())
		s.Zero(sc.st.updated)
	})

	s.Run("a terminal booking is never sent to the gateway", func() {
		sc := s.newScenario()
		patientID := uuid.New()
		b := s.addBooking(sc, patientID, booking.StatusCompleted,
			onlinePayment(booking.PaymentCompleted, strPtr("order_abc"), strPtr("pay_xyz")))

		err := sc.uc.Cancel(ctx, b.ID(), patientID, user.RolePatient)
		s.ErrorIs(err, errs.ErrIllegalTransition)
	})
}

// ================================================================================
// VerifyPayment
// ================================================================================

func (s *BookingCommandsTestSuite) TestVerifyPayment() {
	ctx := context.Background()

	s.Run("verifies the signature and confirms the booking", func() {
		sc := s.newScenario()
		b := s.addBooking(sc, uuid.New(), booking.StatusPending,
			onlinePayment(booking.PaymentPending, strPtr("order_abc"), nil))
		sc.gateway.EXPECT().VerifySignature("order_abc", "pay_xyz", "sig").Return(true).Times(1)
		sc.notifier.EXPECT().Publish(gomock.Any(), eventOfType(commands.EventBookingConfirmed)).
			Return(nil).Times(1)

		s.NoError(sc.uc.VerifyPayment(ctx, b.ID(), "order_abc", "pay_xyz", "sig"))

		got := sc.st.bookings[b.ID()]
		s.Equal(booking.StatusConfirmed, got.Status())
		s.Equal(booking.PaymentCompleted, got.Payment().Status())
		s.Require().NotNil(got.Payment().PaymentID())
		s.Equal("pay_xyz", *got.Payment().PaymentID())
	})

	s.Run("rejects a mismatched order id without calling the gateway", func() {
		sc := s.newScenario()
		b := s.addBooking(sc, uuid.New(), booking.StatusPending,
			onlinePayment(booking.PaymentPending, strPtr("order_abc"), nil))

		err := sc.uc.VerifyPayment(ctx, b.ID(), "order_other", "pay_xyz", "sig")
		s.ErrorIs(err, errs.ErrPaymentNotVerified)
		s.Equal(booking.StatusPending, sc.st.bookings[b.ID()].Status())
	})

	s.Run("rejects a bad signature", func() {
		sc := s.newScenario()
		b := s.addBooking(sc, uuid.New(), booking.StatusPending,
			onlinePayment(booking.PaymentPending, strPtr("order_abc"), nil))
		sc.gateway.EXPECT().VerifySignature("order_abc", "pay_xyz", "bad").Return(false).Times(1)

		err := sc.uc.VerifyPayment(ctx, b.ID(), "order_abc", "pay_xyz", "bad")
		s.ErrorIs(err, errs.ErrPaymentNotVerified)
	})
}

// ================================================================================
// ExpireStalePending
// ================================================================================

func (s *BookingCommandsTestSuite) TestExpireStalePending() {
	ctx := context.Background()

	s.Run("cancels stale unpaid online bookings and reports the count", func() {
		sc := s.newScenario()
		b1 := s.addBooking(sc, uuid.New(), booking.StatusPending,
			onlinePayment(booking.PaymentPending, strPtr("order_1"), nil))
		b2 := s.addBooking(sc, uuid.New(), booking.StatusPending,
			onlinePayment(booking.PaymentPending, strPtr("order_2"), nil))
		sc.st.stale = []*booking.Booking{b1, b2}
		sc.notifier.EXPECT().Publish(gomock.Any(), eventOfType(commands.EventBookingCancelled)).
			Return(nil).Times(2)

		n, err := sc.uc.ExpireStalePending(ctx)

		s.NoError(err)
		s.Equal(2, n)
		s.Equal(booking.StatusCancelled, sc.st.bookings[b1.ID()].Status())
		s.Equal(booking.StatusCancelled, sc.st.bookings[b2.ID()].Status())
		s.Equal(2, sc.st.updated)
	})

	s.Run("nothing stale means zero expired", func() {
		sc := s.newScenario()

		n, err := sc.uc.ExpireStalePending(ctx)
		s.NoError(err)
		s.Zero(n)
	})
}
