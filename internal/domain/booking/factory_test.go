//go:build unit

package booking_test

import (
	"testing"
	"time"

	"medibook/internal/domain/booking"
	"medibook/internal/domain/hospital"
	"medibook/internal/pkg/clock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hospitalOverride func(*hospital.Params)

func buildHospital(t *testing.T, overrides ...hospitalOverride) *hospital.Hospital {
	t.Helper()
	timings := make([]hospital.DayTiming, 0, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		timings = append(timings, hospital.DayTiming{
			Weekday:  d,
			OpenMin:  9 * 60,
			CloseMin: 18 * 60,
			Open:     true,
		})
	}
	p := hospital.Params{
		Name:               "City General",
		Approval:           hospital.ApprovalApproved,
		Open:               true,
		EmergencyAvailable: true,
		FeePolicy:          hospital.FeePolicyFlat,
		PlatformFee:        30,
		EmergencyFee:       20,
		TaxRateBps:         1800,
		PatientsPerSlot:    3,
		SlotDurationMin:    30,
		MaxBookingsPerDay:  50,
		Timings:            timings,
	}
	for _, o := range overrides {
		o(&p)
	}
	h, err := hospital.NewHospital(p)
	require.NoError(t, err)
	return h
}

func newFactory() (*booking.Factory, *clock.MockClock) {
	clk := clock.NewMockClock(time.Date(2026, 12, 1, 10, 0, 0, 0, ist))
	return booking.NewFactory(clk, ist), clk
}

func validRequest() booking.Request {
	return booking.Request{
		UserID:   uuid.New(),
		Date:     "25-12-2026",
		TimeSlot: "09:30 AM",
		Method:   booking.PaymentMethodOnline,
	}
}

func TestCreateBooking(t *testing.T) {
	t.Run("assembles a pending booking with fees", func(t *testing.T) {
		f, _ := newFactory()
		h := buildHospital(t)

		b, err := f.CreateBooking(h, validRequest())
		require.NoError(t, err)

		assert.Equal(t, booking.StatusPending, b.Status())
		assert.Equal(t, h.ID(), b.HospitalID())
		assert.True(t, b.Token().IsZero(), "token allocation is deferred to persistence")
		assert.Equal(t, booking.PaymentPending, b.Payment().Status())
		assert.Equal(t, int32(35), b.Payment().Breakdown().Total)
		assert.Equal(t, "09:30 AM", b.Appointment().DisplaySlot())
	})

	t.Run("emergency adds the surcharge", func(t *testing.T) {
		f, _ := newFactory()
		h := buildHospital(t)
		req := validRequest()
		req.Emergency = true

		b, err := f.CreateBooking(h, req)
		require.NoError(t, err)
		assert.True(t, b.IsEmergency())
		// 30 + 20 = 50, 18% tax = 9
		assert.Equal(t, int32(59), b.Payment().Breakdown().Total)
	})

	t.Run("closed hospital", func(t *testing.T) {
		f, _ := newFactory()
		h := buildHospital(t, func(p *hospital.Params) { p.Open = false })

		_, err := f.CreateBooking(h, validRequest())
		require.ErrorIs(t, err, booking.ErrHospitalUnavailable)
	})

	t.Run("unapproved hospital", func(t *testing.T) {
		f, _ := newFactory()
		h := buildHospital(t, func(p *hospital.Params) { p.Approval = hospital.ApprovalPending })

		_, err := f.CreateBooking(h, validRequest())
		require.ErrorIs(t, err, booking.ErrHospitalUnavailable)
	})

	t.Run("emergency request without emergency service", func(t *testing.T) {
		f, _ := newFactory()
		h := buildHospital(t, func(p *hospital.Params) { p.EmergencyAvailable = false })
		req := validRequest()
		req.Emergency = true

		_, err := f.CreateBooking(h, req)
		require.ErrorIs(t, err, booking.ErrNoEmergencyService)
	})

	t.Run("non-emergency request ignores emergency availability", func(t *testing.T) {
		f, _ := newFactory()
		h := buildHospital(t, func(p *hospital.Params) { p.EmergencyAvailable = false })

		_, err := f.CreateBooking(h, validRequest())
		require.NoError(t, err)
	})

	t.Run("past appointment", func(t *testing.T) {
		f, clk := newFactory()
		clk.Set(time.Date(2026, 12, 26, 10, 0, 0, 0, ist))
		h := buildHospital(t)

		_, err := f.CreateBooking(h, validRequest())
		require.ErrorIs(t, err, booking.ErrPastAppointment)
	})

	t.Run("malformed date", func(t *testing.T) {
		f, _ := newFactory()
		h := buildHospital(t)
		req := validRequest()
		req.Date = "2026-12-25"

		_, err := f.CreateBooking(h, req)
		require.ErrorIs(t, err, booking.ErrInvalidDateFormat)
	})
}
