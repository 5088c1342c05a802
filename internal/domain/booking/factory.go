package booking

import (
	"errors"
	"time"

	"medibook/internal/domain/hospital"
	"medibook/internal/pkg/clock"

	"github.com/google/uuid"
)

var (
	ErrHospitalUnavailable = errors.New("hospital is not approved or not open")
	ErrNoEmergencyService  = errors.New("hospital does not offer emergency services")
)

// Factory validates a raw booking request against a hospital snapshot
// and assembles a pending booking. It owns request validation; capacity
// admission and token sequencing happen at persistence time where they
// can be serialized.
type Factory struct {
	Clock clock.Clock
	Zone  *time.Location
}

func NewFactory(clk clock.Clock, zone *time.Location) *Factory {
	return &Factory{Clock: clk, Zone: zone}
}

// Request is the raw client input to booking creation.
type Request struct {
	UserID    uuid.UUID
	Date      string
	TimeSlot  string
	Emergency bool
	Method    PaymentMethod
}

func (f *Factory) CreateBooking(h *hospital.Hospital, req Request) (*Booking, error) {
	if !h.IsBookable() {
		return nil, ErrHospitalUnavailable
	}
	if req.Emergency && !h.EmergencyAvailable() {
		return nil, ErrNoEmergencyService
	}

	appointment, err := NewAppointmentTime(req.Date, req.TimeSlot, f.Zone)
	if err != nil {
		return nil, err
	}
	if err := appointment.ValidateFuture(f.Clock.Now().In(f.Zone)); err != nil {
		return nil, err
	}

	calc, err := FeeCalculatorFor(string(h.FeePolicy()))
	if err != nil {
		return nil, err
	}
	breakdown := calc.Calculate(FeeConfig{
		Policy:       string(h.FeePolicy()),
		BasePrice:    h.BasePrice(),
		PlatformFee:  h.PlatformFee(),
		EmergencyFee: h.EmergencyFee(),
		TaxRateBps:   h.TaxRateBps(),
	}, req.Emergency)

	now := f.Clock.Now()
	return &Booking{
		id:          uuid.New(),
		hospitalID:  h.ID(),
		userID:      req.UserID,
		appointment: appointment,
		status:      StatusPending,
		emergency:   req.Emergency,
		payment:     NewPayment(req.Method, breakdown),
		createdAt:   now,
		updatedAt:   now,
	}, nil
}
