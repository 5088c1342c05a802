//go:build unit || e2e

package builder

import (
	"time"

	"medibook/internal/usecase/queries"

	"github.com/google/uuid"
)

// BookingViewBuilder assembles read-side booking views for handler and
// query tests. Defaults are a pending COD booking with token CIT001.
type BookingViewBuilder struct {
	ID              uuid.UUID
	HospitalID      uuid.UUID
	HospitalName    string
	UserID          uuid.UUID
	TokenNumber     string
	Status          string
	Emergency       bool
	AppointmentDate string
	TimeSlot        string
	PaymentMethod   string
	PaymentStatus   string
	PlatformFee     int32
	EmergencyFee    int32
	Tax             int32
	Total           int32
	OrderID         *string
	CreatedAt       time.Time
}

func NewBookingViewBuilder() *BookingViewBuilder {
	return &BookingViewBuilder{
		ID:              uuid.New(),
		HospitalID:      uuid.New(),
		HospitalName:    "City General Hospital",
		UserID:          uuid.New(),
		TokenNumber:     "CIT001",
		Status:          "pending",
		Emergency:       false,
		AppointmentDate: "26-12-2026",
		TimeSlot:        "09:30 AM",
		PaymentMethod:   "cod",
		PaymentStatus:   "pending",
		PlatformFee:     30,
		EmergencyFee:    0,
		Tax:             5,
		Total:           35,
		CreatedAt:       time.Now(),
	}
}

func (b *BookingViewBuilder) WithID(id uuid.UUID) *BookingViewBuilder {
	b.ID = id
	return b
}

func (b *BookingViewBuilder) WithHospitalID(id uuid.UUID) *BookingViewBuilder {
	b.HospitalID = id
	return b
}

func (b *BookingViewBuilder) WithUserID(id uuid.UUID) *BookingViewBuilder {
	b.UserID = id
	return b
}

func (b *BookingViewBuilder) WithStatus(status string) *BookingViewBuilder {
	b.Status = status
	return b
}

func (b *BookingViewBuilder) WithToken(token string) *BookingViewBuilder {
	b.TokenNumber = token
	return b
}

func (b *BookingViewBuilder) WithEmergency(emergency bool) *BookingViewBuilder {
	b.Emergency = emergency
	return b
}

func (b *BookingViewBuilder) WithOnlinePayment(orderID string) *BookingViewBuilder {
	b.PaymentMethod = "online"
	b.OrderID = &orderID
	return b
}

func (b *BookingViewBuilder) WithSchedule(date, slot string) *BookingViewBuilder {
	b.AppointmentDate = date
	b.TimeSlot = slot
	return b
}

func (b *BookingViewBuilder) BuildView() *queries.BookingView {
	return &queries.BookingView{
		ID:              b.ID,
		HospitalID:      b.HospitalID,
		HospitalName:    b.HospitalName,
		UserID:          b.UserID,
		TokenNumber:     b.TokenNumber,
		Status:          b.Status,
		Emergency:       b.Emergency,
		AppointmentDate: b.AppointmentDate,
		TimeSlot:        b.TimeSlot,
		PaymentMethod:   b.PaymentMethod,
		PaymentStatus:   b.PaymentStatus,
		PlatformFee:     b.PlatformFee,
		EmergencyFee:    b.EmergencyFee,
		Tax:             b.Tax,
		Total:           b.Total,
		OrderID:         b.OrderID,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.CreatedAt,
	}
}

func (b *BookingViewBuilder) BuildListItem() *queries.BookingListItem {
	return &queries.BookingListItem{
		ID:              b.ID,
		HospitalID:      b.HospitalID,
		HospitalName:    b.HospitalName,
		TokenNumber:     b.TokenNumber,
		Status:          b.Status,
		Emergency:       b.Emergency,
		AppointmentDate: b.AppointmentDate,
		TimeSlot:        b.TimeSlot,
		Total:           b.Total,
		CreatedAt:       b.CreatedAt,
	}
}

// BuildCreateRequestDTO returns the JSON body for POST /api/bookings.
func (b *BookingViewBuilder) BuildCreateRequestDTO() map[string]any {
	return map[string]any{
		"hospital_id":    b.HospitalID.String(),
		"date":           b.AppointmentDate,
		"time_slot":      b.TimeSlot,
		"emergency":      b.Emergency,
		"payment_method": b.PaymentMethod,
	}
}
