package queries

import (
	"time"

	"github.com/google/uuid"
)

// Read models (DTO for read side)
type BookingView struct {
	ID              uuid.UUID `json:"id"`
	HospitalID      uuid.UUID `json:"hospital_id"`
	HospitalName    string    `json:"hospital_name"`
	UserID          uuid.UUID `json:"user_id"`
	TokenNumber     string    `json:"token_number"`
	Status          string    `json:"status"`
	Emergency       bool      `json:"emergency"`
	AppointmentDate string    `json:"appointment_date"`
	TimeSlot        string    `json:"time_slot"`
	PaymentMethod   string    `json:"payment_method"`
	PaymentStatus   string    `json:"payment_status"`
	PlatformFee     int32     `json:"platform_fee"`
	EmergencyFee    int32     `json:"emergency_fee"`
	Tax             int32     `json:"tax"`
	Total           int32     `json:"total"`
	OrderID         *string   `json:"order_id,omitempty"`
	RefundID        *string   `json:"refund_id,omitempty"`
	RejectionReason *string   `json:"rejection_reason,omitempty"`
	Notes           *string   `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type BookingListItem struct {
	ID              uuid.UUID `json:"id"`
	HospitalID      uuid.UUID `json:"hospital_id"`
	HospitalName    string    `json:"hospital_name"`
	TokenNumber     string    `json:"token_number"`
	Status          string    `json:"status"`
	Emergency       bool      `json:"emergency"`
	AppointmentDate string    `json:"appointment_date"`
	TimeSlot        string    `json:"time_slot"`
	Total           int32     `json:"total"`
	CreatedAt       time.Time `json:"created_at"`
}

type DayTimingView struct {
	Weekday  int  `json:"weekday"`
	OpenMin  int  `json:"open_min"`
	CloseMin int  `json:"close_min"`
	Open     bool `json:"open"`
}

type HospitalView struct {
	ID                 uuid.UUID       `json:"id"`
	Name               string          `json:"name"`
	ApprovalStatus     string          `json:"approval_status"`
	IsOpen             bool            `json:"is_open"`
	EmergencyAvailable bool            `json:"emergency_available"`
	FeePolicy          string          `json:"fee_policy"`
	BasePrice          int32           `json:"base_price"`
	PlatformFee        int32           `json:"platform_fee"`
	EmergencyFee       int32           `json:"emergency_fee"`
	TaxRateBps         int32           `json:"tax_rate_bps"`
	PatientsPerSlot    int             `json:"patients_per_slot"`
	SlotDurationMin    int             `json:"slot_duration_min"`
	MaxBookingsPerDay  int             `json:"max_bookings_per_day"`
	Timings            []DayTimingView `json:"timings"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

type HospitalListItem struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	IsOpen             bool      `json:"is_open"`
	EmergencyAvailable bool      `json:"emergency_available"`
	FeePolicy          string    `json:"fee_policy"`
	SlotDurationMin    int       `json:"slot_duration_min"`
}

// SlotAvailability is one slot bucket of a hospital day.
type SlotAvailability struct {
	Slot      string `json:"slot"`
	StartMin  int    `json:"start_min"`
	Capacity  int    `json:"capacity"`
	Booked    int    `json:"booked"`
	Remaining int    `json:"remaining"`
}

type AvailabilityView struct {
	HospitalID   uuid.UUID          `json:"hospital_id"`
	Date         string             `json:"date"`
	Open         bool               `json:"open"`
	DayCapacity  int                `json:"day_capacity"`
	DayBooked    int                `json:"day_booked"`
	DayRemaining int                `json:"day_remaining"`
	Slots        []SlotAvailability `json:"slots"`
}

// SlotCount is an active-booking count keyed by exact appointment time.
// The availability query folds these into slot buckets.
type SlotCount struct {
	AppointmentAt time.Time
	Count         int
}
