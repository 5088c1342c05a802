package response

import (
	"time"

	"medibook/internal/usecase/queries"

	"github.com/google/uuid"
)

type DayTimingResponse struct {
	Weekday  int  `json:"weekday"`
	OpenMin  int  `json:"open_min"`
	CloseMin int  `json:"close_min"`
	Open     bool `json:"open"`
}

type HospitalResponse struct {
	ID                 uuid.UUID           `json:"id"`
	Name               string              `json:"name"`
	ApprovalStatus     string              `json:"approval_status"`
	IsOpen             bool                `json:"is_open"`
	EmergencyAvailable bool                `json:"emergency_available"`
	FeePolicy          string              `json:"fee_policy"`
	BasePrice          int32               `json:"base_price"`
	PlatformFee        int32               `json:"platform_fee"`
	EmergencyFee       int32               `json:"emergency_fee"`
	TaxRateBps         int32               `json:"tax_rate_bps"`
	PatientsPerSlot    int                 `json:"patients_per_slot"`
	SlotDurationMin    int                 `json:"slot_duration_min"`
	MaxBookingsPerDay  int                 `json:"max_bookings_per_day"`
	Timings            []DayTimingResponse `json:"timings"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

func FromHospitalView(v *queries.HospitalView) *HospitalResponse {
	timings := make([]DayTimingResponse, 0, len(v.Timings))
	for _, t := range v.Timings {
		timings = append(timings, DayTimingResponse{
			Weekday:  t.Weekday,
			OpenMin:  t.OpenMin,
			CloseMin: t.CloseMin,
			Open:     t.Open,
		})
	}
	return &HospitalResponse{
		ID:                 v.ID,
		Name:               v.Name,
		ApprovalStatus:     v.ApprovalStatus,
		IsOpen:             v.IsOpen,
		EmergencyAvailable: v.EmergencyAvailable,
		FeePolicy:          v.FeePolicy,
		BasePrice:          v.BasePrice,
		PlatformFee:        v.PlatformFee,
		EmergencyFee:       v.EmergencyFee,
		TaxRateBps:         v.TaxRateBps,
		PatientsPerSlot:    v.PatientsPerSlot,
		SlotDurationMin:    v.SlotDurationMin,
		MaxBookingsPerDay:  v.MaxBookingsPerDay,
		Timings:            timings,
		CreatedAt:          v.CreatedAt,
		UpdatedAt:          v.UpdatedAt,
	}
}

type HospitalListItemResponse struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	IsOpen             bool      `json:"is_open"`
	EmergencyAvailable bool      `json:"emergency_available"`
	FeePolicy          string    `json:"fee_policy"`
	SlotDurationMin    int       `json:"slot_duration_min"`
}

func FromHospitalList(items []*queries.HospitalListItem) []*HospitalListItemResponse {
	resp := make([]*HospitalListItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, &HospitalListItemResponse{
			ID:                 item.ID,
			Name:               item.Name,
			IsOpen:             item.IsOpen,
			EmergencyAvailable: item.EmergencyAvailable,
			FeePolicy:          item.FeePolicy,
			SlotDurationMin:    item.SlotDurationMin,
		})
	}
	return resp
}

type SlotAvailabilityResponse struct {
	Slot      string `json:"slot"`
	StartMin  int    `json:"start_min"`
	Capacity  int    `json:"capacity"`
	Booked    int    `json:"booked"`
	Remaining int    `json:"remaining"`
}

type AvailabilityResponse struct {
	HospitalID   uuid.UUID                  `json:"hospital_id"`
	Date         string                     `json:"date"`
	Open         bool                       `json:"open"`
	DayCapacity  int                        `json:"day_capacity"`
	DayBooked    int                        `json:"day_booked"`
	DayRemaining int                        `json:"day_remaining"`
	Slots        []SlotAvailabilityResponse `json:"slots"`
}

func FromAvailabilityView(v *queries.AvailabilityView) *AvailabilityResponse {
	slots := make([]SlotAvailabilityResponse, 0, len(v.Slots))
	for _, s := range v.Slots {
		slots = append(slots, SlotAvailabilityResponse{
			Slot:      s.Slot,
			StartMin:  s.StartMin,
			Capacity:  s.Capacity,
			Booked:    s.Booked,
			Remaining: s.Remaining,
		})
	}
	return &AvailabilityResponse{
		HospitalID:   v.HospitalID,
		Date:         v.Date,
		Open:         v.Open,
		DayCapacity:  v.DayCapacity,
		DayBooked:    v.DayBooked,
		DayRemaining: v.DayRemaining,
		Slots:        slots,
	}
}
