//go:build unit || e2e

package builder

import (
	"time"

	"medibook/internal/domain/hospital"
	"medibook/internal/usecase/queries"

	"github.com/google/uuid"
)

// HospitalBuilder assembles hospital test data with sensible defaults:
// approved, open every day 09:00-18:00, 30-minute slots, 3 patients per
// slot, a flat platform fee of 30 paise and 18% tax.
type HospitalBuilder struct {
	ID                 uuid.UUID
	Name               string
	Approval           hospital.ApprovalStatus
	Open               bool
	EmergencyAvailable bool
	FeePolicy          hospital.FeePolicy
	BasePrice          int32
	PlatformFee        int32
	EmergencyFee       int32
	TaxRateBps         int32
	PatientsPerSlot    int
	SlotDurationMin    int
	MaxBookingsPerDay  int
	OpenMin            int
	CloseMin           int
}

func NewHospitalBuilder() *HospitalBuilder {
	return &HospitalBuilder{
		ID:                 uuid.New(),
		Name:               "City General Hospital",
		Approval:           hospital.ApprovalApproved,
		Open:               true,
		EmergencyAvailable: true,
		FeePolicy:          hospital.FeePolicyFlat,
		BasePrice:          0,
		PlatformFee:        30,
		EmergencyFee:       20,
		TaxRateBps:         1800,
		PatientsPerSlot:    3,
		SlotDurationMin:    30,
		MaxBookingsPerDay:  50,
		OpenMin:            9 * 60,
		CloseMin:           18 * 60,
	}
}

func (b *HospitalBuilder) WithID(id uuid.UUID) *HospitalBuilder {
	b.ID = id
	return b
}

func (b *HospitalBuilder) WithName(name string) *HospitalBuilder {
	b.Name = name
	return b
}

func (b *HospitalBuilder) WithApproval(status hospital.ApprovalStatus) *HospitalBuilder {
	b.Approval = status
	return b
}

func (b *HospitalBuilder) WithOpen(open bool) *HospitalBuilder {
	b.Open = open
	return b
}

func (b *HospitalBuilder) WithEmergencyAvailable(available bool) *HospitalBuilder {
	b.EmergencyAvailable = available
	return b
}

func (b *HospitalBuilder) WithPatientsPerSlot(n int) *HospitalBuilder {
	b.PatientsPerSlot = n
	return b
}

func (b *HospitalBuilder) WithMaxBookingsPerDay(n int) *HospitalBuilder {
	b.MaxBookingsPerDay = n
	return b
}

func (b *HospitalBuilder) WithSlotDuration(minutes int) *HospitalBuilder {
	b.SlotDurationMin = minutes
	return b
}

func (b *HospitalBuilder) WithHours(openMin, closeMin int) *HospitalBuilder {
	b.OpenMin = openMin
	b.CloseMin = closeMin
	return b
}

func (b *HospitalBuilder) weeklyTimings() []hospital.DayTiming {
	days := make([]hospital.DayTiming, 0, 7)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		days = append(days, hospital.DayTiming{
			Weekday:  wd,
			OpenMin:  b.OpenMin,
			CloseMin: b.CloseMin,
			Open:     true,
		})
	}
	return days
}

func (b *HospitalBuilder) BuildParams() hospital.Params {
	return hospital.Params{
		ID:                 b.ID,
		Name:               b.Name,
		Approval:           b.Approval,
		Open:               b.Open,
		EmergencyAvailable: b.EmergencyAvailable,
		FeePolicy:          b.FeePolicy,
		BasePrice:          b.BasePrice,
		PlatformFee:        b.PlatformFee,
		EmergencyFee:       b.EmergencyFee,
		TaxRateBps:         b.TaxRateBps,
		PatientsPerSlot:    b.PatientsPerSlot,
		SlotDurationMin:    b.SlotDurationMin,
		MaxBookingsPerDay:  b.MaxBookingsPerDay,
		Timings:            b.weeklyTimings(),
	}
}

func (b *HospitalBuilder) BuildEntity() (*hospital.Hospital, error) {
	return hospital.NewHospital(b.BuildParams())
}

func (b *HospitalBuilder) BuildView() *queries.HospitalView {
	timings := make([]queries.DayTimingView, 0, 7)
	for wd := 0; wd < 7; wd++ {
		timings = append(timings, queries.DayTimingView{
			Weekday:  wd,
			OpenMin:  b.OpenMin,
			CloseMin: b.CloseMin,
			Open:     true,
		})
	}
	return &queries.HospitalView{
		ID:                 b.ID,
		Name:               b.Name,
		ApprovalStatus:     string(b.Approval),
		IsOpen:             b.Open,
		EmergencyAvailable: b.EmergencyAvailable,
		FeePolicy:          string(b.FeePolicy),
		BasePrice:          b.BasePrice,
		PlatformFee:        b.PlatformFee,
		EmergencyFee:       b.EmergencyFee,
		TaxRateBps:         b.TaxRateBps,
		PatientsPerSlot:    b.PatientsPerSlot,
		SlotDurationMin:    b.SlotDurationMin,
		MaxBookingsPerDay:  b.MaxBookingsPerDay,
		Timings:            timings,
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}
}
