package hospital

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrEmptyName         = errors.New("hospital name cannot be empty")
	ErrNameTooShort      = errors.New("hospital name must have at least three letters")
	ErrNegativeFee       = errors.New("fee configuration cannot be negative")
	ErrInvalidTaxRate    = errors.New("tax rate out of range")
	ErrInvalidCapacity   = errors.New("patients per slot must be positive")
	ErrInvalidDailyCap   = errors.New("max bookings per day must be positive")
	ErrInvalidApproval   = errors.New("invalid approval status")
	ErrInvalidFeePolicy  = errors.New("invalid fee policy")
	ErrNegativeBasePrice = errors.New("base price cannot be negative")
)

type Hospital struct {
	id                 uuid.UUID
	name               string
	approval           ApprovalStatus
	open               bool
	emergencyAvailable bool
	feePolicy          FeePolicy
	basePrice          int32
	platformFee        int32
	emergencyFee       int32
	taxRateBps         int32
	patientsPerSlot    int
	slotDurationMin    int
	maxBookingsPerDay  int
	timings            WeeklyTimings
}

type Params struct {
	ID                 uuid.UUID
	Name               string
	Approval           ApprovalStatus
	Open               bool
	EmergencyAvailable bool
	FeePolicy          FeePolicy
	BasePrice          int32
	PlatformFee        int32
	EmergencyFee       int32
	TaxRateBps         int32
	PatientsPerSlot    int
	SlotDurationMin    int
	MaxBookingsPerDay  int
	Timings            []DayTiming
}

func NewHospital(p Params) (*Hospital, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if len(letterPrefix(name, 3)) < 3 {
		return nil, ErrNameTooShort
	}
	if !p.Approval.IsValid() {
		return nil, ErrInvalidApproval
	}
	if !p.FeePolicy.IsValid() {
		return nil, ErrInvalidFeePolicy
	}
	if p.PlatformFee < 0 || p.EmergencyFee < 0 {
		return nil, ErrNegativeFee
	}
	if p.BasePrice < 0 {
		return nil, ErrNegativeBasePrice
	}
	if p.TaxRateBps < 0 || p.TaxRateBps > 10000 {
		return nil, ErrInvalidTaxRate
	}
	if p.PatientsPerSlot <= 0 {
		return nil, ErrInvalidCapacity
	}
	if p.MaxBookingsPerDay <= 0 {
		return nil, ErrInvalidDailyCap
	}

	timings, err := NewWeeklyTimings(p.Timings, p.SlotDurationMin)
	if err != nil {
		return nil, err
	}

	id := p.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &Hospital{
		id:                 id,
		name:               name,
		approval:           p.Approval,
		open:               p.Open,
		emergencyAvailable: p.EmergencyAvailable,
		feePolicy:          p.FeePolicy,
		basePrice:          p.BasePrice,
		platformFee:        p.PlatformFee,
		emergencyFee:       p.EmergencyFee,
		taxRateBps:         p.TaxRateBps,
		patientsPerSlot:    p.PatientsPerSlot,
		slotDurationMin:    p.SlotDurationMin,
		maxBookingsPerDay:  p.MaxBookingsPerDay,
		timings:            timings,
	}, nil
}

func (h *Hospital) ID() uuid.UUID            { return h.id }
func (h *Hospital) Name() string             { return h.name }
func (h *Hospital) Approval() ApprovalStatus { return h.approval }
func (h *Hospital) IsOpen() bool             { return h.open }
func (h *Hospital) EmergencyAvailable() bool { return h.emergencyAvailable }
func (h *Hospital) FeePolicy() FeePolicy     { return h.feePolicy }
func (h *Hospital) BasePrice() int32         { return h.basePrice }
func (h *Hospital) PlatformFee() int32       { return h.platformFee }
func (h *Hospital) EmergencyFee() int32      { return h.emergencyFee }
func (h *Hospital) TaxRateBps() int32        { return h.taxRateBps }
func (h *Hospital) PatientsPerSlot() int     { return h.patientsPerSlot }
func (h *Hospital) SlotDurationMin() int     { return h.slotDurationMin }
func (h *Hospital) MaxBookingsPerDay() int   { return h.maxBookingsPerDay }
func (h *Hospital) Timings() WeeklyTimings   { return h.timings }

// IsBookable reports whether the hospital can receive new bookings.
func (h *Hospital) IsBookable() bool {
	return h.approval == ApprovalApproved && h.open
}

// TokenPrefix is the first three letters of the name, uppercased,
// skipping anything that is not a letter.
func (h *Hospital) TokenPrefix() string {
	return strings.ToUpper(letterPrefix(h.name, 3))
}

func letterPrefix(s string, n int) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			b.WriteRune(r)
			if b.Len() == n {
				break
			}
		}
	}
	return b.String()
}
