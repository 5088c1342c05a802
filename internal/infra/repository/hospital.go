package repository

import (
	"context"
	"encoding/json"
	"time"

	"medibook/internal/domain/hospital"
	"medibook/internal/infra"
	"medibook/internal/infra/db"

	"github.com/google/uuid"
)

// HospitalRepository loads hospital configuration for the write side.
// Hospitals are administered out of band; the booking flow only reads.
type HospitalRepository struct{}

func NewHospitalRepository() *HospitalRepository {
	return &HospitalRepository{}
}

type dayTimingRow struct {
	Weekday  int  `json:"weekday"`
	OpenMin  int  `json:"open_min"`
	CloseMin int  `json:"close_min"`
	Open     bool `json:"open"`
}

func (r *HospitalRepository) FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*hospital.Hospital, error) {
	var (
		name, approval, feePolicy string
		open, emergencyAvailable  bool
		basePrice, platformFee    int32
		emergencyFee, taxRateBps  int32
		patientsPerSlot           int
		slotDurationMin           int
		maxBookingsPerDay         int
		timingsJSON               []byte
	)
	err := tx.QueryRow(ctx, `
		SELECT name, approval_status, is_open, emergency_available,
		       fee_policy, base_price, platform_fee, emergency_fee, tax_rate_bps,
		       patients_per_slot, slot_duration_min, max_bookings_per_day, timings
		FROM hospitals
		WHERE id = $1`,
		id,
	).Scan(
		&name, &approval, &open, &emergencyAvailable,
		&feePolicy, &basePrice, &platformFee, &emergencyFee, &taxRateBps,
		&patientsPerSlot, &slotDurationMin, &maxBookingsPerDay, &timingsJSON,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find hospital by id", err)
	}

	timings, err := decodeTimings(timingsJSON)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid hospital timings", err, infra.KindDBFailure)
	}

	h, err := hospital.NewHospital(hospital.Params{
		ID:                 id,
		Name:               name,
		Approval:           hospital.ApprovalStatus(approval),
		Open:               open,
		EmergencyAvailable: emergencyAvailable,
		FeePolicy:          hospital.FeePolicy(feePolicy),
		BasePrice:          basePrice,
		PlatformFee:        platformFee,
		EmergencyFee:       emergencyFee,
		TaxRateBps:         taxRateBps,
		PatientsPerSlot:    patientsPerSlot,
		SlotDurationMin:    slotDurationMin,
		MaxBookingsPerDay:  maxBookingsPerDay,
		Timings:            timings,
	})
	if err != nil {
		return nil, infra.WrapRepoErr("invalid hospital configuration", err, infra.KindDBFailure)
	}
	return h, nil
}

func decodeTimings(raw []byte) ([]hospital.DayTiming, error) {
	var rows []dayTimingRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}
	timings := make([]hospital.DayTiming, 0, len(rows))
	for _, row := range rows {
		timings = append(timings, hospital.DayTiming{
			Weekday:  time.Weekday(row.Weekday),
			OpenMin:  row.OpenMin,
			CloseMin: row.CloseMin,
			Open:     row.Open,
		})
	}
	return timings, nil
}
