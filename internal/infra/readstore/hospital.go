package readstore

import (
	"context"
	"encoding/json"

	"medibook/internal/infra"
	"medibook/internal/infra/db"
	"medibook/internal/usecase/queries"

	"github.com/google/uuid"
)

type HospitalReadStore struct {
	db db.DBTX
}

func NewHospitalReadStore(dbtx db.DBTX) *HospitalReadStore {
	return &HospitalReadStore{db: dbtx}
}

// Only approved hospitals are listed publicly.
func (r *HospitalReadStore) List(ctx context.Context) ([]*queries.HospitalListItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, is_open, emergency_available, fee_policy, slot_duration_min
		FROM hospitals
		WHERE approval_status = 'approved'
		ORDER BY name`,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list hospitals", err)
	}
	defer rows.Close()

	var items []*queries.HospitalListItem
	for rows.Next() {
		var item queries.HospitalListItem
		if err := rows.Scan(
			&item.ID, &item.Name, &item.IsOpen, &item.EmergencyAvailable,
			&item.FeePolicy, &item.SlotDurationMin,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan hospital list item", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate hospitals", err)
	}
	return items, nil
}

func (r *HospitalReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.HospitalView, error) {
	var (
		v           queries.HospitalView
		timingsJSON []byte
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, name, approval_status, is_open, emergency_available,
		       fee_policy, base_price, platform_fee, emergency_fee, tax_rate_bps,
		       patients_per_slot, slot_duration_min, max_bookings_per_day,
		       timings, created_at, updated_at
		FROM hospitals
		WHERE id = $1`,
		id,
	).Scan(
		&v.ID, &v.Name, &v.ApprovalStatus, &v.IsOpen, &v.EmergencyAvailable,
		&v.FeePolicy, &v.BasePrice, &v.PlatformFee, &v.EmergencyFee, &v.TaxRateBps,
		&v.PatientsPerSlot, &v.SlotDurationMin, &v.MaxBookingsPerDay,
		&timingsJSON, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find hospital view", err)
	}

	if err := json.Unmarshal(timingsJSON, &v.Timings); err != nil {
		return nil, infra.WrapRepoErr("invalid hospital timings", err, infra.KindDBFailure)
	}
	return &v, nil
}
