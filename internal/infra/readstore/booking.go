package readstore

import (
	"context"
	"time"

	"medibook/internal/domain/booking"
	"medibook/internal/infra"
	"medibook/internal/infra/db"
	"medibook/internal/usecase/queries"

	"github.com/google/uuid"
)

// BookingReadStore serves the booking views. Joins are done here so the
// query layer stays free of SQL.
type BookingReadStore struct {
	db db.DBTX
}

func NewBookingReadStore(dbtx db.DBTX) *BookingReadStore {
	return &BookingReadStore{db: dbtx}
}

func (r *BookingReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
	row := r.db.QueryRow(ctx, `
		SELECT b.id, b.hospital_id, h.name, b.user_id, b.token_number, b.status,
		       b.emergency, b.appointment_date, b.time_slot,
		       b.payment_method, b.payment_status,
		       b.platform_fee, b.emergency_fee, b.tax, b.total,
		       b.order_id, b.refund_id, b.rejection_reason, b.notes,
		       b.created_at, b.updated_at
		FROM bookings b
		JOIN hospitals h ON h.id = b.hospital_id
		WHERE b.id = $1`,
		id,
	)

	var (
		v               queries.BookingView
		appointmentDate time.Time
	)
	err := row.Scan(
		&v.ID, &v.HospitalID, &v.HospitalName, &v.UserID, &v.TokenNumber, &v.Status,
		&v.Emergency, &appointmentDate, &v.TimeSlot,
		&v.PaymentMethod, &v.PaymentStatus,
		&v.PlatformFee, &v.EmergencyFee, &v.Tax, &v.Total,
		&v.OrderID, &v.RefundID, &v.RejectionReason, &v.Notes,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find booking view", err)
	}
	v.AppointmentDate = booking.FormatCivilDate(appointmentDate)
	return &v, nil
}

const bookingListSelect = `
	SELECT b.id, b.hospital_id, h.name, b.token_number, b.status, b.emergency,
	       b.appointment_date, b.time_slot, b.total, b.created_at
	FROM bookings b
	JOIN hospitals h ON h.id = b.hospital_id`

func (r *BookingReadStore) FindFirstPageByUser(ctx context.Context, userID uuid.UUID, limit int32) ([]*queries.BookingListItem, error) {
	rows, err := r.db.Query(ctx, bookingListSelect+`
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC, b.id DESC
		LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list bookings", err)
	}
	return scanBookingList(rows)
}

func (r *BookingReadStore) FindPageByUserAfter(ctx context.Context, userID uuid.UUID, after time.Time, afterID uuid.UUID, limit int32) ([]*queries.BookingListItem, error) {
	rows, err := r.db.Query(ctx, bookingListSelect+`
		WHERE b.user_id = $1
		  AND (b.created_at, b.id) < ($2, $3)
		ORDER BY b.created_at DESC, b.id DESC
		LIMIT $4`,
		userID, after, afterID, limit,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list bookings after cursor", err)
	}
	return scanBookingList(rows)
}

func (r *BookingReadStore) FindByHospitalDay(ctx context.Context, hospitalID uuid.UUID, day time.Time) ([]*queries.BookingListItem, error) {
	rows, err := r.db.Query(ctx, bookingListSelect+`
		WHERE b.hospital_id = $1 AND b.appointment_date = $2
		ORDER BY b.token_number`,
		hospitalID, day,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list hospital day bookings", err)
	}
	return scanBookingList(rows)
}

func (r *BookingReadStore) CountActiveBySlot(ctx context.Context, hospitalID uuid.UUID, from, to time.Time) ([]queries.SlotCount, error) {
	rows, err := r.db.Query(ctx, `
		SELECT appointment_at, COUNT(*)
		FROM bookings
		WHERE hospital_id = $1
		  AND appointment_at >= $2 AND appointment_at < $3
		  AND status IN ('pending', 'confirmed')
		GROUP BY appointment_at`,
		hospitalID, from, to,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to count bookings by slot", err)
	}
	defer rows.Close()

	var counts []queries.SlotCount
	for rows.Next() {
		var c queries.SlotCount
		if err := rows.Scan(&c.AppointmentAt, &c.Count); err != nil {
			return nil, infra.WrapRepoErr("failed to scan slot count", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate slot counts", err)
	}
	return counts, nil
}

type pgRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

func scanBookingList(rows pgRows) ([]*queries.BookingListItem, error) {
	defer rows.Close()

	var items []*queries.BookingListItem
	for rows.Next() {
		var (
			item            queries.BookingListItem
			appointmentDate time.Time
		)
		if err := rows.Scan(
			&item.ID, &item.HospitalID, &item.HospitalName, &item.TokenNumber,
			&item.Status, &item.Emergency, &appointmentDate, &item.TimeSlot,
			&item.Total, &item.CreatedAt,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking list item", err)
		}
		item.AppointmentDate = booking.FormatCivilDate(appointmentDate)
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate booking list", err)
	}
	return items, nil
}
