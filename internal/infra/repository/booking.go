package repository

import (
	"context"
	"time"

	"medibook/internal/domain/booking"
	"medibook/internal/infra"
	"medibook/internal/infra/db"

	"github.com/google/uuid"
)

// BookingRepository is the write-side store for booking aggregates. All
// methods take the transaction they run in; capacity counts and token
// sequencing are only meaningful behind AcquireDayLock.
type BookingRepository struct {
	zone *time.Location
}

func NewBookingRepository(zone *time.Location) *BookingRepository {
	return &BookingRepository{zone: zone}
}

const bookingColumns = `
	id, hospital_id, user_id, token_number, status, emergency,
	appointment_at, time_slot, payment_method, payment_status,
	platform_fee, emergency_fee, tax, total,
	order_id, payment_id, refund_id, refund_amount, refund_status,
	rejection_reason, notes, created_at, updated_at`

func (r *BookingRepository) Create(ctx context.Context, tx db.DBTX, b *booking.Booking) error {
	p := b.Payment()
	fees := p.Breakdown()

	var reason *string
	if b.RejectionReason() != nil {
		v := b.RejectionReason().String()
		reason = &v
	}

	_, err := tx.Exec(ctx, `
		INSERT INTO bookings (
			id, hospital_id, user_id, token_number, status, emergency,
			appointment_at, appointment_date, time_slot,
			payment_method, payment_status,
			platform_fee, emergency_fee, tax, total,
			order_id, payment_id, refund_id, refund_amount, refund_status,
			rejection_reason, notes, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9,
			$10, $11,
			$12, $13, $14, $15,
			$16, $17, $18, $19, $20,
			$21, $22, $23, $24
		)`,
		b.ID(), b.HospitalID(), b.UserID(), b.Token().String(), b.Status().String(), b.IsEmergency(),
		b.Appointment().At(), b.Appointment().CivilDate(), b.Appointment().DisplaySlot(),
		p.Method(), p.Status(),
		fees.PlatformFee, fees.EmergencyFee, fees.Tax, fees.Total,
		p.OrderID(), p.PaymentID(), p.RefundID(), p.RefundAmount(), p.RefundStatus(),
		reason, nullableNote(b.Notes()), b.CreatedAt(), b.UpdatedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create booking", err)
	}
	return nil
}

func (r *BookingRepository) Update(ctx context.Context, tx db.DBTX, b *booking.Booking) error {
	p := b.Payment()

	var reason *string
	if b.RejectionReason() != nil {
		v := b.RejectionReason().String()
		reason = &v
	}

	tag, err := tx.Exec(ctx, `
		UPDATE bookings SET
			status = $2,
			payment_status = $3,
			order_id = $4,
			payment_id = $5,
			refund_id = $6,
			refund_amount = $7,
			refund_status = $8,
			rejection_reason = $9,
			notes = $10,
			updated_at = now()
		WHERE id = $1`,
		b.ID(), b.Status().String(), p.Status(),
		p.OrderID(), p.PaymentID(), p.RefundID(), p.RefundAmount(), p.RefundStatus(),
		reason, nullableNote(b.Notes()),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update booking", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("booking not found for update", nil, infra.KindNotFound)
	}
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, tx db.DBTX, id uuid.UUID) error {
	tag, err := tx.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return infra.WrapRepoErr("failed to delete booking", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("booking not found for delete", nil, infra.KindNotFound)
	}
	return nil
}

// AcquireDayLock takes a transaction-scoped advisory lock on the
// (hospital, civil day) pair. Released automatically at commit/rollback.
func (r *BookingRepository) AcquireDayLock(ctx context.Context, tx db.DBTX, hospitalID uuid.UUID, day time.Time) error {
	_, err := tx.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1), hashtext($2))`,
		hospitalID.String(), day.Format("2006-01-02"),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to acquire day lock", err)
	}
	return nil
}

func (r *BookingRepository) CountActiveForDay(ctx context.Context, tx db.DBTX, hospitalID uuid.UUID, day time.Time) (int, error) {
	var count int
	err := tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM bookings
		WHERE hospital_id = $1 AND appointment_date = $2
		  AND status IN ('pending', 'confirmed')`,
		hospitalID, day,
	).Scan(&count)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to count day bookings", err)
	}
	return count, nil
}

func (r *BookingRepository) CountActiveInWindow(ctx context.Context, tx db.DBTX, hospitalID uuid.UUID, from, to time.Time) (int, error) {
	var count int
	err := tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM bookings
		WHERE hospital_id = $1
		  AND appointment_at >= $2 AND appointment_at < $3
		  AND status IN ('pending', 'confirmed')`,
		hospitalID, from, to,
	).Scan(&count)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to count slot bookings", err)
	}
	return count, nil
}

// NextTokenSeq derives the next creation-order sequence from the highest
// sequence already issued for the day. Cancelled and rejected rows keep
// their tokens, so sequences are never reused.
func (r *BookingRepository) NextTokenSeq(ctx context.Context, tx db.DBTX, hospitalID uuid.UUID, day time.Time) (int, error) {
	var maxSeq int
	err := tx.QueryRow(ctx, `
		SELECT COALESCE(MAX((substring(token_number from '\d+$'))::int), 0)
		FROM bookings
		WHERE hospital_id = $1 AND appointment_date = $2`,
		hospitalID, day,
	).Scan(&maxSeq)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to read token sequence", err)
	}
	return maxSeq + 1, nil
}

func (r *BookingRepository) FindStalePendingOnline(ctx context.Context, tx db.DBTX, cutoff time.Time, limit int32) ([]*booking.Booking, error) {
	rows, err := tx.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE status = 'pending'
		  AND payment_method = 'online'
		  AND payment_status = 'pending'
		  AND created_at <= $1
		ORDER BY created_at
		LIMIT $2
		FOR UPDATE SKIP LOCKED`,
		cutoff, limit,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find stale pending bookings", err)
	}
	defer rows.Close()

	var result []*booking.Booking
	for rows.Next() {
		b, scanErr := scanBooking(rows, r.zone)
		if scanErr != nil {
			return nil, infra.WrapRepoErr("failed to scan stale booking", scanErr)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate stale bookings", err)
	}
	return result, nil
}

// LegacyTokenDays lists the appointment days of a hospital that still
// hold bare-numeric tokens. The backfill locks each of these days
// before rewriting so it cannot race a live allocation.
func (r *BookingRepository) LegacyTokenDays(ctx context.Context, tx db.DBTX, hospitalID uuid.UUID) ([]time.Time, error) {
	rows, err := tx.Query(ctx, `
		SELECT DISTINCT appointment_date
		FROM bookings
		WHERE hospital_id = $1 AND token_number ~ '^\d+$'
		ORDER BY appointment_date`,
		hospitalID,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list legacy token days", err)
	}
	defer rows.Close()

	var days []time.Time
	for rows.Next() {
		var day time.Time
		if scanErr := rows.Scan(&day); scanErr != nil {
			return nil, infra.WrapRepoErr("failed to scan legacy token day", scanErr)
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate legacy token days", err)
	}
	return days, nil
}

// RewriteLegacyTokens renumbers bare-numeric tokens into the prefixed
// format, per appointment day in creation order, starting after the
// highest already-prefixed sequence of each day.
func (r *BookingRepository) RewriteLegacyTokens(ctx context.Context, tx db.DBTX, hospitalID uuid.UUID, prefix string) (int64, error) {
	tag, err := tx.Exec(ctx, `
		WITH existing AS (
			SELECT appointment_date,
			       COALESCE(MAX((substring(token_number from '\d+$'))::int), 0) AS max_seq
			FROM bookings
			WHERE hospital_id = $1 AND token_number !~ '^\d+$'
			GROUP BY appointment_date
		),
		legacy AS (
			SELECT b.id, b.appointment_date,
			       ROW_NUMBER() OVER (
			           PARTITION BY b.appointment_date
			           ORDER BY b.created_at, b.id
			       ) AS rn
			FROM bookings b
			WHERE b.hospital_id = $1 AND b.token_number ~ '^\d+$'
		)
		UPDATE bookings b
		SET token_number = $2
		        || CASE WHEN b.emergency THEN 'E' ELSE '' END
		        || lpad((l.rn + COALESCE(e.max_seq, 0))::text, 3, '0'),
		    updated_at = now()
		FROM legacy l
		LEFT JOIN existing e ON e.appointment_date = l.appointment_date
		WHERE b.id = l.id`,
		hospitalID, prefix,
	)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to rewrite legacy tokens", err)
	}
	return tag.RowsAffected(), nil
}

// FindByID loads the aggregate for command-side mutation.
func (r *BookingRepository) FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*booking.Booking, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE id = $1`,
		id,
	)
	b, err := scanBooking(row, r.zone)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find booking by id", err)
	}
	return b, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner, zone *time.Location) (*booking.Booking, error) {
	var (
		id, hospitalID, userID             uuid.UUID
		token, status, timeSlot            string
		emergency                          bool
		appointmentAt                      time.Time
		method, paymentStatus              string
		platformFee, emergencyFee          int32
		tax, total                         int32
		orderID, paymentID, refundID       *string
		refundAmount                       *int32
		refundStatus, rejectReason, noteSt *string
		createdAt, updatedAt               time.Time
	)
	if err := row.Scan(
		&id, &hospitalID, &userID, &token, &status, &emergency,
		&appointmentAt, &timeSlot, &method, &paymentStatus,
		&platformFee, &emergencyFee, &tax, &total,
		&orderID, &paymentID, &refundID, &refundAmount, &refundStatus,
		&rejectReason, &noteSt, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	payment := booking.ReconstructPayment(
		booking.PaymentMethod(method),
		booking.PaymentStatus(paymentStatus),
		booking.FeeBreakdown{
			PlatformFee:  platformFee,
			EmergencyFee: emergencyFee,
			Tax:          tax,
			Total:        total,
		},
		orderID, paymentID, refundID, refundAmount, refundStatus,
	)

	var reason *booking.RejectionReason
	if rejectReason != nil {
		rr := booking.ReconstructRejectionReason(*rejectReason)
		reason = &rr
	}
	note := booking.Note{}
	if noteSt != nil {
		note = booking.NewNote(*noteSt)
	}

	return booking.ReconstructBooking(
		id, hospitalID, userID,
		booking.ReconstructAppointmentTime(appointmentAt, timeSlot, zone),
		booking.ReconstructToken(token),
		booking.Status(status),
		emergency,
		payment,
		reason,
		note,
		createdAt, updatedAt,
	), nil
}

func nullableNote(n booking.Note) *string {
	if n.IsEmpty() {
		return nil
	}
	v := n.String()
	return &v
}
