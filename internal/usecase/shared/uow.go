package shared

import (
	"context"
	"time"

	"medibook/internal/domain/booking"
	"medibook/internal/domain/hospital"
	"medibook/internal/infra/db"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: Read-only transaction for multi-table consistent reads
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error
	// WithDB: Single query operations using implicit transactions
	WithDB(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error
	// CommandReads: Direct access to command reads for validation outside transactions
	CommandReads() CommandReads
}

type Tx interface {
	Bookings() BookingRepository
	Reads() CommandReads
	DB() db.DBTX
}

type CommandReads interface {
	HospitalByID(ctx context.Context, id uuid.UUID) (*hospital.Hospital, error)
	BookingByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
}

type BookingRepository interface {
	Create(ctx context.Context, tx db.DBTX, b *booking.Booking) error
	Update(ctx context.Context, tx db.DBTX, b *booking.Booking) error
	// Delete removes a booking row entirely. Only used to compensate a
	// creation whose gateway order could not be opened.
	Delete(ctx context.Context, tx db.DBTX, id uuid.UUID) error

	// AcquireDayLock serializes writers on one (hospital, civil day)
	// pair for the remainder of the transaction. Capacity checks and
	// token sequencing are only safe behind it.
	AcquireDayLock(ctx context.Context, tx db.DBTX, hospitalID uuid.UUID, day time.Time) error
	CountActiveForDay(ctx context.Context, tx db.DBTX, hospitalID uuid.UUID, day time.Time) (int, error)
	CountActiveInWindow(ctx context.Context, tx db.DBTX, hospitalID uuid.UUID, from, to time.Time) (int, error)
	NextTokenSeq(ctx context.Context, tx db.DBTX, hospitalID uuid.UUID, day time.Time) (int, error)

	FindStalePendingOnline(ctx context.Context, tx db.DBTX, cutoff time.Time, limit int32) ([]*booking.Booking, error)
	// LegacyTokenDays lists the appointment days still holding
	// bare-numeric tokens, so the backfill can lock each one.
	LegacyTokenDays(ctx context.Context, tx db.DBTX, hospitalID uuid.UUID) ([]time.Time, error)
	RewriteLegacyTokens(ctx context.Context, tx db.DBTX, hospitalID uuid.UUID, prefix string) (int64, error)
}
