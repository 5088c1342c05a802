package queries

import (
	"context"
	"time"

	"medibook/internal/domain/booking"
	"medibook/internal/domain/user"
	"medibook/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrBookingViewNotFound = errs.New("booking not found")
	ErrBookingAccessDenied = errs.New("booking does not belong to caller")
	ErrInvalidListCursor   = errs.New("invalid list cursor")
	ErrInvalidQueryDate    = errs.New("invalid date parameter")
)

type Cursor struct {
	After string
}

type BookingQueries interface {
	GetByID(ctx context.Context, actorID uuid.UUID, role user.Role, id uuid.UUID) (*BookingView, error)
	// GetByIDSystem bypasses ownership checks for command read-after-write.
	GetByIDSystem(ctx context.Context, id uuid.UUID) (*BookingView, error)
	ListByUser(ctx context.Context, userID uuid.UUID, after *Cursor, limit int) ([]*BookingListItem, *Cursor, error)
	ListForHospitalDay(ctx context.Context, hospitalID uuid.UUID, date string) ([]*BookingListItem, error)
}

type BookingViewRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BookingView, error)
	FindFirstPageByUser(ctx context.Context, userID uuid.UUID, limit int32) ([]*BookingListItem, error)
	FindPageByUserAfter(ctx context.Context, userID uuid.UUID, after time.Time, afterID uuid.UUID, limit int32) ([]*BookingListItem, error)
	FindByHospitalDay(ctx context.Context, hospitalID uuid.UUID, day time.Time) ([]*BookingListItem, error)
	CountActiveBySlot(ctx context.Context, hospitalID uuid.UUID, from, to time.Time) ([]SlotCount, error)
}

type bookingQueriesImpl struct {
	repo BookingViewRepo
	zone *time.Location
}

func NewBookingQueries(repo BookingViewRepo, zone *time.Location) BookingQueries {
	return &bookingQueriesImpl{repo: repo, zone: zone}
}

// Patients only see their own bookings; hospital and admin roles see any.
func (q *bookingQueriesImpl) GetByID(ctx context.Context, actorID uuid.UUID, role user.Role, id uuid.UUID) (*BookingView, error) {
	view, err := q.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role == user.RolePatient && view.UserID != actorID {
		return nil, ErrBookingAccessDenied
	}
	return view, nil
}

func (q *bookingQueriesImpl) GetByIDSystem(ctx context.Context, id uuid.UUID) (*BookingView, error) {
	return q.repo.FindByID(ctx, id)
}

func (q *bookingQueriesImpl) ListByUser(ctx context.Context, userID uuid.UUID, after *Cursor, limit int) ([]*BookingListItem, *Cursor, error) {
	limit = ClampLimit(limit)

	var (
		rows []*BookingListItem
		err  error
	)
	if after == nil || after.After == "" {
		rows, err = q.repo.FindFirstPageByUser(ctx, userID, int32(limit))
	} else {
		afterTime, afterID, decodeErr := DecodeAfterCursor(after.After)
		if decodeErr != nil {
			return nil, nil, errs.Mark(decodeErr, ErrInvalidListCursor)
		}
		rows, err = q.repo.FindPageByUserAfter(ctx, userID, afterTime, afterID, int32(limit))
	}
	if err != nil {
		return nil, nil, err
	}

	var next *Cursor
	if len(rows) == limit {
		last := rows[len(rows)-1]
		next = &Cursor{After: EncodeAfterCursor(last.CreatedAt, last.ID)}
	}
	return rows, next, nil
}

func (q *bookingQueriesImpl) ListForHospitalDay(ctx context.Context, hospitalID uuid.UUID, date string) ([]*BookingListItem, error) {
	day, err := booking.ParseCivilDate(date, q.zone)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidQueryDate)
	}
	return q.repo.FindByHospitalDay(ctx, hospitalID, day)
}
