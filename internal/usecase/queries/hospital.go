package queries

import (
	"context"
	"time"

	"medibook/internal/domain/booking"
	"medibook/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrHospitalViewNotFound = errs.New("hospital not found")

type HospitalQueries interface {
	List(ctx context.Context) ([]*HospitalListItem, error)
	GetByID(ctx context.Context, id uuid.UUID) (*HospitalView, error)
	Availability(ctx context.Context, id uuid.UUID, date string) (*AvailabilityView, error)
}

type HospitalViewRepo interface {
	List(ctx context.Context) ([]*HospitalListItem, error)
	FindByID(ctx context.Context, id uuid.UUID) (*HospitalView, error)
}

type hospitalQueriesImpl struct {
	hospitals HospitalViewRepo
	bookings  BookingViewRepo
	zone      *time.Location
}

func NewHospitalQueries(hospitals HospitalViewRepo, bookings BookingViewRepo, zone *time.Location) HospitalQueries {
	return &hospitalQueriesImpl{hospitals: hospitals, bookings: bookings, zone: zone}
}

func (q *hospitalQueriesImpl) List(ctx context.Context) ([]*HospitalListItem, error) {
	return q.hospitals.List(ctx)
}

func (q *hospitalQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*HospitalView, error) {
	return q.hospitals.FindByID(ctx, id)
}

// Availability projects the day's slot buckets with per-bucket remaining
// capacity. Counts are a read-time snapshot; admission is still decided
// inside the serialized write transaction.
func (q *hospitalQueriesImpl) Availability(ctx context.Context, id uuid.UUID, date string) (*AvailabilityView, error) {
	day, err := booking.ParseCivilDate(date, q.zone)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidQueryDate)
	}

	h, err := q.hospitals.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	view := &AvailabilityView{
		HospitalID:  id,
		Date:        booking.FormatCivilDate(day),
		DayCapacity: h.MaxBookingsPerDay,
	}

	timing, ok := timingFor(h.Timings, day.Weekday())
	if !ok || !timing.Open {
		return view, nil
	}
	view.Open = true

	counts, err := q.bookings.CountActiveBySlot(ctx, id, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	booked := make(map[int]int)
	total := 0
	for _, c := range counts {
		at := c.AppointmentAt.In(q.zone)
		minutes := at.Hour()*60 + at.Minute()
		if minutes < timing.OpenMin || minutes >= timing.CloseMin {
			continue
		}
		bucket := timing.OpenMin + ((minutes-timing.OpenMin)/h.SlotDurationMin)*h.SlotDurationMin
		booked[bucket] += c.Count
		total += c.Count
	}

	for start := timing.OpenMin; start < timing.CloseMin; start += h.SlotDurationMin {
		taken := booked[start]
		remaining := h.PatientsPerSlot - taken
		if remaining < 0 {
			remaining = 0
		}
		view.Slots = append(view.Slots, SlotAvailability{
			Slot:      booking.FormatSlot(start),
			StartMin:  start,
			Capacity:  h.PatientsPerSlot,
			Booked:    taken,
			Remaining: remaining,
		})
	}

	view.DayBooked = total
	view.DayRemaining = h.MaxBookingsPerDay - total
	if view.DayRemaining < 0 {
		view.DayRemaining = 0
	}
	return view, nil
}

func timingFor(timings []DayTimingView, weekday time.Weekday) (DayTimingView, bool) {
	for _, t := range timings {
		if t.Weekday == int(weekday) {
			return t, true
		}
	}
	return DayTimingView{}, false
}
