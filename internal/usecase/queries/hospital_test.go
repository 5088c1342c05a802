//go:build unit

package queries_test

import (
	"context"
	"testing"
	"time"

	"medibook/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHospitalViewRepo struct {
	view *queries.HospitalView
}

func (f *fakeHospitalViewRepo) List(_ context.Context) ([]*queries.HospitalListItem, error) {
	return nil, nil
}

func (f *fakeHospitalViewRepo) FindByID(_ context.Context, _ uuid.UUID) (*queries.HospitalView, error) {
	if f.view == nil {
		return nil, queries.ErrHospitalViewNotFound
	}
	return f.view, nil
}

type fakeSlotCountRepo struct {
	fakeBookingViewRepo
	counts []queries.SlotCount
}

func (f *fakeSlotCountRepo) CountActiveBySlot(_ context.Context, _ uuid.UUID, _, _ time.Time) ([]queries.SlotCount, error) {
	return f.counts, nil
}

// allWeekHospital is open 09:00-18:00 every day with 30 minute slots.
func allWeekHospital() *queries.HospitalView {
	timings := make([]queries.DayTimingView, 0, 7)
	for wd := 0; wd < 7; wd++ {
		timings = append(timings, queries.DayTimingView{Weekday: wd, OpenMin: 540, CloseMin: 1080, Open: true})
	}
	return &queries.HospitalView{
		ID:                uuid.New(),
		Name:              "City General Hospital",
		PatientsPerSlot:   3,
		SlotDurationMin:   30,
		MaxBookingsPerDay: 50,
		Timings:           timings,
	}
}

func at(hour, minute int) time.Time {
	// 26-12-2026 is a Saturday
	return time.Date(2026, 12, 26, hour, minute, 0, 0, time.UTC)
}

func TestAvailability(t *testing.T) {
	t.Run("folds appointment counts into slot buckets", func(t *testing.T) {
		h := allWeekHospital()
		bookings := &fakeSlotCountRepo{counts: []queries.SlotCount{
			{AppointmentAt: at(9, 30), Count: 2},
			{AppointmentAt: at(9, 40), Count: 1},
			{AppointmentAt: at(14, 0), Count: 1},
		}}
		q := queries.NewHospitalQueries(&fakeHospitalViewRepo{view: h}, bookings, time.UTC)

		view, err := q.Availability(context.Background(), h.ID, "26-12-2026")
		require.NoError(t, err)

		assert.True(t, view.Open)
		assert.Equal(t, "26-12-2026", view.Date)
		assert.Equal(t, 50, view.DayCapacity)
		assert.Equal(t, 4, view.DayBooked)
		assert.Equal(t, 46, view.DayRemaining)
		assert.Len(t, view.Slots, 18)

		bySlot := make(map[string]queries.SlotAvailability)
		for _, s := range view.Slots {
			bySlot[s.Slot] = s
		}

		// 09:30 and 09:40 land in the same 30 minute bucket
		nine30 := bySlot["9:30 AM"]
		assert.Equal(t, 3, nine30.Capacity)
		assert.Equal(t, 3, nine30.Booked)
		assert.Equal(t, 0, nine30.Remaining)

		two := bySlot["2:00 PM"]
		assert.Equal(t, 1, two.Booked)
		assert.Equal(t, 2, two.Remaining)

		nine := bySlot["9:00 AM"]
		assert.Equal(t, 0, nine.Booked)
		assert.Equal(t, 3, nine.Remaining)
	})

	t.Run("counts outside operating hours are ignored", func(t *testing.T) {
		h := allWeekHospital()
		bookings := &fakeSlotCountRepo{counts: []queries.SlotCount{
			{AppointmentAt: at(8, 0), Count: 2},
			{AppointmentAt: at(18, 0), Count: 1},
		}}
		q := queries.NewHospitalQueries(&fakeHospitalViewRepo{view: h}, bookings, time.UTC)

		view, err := q.Availability(context.Background(), h.ID, "26-12-2026")
		require.NoError(t, err)
		assert.Zero(t, view.DayBooked)
	})

	t.Run("a closed day has no slots", func(t *testing.T) {
		h := allWeekHospital()
		for i := range h.Timings {
			h.Timings[i].Open = false
		}
		q := queries.NewHospitalQueries(&fakeHospitalViewRepo{view: h}, &fakeSlotCountRepo{}, time.UTC)

		view, err := q.Availability(context.Background(), h.ID, "26-12-2026")
		require.NoError(t, err)
		assert.False(t, view.Open)
		assert.Empty(t, view.Slots)
	})

	t.Run("rejects a malformed date", func(t *testing.T) {
		q := queries.NewHospitalQueries(&fakeHospitalViewRepo{view: allWeekHospital()}, &fakeSlotCountRepo{}, time.UTC)

		_, err := q.Availability(context.Background(), uuid.New(), "26/12/2026")
		assert.ErrorIs(t, err, queries.ErrInvalidQueryDate)
	})

	t.Run("reports an unknown hospital", func(t *testing.T) {
		q := queries.NewHospitalQueries(&fakeHospitalViewRepo{}, &fakeSlotCountRepo{}, time.UTC)

		_, err := q.Availability(context.Background(), uuid.New(), "26-12-2026")
		assert.ErrorIs(t, err, queries.ErrHospitalViewNotFound)
	})
}
