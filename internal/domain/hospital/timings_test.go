//go:build unit

package hospital_test

import (
	"testing"
	"time"

	"medibook/internal/domain/hospital"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ist = time.FixedZone("IST", 19800)

func weekOpen(openMin, closeMin int) []hospital.DayTiming {
	days := make([]hospital.DayTiming, 0, 7)
	for w := time.Sunday; w <= time.Saturday; w++ {
		days = append(days, hospital.DayTiming{
			Weekday:  w,
			OpenMin:  openMin,
			CloseMin: closeMin,
			Open:     true,
		})
	}
	return days
}

func TestNewWeeklyTimings(t *testing.T) {
	t.Run("valid week", func(t *testing.T) {
		wt, err := hospital.NewWeeklyTimings(weekOpen(9*60, 18*60), 30)
		require.NoError(t, err)
		assert.True(t, wt.ForWeekday(time.Monday).Open)
	})

	t.Run("closed days are allowed and contribute nothing", func(t *testing.T) {
		days := []hospital.DayTiming{
			{Weekday: time.Monday, OpenMin: 9 * 60, CloseMin: 18 * 60, Open: true},
			{Weekday: time.Sunday, Open: false},
		}
		wt, err := hospital.NewWeeklyTimings(days, 30)
		require.NoError(t, err)
		assert.Equal(t, 18, wt.TotalDailySlots(time.Monday, 30))
		assert.Equal(t, 0, wt.TotalDailySlots(time.Sunday, 30))
		assert.Equal(t, 0, wt.TotalDailySlots(time.Tuesday, 30))
	})

	cases := []struct {
		name    string
		days    []hospital.DayTiming
		slotMin int
		errIs   error
	}{
		{
			name:    "close before open",
			days:    []hospital.DayTiming{{Weekday: time.Monday, OpenMin: 18 * 60, CloseMin: 9 * 60, Open: true}},
			slotMin: 30,
			errIs:   hospital.ErrInvalidTimingWindow,
		},
		{
			name:    "window not divisible by slot duration",
			days:    []hospital.DayTiming{{Weekday: time.Monday, OpenMin: 9 * 60, CloseMin: 9*60 + 45, Open: true}},
			slotMin: 30,
			errIs:   hospital.ErrUnevenSlotDivision,
		},
		{
			name:    "slot duration outside allowed set",
			days:    weekOpen(9*60, 18*60),
			slotMin: 25,
			errIs:   hospital.ErrInvalidSlotDuration,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := hospital.NewWeeklyTimings(c.days, c.slotMin)
			require.ErrorIs(t, err, c.errIs)
		})
	}
}

func TestTotalDailySlots(t *testing.T) {
	// 09:00-18:00 with 30 minute slots is the reference inventory: 18
	// slots, 36 patients at 2 per slot.
	wt, err := hospital.NewWeeklyTimings(weekOpen(9*60, 18*60), 30)
	require.NoError(t, err)

	assert.Equal(t, 18, wt.TotalDailySlots(time.Wednesday, 30))
	assert.Equal(t, 36, wt.TotalDailySlots(time.Wednesday, 30)*2)
}

func TestBucketFor(t *testing.T) {
	wt, err := hospital.NewWeeklyTimings(weekOpen(9*60, 18*60), 30)
	require.NoError(t, err)

	t.Run("rounds down to slot start", func(t *testing.T) {
		at := time.Date(2026, 3, 4, 10, 20, 0, 0, ist)
		bucket, err := wt.BucketFor(at, 30)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 3, 4, 10, 0, 0, 0, ist), bucket.Start)
		assert.Equal(t, time.Date(2026, 3, 4, 10, 30, 0, 0, ist), bucket.End)
	})

	t.Run("exact slot start maps to itself", func(t *testing.T) {
		at := time.Date(2026, 3, 4, 9, 30, 0, 0, ist)
		bucket, err := wt.BucketFor(at, 30)
		require.NoError(t, err)
		assert.Equal(t, at, bucket.Start)
	})

	t.Run("before opening rejected", func(t *testing.T) {
		at := time.Date(2026, 3, 4, 8, 59, 0, 0, ist)
		_, err := wt.BucketFor(at, 30)
		require.ErrorIs(t, err, hospital.ErrOutsideOperatingTime)
	})

	t.Run("at close rejected", func(t *testing.T) {
		at := time.Date(2026, 3, 4, 18, 0, 0, 0, ist)
		_, err := wt.BucketFor(at, 30)
		require.ErrorIs(t, err, hospital.ErrOutsideOperatingTime)
	})
}

func TestTokenPrefix(t *testing.T) {
	cases := []struct {
		name     string
		hospital string
		want     string
	}{
		{name: "plain name", hospital: "City General", want: "CIT"},
		{name: "lowercase", hospital: "apollo clinic", want: "APO"},
		{name: "skips non letters", hospital: "St. Mary's", want: "STM"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h := newTestHospital(t, c.hospital)
			assert.Equal(t, c.want, h.TokenPrefix())
		})
	}
}

func newTestHospital(t *testing.T, name string) *hospital.Hospital {
	t.Helper()
	h, err := hospital.NewHospital(hospital.Params{
		Name:              name,
		Approval:          hospital.ApprovalApproved,
		Open:              true,
		FeePolicy:         hospital.FeePolicyFlat,
		PlatformFee:       3000,
		EmergencyFee:      5000,
		TaxRateBps:        1800,
		PatientsPerSlot:   2,
		SlotDurationMin:   30,
		MaxBookingsPerDay: 100,
		Timings:           weekOpen(9*60, 18*60),
	})
	require.NoError(t, err)
	return h
}
