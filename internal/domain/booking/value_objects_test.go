//go:build unit

package booking_test

import (
	"testing"
	"time"

	"medibook/internal/domain/booking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ist = time.FixedZone("IST", 19800)

func TestNewAppointmentTime(t *testing.T) {
	t.Run("combines date and time in the regional zone", func(t *testing.T) {
		at, err := booking.NewAppointmentTime("25-12-2026", "09:30 AM", ist)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 12, 25, 9, 30, 0, 0, ist), at.At())
		assert.Equal(t, "09:30 AM", at.DisplaySlot())
	})

	t.Run("afternoon time", func(t *testing.T) {
		at, err := booking.NewAppointmentTime("01-06-2026", "2:45 PM", ist)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 6, 1, 14, 45, 0, 0, ist), at.At())
	})

	t.Run("civil date truncates to midnight", func(t *testing.T) {
		at, err := booking.NewAppointmentTime("25-12-2026", "11:59 PM", ist)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 12, 25, 0, 0, 0, 0, ist), at.CivilDate())
	})

	cases := []struct {
		name    string
		date    string
		timeStr string
		errIs   error
	}{
		{name: "slash separated date", date: "25/12/2026", timeStr: "09:30 AM", errIs: booking.ErrInvalidDateFormat},
		{name: "ISO date", date: "2026-12-25", timeStr: "09:30 AM", errIs: booking.ErrInvalidDateFormat},
		{name: "impossible date", date: "31-02-2026", timeStr: "09:30 AM", errIs: booking.ErrInvalidDateFormat},
		{name: "24h time", date: "25-12-2026", timeStr: "14:30", errIs: booking.ErrInvalidTimeFormat},
		{name: "missing marker", date: "25-12-2026", timeStr: "9:30", errIs: booking.ErrInvalidTimeFormat},
		{name: "lowercase marker", date: "25-12-2026", timeStr: "9:30 am", errIs: booking.ErrInvalidTimeFormat},
		{name: "hour thirteen", date: "25-12-2026", timeStr: "13:30 PM", errIs: booking.ErrInvalidTimeFormat},
		{name: "hour zero", date: "25-12-2026", timeStr: "0:30 AM", errIs: booking.ErrInvalidTimeFormat},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := booking.NewAppointmentTime(c.date, c.timeStr, ist)
			require.ErrorIs(t, err, c.errIs)
		})
	}
}

func TestValidateFuture(t *testing.T) {
	// Request for 25-12 09:30 submitted on 26-12 10:00 civil time.
	at, err := booking.NewAppointmentTime("25-12-2024", "09:30 AM", ist)
	require.NoError(t, err)

	t.Run("day-old appointment rejected", func(t *testing.T) {
		now := time.Date(2024, 12, 26, 10, 0, 0, 0, ist)
		require.ErrorIs(t, at.ValidateFuture(now), booking.ErrPastAppointment)
	})

	t.Run("exact now rejected, strictly future required", func(t *testing.T) {
		now := time.Date(2024, 12, 25, 9, 30, 0, 0, ist)
		require.ErrorIs(t, at.ValidateFuture(now), booking.ErrPastAppointment)
	})

	t.Run("one minute ahead accepted", func(t *testing.T) {
		now := time.Date(2024, 12, 25, 9, 29, 0, 0, ist)
		require.NoError(t, at.ValidateFuture(now))
	})

	t.Run("host zone does not leak into the comparison", func(t *testing.T) {
		// 04:30 UTC is 10:00 IST; the appointment at 09:30 IST is in
		// the past even though 04:30 looks earlier than 09:30 on a
		// naive wall-clock comparison.
		now := time.Date(2024, 12, 25, 4, 30, 0, 0, time.UTC)
		require.ErrorIs(t, at.ValidateFuture(now), booking.ErrPastAppointment)
	})
}

func TestFormatSlot(t *testing.T) {
	cases := []struct {
		startMin int
		want     string
	}{
		{startMin: 570, want: "9:30 AM"},
		{startMin: 600, want: "10:00 AM"},
		{startMin: 720, want: "12:00 PM"},
		{startMin: 840, want: "2:00 PM"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, booking.FormatSlot(c.startMin))
	}
}

func TestRejectionReason(t *testing.T) {
	t.Run("non-empty required", func(t *testing.T) {
		_, err := booking.NewRejectionReason("   ")
		require.ErrorIs(t, err, booking.ErrEmptyReason)
	})

	t.Run("trims whitespace", func(t *testing.T) {
		r, err := booking.NewRejectionReason("  Doctor unavailable ")
		require.NoError(t, err)
		assert.Equal(t, "Doctor unavailable", r.String())
	})
}
