//go:build unit || e2e

package dbtest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

type dayTimingRow struct {
	Weekday  int  `json:"weekday"`
	OpenMin  int  `json:"open_min"`
	CloseMin int  `json:"close_min"`
	Open     bool `json:"open"`
}

// CreateTestHospital inserts an approved, always-open hospital with
// 09:00-18:00 hours, 30-minute slots and 3 patients per slot.
func CreateTestHospital(t *testing.T, db DBLike, name string) uuid.UUID {
	t.Helper()
	return CreateTestHospitalWithCapacity(t, db, name, 3, 50)
}

func CreateTestHospitalWithCapacity(t *testing.T, db DBLike, name string, patientsPerSlot, maxPerDay int) uuid.UUID {
	t.Helper()

	hospitalID := uuid.New()
	timings := make([]dayTimingRow, 0, 7)
	for wd := 0; wd < 7; wd++ {
		timings = append(timings, dayTimingRow{Weekday: wd, OpenMin: 9 * 60, CloseMin: 18 * 60, Open: true})
	}
	timingsJSON, err := json.Marshal(timings)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = db.Exec(ctx, `
		INSERT INTO hospitals (
			id, name, approval_status, is_open, emergency_available,
			fee_policy, base_price, platform_fee, emergency_fee, tax_rate_bps,
			patients_per_slot, slot_duration_min, max_bookings_per_day, timings
		) VALUES ($1, $2, 'approved', true, true, 'flat', 0, 30, 20, 1800, $3, 30, $4, $5)`,
		hospitalID, name, patientsPerSlot, maxPerDay, timingsJSON)
	require.NoError(t, err)

	return hospitalID
}

// CreateTestBooking inserts a booking row directly, bypassing the
// orchestrator. Token numbers must stay unique per hospital day.
func CreateTestBooking(t *testing.T, db DBLike, hospitalID, userID uuid.UUID, token, status string, appointmentAt time.Time) uuid.UUID {
	t.Helper()

	bookingID := uuid.New()
	ctx := context.Background()
	_, err := db.Exec(ctx, `
		INSERT INTO bookings (
			id, hospital_id, user_id, token_number, status, emergency,
			appointment_at, appointment_date, time_slot,
			payment_method, payment_status,
			platform_fee, emergency_fee, tax, total
		) VALUES ($1, $2, $3, $4, $5, false, $6, $7, $8, 'cod', 'pending', 30, 0, 5, 35)`,
		bookingID, hospitalID, userID, token, status,
		appointmentAt, appointmentAt.Format("2006-01-02"), appointmentAt.Format("3:04 PM"))
	require.NoError(t, err)

	return bookingID
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	if _, err := pool.Exec(ctx, sqlAny.(string)); err != nil {
		return err
	}

	return nil
}
