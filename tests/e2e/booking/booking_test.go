//go:build e2e

package booking_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"medibook/internal/domain/user"
	"medibook/internal/handler/dto/response"
	"medibook/tests/common/authtest"
	"medibook/tests/common/dbtest"
	"medibook/tests/common/httptest"
	"medibook/tests/e2e"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	bookingsURL     = "/api/bookings"
	availabilityURL = "/api/hospitals/%s/availability?date=%s"
)

type BookingSuite struct {
	e2e.SharedSuite
}

func TestBookingSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(BookingSuite))
}

func (s *BookingSuite) jwt() *authtest.JWTHelper {
	return authtest.NewJWTHelper(s.Config.JWT)
}

// tomorrowDate returns the next civil day in the booking zone, safely in
// the future regardless of wall-clock time when the suite runs.
func (s *BookingSuite) tomorrowDate() string {
	zone := s.Config.Booking.Zone()
	return time.Now().In(zone).AddDate(0, 0, 1).Format("02-01-2006")
}

func (s *BookingSuite) createBookingBody(hospitalID uuid.UUID, slot string) map[string]any {
	return map[string]any{
		"hospital_id":    hospitalID.String(),
		"date":           s.tomorrowDate(),
		"time_slot":      slot,
		"emergency":      false,
		"payment_method": "cod",
	}
}

func (s *BookingSuite) TestCreateBooking() {
	s.Run("Normal case: COD booking gets sequential tokens", func() {
		t := s.T()

		hospitalID := dbtest.CreateTestHospital(t, s.DB, "City General Hospital")
		firstPatient := s.jwt().GenerateToken(t, uuid.New(), user.RolePatient)
		secondPatient := s.jwt().GenerateToken(t, uuid.New(), user.RolePatient)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, bookingsURL,
			s.createBookingBody(hospitalID, "09:30 AM"), firstPatient)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var first response.BookingResponse
		httptest.AssertSuccessResponse(t, w, http.StatusCreated, &first)
		httptest.AssertHeaders(t, w, map[string]string{"Content-Type": "application/json; charset=utf-8"})

		expected := &response.BookingResponse{
			HospitalName:    "City General Hospital",
			TokenNumber:     "CIT001",
			Status:          "pending",
			Emergency:       false,
			AppointmentDate: s.tomorrowDate(),
			TimeSlot:        "09:30 AM",
			PaymentMethod:   "cod",
			PaymentStatus:   "pending",
			PlatformFee:     30,
			Tax:             5,
			Total:           35,
		}
		opts := []cmp.Option{
			cmpopts.IgnoreFields(response.BookingResponse{}, "ID", "HospitalID", "UserID", "CreatedAt", "UpdatedAt"),
		}
		if diff := cmp.Diff(expected, &first, opts...); diff != "" {
			t.Errorf("Booking response mismatch (-want +got):\n%s", diff)
		}

		w = httptest.PerformRequest(t, s.Router, http.MethodPost, bookingsURL,
			s.createBookingBody(hospitalID, "10:00 AM"), secondPatient)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var second response.BookingResponse
		httptest.AssertSuccessResponse(t, w, http.StatusCreated, &second)
		require.Equal(t, "CIT002", second.TokenNumber)
	})

	s.Run("Normal case: concurrent requests never oversell a slot", func() {
		t := s.T()

		const attempts = 8
		const perSlot = 3
		hospitalID := dbtest.CreateTestHospitalWithCapacity(t, s.DB, "Riverside Medical Center", perSlot, 50)

		auths := make([]string, attempts)
		for i := range auths {
			auths[i] = s.jwt().GenerateToken(t, uuid.New(), user.RolePatient)
		}

		type outcome struct {
			code  int
			body  string
			token string
		}
		results := make(chan outcome, attempts)
		var wg sync.WaitGroup
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(auth string) {
				defer wg.Done()
				w := httptest.PerformRequest(t, s.Router, http.MethodPost, bookingsURL,
					s.createBookingBody(hospitalID, "09:30 AM"), auth)
				o := outcome{code: w.Code, body: w.Body.String()}
				if w.Code == http.StatusCreated {
					var created response.BookingResponse
					if err := json.Unmarshal(w.Body.Bytes(), &created); err == nil {
						o.token = created.TokenNumber
					}
				}
				results <- o
			}(auths[i])
		}
		wg.Wait()
		close(results)

		var createdCount int
		tokens := make(map[string]bool)
		for r := range results {
			switch r.code {
			case http.StatusCreated:
				createdCount++
				require.NotEmpty(t, r.token, r.body)
				require.False(t, tokens[r.token], "token %s issued twice", r.token)
				tokens[r.token] = true
			case http.StatusConflict:
				require.Contains(t, r.body, "SLOT_FULL")
			default:
				t.Fatalf("unexpected status %d: %s", r.code, r.body)
			}
		}
		require.Equal(t, perSlot, createdCount)
	})

	s.Run("Error case: slot full returns conflict", func() {
		t := s.T()

		hospitalID := dbtest.CreateTestHospitalWithCapacity(t, s.DB, "Lakeside Care Hospital", 1, 50)
		firstPatient := s.jwt().GenerateToken(t, uuid.New(), user.RolePatient)
		secondPatient := s.jwt().GenerateToken(t, uuid.New(), user.RolePatient)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, bookingsURL,
			s.createBookingBody(hospitalID, "11:00 AM"), firstPatient)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = httptest.PerformRequest(t, s.Router, http.MethodPost, bookingsURL,
			s.createBookingBody(hospitalID, "11:00 AM"), secondPatient)
		require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
		require.Contains(t, w.Body.String(), "SLOT_FULL")
	})

	s.Run("Error case: unauthenticated request is rejected", func() {
		t := s.T()

		hospitalID := dbtest.CreateTestHospital(t, s.DB, "City General Hospital")

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, bookingsURL,
			s.createBookingBody(hospitalID, "09:30 AM"), "")
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	s.Run("Error case: unknown hospital returns not found", func() {
		t := s.T()

		patient := s.jwt().GenerateToken(t, uuid.New(), user.RolePatient)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, bookingsURL,
			s.createBookingBody(uuid.New(), "09:30 AM"), patient)
		require.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
		require.Contains(t, w.Body.String(), "HOSPITAL_NOT_FOUND")
	})
}

func (s *BookingSuite) TestBookingLifecycle() {
	s.Run("Normal case: confirm then complete", func() {
		t := s.T()

		hospitalID := dbtest.CreateTestHospital(t, s.DB, "City General Hospital")
		patientID := uuid.New()
		patient := s.jwt().GenerateToken(t, patientID, user.RolePatient)
		staff := s.jwt().GenerateToken(t, uuid.New(), user.RoleHospital)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, bookingsURL,
			s.createBookingBody(hospitalID, "09:30 AM"), patient)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var created response.BookingResponse
		httptest.AssertSuccessResponse(t, w, http.StatusCreated, &created)

		w = httptest.PerformRequest(t, s.Router, http.MethodPost,
			bookingsURL+"/"+created.ID.String()+"/confirm", nil, staff)
		require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

		w = httptest.PerformRequest(t, s.Router, http.MethodGet,
			bookingsURL+"/"+created.ID.String(), nil, patient)
		var confirmed response.BookingResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &confirmed)
		require.Equal(t, "confirmed", confirmed.Status)

		w = httptest.PerformRequest(t, s.Router, http.MethodPost,
			bookingsURL+"/"+created.ID.String()+"/complete",
			map[string]any{"notes": "BP normal, prescribed rest"}, staff)
		require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

		w = httptest.PerformRequest(t, s.Router, http.MethodGet,
			bookingsURL+"/"+created.ID.String(), nil, patient)
		var completed response.BookingResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &completed)
		require.Equal(t, "completed", completed.Status)
		require.NotNil(t, completed.Notes)
	})

	s.Run("Normal case: reject requires a reason", func() {
		t := s.T()

		hospitalID := dbtest.CreateTestHospital(t, s.DB, "City General Hospital")
		patient := s.jwt().GenerateToken(t, uuid.New(), user.RolePatient)
		staff := s.jwt().GenerateToken(t, uuid.New(), user.RoleHospital)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, bookingsURL,
			s.createBookingBody(hospitalID, "09:30 AM"), patient)
		var created response.BookingResponse
		httptest.AssertSuccessResponse(t, w, http.StatusCreated, &created)

		rejectURL := bookingsURL + "/" + created.ID.String() + "/reject"

		w = httptest.PerformRequest(t, s.Router, http.MethodPost, rejectURL,
			map[string]any{"reason": ""}, staff)
		require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

		w = httptest.PerformRequest(t, s.Router, http.MethodPost, rejectURL,
			map[string]any{"reason": "Doctor unavailable that day"}, staff)
		require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

		w = httptest.PerformRequest(t, s.Router, http.MethodGet,
			bookingsURL+"/"+created.ID.String(), nil, patient)
		var rejected response.BookingResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &rejected)
		require.Equal(t, "rejected", rejected.Status)
		require.NotNil(t, rejected.RejectionReason)
	})

	s.Run("Normal case: patient cancels own pending booking", func() {
		t := s.T()

		hospitalID := dbtest.CreateTestHospital(t, s.DB, "City General Hospital")
		patient := s.jwt().GenerateToken(t, uuid.New(), user.RolePatient)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, bookingsURL,
			s.createBookingBody(hospitalID, "09:30 AM"), patient)
		var created response.BookingResponse
		httptest.AssertSuccessResponse(t, w, http.StatusCreated, &created)

		w = httptest.PerformRequest(t, s.Router, http.MethodPost,
			bookingsURL+"/"+created.ID.String()+"/cancel", nil, patient)
		require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

		w = httptest.PerformRequest(t, s.Router, http.MethodGet,
			bookingsURL+"/"+created.ID.String(), nil, patient)
		var cancelled response.BookingResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &cancelled)
		require.Equal(t, "cancelled", cancelled.Status)
	})

	s.Run("Error case: another patient cannot cancel or read the booking", func() {
		t := s.T()

		hospitalID := dbtest.CreateTestHospital(t, s.DB, "City General Hospital")
		owner := s.jwt().GenerateToken(t, uuid.New(), user.RolePatient)
		stranger := s.jwt().GenerateToken(t, uuid.New(), user.RolePatient)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, bookingsURL,
			s.createBookingBody(hospitalID, "09:30 AM"), owner)
		var created response.BookingResponse
		httptest.AssertSuccessResponse(t, w, http.StatusCreated, &created)

		w = httptest.PerformRequest(t, s.Router, http.MethodGet,
			bookingsURL+"/"+created.ID.String(), nil, stranger)
		require.Equal(t, http.StatusForbidden, w.Code, w.Body.String())

		w = httptest.PerformRequest(t, s.Router, http.MethodPost,
			bookingsURL+"/"+created.ID.String()+"/cancel", nil, stranger)
		require.Equal(t, http.StatusForbidden, w.Code, w.Body.String())
	})

	s.Run("Error case: patient role cannot confirm", func() {
		t := s.T()

		hospitalID := dbtest.CreateTestHospital(t, s.DB, "City General Hospital")
		patient := s.jwt().GenerateToken(t, uuid.New(), user.RolePatient)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, bookingsURL,
			s.createBookingBody(hospitalID, "09:30 AM"), patient)
		var created response.BookingResponse
		httptest.AssertSuccessResponse(t, w, http.StatusCreated, &created)

		w = httptest.PerformRequest(t, s.Router, http.MethodPost,
			bookingsURL+"/"+created.ID.String()+"/confirm", nil, patient)
		require.Equal(t, http.StatusForbidden, w.Code)
	})
}

func (s *BookingSuite) TestAvailability() {
	s.Run("Normal case: booked slot loses one seat", func() {
		t := s.T()

		hospitalID := dbtest.CreateTestHospital(t, s.DB, "City General Hospital")
		patient := s.jwt().GenerateToken(t, uuid.New(), user.RolePatient)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, bookingsURL,
			s.createBookingBody(hospitalID, "09:30 AM"), patient)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		url := fmt.Sprintf(availabilityURL, hospitalID.String(), s.tomorrowDate())
		w = httptest.PerformRequest(t, s.Router, http.MethodGet, url, nil, "")

		var availability response.AvailabilityResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &availability)
		require.True(t, availability.Open)
		require.Equal(t, 1, availability.DayBooked)

		var slot *response.SlotAvailabilityResponse
		for i := range availability.Slots {
			if availability.Slots[i].Slot == "9:30 AM" {
				slot = &availability.Slots[i]
				break
			}
		}
		require.NotNil(t, slot, "expected a 9:30 AM slot bucket")
		require.Equal(t, 3, slot.Capacity)
		require.Equal(t, 1, slot.Booked)
		require.Equal(t, 2, slot.Remaining)
	})
}

func (s *BookingSuite) TestListMyBookings() {
	s.Run("Normal case: newest first with cursor", func() {
		t := s.T()

		hospitalID := dbtest.CreateTestHospital(t, s.DB, "City General Hospital")
		patientID := uuid.New()
		patient := s.jwt().GenerateToken(t, patientID, user.RolePatient)

		slots := []string{"09:30 AM", "10:00 AM", "10:30 AM"}
		for _, slot := range slots {
			w := httptest.PerformRequest(t, s.Router, http.MethodPost, bookingsURL,
				s.createBookingBody(hospitalID, slot), patient)
			require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		}

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, bookingsURL+"?limit=2", nil, patient)
		var firstPage response.BookingListResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &firstPage)
		require.Len(t, firstPage.Items, 2)
		require.NotNil(t, firstPage.NextCursor)

		w = httptest.PerformRequest(t, s.Router, http.MethodGet,
			bookingsURL+"?limit=2&cursor="+*firstPage.NextCursor, nil, patient)
		var secondPage response.BookingListResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &secondPage)
		require.Len(t, secondPage.Items, 1)

		seen := map[uuid.UUID]bool{}
		for _, item := range append(firstPage.Items, secondPage.Items...) {
			require.False(t, seen[item.ID], "item repeated across pages")
			seen[item.ID] = true
		}
	})
}
