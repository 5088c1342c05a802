package api

import (
	"errors"
	"net/http"

	resdto "medibook/internal/handler/dto/response"
	"medibook/internal/handler/httperr"
	"medibook/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type HospitalHandler struct {
	hospitalQueries queries.HospitalQueries
	bookingQueries  queries.BookingQueries
}

func NewHospitalHandler(hospitalQueries queries.HospitalQueries, bookingQueries queries.BookingQueries) *HospitalHandler {
	return &HospitalHandler{
		hospitalQueries: hospitalQueries,
		bookingQueries:  bookingQueries,
	}
}

// @Summary List hospitals
// @Description List approved hospitals
// @Tags hospitals
// @Produce json
// @Success 200 {array} resdto.HospitalListItemResponse
// @Router /hospitals [get]
func (h *HospitalHandler) ListHospitals(c *gin.Context) {
	items, err := h.hospitalQueries.List(c.Request.Context())
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, httperr.CodeInternal, "Internal server error", nil)
		return
	}

	c.JSON(http.StatusOK, resdto.FromHospitalList(items))
}

// @Summary Get hospital
// @Description Get hospital profile including weekly timings and fee schedule
// @Tags hospitals
// @Produce json
// @Param id path string true "Hospital ID"
// @Success 200 {object} resdto.HospitalResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /hospitals/{id} [get]
func (h *HospitalHandler) GetHospital(c *gin.Context) {
	id, ok := h.hospitalID(c)
	if !ok {
		return
	}

	view, err := h.hospitalQueries.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, queries.ErrHospitalViewNotFound) {
			httperr.AbortWithError(c, http.StatusNotFound, err, httperr.CodeHospitalNotFound, "Hospital not found", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, httperr.CodeInternal, "Internal server error", nil)
		return
	}

	c.JSON(http.StatusOK, resdto.FromHospitalView(view))
}

// @Summary Slot availability
// @Description Per-slot remaining capacity for a hospital on a given day
// @Tags hospitals
// @Produce json
// @Param id path string true "Hospital ID"
// @Param date query string true "Civil date in DD-MM-YYYY"
// @Success 200 {object} resdto.AvailabilityResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /hospitals/{id}/availability [get]
func (h *HospitalHandler) GetAvailability(c *gin.Context) {
	id, ok := h.hospitalID(c)
	if !ok {
		return
	}

	date := c.Query("date")
	if date == "" {
		httperr.AbortWithError(c, http.StatusBadRequest, queries.ErrInvalidQueryDate, httperr.CodeValidationFailed, "date query parameter is required", nil)
		return
	}

	view, err := h.hospitalQueries.Availability(c.Request.Context(), id, date)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrHospitalViewNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, httperr.CodeHospitalNotFound, "Hospital not found", nil)
		case errors.Is(err, queries.ErrInvalidQueryDate):
			httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeValidationFailed, "Invalid date format, expected DD-MM-YYYY", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, httperr.CodeInternal, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromAvailabilityView(view))
}

// @Summary Hospital day schedule
// @Description Bookings for a hospital on a given day, ordered by token number
// @Tags hospitals
// @Produce json
// @Security BearerAuth
// @Param id path string true "Hospital ID"
// @Param date query string true "Civil date in DD-MM-YYYY"
// @Success 200 {array} resdto.BookingListItemResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Router /hospitals/{id}/bookings [get]
func (h *HospitalHandler) ListDayBookings(c *gin.Context) {
	id, ok := h.hospitalID(c)
	if !ok {
		return
	}

	date := c.Query("date")
	if date == "" {
		httperr.AbortWithError(c, http.StatusBadRequest, queries.ErrInvalidQueryDate, httperr.CodeValidationFailed, "date query parameter is required", nil)
		return
	}

	items, err := h.bookingQueries.ListForHospitalDay(c.Request.Context(), id, date)
	if err != nil {
		if errors.Is(err, queries.ErrInvalidQueryDate) {
			httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeValidationFailed, "Invalid date format, expected DD-MM-YYYY", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, httperr.CodeInternal, "Internal server error", nil)
		return
	}

	resp := make([]*resdto.BookingListItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, resdto.FromBookingListItem(item))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *HospitalHandler) hospitalID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeValidationFailed, "Invalid hospital ID format", nil)
		return uuid.Nil, false
	}
	return id, true
}
