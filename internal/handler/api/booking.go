package api

import (
	"errors"
	"net/http"
	"strconv"

	reqdto "medibook/internal/handler/dto/request"
	resdto "medibook/internal/handler/dto/response"
	"medibook/internal/handler/httperr"
	"medibook/internal/handler/middleware"
	"medibook/internal/pkg/errs"
	"medibook/internal/usecase/commands"
	"medibook/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingHandler struct {
	bookingCommands commands.BookingCommands
	bookingQueries  queries.BookingQueries
}

func NewBookingHandler(bookingCommands commands.BookingCommands, bookingQueries queries.BookingQueries) *BookingHandler {
	return &BookingHandler{
		bookingCommands: bookingCommands,
		bookingQueries:  bookingQueries,
	}
}

// @Summary Create booking
// @Description Book an OP appointment slot at a hospital
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateBookingRequest true "Booking request"
// @Success 201 {object} resdto.BookingResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /bookings [post]
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.CreateBookingRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, httperr.CodeValidationFailed, "Invalid request format", nil)
		return
	}

	hospitalID, err := uuid.Parse(req.HospitalID)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeValidationFailed, "Invalid hospital ID format", nil)
		return
	}

	view, err := h.bookingCommands.Create(c.Request.Context(), commands.CreateBookingRequest{
		HospitalID:    hospitalID,
		Date:          req.Date,
		TimeSlot:      req.TimeSlot,
		Emergency:     req.Emergency,
		PaymentMethod: req.PaymentMethod,
	}, userID)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrHospitalNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, httperr.CodeHospitalNotFound, "Hospital not found", nil)
		case errors.Is(err, errs.ErrHospitalUnavailable):
			httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, httperr.CodeHospitalClosed, "Hospital is not accepting bookings", nil)
		case errors.Is(err, errs.ErrNoEmergencyService):
			httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, httperr.CodeNoEmergencyService, "Hospital does not offer emergency service", nil)
		case errors.Is(err, errs.ErrInvalidAppointmentDate), errors.Is(err, errs.ErrInvalidAppointmentTime):
			httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeValidationFailed, "Invalid appointment date or time", nil)
		case errors.Is(err, errs.ErrInvalidPaymentMethod):
			httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeValidationFailed, "Invalid payment method", nil)
		case errors.Is(err, errs.ErrPastAppointment):
			httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, httperr.CodePastAppointment, "Appointment time is in the past", nil)
		case errors.Is(err, errs.ErrOutsideOperatingHours):
			httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, httperr.CodeOutsideHours, "Requested slot is outside operating hours", nil)
		case errors.Is(err, errs.ErrSlotFull):
			httperr.AbortWithError(c, http.StatusConflict, err, httperr.CodeSlotFull, "Requested slot is fully booked", nil)
		case errors.Is(err, errs.ErrDailyCapReached):
			httperr.AbortWithError(c, http.StatusConflict, err, httperr.CodeDailyCapReached, "Hospital has reached its daily booking limit", nil)
		case errors.Is(err, commands.ErrBookingInProgress):
			httperr.AbortWithError(c, http.StatusConflict, err, httperr.CodeBookingInProgress, "A booking for this slot is already being processed", nil)
		case errors.Is(err, errs.ErrGatewayOrderFailed):
			httperr.AbortWithError(c, http.StatusBadGateway, err, httperr.CodeGatewayOrderFailed, "Payment order could not be created", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, httperr.CodeInternal, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.FromBookingView(view))
}

// @Summary Get booking
// @Description Get booking by ID. Patients can only read their own bookings.
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /bookings/{id} [get]
func (h *BookingHandler) GetBooking(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	userID, uidOK := middleware.GetUserID(c)
	role, roleOK := middleware.GetUserRole(c)
	if !uidOK || !roleOK {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	view, err := h.bookingQueries.GetByID(c.Request.Context(), userID, role, id)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrBookingViewNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, httperr.CodeBookingNotFound, "Booking not found", nil)
		case errors.Is(err, queries.ErrBookingAccessDenied):
			httperr.AbortWithError(c, http.StatusForbidden, err, httperr.CodeAccessDenied, "Booking belongs to another patient", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, httperr.CodeInternal, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

// @Summary List my bookings
// @Description List the caller's bookings, newest first, with cursor pagination
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param cursor query string false "Opaque cursor from a previous page"
// @Param limit query int false "Page size (default 50, max 200)"
// @Success 200 {object} resdto.BookingListResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Router /bookings [get]
func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var after *queries.Cursor
	if cursor := c.Query("cursor"); cursor != "" {
		after = &queries.Cursor{After: cursor}
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeValidationFailed, "Invalid limit parameter", nil)
			return
		}
		limit = parsed
	}

	items, next, err := h.bookingQueries.ListByUser(c.Request.Context(), userID, after, limit)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrInvalidListCursor):
			httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeInvalidCursor, "Invalid pagination cursor", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, httperr.CodeInternal, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromBookingList(items, next))
}

// @Summary Confirm booking
// @Description Hospital confirms a pending booking
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 204 "No Content"
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /bookings/{id}/confirm [post]
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	if err := h.bookingCommands.Confirm(c.Request.Context(), id); err != nil {
		h.writeTransitionError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Reject booking
// @Description Hospital rejects a pending booking with a mandatory reason
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.RejectBookingRequest true "Rejection reason"
// @Success 204 "No Content"
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /bookings/{id}/reject [post]
func (h *BookingHandler) RejectBooking(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	var req reqdto.RejectBookingRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, httperr.CodeValidationFailed, "Rejection reason is required", nil)
		return
	}

	if err := h.bookingCommands.Reject(c.Request.Context(), id, req.Reason); err != nil {
		if errors.Is(err, errs.ErrMissingRejectionReason) {
			httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeValidationFailed, "Rejection reason is required", nil)
			return
		}
		h.writeTransitionError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Complete booking
// @Description Hospital marks a confirmed booking as completed after the visit
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.CompleteBookingRequest false "Visit notes"
// @Success 204 "No Content"
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /bookings/{id}/complete [post]
func (h *BookingHandler) CompleteBooking(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	var req reqdto.CompleteBookingRequest
	if c.Request.ContentLength > 0 {
		if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, bindErr, httperr.CodeValidationFailed, "Invalid request format", nil)
			return
		}
	}

	if err := h.bookingCommands.Complete(c.Request.Context(), id, req.Notes); err != nil {
		h.writeTransitionError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Cancel booking
// @Description Patient or admin cancels a booking. Paid online bookings are refunded first.
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 204 "No Content"
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 502 {object} httperr.Response
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	userID, uidOK := middleware.GetUserID(c)
	role, roleOK := middleware.GetUserRole(c)
	if !uidOK || !roleOK {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	if err := h.bookingCommands.Cancel(c.Request.Context(), id, userID, role); err != nil {
		switch {
		case errors.Is(err, commands.ErrBookingNotOwned):
			httperr.AbortWithError(c, http.StatusForbidden, err, httperr.CodeAccessDenied, "Booking belongs to another patient", nil)
		case errors.Is(err, errs.ErrGatewayRefundFailed):
			httperr.AbortWithError(c, http.StatusBadGateway, err, httperr.CodeRefundFailed, "Refund could not be processed, booking left unchanged", nil)
		default:
			h.writeTransitionError(c, err)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Verify payment
// @Description Verify the gateway payment signature and confirm the booking
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.VerifyPaymentRequest true "Gateway payment result"
// @Success 204 "No Content"
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /bookings/{id}/payment/verify [post]
func (h *BookingHandler) VerifyPayment(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	var req reqdto.VerifyPaymentRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, httperr.CodeValidationFailed, "Invalid request format", nil)
		return
	}

	err := h.bookingCommands.VerifyPayment(c.Request.Context(), id, req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		if errors.Is(err, errs.ErrPaymentNotVerified) {
			httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodePaymentNotVerified, "Payment signature verification failed", nil)
			return
		}
		h.writeTransitionError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *BookingHandler) bookingID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeValidationFailed, "Invalid booking ID format", nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *BookingHandler) writeTransitionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrBookingNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, httperr.CodeBookingNotFound, "Booking not found", nil)
	case errors.Is(err, errs.ErrIllegalTransition):
		httperr.AbortWithError(c, http.StatusConflict, err, httperr.CodeIllegalTransition, "Booking state does not allow this action", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, httperr.CodeInternal, "Internal server error", nil)
	}
}
