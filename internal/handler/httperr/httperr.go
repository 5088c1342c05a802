package httperr

import (
	"github.com/gin-gonic/gin"
)

// Stable machine-readable error codes. Clients branch on these, so the
// strings are part of the API contract.
const (
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeHospitalNotFound   = "HOSPITAL_NOT_FOUND"
	CodeHospitalClosed     = "HOSPITAL_CLOSED"
	CodeNoEmergencyService = "NO_EMERGENCY_SERVICE"
	CodePastAppointment    = "PAST_APPOINTMENT"
	CodeOutsideHours       = "OUTSIDE_OPERATING_HOURS"
	CodeSlotFull           = "SLOT_FULL"
	CodeDailyCapReached    = "DAILY_CAP_REACHED"
	CodeBookingNotFound    = "BOOKING_NOT_FOUND"
	CodeBookingInProgress  = "BOOKING_IN_PROGRESS"
	CodeIllegalTransition  = "ILLEGAL_TRANSITION"
	CodeAccessDenied       = "ACCESS_DENIED"
	CodePaymentNotVerified = "PAYMENT_NOT_VERIFIED"
	CodeGatewayOrderFailed = "GATEWAY_ORDER_FAILED"
	CodeRefundFailed       = "REFUND_FAILED"
	CodeInvalidCursor      = "INVALID_CURSOR"
	CodeInternal           = "INTERNAL_ERROR"
)

type Response struct {
	Status int `json:"-"`
	Error  struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

// preserves original error for future monitoring
func AbortWithError(c *gin.Context, status int, err error, code, msg string, detail any) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := Response{Status: status}
	resp.Error.Code = code
	resp.Error.Message = msg
	resp.Detail = detail

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}
