package errs

import "errors"

// Domain-specific sentinel errors for CQRS usecase layers
var (
	// Hospital errors
	ErrHospitalNotFound    = errors.New("hospital not found")
	ErrHospitalUnavailable = errors.New("hospital unavailable")
	ErrNoEmergencyService  = errors.New("no emergency service")

	// Booking validation errors
	ErrInvalidAppointmentDate = errors.New("invalid appointment date")
	ErrInvalidAppointmentTime = errors.New("invalid appointment time")
	ErrPastAppointment        = errors.New("past appointment")
	ErrMissingRejectionReason = errors.New("missing rejection reason")
	ErrInvalidPaymentMethod   = errors.New("invalid payment method")
	ErrOutsideOperatingHours  = errors.New("outside operating hours")

	// Capacity errors
	ErrSlotFull        = errors.New("slot full")
	ErrDailyCapReached = errors.New("daily booking cap reached")

	// Lifecycle errors
	ErrBookingNotFound   = errors.New("booking not found")
	ErrIllegalTransition = errors.New("illegal status transition")

	// Gateway errors
	ErrGatewayOrderFailed  = errors.New("payment order creation failed")
	ErrGatewayRefundFailed = errors.New("payment refund failed")
	ErrPaymentNotVerified  = errors.New("payment signature not verified")

	// Operation errors
	ErrDomainValidationFailed  = errors.New("domain validation failed")
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
