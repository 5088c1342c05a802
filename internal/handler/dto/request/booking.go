package request

type CreateBookingRequest struct {
	HospitalID    string `json:"hospital_id" binding:"required,uuid"`
	Date          string `json:"date" binding:"required"`
	TimeSlot      string `json:"time_slot" binding:"required"`
	Emergency     bool   `json:"emergency"`
	PaymentMethod string `json:"payment_method" binding:"required,oneof=online cod"`
}

type RejectBookingRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type CompleteBookingRequest struct {
	Notes string `json:"notes" binding:"omitempty,max=2000"`
}

type VerifyPaymentRequest struct {
	OrderID   string `json:"order_id" binding:"required"`
	PaymentID string `json:"payment_id" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}
