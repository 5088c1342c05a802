package response

import (
	"time"

	"medibook/internal/usecase/queries"

	"github.com/google/uuid"
)

type BookingResponse struct {
	ID              uuid.UUID `json:"id"`
	HospitalID      uuid.UUID `json:"hospital_id"`
	HospitalName    string    `json:"hospital_name"`
	UserID          uuid.UUID `json:"user_id"`
	TokenNumber     string    `json:"token_number"`
	Status          string    `json:"status"`
	Emergency       bool      `json:"emergency"`
	AppointmentDate string    `json:"appointment_date"`
	TimeSlot        string    `json:"time_slot"`
	PaymentMethod   string    `json:"payment_method"`
	PaymentStatus   string    `json:"payment_status"`
	PlatformFee     int32     `json:"platform_fee"`
	EmergencyFee    int32     `json:"emergency_fee"`
	Tax             int32     `json:"tax"`
	Total           int32     `json:"total"`
	OrderID         *string   `json:"order_id,omitempty"`
	RefundID        *string   `json:"refund_id,omitempty"`
	RejectionReason *string   `json:"rejection_reason,omitempty"`
	Notes           *string   `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func FromBookingView(v *queries.BookingView) *BookingResponse {
	return &BookingResponse{
		ID:              v.ID,
		HospitalID:      v.HospitalID,
		HospitalName:    v.HospitalName,
		UserID:          v.UserID,
		TokenNumber:     v.TokenNumber,
		Status:          v.Status,
		Emergency:       v.Emergency,
		AppointmentDate: v.AppointmentDate,
		TimeSlot:        v.TimeSlot,
		PaymentMethod:   v.PaymentMethod,
		PaymentStatus:   v.PaymentStatus,
		PlatformFee:     v.PlatformFee,
		EmergencyFee:    v.EmergencyFee,
		Tax:             v.Tax,
		Total:           v.Total,
		OrderID:         v.OrderID,
		RefundID:        v.RefundID,
		RejectionReason: v.RejectionReason,
		Notes:           v.Notes,
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
}

type BookingListItemResponse struct {
	ID              uuid.UUID `json:"id"`
	HospitalID      uuid.UUID `json:"hospital_id"`
	HospitalName    string    `json:"hospital_name"`
	TokenNumber     string    `json:"token_number"`
	Status          string    `json:"status"`
	Emergency       bool      `json:"emergency"`
	AppointmentDate string    `json:"appointment_date"`
	TimeSlot        string    `json:"time_slot"`
	Total           int32     `json:"total"`
	CreatedAt       time.Time `json:"created_at"`
}

type BookingListResponse struct {
	Items      []*BookingListItemResponse `json:"items"`
	NextCursor *string                    `json:"next_cursor,omitempty"`
}

func FromBookingListItem(v *queries.BookingListItem) *BookingListItemResponse {
	return &BookingListItemResponse{
		ID:              v.ID,
		HospitalID:      v.HospitalID,
		HospitalName:    v.HospitalName,
		TokenNumber:     v.TokenNumber,
		Status:          v.Status,
		Emergency:       v.Emergency,
		AppointmentDate: v.AppointmentDate,
		TimeSlot:        v.TimeSlot,
		Total:           v.Total,
		CreatedAt:       v.CreatedAt,
	}
}

func FromBookingList(items []*queries.BookingListItem, next *queries.Cursor) *BookingListResponse {
	resp := &BookingListResponse{
		Items: make([]*BookingListItemResponse, 0, len(items)),
	}
	for _, item := range items {
		resp.Items = append(resp.Items, FromBookingListItem(item))
	}
	if next != nil {
		resp.NextCursor = &next.After
	}
	return resp
}
