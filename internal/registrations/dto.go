package registrations

import "time"

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 200
)

type RegisterRequest struct {
	EventID uint64 `json:"event_id" binding:"required"`
}

type RegistrationResponse struct {
	RegistrationID uint64    `json:"registration_id"`
	UserID         uint64    `json:"user_id"`
	EventID        uint64    `json:"event_id"`
	TicketCode     string    `json:"ticket_code"`
	QRPayload      string    `json:"qr_payload"`
	CreatedAt      time.Time `json:"created_at"`
}

type MyRegistrationResponse struct {
	RegistrationResponse
	EventTitle    string  `json:"event_title"`
	EventLocation string  `json:"event_location"`
	EventStatus   string  `json:"event_status"`
	StartDate     string  `json:"start_date"`
	EndDate       *string `json:"end_date,omitempty"`
	StartTime     *string `json:"start_time,omitempty"`
	EndTime       *string `json:"end_time,omitempty"`
}

type Page struct {
	Limit  int
	Offset int
}

type ListResponse struct {
	Items []MyRegistrationResponse `json:"items"`
	Total int64                    `json:"total"`
}
