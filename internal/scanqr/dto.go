package scanqr

import "time"

type CheckInRequest struct {
	Payload string `json:"payload" binding:"required"`
}

type UserDTO struct {
	UserID uint64 `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

type EventDTO struct {
	EventID   uint64  `json:"id"`
	Title     string  `json:"title"`
	Location  string  `json:"location"`
	Status    string  `json:"status"`
	StartDate string  `json:"start_date"`
	EndDate   *string `json:"end_date,omitempty"`
	StartTime *string `json:"start_time,omitempty"`
	EndTime   *string `json:"end_time,omitempty"`
}

type CheckInData struct {
	User       UserDTO   `json:"user"`
	Event      EventDTO  `json:"event"`
	AttendedAt time.Time `json:"attended_at"`
}
