package events

import "time"

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"

	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"

	DefaultPageLimit = 50
	MaxPageLimit     = 200
)

type CreateEventRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description,omitempty"`
	Location    string  `json:"location" binding:"required"`
	StartDate   string  `json:"start_date" binding:"required"` // YYYY-MM-DD
	EndDate     *string `json:"end_date,omitempty"`
	StartTime   *string `json:"start_time,omitempty"` // HH:MM:SS
	EndTime     *string `json:"end_time,omitempty"`
	Capacity    *int64  `json:"capacity,omitempty"`
}

type UpdateEventRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Location    *string `json:"location,omitempty"`
	StartDate   *string `json:"start_date,omitempty"`
	EndDate     *string `json:"end_date,omitempty"`
	StartTime   *string `json:"start_time,omitempty"`
	EndTime     *string `json:"end_time,omitempty"`
	Capacity    *int64  `json:"capacity,omitempty"`
}

type EventResponse struct {
	EventID         uint64    `json:"event_id"`
	AdminID         uint64    `json:"admin_id"`
	Title           string    `json:"title"`
	Description     *string   `json:"description,omitempty"`
	Location        string    `json:"location"`
	Status          string    `json:"status"`
	StartDate       string    `json:"start_date"`
	EndDate         *string   `json:"end_date,omitempty"`
	StartTime       *string   `json:"start_time,omitempty"`
	EndTime         *string   `json:"end_time,omitempty"`
	Capacity        *int64    `json:"capacity,omitempty"`
	AttendanceCount int64     `json:"attendance_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Page struct {
	Limit  int
	Offset int
	Order  string // "asc" / "desc"（start_date基準）
}

type SearchQuery struct {
	AdminID *uint64 // 管理者自身の一覧用
	Status  *string
	Keyword *string // title / location の部分一致
}

type ListResponse struct {
	Items []EventResponse `json:"items"`
	Total int64           `json:"total"`
}
