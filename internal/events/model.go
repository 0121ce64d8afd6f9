package events

import (
	"database/sql"
	"time"
)

// DB行に対応（スキャン用）
type eventRow struct {
	EventID         uint64
	AdminID         uint64
	Title           string
	Description     sql.NullString
	Location        string
	Status          string
	StartDate       string // DATE → "YYYY-MM-DD"
	EndDate         sql.NullString
	StartTime       sql.NullString // TIME → "HH:MM:SS"
	EndTime         sql.NullString
	Capacity        sql.NullInt64
	AttendanceCount int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Event struct {
	EventID         uint64
	AdminID         uint64
	Title           string
	Description     *string
	Location        string
	Status          string
	StartDate       string
	EndDate         *string
	StartTime       *string
	EndTime         *string
	Capacity        *int64
	AttendanceCount int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (r eventRow) toModel() Event {
	e := Event{
		EventID:         r.EventID,
		AdminID:         r.AdminID,
		Title:           r.Title,
		Location:        r.Location,
		Status:          r.Status,
		StartDate:       r.StartDate,
		AttendanceCount: r.AttendanceCount,
		CreatedAt:       r.CreatedAt.UTC(),
		UpdatedAt:       r.UpdatedAt.UTC(),
	}
	if r.Description.Valid {
		e.Description = &r.Description.String
	}
	if r.EndDate.Valid {
		e.EndDate = &r.EndDate.String
	}
	if r.StartTime.Valid {
		e.StartTime = &r.StartTime.String
	}
	if r.EndTime.Valid {
		e.EndTime = &r.EndTime.String
	}
	if r.Capacity.Valid {
		e.Capacity = &r.Capacity.Int64
	}
	return e
}

func (e Event) toDTO() EventResponse {
	return EventResponse{
		EventID:         e.EventID,
		AdminID:         e.AdminID,
		Title:           e.Title,
		Description:     e.Description,
		Location:        e.Location,
		Status:          e.Status,
		StartDate:       e.StartDate,
		EndDate:         e.EndDate,
		StartTime:       e.StartTime,
		EndTime:         e.EndTime,
		Capacity:        e.Capacity,
		AttendanceCount: e.AttendanceCount,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}
